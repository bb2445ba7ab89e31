package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const computerColumns = `c.id, c.tenant_id, c.hardware_address, c.status, c.holder_employee_id, c.created_at, c.updated_at`

// ComputerRow is a row of the computers table.
type ComputerRow struct {
	ID               string
	TenantID         string
	HardwareAddress  string
	Status           string
	HolderEmployeeID pgtype.Text
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (i *ComputerRow) scanTargets() []interface{} {
	return []interface{}{
		&i.ID,
		&i.TenantID,
		&i.HardwareAddress,
		&i.Status,
		&i.HolderEmployeeID,
		&i.CreatedAt,
		&i.UpdatedAt,
	}
}

// ComputerWithHolderRow is a computer joined with its holder.
type ComputerWithHolderRow struct {
	ComputerRow
	HolderLastName  pgtype.Text
	HolderFirstName pgtype.Text
	HolderEmail     pgtype.Text
}

const listComputersByTenant = `
SELECT ` + computerColumns + `, e.last_name, e.first_name, e.email
FROM computers c
LEFT JOIN employees e ON e.tenant_id = c.tenant_id AND e.id = c.holder_employee_id
WHERE c.tenant_id = $1
ORDER BY c.hardware_address, c.id`

func (q *Queries) ListComputersByTenant(ctx context.Context, tenantID string) ([]ComputerWithHolderRow, error) {
	rows, err := q.db.Query(ctx, listComputersByTenant, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ComputerWithHolderRow
	for rows.Next() {
		var i ComputerWithHolderRow
		targets := append(i.ComputerRow.scanTargets(), &i.HolderLastName, &i.HolderFirstName, &i.HolderEmail)
		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getComputerForTenant = `SELECT ` + computerColumns + ` FROM computers c WHERE c.id = $1 AND c.tenant_id = $2`

func (q *Queries) GetComputerForTenant(ctx context.Context, id, tenantID string) (ComputerRow, error) {
	var i ComputerRow
	err := q.db.QueryRow(ctx, getComputerForTenant, id, tenantID).Scan(i.scanTargets()...)
	return i, err
}

const lockComputerForTenant = getComputerForTenant + ` FOR UPDATE`

func (q *Queries) LockComputerForTenant(ctx context.Context, id, tenantID string) (ComputerRow, error) {
	var i ComputerRow
	err := q.db.QueryRow(ctx, lockComputerForTenant, id, tenantID).Scan(i.scanTargets()...)
	return i, err
}

const lockComputerByHolder = `
SELECT ` + computerColumns + `
FROM computers c
WHERE c.holder_employee_id = $1 AND c.tenant_id = $2
FOR UPDATE`

func (q *Queries) LockComputerByHolder(ctx context.Context, employeeID, tenantID string) (ComputerRow, error) {
	var i ComputerRow
	err := q.db.QueryRow(ctx, lockComputerByHolder, employeeID, tenantID).Scan(i.scanTargets()...)
	return i, err
}

const insertComputer = `
INSERT INTO computers (id, tenant_id, hardware_address, status, holder_employee_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)`

type InsertComputerParams struct {
	ID               string
	TenantID         string
	HardwareAddress  string
	Status           string
	HolderEmployeeID pgtype.Text
	CreatedAt        time.Time
}

func (q *Queries) InsertComputer(ctx context.Context, arg InsertComputerParams) error {
	_, err := q.db.Exec(ctx, insertComputer,
		arg.ID,
		arg.TenantID,
		arg.HardwareAddress,
		arg.Status,
		arg.HolderEmployeeID,
		arg.CreatedAt,
	)
	return err
}

const updateComputerForTenant = `
UPDATE computers
SET hardware_address = $3, status = $4, holder_employee_id = $5, updated_at = $6
WHERE id = $1 AND tenant_id = $2`

type UpdateComputerParams struct {
	ID               string
	TenantID         string
	HardwareAddress  string
	Status           string
	HolderEmployeeID pgtype.Text
	UpdatedAt        time.Time
}

func (q *Queries) UpdateComputerForTenant(ctx context.Context, arg UpdateComputerParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateComputerForTenant,
		arg.ID,
		arg.TenantID,
		arg.HardwareAddress,
		arg.Status,
		arg.HolderEmployeeID,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteComputerForTenant = `DELETE FROM computers WHERE id = $1 AND tenant_id = $2`

func (q *Queries) DeleteComputerForTenant(ctx context.Context, id, tenantID string) (int64, error) {
	result, err := q.db.Exec(ctx, deleteComputerForTenant, id, tenantID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

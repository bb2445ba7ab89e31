package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const employeeColumns = `e.id, e.tenant_id, e.last_name, e.first_name, e.email, e.password_hash, e.age, e.category, e.created_at, e.updated_at`

// EmployeeRow is a row of the employees table.
type EmployeeRow struct {
	ID           string
	TenantID     string
	LastName     string
	FirstName    string
	Email        string
	PasswordHash string
	Age          pgtype.Int4
	Category     pgtype.Text
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (i *EmployeeRow) scanTargets() []interface{} {
	return []interface{}{
		&i.ID,
		&i.TenantID,
		&i.LastName,
		&i.FirstName,
		&i.Email,
		&i.PasswordHash,
		&i.Age,
		&i.Category,
		&i.CreatedAt,
		&i.UpdatedAt,
	}
}

// EmployeeWithComputerRow is an employee joined with the computer it holds.
type EmployeeWithComputerRow struct {
	EmployeeRow
	ComputerID              pgtype.Text
	ComputerHardwareAddress pgtype.Text
	ComputerStatus          pgtype.Text
}

const listEmployeesByTenant = `
SELECT ` + employeeColumns + `, c.id, c.hardware_address, c.status
FROM employees e
LEFT JOIN computers c ON c.tenant_id = e.tenant_id AND c.holder_employee_id = e.id
WHERE e.tenant_id = $1
ORDER BY e.last_name, e.first_name, e.id`

func (q *Queries) ListEmployeesByTenant(ctx context.Context, tenantID string) ([]EmployeeWithComputerRow, error) {
	rows, err := q.db.Query(ctx, listEmployeesByTenant, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []EmployeeWithComputerRow
	for rows.Next() {
		var i EmployeeWithComputerRow
		targets := append(i.EmployeeRow.scanTargets(), &i.ComputerID, &i.ComputerHardwareAddress, &i.ComputerStatus)
		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getEmployeeForTenant = `SELECT ` + employeeColumns + ` FROM employees e WHERE e.id = $1 AND e.tenant_id = $2`

func (q *Queries) GetEmployeeForTenant(ctx context.Context, id, tenantID string) (EmployeeRow, error) {
	var i EmployeeRow
	err := q.db.QueryRow(ctx, getEmployeeForTenant, id, tenantID).Scan(i.scanTargets()...)
	return i, err
}

const lockEmployeeForTenant = getEmployeeForTenant + ` FOR UPDATE`

func (q *Queries) LockEmployeeForTenant(ctx context.Context, id, tenantID string) (EmployeeRow, error) {
	var i EmployeeRow
	err := q.db.QueryRow(ctx, lockEmployeeForTenant, id, tenantID).Scan(i.scanTargets()...)
	return i, err
}

const insertEmployee = `
INSERT INTO employees (id, tenant_id, last_name, first_name, email, password_hash, age, category, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`

type InsertEmployeeParams struct {
	ID           string
	TenantID     string
	LastName     string
	FirstName    string
	Email        string
	PasswordHash string
	Age          pgtype.Int4
	Category     pgtype.Text
	CreatedAt    time.Time
}

func (q *Queries) InsertEmployee(ctx context.Context, arg InsertEmployeeParams) error {
	_, err := q.db.Exec(ctx, insertEmployee,
		arg.ID,
		arg.TenantID,
		arg.LastName,
		arg.FirstName,
		arg.Email,
		arg.PasswordHash,
		arg.Age,
		arg.Category,
		arg.CreatedAt,
	)
	return err
}

const updateEmployeeForTenant = `
UPDATE employees
SET last_name = $3, first_name = $4, email = $5, password_hash = $6, age = $7, category = $8, updated_at = $9
WHERE id = $1 AND tenant_id = $2`

type UpdateEmployeeParams struct {
	ID           string
	TenantID     string
	LastName     string
	FirstName    string
	Email        string
	PasswordHash string
	Age          pgtype.Int4
	Category     pgtype.Text
	UpdatedAt    time.Time
}

func (q *Queries) UpdateEmployeeForTenant(ctx context.Context, arg UpdateEmployeeParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateEmployeeForTenant,
		arg.ID,
		arg.TenantID,
		arg.LastName,
		arg.FirstName,
		arg.Email,
		arg.PasswordHash,
		arg.Age,
		arg.Category,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteEmployeeForTenant = `DELETE FROM employees WHERE id = $1 AND tenant_id = $2`

func (q *Queries) DeleteEmployeeForTenant(ctx context.Context, id, tenantID string) (int64, error) {
	result, err := q.db.Exec(ctx, deleteEmployeeForTenant, id, tenantID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

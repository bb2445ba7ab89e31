package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const tenantColumns = `id, business_id, name, director_name, password_hash, created_at, updated_at`

// TenantRow is a row of the tenants table.
type TenantRow struct {
	ID           string
	BusinessID   string
	Name         string
	DirectorName pgtype.Text
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func scanTenant(row interface{ Scan(...interface{}) error }) (TenantRow, error) {
	var i TenantRow
	err := row.Scan(
		&i.ID,
		&i.BusinessID,
		&i.Name,
		&i.DirectorName,
		&i.PasswordHash,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getTenantByBusinessID = `SELECT ` + tenantColumns + ` FROM tenants WHERE business_id = $1`

func (q *Queries) GetTenantByBusinessID(ctx context.Context, businessID string) (TenantRow, error) {
	return scanTenant(q.db.QueryRow(ctx, getTenantByBusinessID, businessID))
}

const getTenantByID = `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`

func (q *Queries) GetTenantByID(ctx context.Context, id string) (TenantRow, error) {
	return scanTenant(q.db.QueryRow(ctx, getTenantByID, id))
}

const insertTenant = `
INSERT INTO tenants (id, business_id, name, director_name, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)`

type InsertTenantParams struct {
	ID           string
	BusinessID   string
	Name         string
	DirectorName pgtype.Text
	PasswordHash string
	CreatedAt    time.Time
}

func (q *Queries) InsertTenant(ctx context.Context, arg InsertTenantParams) error {
	_, err := q.db.Exec(ctx, insertTenant,
		arg.ID,
		arg.BusinessID,
		arg.Name,
		arg.DirectorName,
		arg.PasswordHash,
		arg.CreatedAt,
	)
	return err
}

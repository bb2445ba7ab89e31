package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"managerh.io/managerh/internal/domain"
	"managerh.io/managerh/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store implements repository.Store on a pgxpool.
type Store struct {
	pool    *pgxpool.Pool
	queries *Queries
	inTx    bool
}

// NewStore creates a Store on the shared pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, queries: New(pool)}
}

// Queries exposes the statement set for callers composing their own transactions.
func (s *Store) Queries() *Queries { return s.queries }

func (s *Store) Tenants() repository.Tenants     { return tenantRepo{q: s.queries} }
func (s *Store) Employees() repository.Employees { return employeeRepo{q: s.queries} }
func (s *Store) Computers() repository.Computers { return computerRepo{q: s.queries} }

// Ping checks the pool. Inside a transaction it is a no-op.
func (s *Store) Ping(ctx context.Context) error {
	if s.inTx {
		return nil
	}
	return s.pool.Ping(ctx)
}

// InTx runs fn in a single pgx transaction (READ COMMITTED with row locks).
func (s *Store) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&Store{pool: s.pool, queries: s.queries.WithTx(tx), inTx: true}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", mapErr(err))
	}
	return nil
}

// --- tenants ---

type tenantRepo struct{ q *Queries }

func (r tenantRepo) GetByBusinessID(ctx context.Context, businessID string) (*domain.Tenant, error) {
	row, err := r.q.GetTenantByBusinessID(ctx, businessID)
	if err != nil {
		return nil, mapErr(err)
	}
	return tenantFromRow(row), nil
}

func (r tenantRepo) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	row, err := r.q.GetTenantByID(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	return tenantFromRow(row), nil
}

func (r tenantRepo) Create(ctx context.Context, t *domain.Tenant) error {
	return mapErr(r.q.InsertTenant(ctx, InsertTenantParams{
		ID:           t.ID,
		BusinessID:   t.BusinessID,
		Name:         t.Name,
		DirectorName: textFromPtr(t.DirectorName),
		PasswordHash: t.PasswordHash,
		CreatedAt:    t.CreatedAt,
	}))
}

func tenantFromRow(row TenantRow) *domain.Tenant {
	return &domain.Tenant{
		ID:           row.ID,
		BusinessID:   row.BusinessID,
		Name:         row.Name,
		DirectorName: ptrFromText(row.DirectorName),
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

// --- employees ---

type employeeRepo struct{ q *Queries }

func (r employeeRepo) ListByTenant(ctx context.Context, tenantID string) ([]*domain.Employee, error) {
	rows, err := r.q.ListEmployeesByTenant(ctx, tenantID)
	if err != nil {
		return nil, mapErr(err)
	}
	out := make([]*domain.Employee, 0, len(rows))
	for _, row := range rows {
		e := employeeFromRow(row.EmployeeRow)
		if row.ComputerID.Valid {
			e.Computer = &domain.ComputerRef{
				ID:              row.ComputerID.String,
				HardwareAddress: row.ComputerHardwareAddress.String,
				Status:          domain.ComputerStatus(row.ComputerStatus.String),
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func (r employeeRepo) GetForTenant(ctx context.Context, id, tenantID string) (*domain.Employee, error) {
	row, err := r.q.GetEmployeeForTenant(ctx, id, tenantID)
	if err != nil {
		return nil, mapErr(err)
	}
	return employeeFromRow(row), nil
}

func (r employeeRepo) LockForTenant(ctx context.Context, id, tenantID string) (*domain.Employee, error) {
	row, err := r.q.LockEmployeeForTenant(ctx, id, tenantID)
	if err != nil {
		return nil, mapErr(err)
	}
	return employeeFromRow(row), nil
}

func (r employeeRepo) Create(ctx context.Context, e *domain.Employee) error {
	return mapErr(r.q.InsertEmployee(ctx, InsertEmployeeParams{
		ID:           e.ID,
		TenantID:     e.TenantID,
		LastName:     e.LastName,
		FirstName:    e.FirstName,
		Email:        e.Email,
		PasswordHash: e.PasswordHash,
		Age:          int4FromPtr(e.Age),
		Category:     textFromPtr(e.Category),
		CreatedAt:    e.CreatedAt,
	}))
}

func (r employeeRepo) UpdateForTenant(ctx context.Context, e *domain.Employee) error {
	return affected(r.q.UpdateEmployeeForTenant(ctx, UpdateEmployeeParams{
		ID:           e.ID,
		TenantID:     e.TenantID,
		LastName:     e.LastName,
		FirstName:    e.FirstName,
		Email:        e.Email,
		PasswordHash: e.PasswordHash,
		Age:          int4FromPtr(e.Age),
		Category:     textFromPtr(e.Category),
		UpdatedAt:    e.UpdatedAt,
	}))
}

func (r employeeRepo) DeleteForTenant(ctx context.Context, id, tenantID string) error {
	return affected(r.q.DeleteEmployeeForTenant(ctx, id, tenantID))
}

func employeeFromRow(row EmployeeRow) *domain.Employee {
	return &domain.Employee{
		ID:           row.ID,
		TenantID:     row.TenantID,
		LastName:     row.LastName,
		FirstName:    row.FirstName,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Age:          ptrFromInt4(row.Age),
		Category:     ptrFromText(row.Category),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

// --- computers ---

type computerRepo struct{ q *Queries }

func (r computerRepo) ListByTenant(ctx context.Context, tenantID string) ([]*domain.Computer, error) {
	rows, err := r.q.ListComputersByTenant(ctx, tenantID)
	if err != nil {
		return nil, mapErr(err)
	}
	out := make([]*domain.Computer, 0, len(rows))
	for _, row := range rows {
		c := computerFromRow(row.ComputerRow)
		if row.HolderEmployeeID.Valid && row.HolderLastName.Valid {
			c.Holder = &domain.EmployeeRef{
				ID:        row.HolderEmployeeID.String,
				LastName:  row.HolderLastName.String,
				FirstName: row.HolderFirstName.String,
				Email:     row.HolderEmail.String,
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func (r computerRepo) GetForTenant(ctx context.Context, id, tenantID string) (*domain.Computer, error) {
	row, err := r.q.GetComputerForTenant(ctx, id, tenantID)
	if err != nil {
		return nil, mapErr(err)
	}
	return computerFromRow(row), nil
}

func (r computerRepo) LockForTenant(ctx context.Context, id, tenantID string) (*domain.Computer, error) {
	row, err := r.q.LockComputerForTenant(ctx, id, tenantID)
	if err != nil {
		return nil, mapErr(err)
	}
	return computerFromRow(row), nil
}

func (r computerRepo) LockByHolder(ctx context.Context, employeeID, tenantID string) (*domain.Computer, error) {
	row, err := r.q.LockComputerByHolder(ctx, employeeID, tenantID)
	if err != nil {
		return nil, mapErr(err)
	}
	return computerFromRow(row), nil
}

func (r computerRepo) Create(ctx context.Context, c *domain.Computer) error {
	return mapErr(r.q.InsertComputer(ctx, InsertComputerParams{
		ID:               c.ID,
		TenantID:         c.TenantID,
		HardwareAddress:  c.HardwareAddress,
		Status:           string(c.Status),
		HolderEmployeeID: textFromPtr(c.HolderEmployeeID),
		CreatedAt:        c.CreatedAt,
	}))
}

func (r computerRepo) UpdateForTenant(ctx context.Context, c *domain.Computer) error {
	return affected(r.q.UpdateComputerForTenant(ctx, UpdateComputerParams{
		ID:               c.ID,
		TenantID:         c.TenantID,
		HardwareAddress:  c.HardwareAddress,
		Status:           string(c.Status),
		HolderEmployeeID: textFromPtr(c.HolderEmployeeID),
		UpdatedAt:        c.UpdatedAt,
	}))
}

func (r computerRepo) DeleteForTenant(ctx context.Context, id, tenantID string) error {
	return affected(r.q.DeleteComputerForTenant(ctx, id, tenantID))
}

func computerFromRow(row ComputerRow) *domain.Computer {
	return &domain.Computer{
		ID:               row.ID,
		TenantID:         row.TenantID,
		HardwareAddress:  row.HardwareAddress,
		Status:           domain.ComputerStatus(row.Status),
		HolderEmployeeID: ptrFromText(row.HolderEmployeeID),
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

// --- pgtype helpers ---

func textFromPtr(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func ptrFromText(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func int4FromPtr(i *int) pgtype.Int4 {
	if i == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(*i), Valid: true}
}

func ptrFromInt4(i pgtype.Int4) *int {
	if !i.Valid {
		return nil
	}
	v := int(i.Int32)
	return &v
}

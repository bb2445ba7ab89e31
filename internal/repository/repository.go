// Package repository defines the storage contracts of managerh.
//
// Every employee and computer operation takes the owning tenant ID and filters
// on it; an ID that exists under another tenant is reported as ErrNotFound.
// Implementations live in the postgres and memory subpackages.
package repository

import (
	"context"
	"errors"
	"fmt"

	"managerh.io/managerh/internal/domain"
	apperrors "managerh.io/managerh/internal/pkg/errors"
)

// ErrNotFound is returned when no row matches inside the caller's tenant.
var ErrNotFound = apperrors.ErrNotFound

// Constraint names shared by the PostgreSQL schema and the memory store.
const (
	ConstraintTenantBusinessID       = "tenants_business_id_key"
	ConstraintComputerHardwareAddr   = "computers_tenant_hardware_address_uniq"
	ConstraintComputerHolder         = "computers_tenant_holder_uniq"
	ConstraintComputerHolderFK       = "computers_holder_fk"
	ConstraintComputerAssignedHolder = "computers_assigned_has_holder"
)

// ConstraintError reports a write rejected by a storage constraint.
// Kind is ErrAlreadyExists for unique violations and ErrConflict otherwise.
type ConstraintError struct {
	Constraint string
	Kind       error
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("constraint %s: %v", e.Constraint, e.Err)
	}
	return "constraint " + e.Constraint + " violated"
}

// Unwrap exposes both the kind sentinel and the driver error.
func (e *ConstraintError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ViolatedConstraint returns the constraint name if err is a ConstraintError.
func ViolatedConstraint(err error) (string, bool) {
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce.Constraint, true
	}
	return "", false
}

// Tenants stores registered companies. Tenants are never deleted.
type Tenants interface {
	GetByBusinessID(ctx context.Context, businessID string) (*domain.Tenant, error)
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	Create(ctx context.Context, t *domain.Tenant) error
}

// Employees is the tenant-scoped employee repository.
type Employees interface {
	// ListByTenant returns employees ordered by last name then first name,
	// each with the computer it holds.
	ListByTenant(ctx context.Context, tenantID string) ([]*domain.Employee, error)
	GetForTenant(ctx context.Context, id, tenantID string) (*domain.Employee, error)
	// LockForTenant is GetForTenant holding a row lock until the transaction ends.
	LockForTenant(ctx context.Context, id, tenantID string) (*domain.Employee, error)
	Create(ctx context.Context, e *domain.Employee) error
	UpdateForTenant(ctx context.Context, e *domain.Employee) error
	DeleteForTenant(ctx context.Context, id, tenantID string) error
}

// Computers is the tenant-scoped computer repository.
type Computers interface {
	// ListByTenant returns computers ordered by hardware address, each with its holder.
	ListByTenant(ctx context.Context, tenantID string) ([]*domain.Computer, error)
	GetForTenant(ctx context.Context, id, tenantID string) (*domain.Computer, error)
	// LockForTenant is GetForTenant holding a row lock until the transaction ends.
	LockForTenant(ctx context.Context, id, tenantID string) (*domain.Computer, error)
	// LockByHolder returns the computer held by employeeID, locked, or ErrNotFound.
	LockByHolder(ctx context.Context, employeeID, tenantID string) (*domain.Computer, error)
	Create(ctx context.Context, c *domain.Computer) error
	UpdateForTenant(ctx context.Context, c *domain.Computer) error
	DeleteForTenant(ctx context.Context, id, tenantID string) error
}

// Store groups the repositories and runs units of work atomically.
type Store interface {
	Tenants() Tenants
	Employees() Employees
	Computers() Computers

	// InTx runs fn against a transactional view of the store. fn's error rolls
	// back every write made through the view. Nested calls join the outer transaction.
	InTx(ctx context.Context, fn func(tx Store) error) error

	Ping(ctx context.Context) error
}

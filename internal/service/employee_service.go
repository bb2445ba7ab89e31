// Package service provides the tenant-scoped business services of managerh.
//
// Services own validation and credential hashing and translate repository
// sentinels into AppErrors. Multi-row invariants (assignment, cascade) live in
// the usecase package, which composes repository calls inside one transaction.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"managerh.io/managerh/internal/domain"
	apperrors "managerh.io/managerh/internal/pkg/errors"
	"managerh.io/managerh/internal/pkg/logger"
	"managerh.io/managerh/internal/repository"
	"managerh.io/managerh/internal/validation"
)

// EmployeeService handles employee reads and writes inside one tenant.
type EmployeeService struct {
	store       repository.Store
	credentials *CredentialStore
	now         func() time.Time
}

// NewEmployeeService creates a new EmployeeService.
func NewEmployeeService(store repository.Store, credentials *CredentialStore) *EmployeeService {
	return &EmployeeService{
		store:       store,
		credentials: credentials,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// List returns the tenant's employees ordered by name, each with its computer.
func (s *EmployeeService) List(ctx context.Context, tenantID string) ([]*domain.Employee, error) {
	list, err := s.store.Employees().ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, StorageError(ctx, "list employees", err)
	}
	return list, nil
}

// Get returns one employee of the tenant.
func (s *EmployeeService) Get(ctx context.Context, tenantID, id string) (*domain.Employee, error) {
	e, err := s.store.Employees().GetForTenant(ctx, id, tenantID)
	if err != nil {
		return nil, employeeError(ctx, "get employee", id, err)
	}
	return e, nil
}

// Create validates, hashes the password and stores a new employee.
func (s *EmployeeService) Create(ctx context.Context, tenantID string, in domain.EmployeeInput) (*domain.Employee, error) {
	in = normalizeEmployee(in)
	if err := validation.Employee(in, true); err != nil {
		return nil, err
	}

	hash, err := s.credentials.Hash(ctx, in.Password)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate employee id: %w", err)
	}

	now := s.now()
	e := &domain.Employee{
		ID:           id.String(),
		TenantID:     tenantID,
		LastName:     in.LastName,
		FirstName:    in.FirstName,
		Email:        in.Email,
		PasswordHash: hash,
		Age:          in.Age,
		Category:     in.Category,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Employees().Create(ctx, e); err != nil {
		return nil, StorageError(ctx, "create employee", err)
	}

	logger.FromContext(ctx).Info("Employee created", zap.String("employee_id", e.ID))
	return e, nil
}

// Update replaces the mutable fields of an employee. An empty password keeps
// the current hash.
func (s *EmployeeService) Update(ctx context.Context, tenantID, id string, in domain.EmployeeInput) (*domain.Employee, error) {
	in = normalizeEmployee(in)
	if err := validation.Employee(in, false); err != nil {
		return nil, err
	}

	current, err := s.store.Employees().GetForTenant(ctx, id, tenantID)
	if err != nil {
		return nil, employeeError(ctx, "update employee", id, err)
	}

	hash := current.PasswordHash
	if in.Password != "" {
		if hash, err = s.credentials.Hash(ctx, in.Password); err != nil {
			return nil, err
		}
	}

	updated := *current
	updated.LastName = in.LastName
	updated.FirstName = in.FirstName
	updated.Email = in.Email
	updated.PasswordHash = hash
	updated.Age = in.Age
	updated.Category = in.Category
	updated.UpdatedAt = s.now()

	if err := s.store.Employees().UpdateForTenant(ctx, &updated); err != nil {
		return nil, employeeError(ctx, "update employee", id, err)
	}
	return &updated, nil
}

func normalizeEmployee(in domain.EmployeeInput) domain.EmployeeInput {
	in.LastName = strings.TrimSpace(in.LastName)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Category != nil {
		c := strings.TrimSpace(*in.Category)
		if c == "" {
			in.Category = nil
		} else {
			in.Category = &c
		}
	}
	return in
}

func employeeError(ctx context.Context, op, id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.ErrEntityNotFound(apperrors.KindEmployee, id)
	}
	return StorageError(ctx, op, err)
}

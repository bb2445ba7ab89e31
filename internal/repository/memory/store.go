// Package memory provides an in-process transactional Store.
//
// It enforces the same uniqueness and reference constraints as the PostgreSQL
// schema and is used by tests and by ephemeral runs (database.driver=memory).
// InTx serializes all transactions behind one mutex and commits a copied state.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"managerh.io/managerh/internal/domain"
	apperrors "managerh.io/managerh/internal/pkg/errors"
	"managerh.io/managerh/internal/repository"
)

var (
	_ repository.Store     = (*Store)(nil)
	_ repository.Tenants   = tenantRepo{}
	_ repository.Employees = employeeRepo{}
	_ repository.Computers = computerRepo{}
)

type state struct {
	tenants   map[string]domain.Tenant
	employees map[string]domain.Employee
	computers map[string]domain.Computer
}

func newState() *state {
	return &state{
		tenants:   map[string]domain.Tenant{},
		employees: map[string]domain.Employee{},
		computers: map[string]domain.Computer{},
	}
}

func (s *state) clone() *state {
	c := &state{
		tenants:   make(map[string]domain.Tenant, len(s.tenants)),
		employees: make(map[string]domain.Employee, len(s.employees)),
		computers: make(map[string]domain.Computer, len(s.computers)),
	}
	for k, v := range s.tenants {
		c.tenants[k] = v
	}
	for k, v := range s.employees {
		c.employees[k] = v
	}
	for k, v := range s.computers {
		c.computers[k] = v
	}
	return c
}

// runner executes fn with exclusive access to a state.
type runner func(fn func(*state) error) error

// Store is the in-memory repository.Store.
type Store struct {
	mu   sync.Mutex
	data *state
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{data: newState()}
}

func (s *Store) run(fn func(*state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// Tenants implements repository.Store.
func (s *Store) Tenants() repository.Tenants { return tenantRepo{run: s.run} }

// Employees implements repository.Store.
func (s *Store) Employees() repository.Employees { return employeeRepo{run: s.run} }

// Computers implements repository.Store.
func (s *Store) Computers() repository.Computers { return computerRepo{run: s.run} }

// Ping implements repository.Store.
func (s *Store) Ping(context.Context) error { return nil }

// InTx implements repository.Store.
func (s *Store) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.data.clone()
	if err := fn(&txStore{data: work}); err != nil {
		return err
	}
	s.data = work
	return nil
}

// txStore is the view handed to InTx callbacks. The parent lock is already held.
type txStore struct {
	data *state
}

func (t *txStore) run(fn func(*state) error) error { return fn(t.data) }

func (t *txStore) Tenants() repository.Tenants     { return tenantRepo{run: t.run} }
func (t *txStore) Employees() repository.Employees { return employeeRepo{run: t.run} }
func (t *txStore) Computers() repository.Computers { return computerRepo{run: t.run} }
func (t *txStore) Ping(context.Context) error      { return nil }

func (t *txStore) InTx(_ context.Context, fn func(tx repository.Store) error) error {
	return fn(t)
}

// --- tenants ---

type tenantRepo struct{ run runner }

func (r tenantRepo) GetByBusinessID(_ context.Context, businessID string) (*domain.Tenant, error) {
	var out *domain.Tenant
	err := r.run(func(st *state) error {
		for _, t := range st.tenants {
			if t.BusinessID == businessID {
				out = &t
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r tenantRepo) GetByID(_ context.Context, id string) (*domain.Tenant, error) {
	var out *domain.Tenant
	err := r.run(func(st *state) error {
		t, ok := st.tenants[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &t
		return nil
	})
	return out, err
}

func (r tenantRepo) Create(_ context.Context, t *domain.Tenant) error {
	return r.run(func(st *state) error {
		for _, existing := range st.tenants {
			if existing.BusinessID == t.BusinessID {
				return unique(repository.ConstraintTenantBusinessID)
			}
		}
		st.tenants[t.ID] = *t
		return nil
	})
}

// --- employees ---

type employeeRepo struct{ run runner }

func (r employeeRepo) ListByTenant(_ context.Context, tenantID string) ([]*domain.Employee, error) {
	var out []*domain.Employee
	err := r.run(func(st *state) error {
		held := make(map[string]domain.Computer)
		for _, c := range st.computers {
			if c.TenantID == tenantID && c.HolderEmployeeID != nil {
				held[*c.HolderEmployeeID] = c
			}
		}
		for _, e := range st.employees {
			if e.TenantID != tenantID {
				continue
			}
			if c, ok := held[e.ID]; ok {
				e.Computer = c.Ref()
			}
			out = append(out, &e)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r employeeRepo) GetForTenant(_ context.Context, id, tenantID string) (*domain.Employee, error) {
	var out *domain.Employee
	err := r.run(func(st *state) error {
		e, ok := st.employees[id]
		if !ok || e.TenantID != tenantID {
			return repository.ErrNotFound
		}
		out = &e
		return nil
	})
	return out, err
}

func (r employeeRepo) LockForTenant(ctx context.Context, id, tenantID string) (*domain.Employee, error) {
	return r.GetForTenant(ctx, id, tenantID)
}

func (r employeeRepo) Create(_ context.Context, e *domain.Employee) error {
	return r.run(func(st *state) error {
		if _, ok := st.tenants[e.TenantID]; !ok {
			return conflict("employees_tenant_id_fkey")
		}
		stored := *e
		stored.Computer = nil
		st.employees[e.ID] = stored
		return nil
	})
}

func (r employeeRepo) UpdateForTenant(_ context.Context, e *domain.Employee) error {
	return r.run(func(st *state) error {
		cur, ok := st.employees[e.ID]
		if !ok || cur.TenantID != e.TenantID {
			return repository.ErrNotFound
		}
		stored := *e
		stored.Computer = nil
		stored.CreatedAt = cur.CreatedAt
		st.employees[e.ID] = stored
		return nil
	})
}

func (r employeeRepo) DeleteForTenant(_ context.Context, id, tenantID string) error {
	return r.run(func(st *state) error {
		cur, ok := st.employees[id]
		if !ok || cur.TenantID != tenantID {
			return repository.ErrNotFound
		}
		// no ON DELETE action on the holder reference
		for _, c := range st.computers {
			if c.TenantID == tenantID && c.HeldBy(id) {
				return conflict(repository.ConstraintComputerHolderFK)
			}
		}
		delete(st.employees, id)
		return nil
	})
}

// --- computers ---

type computerRepo struct{ run runner }

func (r computerRepo) ListByTenant(_ context.Context, tenantID string) ([]*domain.Computer, error) {
	var out []*domain.Computer
	err := r.run(func(st *state) error {
		for _, c := range st.computers {
			if c.TenantID != tenantID {
				continue
			}
			if c.HolderEmployeeID != nil {
				if e, ok := st.employees[*c.HolderEmployeeID]; ok {
					c.Holder = e.Ref()
				}
			}
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].HardwareAddress < out[j].HardwareAddress
	})
	return out, err
}

func (r computerRepo) GetForTenant(_ context.Context, id, tenantID string) (*domain.Computer, error) {
	var out *domain.Computer
	err := r.run(func(st *state) error {
		c, ok := st.computers[id]
		if !ok || c.TenantID != tenantID {
			return repository.ErrNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r computerRepo) LockForTenant(ctx context.Context, id, tenantID string) (*domain.Computer, error) {
	return r.GetForTenant(ctx, id, tenantID)
}

func (r computerRepo) LockByHolder(_ context.Context, employeeID, tenantID string) (*domain.Computer, error) {
	var out *domain.Computer
	err := r.run(func(st *state) error {
		for _, c := range st.computers {
			if c.TenantID == tenantID && c.HeldBy(employeeID) {
				out = &c
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r computerRepo) Create(_ context.Context, c *domain.Computer) error {
	return r.run(func(st *state) error {
		if _, ok := st.tenants[c.TenantID]; !ok {
			return conflict("computers_tenant_id_fkey")
		}
		if err := checkComputer(st, c); err != nil {
			return err
		}
		stored := *c
		stored.Holder = nil
		st.computers[c.ID] = stored
		return nil
	})
}

func (r computerRepo) UpdateForTenant(_ context.Context, c *domain.Computer) error {
	return r.run(func(st *state) error {
		cur, ok := st.computers[c.ID]
		if !ok || cur.TenantID != c.TenantID {
			return repository.ErrNotFound
		}
		if err := checkComputer(st, c); err != nil {
			return err
		}
		stored := *c
		stored.Holder = nil
		stored.CreatedAt = cur.CreatedAt
		st.computers[c.ID] = stored
		return nil
	})
}

func (r computerRepo) DeleteForTenant(_ context.Context, id, tenantID string) error {
	return r.run(func(st *state) error {
		cur, ok := st.computers[id]
		if !ok || cur.TenantID != tenantID {
			return repository.ErrNotFound
		}
		delete(st.computers, id)
		return nil
	})
}

// checkComputer mirrors the table constraints on computers.
func checkComputer(st *state, c *domain.Computer) error {
	if c.Status == domain.ComputerStatusAssigned && c.HolderEmployeeID == nil {
		return conflict(repository.ConstraintComputerAssignedHolder)
	}
	if c.HolderEmployeeID != nil {
		e, ok := st.employees[*c.HolderEmployeeID]
		if !ok || e.TenantID != c.TenantID {
			return conflict(repository.ConstraintComputerHolderFK)
		}
	}
	for id, other := range st.computers {
		if id == c.ID || other.TenantID != c.TenantID {
			continue
		}
		if strings.EqualFold(other.HardwareAddress, c.HardwareAddress) {
			return unique(repository.ConstraintComputerHardwareAddr)
		}
		if c.HolderEmployeeID != nil && other.HeldBy(*c.HolderEmployeeID) {
			return unique(repository.ConstraintComputerHolder)
		}
	}
	return nil
}

func unique(constraint string) error {
	return &repository.ConstraintError{Constraint: constraint, Kind: apperrors.ErrAlreadyExists}
}

func conflict(constraint string) error {
	return &repository.ConstraintError{Constraint: constraint, Kind: apperrors.ErrConflict}
}

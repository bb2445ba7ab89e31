package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"managerh.io/managerh/internal/domain"
	apperrors "managerh.io/managerh/internal/pkg/errors"
	"managerh.io/managerh/internal/repository"
)

func strPtr(s string) *string { return &s }

func seed(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Tenants().Create(ctx, &domain.Tenant{ID: "t1", BusinessID: "11111111111111", Name: "Acme"}))
	require.NoError(t, s.Tenants().Create(ctx, &domain.Tenant{ID: "t2", BusinessID: "22222222222222", Name: "Globex"}))
	require.NoError(t, s.Employees().Create(ctx, &domain.Employee{ID: "e1", TenantID: "t1", LastName: "Zola", FirstName: "Emile"}))
	require.NoError(t, s.Employees().Create(ctx, &domain.Employee{ID: "e2", TenantID: "t1", LastName: "Adam", FirstName: "Paul"}))
	require.NoError(t, s.Employees().Create(ctx, &domain.Employee{ID: "e3", TenantID: "t2", LastName: "Other", FirstName: "Tenant"}))
	return s
}

func TestTenants_UniqueBusinessID(t *testing.T) {
	s := seed(t)
	err := s.Tenants().Create(context.Background(), &domain.Tenant{ID: "t3", BusinessID: "11111111111111"})

	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	name, _ := repository.ViolatedConstraint(err)
	assert.Equal(t, repository.ConstraintTenantBusinessID, name)
}

func TestEmployees_TenantIsolation(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	_, err := s.Employees().GetForTenant(ctx, "e3", "t1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = s.Employees().UpdateForTenant(ctx, &domain.Employee{ID: "e3", TenantID: "t1", LastName: "Hijack"})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = s.Employees().DeleteForTenant(ctx, "e3", "t1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	e, err := s.Employees().GetForTenant(ctx, "e3", "t2")
	require.NoError(t, err)
	assert.Equal(t, "Other", e.LastName)
}

func TestEmployees_ListOrderedWithComputer(t *testing.T) {
	s := seed(t)
	ctx := context.Background()
	require.NoError(t, s.Computers().Create(ctx, &domain.Computer{
		ID: "c1", TenantID: "t1", HardwareAddress: "AA:BB:CC:DD:EE:FF",
		Status: domain.ComputerStatusAssigned, HolderEmployeeID: strPtr("e1"),
	}))

	list, err := s.Employees().ListByTenant(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Adam", list[0].LastName)
	assert.Nil(t, list[0].Computer)
	assert.Equal(t, "Zola", list[1].LastName)
	require.NotNil(t, list[1].Computer)
	assert.Equal(t, "c1", list[1].Computer.ID)
}

func TestComputers_Constraints(t *testing.T) {
	s := seed(t)
	ctx := context.Background()
	require.NoError(t, s.Computers().Create(ctx, &domain.Computer{
		ID: "c1", TenantID: "t1", HardwareAddress: "AA:BB:CC:DD:EE:01",
		Status: domain.ComputerStatusAssigned, HolderEmployeeID: strPtr("e1"),
	}))

	tests := []struct {
		name       string
		computer   domain.Computer
		constraint string
		kind       error
	}{
		{
			name:       "holder already used",
			computer:   domain.Computer{ID: "c2", TenantID: "t1", HardwareAddress: "AA:BB:CC:DD:EE:02", Status: domain.ComputerStatusAssigned, HolderEmployeeID: strPtr("e1")},
			constraint: repository.ConstraintComputerHolder,
			kind:       apperrors.ErrAlreadyExists,
		},
		{
			name:       "duplicate address",
			computer:   domain.Computer{ID: "c2", TenantID: "t1", HardwareAddress: "AA:BB:CC:DD:EE:01", Status: domain.ComputerStatusAvailable},
			constraint: repository.ConstraintComputerHardwareAddr,
			kind:       apperrors.ErrAlreadyExists,
		},
		{
			name:       "holder in other tenant",
			computer:   domain.Computer{ID: "c2", TenantID: "t1", HardwareAddress: "AA:BB:CC:DD:EE:02", Status: domain.ComputerStatusAssigned, HolderEmployeeID: strPtr("e3")},
			constraint: repository.ConstraintComputerHolderFK,
			kind:       apperrors.ErrConflict,
		},
		{
			name:       "assigned without holder",
			computer:   domain.Computer{ID: "c2", TenantID: "t1", HardwareAddress: "AA:BB:CC:DD:EE:02", Status: domain.ComputerStatusAssigned},
			constraint: repository.ConstraintComputerAssignedHolder,
			kind:       apperrors.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.computer
			err := s.Computers().Create(ctx, &c)
			assert.ErrorIs(t, err, tt.kind)
			name, ok := repository.ViolatedConstraint(err)
			assert.True(t, ok)
			assert.Equal(t, tt.constraint, name)
		})
	}

	// same address in another tenant is fine
	assert.NoError(t, s.Computers().Create(ctx, &domain.Computer{
		ID: "c9", TenantID: "t2", HardwareAddress: "AA:BB:CC:DD:EE:01", Status: domain.ComputerStatusAvailable,
	}))
}

func TestEmployees_DeleteBlockedWhileHolding(t *testing.T) {
	s := seed(t)
	ctx := context.Background()
	require.NoError(t, s.Computers().Create(ctx, &domain.Computer{
		ID: "c1", TenantID: "t1", HardwareAddress: "AA:BB:CC:DD:EE:01",
		Status: domain.ComputerStatusAssigned, HolderEmployeeID: strPtr("e1"),
	}))

	err := s.Employees().DeleteForTenant(ctx, "e1", "t1")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestInTx_RollbackOnError(t *testing.T) {
	s := seed(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(tx repository.Store) error {
		require.NoError(t, tx.Employees().DeleteForTenant(ctx, "e2", "t1"))
		_, err := tx.Employees().GetForTenant(ctx, "e2", "t1")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Employees().GetForTenant(ctx, "e2", "t1")
	assert.NoError(t, err)
}

func TestInTx_CommitAndNested(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	err := s.InTx(ctx, func(tx repository.Store) error {
		return tx.InTx(ctx, func(inner repository.Store) error {
			return inner.Employees().DeleteForTenant(ctx, "e2", "t1")
		})
	})
	require.NoError(t, err)

	_, err = s.Employees().GetForTenant(ctx, "e2", "t1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestInTx_CancelledContext(t *testing.T) {
	s := seed(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.InTx(ctx, func(repository.Store) error { called = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

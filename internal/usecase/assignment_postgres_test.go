package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"managerh.io/managerh/internal/domain"
	apperrors "managerh.io/managerh/internal/pkg/errors"
	"managerh.io/managerh/internal/repository/postgres"
	"managerh.io/managerh/internal/testutil"
)

// newPostgresFixture runs the engine on a real PostgreSQL schema, so row locks
// and the (tenant, holder) unique index do the serializing.
func newPostgresFixture(t *testing.T, prefix string) *fixture {
	t.Helper()
	pool := testutil.OpenPGXPool(t, prefix, postgres.Schema)
	return newFixtureOn(t, postgres.NewStore(pool))
}

func TestPostgres_ReassignComputer_ConcurrentSameHolder(t *testing.T) {
	raceSameHolder(t, newPostgresFixture(t, "engine_same_holder"), 8)
}

func TestPostgres_DeleteEmployeeRacesReassign(t *testing.T) {
	raceDeleteAndReassign(t, newPostgresFixture(t, "engine_delete_race"), 10)
}

func TestDeleteEmployeeRacesReassign(t *testing.T) {
	raceDeleteAndReassign(t, newFixture(t), 10)
}

func TestPostgres_DeleteEmployee_ClearsHolder(t *testing.T) {
	f := newPostgresFixture(t, "engine_delete_cascade")
	ctx := context.Background()
	emp := f.employee(t, f.tenantA.ID, "Doe")
	pc := f.computer(t, f.tenantA.ID, "AA:BB:CC:DD:EE:FF")
	_, err := f.engine.ReassignComputer(ctx, f.tenantA.ID, pc.ID, &emp.ID)
	require.NoError(t, err)

	require.NoError(t, f.engine.DeleteEmployee(ctx, f.tenantA.ID, emp.ID))

	got, err := f.computers.Get(ctx, f.tenantA.ID, pc.ID)
	require.NoError(t, err)
	assert.Nil(t, got.HolderEmployeeID)
	assert.Equal(t, domain.ComputerStatusAvailable, got.Status)

	_, err = f.employees.Get(ctx, f.tenantA.ID, emp.ID)
	requireCode(t, err, apperrors.CodeEmployeeNotFound)
}

func TestPostgres_ReassignComputer_TenantIsolation(t *testing.T) {
	f := newPostgresFixture(t, "engine_isolation")
	ctx := context.Background()
	other := f.employee(t, f.tenantB.ID, "Other")
	pc := f.computer(t, f.tenantA.ID, "AA:BB:CC:DD:EE:FF")

	_, err := f.engine.ReassignComputer(ctx, f.tenantA.ID, pc.ID, &other.ID)
	requireCode(t, err, apperrors.CodeEmployeeNotFound)

	_, err = f.engine.ReassignComputer(ctx, f.tenantB.ID, pc.ID, nil)
	requireCode(t, err, apperrors.CodeComputerNotFound)
}

// raceDeleteAndReassign deletes an employee while another request assigns a
// computer to them. Either order is fine, but the computer must never end up
// held by a deleted employee.
func raceDeleteAndReassign(t *testing.T, f *fixture, rounds int) {
	t.Helper()
	ctx := context.Background()

	for i := 0; i < rounds; i++ {
		emp := f.employee(t, f.tenantA.ID, fmt.Sprintf("Race%02d", i))
		pc := f.computer(t, f.tenantA.ID, fmt.Sprintf("AA:BB:CC:DD:%02X:00", i))

		var (
			wg          sync.WaitGroup
			deleteErr   error
			reassignErr error
		)
		start := make(chan struct{})
		wg.Add(2)
		go func() { //nolint:naked-goroutine // test helper
			defer wg.Done()
			<-start
			deleteErr = f.engine.DeleteEmployee(ctx, f.tenantA.ID, emp.ID)
		}()
		go func() { //nolint:naked-goroutine // test helper
			defer wg.Done()
			<-start
			_, reassignErr = f.engine.ReassignComputer(ctx, f.tenantA.ID, pc.ID, &emp.ID)
		}()
		close(start)
		wg.Wait()

		require.NoError(t, deleteErr, "round %d", i)
		if reassignErr != nil {
			requireCode(t, reassignErr, apperrors.CodeEmployeeNotFound)
		}

		got, err := f.computers.Get(ctx, f.tenantA.ID, pc.ID)
		require.NoError(t, err)
		assert.Nil(t, got.HolderEmployeeID, "round %d", i)
		assert.Equal(t, domain.ComputerStatusAvailable, got.Status, "round %d", i)
	}
}

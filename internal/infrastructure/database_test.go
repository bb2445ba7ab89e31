package infrastructure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"managerh.io/managerh/internal/config"
	"managerh.io/managerh/internal/jobs"
	"managerh.io/managerh/internal/session"
	"managerh.io/managerh/internal/testutil"
)

func TestDatabaseClients_AutoMigrateAndRiver(t *testing.T) {
	dsn := testutil.IsolatedDSN(t, "infra_migrate")
	ctx := context.Background()

	clients, err := NewDatabaseClients(ctx, config.DatabaseConfig{URL: dsn, MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(clients.Close)

	require.NoError(t, clients.AutoMigrate(ctx))
	require.NoError(t, clients.AutoMigrate(ctx), "schema application is idempotent")

	var tz string
	require.NoError(t, clients.Pool.QueryRow(ctx, "SHOW timezone").Scan(&tz))
	assert.Equal(t, "UTC", tz)

	var tables int
	require.NoError(t, clients.Pool.QueryRow(ctx, `
		SELECT count(*) FROM information_schema.tables
		WHERE table_schema = current_schema()
		  AND table_name IN ('tenants', 'employees', 'computers', 'session_revocations', 'river_job')`).Scan(&tables))
	assert.Equal(t, 5, tables)

	err = clients.InitRiverClient(jobs.Workers(session.NewMemoryRevoker()), jobs.PeriodicJobs(), config.RiverConfig{MaxWorkers: 1})
	require.NoError(t, err)
	assert.NotNil(t, clients.RiverClient)
}

func TestNewDatabaseClients_BadDSN(t *testing.T) {
	_, err := NewDatabaseClients(context.Background(), config.DatabaseConfig{URL: "postgres://%zz"})
	require.Error(t, err)
}

package main

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"managerh.io/managerh/internal/app"
	"managerh.io/managerh/internal/config"
	"managerh.io/managerh/internal/domain"
	"managerh.io/managerh/internal/pkg/logger"
	"managerh.io/managerh/internal/validation"
)

func init() {
	_ = logger.Init("error", "json")
}

func TestParseFixture_DemoFile(t *testing.T) {
	raw, err := os.ReadFile("../../fixtures/demo.yaml")
	require.NoError(t, err)

	f, err := parseFixture(raw)
	require.NoError(t, err)
	require.Len(t, f.Tenants, 2)
	assert.Equal(t, "Acme Consulting", f.Tenants[0].Name)
	require.NotNil(t, f.Tenants[0].Employees[0].Age)
	assert.Equal(t, 34, *f.Tenants[0].Employees[0].Age)

	for _, tf := range f.Tenants {
		assert.Nil(t, validation.Password(tf.Password), "tenant %s password", tf.BusinessID)
		for _, ef := range tf.Employees {
			assert.Nil(t, validation.Password(ef.Password), "employee %s password", ef.Email)
		}
	}
}

func TestParseFixture_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"bad yaml", "tenants: [", "parse fixture"},
		{"unknown holder", `
tenants:
  - business_id: "12345678901234"
    computers:
      - hardware_address: "00:1A:2B:3C:4D:5E"
        holder: ghost
`, "not an employee key"},
		{"duplicate key", `
tenants:
  - business_id: "12345678901234"
    employees:
      - key: a
      - key: a
`, "duplicate employee key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFixture([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSeed_MemoryStore(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverMemory},
		Session:  config.SessionConfig{Lifetime: time.Hour, Store: config.SessionStoreMemory},
		Security: config.SecurityConfig{SessionSecret: strings.Repeat("s", 32), BcryptCost: 4},
		Worker:   config.WorkerConfig{GeneralPoolSize: 4, CryptoPoolSize: 2},
	}
	ctx := context.Background()
	application, err := app.Bootstrap(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(application.Shutdown)

	f, err := loadFixture("../../fixtures/demo.yaml")
	require.NoError(t, err)

	s := newSeeder(application)
	require.NoError(t, s.seed(ctx, f))
	// a second run skips registered tenants
	require.NoError(t, s.seed(ctx, f))

	tenant, err := application.Credentials.FindTenantByBusinessID(ctx, "12345678901234")
	require.NoError(t, err)

	computers, err := application.Computers.List(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, computers, 3)

	byAddr := map[string]*domain.Computer{}
	for _, c := range computers {
		byAddr[c.HardwareAddress] = c
	}
	assigned := byAddr["00:1A:2B:3C:4D:5E"]
	require.NotNil(t, assigned)
	assert.Equal(t, domain.ComputerStatusAssigned, assigned.Status)
	assert.NotNil(t, assigned.HolderEmployeeID)
	assert.Equal(t, domain.ComputerStatusAvailable, byAddr["00:1A:2B:3C:4D:5F"].Status)
	assert.Equal(t, domain.ComputerStatusBroken, byAddr["00:1A:2B:3C:4D:60"].Status)

	employees, err := application.Employees.List(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Len(t, employees, 2)
}

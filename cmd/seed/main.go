// Package main loads a YAML fixture of tenants, employees and computers
// through the same services the API uses, so every record passes validation
// and the assignment rules.
//
//	seed -f fixtures/demo.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"managerh.io/managerh/internal/app"
	"managerh.io/managerh/internal/config"
	"managerh.io/managerh/internal/domain"
	apperrors "managerh.io/managerh/internal/pkg/errors"
	"managerh.io/managerh/internal/pkg/logger"
	"managerh.io/managerh/internal/service"
)

// Fixture is the top-level seed document.
type Fixture struct {
	Tenants []TenantFixture `yaml:"tenants"`
}

// TenantFixture registers one tenant and its records.
type TenantFixture struct {
	BusinessID   string            `yaml:"business_id"`
	Password     string            `yaml:"password"`
	Name         string            `yaml:"name"`
	DirectorName *string           `yaml:"director_name"`
	Employees    []EmployeeFixture `yaml:"employees"`
	Computers    []ComputerFixture `yaml:"computers"`
}

// EmployeeFixture is an employee. Key names it for computer holders.
type EmployeeFixture struct {
	Key       string  `yaml:"key"`
	LastName  string  `yaml:"last_name"`
	FirstName string  `yaml:"first_name"`
	Email     string  `yaml:"email"`
	Password  string  `yaml:"password"`
	Age       *int    `yaml:"age"`
	Category  *string `yaml:"category"`
}

// ComputerFixture is a computer, optionally held by an employee key.
type ComputerFixture struct {
	HardwareAddress string `yaml:"hardware_address"`
	Status          string `yaml:"status"`
	Holder          string `yaml:"holder"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	path := flag.String("f", "fixtures/demo.yaml", "fixture file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	fixture, err := loadFixture(*path)
	if err != nil {
		return err
	}

	ctx := context.Background()
	application, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer application.Shutdown()

	logger.Info("Starting data seeding...", zap.String("fixture", *path))
	if err := newSeeder(application).seed(ctx, fixture); err != nil {
		return err
	}
	logger.Info("Data seeding completed successfully")
	return nil
}

func loadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return parseFixture(raw)
}

func parseFixture(raw []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	for i, t := range f.Tenants {
		keys := make(map[string]struct{}, len(t.Employees))
		for _, e := range t.Employees {
			if e.Key == "" {
				continue
			}
			if _, dup := keys[e.Key]; dup {
				return nil, fmt.Errorf("tenant %d (%s): duplicate employee key %q", i, t.BusinessID, e.Key)
			}
			keys[e.Key] = struct{}{}
		}
		for _, c := range t.Computers {
			if c.Holder == "" {
				continue
			}
			if _, ok := keys[c.Holder]; !ok {
				return nil, fmt.Errorf("tenant %d (%s): computer %s holder %q is not an employee key",
					i, t.BusinessID, c.HardwareAddress, c.Holder)
			}
		}
	}
	return &f, nil
}

type seeder struct {
	app *app.Application
}

func newSeeder(a *app.Application) *seeder { return &seeder{app: a} }

// seed is idempotent per tenant: an already registered business identifier
// is skipped along with its records.
func (s *seeder) seed(ctx context.Context, f *Fixture) error {
	for _, tf := range f.Tenants {
		tenant, err := s.app.Credentials.Register(ctx, service.RegisterInput{
			BusinessID:   tf.BusinessID,
			Password:     tf.Password,
			Name:         tf.Name,
			DirectorName: tf.DirectorName,
		})
		if apperrors.HasCode(err, apperrors.CodeBusinessIDRegistered) {
			logger.Info("Tenant already exists, skipping", zap.String("business_id", tf.BusinessID))
			continue
		}
		if err != nil {
			return fmt.Errorf("register tenant %s: %w", tf.BusinessID, err)
		}
		if err := s.seedTenant(ctx, tenant.ID, tf); err != nil {
			return fmt.Errorf("tenant %s: %w", tf.BusinessID, err)
		}
		logger.Info("Seeded tenant",
			zap.String("business_id", tf.BusinessID),
			zap.Int("employees", len(tf.Employees)),
			zap.Int("computers", len(tf.Computers)),
		)
	}
	return nil
}

func (s *seeder) seedTenant(ctx context.Context, tenantID string, tf TenantFixture) error {
	ids := make(map[string]string, len(tf.Employees))
	for _, ef := range tf.Employees {
		e, err := s.app.Employees.Create(ctx, tenantID, domain.EmployeeInput{
			LastName:  ef.LastName,
			FirstName: ef.FirstName,
			Email:     ef.Email,
			Password:  ef.Password,
			Age:       ef.Age,
			Category:  ef.Category,
		})
		if err != nil {
			return fmt.Errorf("create employee %s: %w", ef.Email, err)
		}
		if ef.Key != "" {
			ids[ef.Key] = e.ID
		}
	}

	for _, cf := range tf.Computers {
		c, err := s.app.Computers.Create(ctx, tenantID, cf.HardwareAddress)
		if err != nil {
			return fmt.Errorf("create computer %s: %w", cf.HardwareAddress, err)
		}
		upd := domain.ComputerUpdate{HardwareAddress: c.HardwareAddress}
		if cf.Holder != "" {
			upd.Holder = domain.AssignTo(ids[cf.Holder])
		}
		if cf.Status != "" {
			st := domain.ComputerStatus(cf.Status)
			upd.Status = &st
		}
		if !upd.Holder.Set && upd.Status == nil {
			continue
		}
		if _, err := s.app.Engine.UpdateComputer(ctx, tenantID, c.ID, upd); err != nil {
			return fmt.Errorf("update computer %s: %w", cf.HardwareAddress, err)
		}
	}
	return nil
}

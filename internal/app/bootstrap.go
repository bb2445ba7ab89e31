// Package app is the composition root. Bootstrap stays orchestration-only:
// every dependency is built here by hand and handed down explicitly.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"managerh.io/managerh/internal/api/handlers"
	"managerh.io/managerh/internal/config"
	"managerh.io/managerh/internal/domain"
	"managerh.io/managerh/internal/infrastructure"
	"managerh.io/managerh/internal/jobs"
	"managerh.io/managerh/internal/observability"
	"managerh.io/managerh/internal/pkg/logger"
	"managerh.io/managerh/internal/pkg/worker"
	"managerh.io/managerh/internal/repository"
	"managerh.io/managerh/internal/repository/memory"
	"managerh.io/managerh/internal/repository/postgres"
	"managerh.io/managerh/internal/service"
	"managerh.io/managerh/internal/session"
	"managerh.io/managerh/internal/usecase"
)

// Application holds composed application dependencies.
type Application struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *infrastructure.DatabaseClients
	Pools    *worker.Pools
	Store    repository.Store
	Sessions *session.Manager

	Credentials *service.CredentialStore
	Employees   *service.EmployeeService
	Computers   *service.ComputerService
	Engine      *usecase.AssignmentEngine

	redis *redis.Client
}

// Bootstrap initializes all dependencies using manual DI. On error every
// resource opened so far is released.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	a := &Application{Config: cfg}
	if err := a.build(ctx); err != nil {
		a.Shutdown()
		return nil, err
	}
	return a, nil
}

func (a *Application) build(ctx context.Context) error {
	cfg := a.Config

	pools, err := worker.NewPools(ctx, worker.PoolConfig{
		GeneralPoolSize: cfg.Worker.GeneralPoolSize,
		CryptoPoolSize:  cfg.Worker.CryptoPoolSize,
	})
	if err != nil {
		return fmt.Errorf("init worker pools: %w", err)
	}
	a.Pools = pools

	if err := a.openStore(ctx); err != nil {
		return err
	}

	dispatcher := domain.NewEventDispatcher()
	observability.RegisterEventHandlers(dispatcher)

	creds, err := service.NewCredentialStore(a.Store, pools.Crypto, cfg.Security.BcryptCost, dispatcher)
	if err != nil {
		return fmt.Errorf("init credential store: %w", err)
	}
	a.Credentials = creds

	revoker, purger, err := a.openRevoker(ctx)
	if err != nil {
		return err
	}
	sessions, err := session.NewManager(session.Config{
		SigningKey: []byte(cfg.Security.SessionSecret),
		Issuer:     cfg.Session.Issuer,
		Lifetime:   cfg.Session.Lifetime,
	}, revoker)
	if err != nil {
		return fmt.Errorf("init session manager: %w", err)
	}
	a.Sessions = sessions

	a.Employees = service.NewEmployeeService(a.Store, creds)
	a.Computers = service.NewComputerService(a.Store)
	a.Engine = usecase.NewAssignmentEngine(a.Store, dispatcher)

	if err := a.initRiver(purger); err != nil {
		return err
	}

	server := handlers.NewServer(handlers.ServerDeps{
		Store:         a.Store,
		Credentials:   creds,
		Sessions:      sessions,
		Employees:     a.Employees,
		Computers:     a.Computers,
		Dashboard:     service.NewDashboardService(a.Employees, a.Computers, pools.General),
		Engine:        a.Engine,
		SecureCookies: cfg.Session.Secure,
	})
	a.Router = newRouter(cfg, server, sessions)
	return nil
}

func (a *Application) openStore(ctx context.Context) error {
	cfg := a.Config
	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn("Using in-memory storage; all records are lost on restart")
		a.Store = memory.NewStore()
		return nil
	}

	db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	a.DB = db
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(ctx); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}
	a.Store = postgres.NewStore(db.Pool)
	return nil
}

// openRevoker picks where destroyed sessions are recorded. The purger is nil
// when the backend expires entries on its own.
func (a *Application) openRevoker(ctx context.Context) (session.Revoker, jobs.RevocationPurger, error) {
	cfg := a.Config
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		rdb, err := session.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("init redis: %w", err)
		}
		a.redis = rdb
		return session.NewRedisRevoker(rdb), nil, nil
	case config.SessionStorePostgres:
		if a.DB == nil {
			return nil, nil, fmt.Errorf("session store %q requires the postgres driver", cfg.Session.Store)
		}
		r := session.NewPostgresRevoker(postgres.New(a.DB.Pool))
		return r, r, nil
	default:
		r := session.NewMemoryRevoker()
		return r, r, nil
	}
}

func (a *Application) initRiver(purger jobs.RevocationPurger) error {
	cfg := a.Config
	if a.DB == nil || !cfg.River.Enabled {
		return nil
	}
	if purger == nil {
		logger.Info("River enabled but session store needs no cleanup; skipping periodic jobs",
			zap.String("session_store", cfg.Session.Store))
		return nil
	}
	if err := a.DB.InitRiverClient(jobs.Workers(purger), jobs.PeriodicJobs(), cfg.River); err != nil {
		return fmt.Errorf("init river: %w", err)
	}
	return nil
}

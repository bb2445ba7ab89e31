package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"managerh.io/managerh/internal/observability"
	"managerh.io/managerh/internal/pkg/logger"
	"managerh.io/managerh/internal/pkg/worker"
)

const poolMetricsInterval = 15 * time.Second

// Start starts background services: River workers and the pool sampler.
func (a *Application) Start(ctx context.Context) error {
	if a.DB != nil && a.DB.RiverClient != nil {
		if err := a.DB.RiverClient.Start(ctx); err != nil {
			return fmt.Errorf("start river client: %w", err)
		}
		logger.Info("River client started, jobs will now be consumed")
	}
	if a.Pools != nil {
		if err := a.Pools.SubmitDetached(worker.PoolGeneral, a.samplePools); err != nil {
			return fmt.Errorf("start pool sampler: %w", err)
		}
	}
	return nil
}

// samplePools publishes pool occupancy until the service context ends.
func (a *Application) samplePools(ctx context.Context) {
	ticker := time.NewTicker(poolMetricsInterval)
	defer ticker.Stop()
	for {
		for name, m := range a.Pools.Metrics() {
			observability.SetWorkerPoolRunning(name, m["running"])
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Shutdown gracefully shuts down all application components. It is safe on a
// partially built Application.
func (a *Application) Shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.DB != nil && a.DB.RiverClient != nil {
		if err := a.DB.RiverClient.Stop(shutdownCtx); err != nil {
			logger.Error("failed to stop river client", zap.Error(err))
		}
		logger.Info("River client stopped")
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Warn("redis close returned error", zap.Error(err))
		}
	}

	if a.Pools != nil {
		a.Pools.Shutdown()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

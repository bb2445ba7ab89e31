// Package jobs defines River job types for background maintenance.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"managerh.io/managerh/internal/pkg/logger"
)

// SessionRevocationCleanupInterval is how often expired revocations are purged.
const SessionRevocationCleanupInterval = 24 * time.Hour

// RevocationPurger deletes revocation records whose session has already expired.
type RevocationPurger interface {
	Purge(ctx context.Context) (int64, error)
}

// SessionRevocationCleanupArgs is a periodic job that trims the session
// revocation table.
type SessionRevocationCleanupArgs struct{}

// Kind returns the job kind identifier.
func (SessionRevocationCleanupArgs) Kind() string { return "session_revocation_cleanup" }

// InsertOpts ensures at most one cleanup job is enqueued per interval.
func (SessionRevocationCleanupArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       river.QueueDefault,
		MaxAttempts: 1,
		UniqueOpts: river.UniqueOpts{
			ByPeriod: SessionRevocationCleanupInterval,
			ByQueue:  true,
			ByArgs:   true,
		},
	}
}

// SessionRevocationCleanupWorker purges expired revocations.
type SessionRevocationCleanupWorker struct {
	river.WorkerDefaults[SessionRevocationCleanupArgs]
	purger RevocationPurger
}

// NewSessionRevocationCleanupWorker creates the cleanup worker.
func NewSessionRevocationCleanupWorker(purger RevocationPurger) *SessionRevocationCleanupWorker {
	return &SessionRevocationCleanupWorker{purger: purger}
}

// Work implements river.Worker.
func (w *SessionRevocationCleanupWorker) Work(ctx context.Context, _ *river.Job[SessionRevocationCleanupArgs]) error {
	if w == nil || w.purger == nil {
		return fmt.Errorf("session revocation cleanup worker is not initialized")
	}

	deleted, err := w.purger.Purge(ctx)
	if err != nil {
		return fmt.Errorf("purge expired session revocations: %w", err)
	}

	logger.Info("session revocation cleanup completed", zap.Int64("deleted_rows", deleted))
	return nil
}

// PeriodicJobs returns the periodic jobs to register on the River client.
func PeriodicJobs() []*river.PeriodicJob {
	return []*river.PeriodicJob{
		river.NewPeriodicJob(
			river.PeriodicInterval(SessionRevocationCleanupInterval),
			func() (river.JobArgs, *river.InsertOpts) {
				return SessionRevocationCleanupArgs{}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		),
	}
}

// Workers builds the worker registry for the River client.
func Workers(purger RevocationPurger) *river.Workers {
	workers := river.NewWorkers()
	river.AddWorker(workers, NewSessionRevocationCleanupWorker(purger))
	return workers
}

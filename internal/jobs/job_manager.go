package jobs

import (
	"fmt"
	"time"

	"fulfillment/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

// Schedules holds the cron expressions (seconds field included) of the jobs.
type Schedules struct {
	Reconcile string
	Expire    string
	// BroadcastTTL of zero disables the expiry job.
	BroadcastTTL time.Duration
}

type job interface {
	Start() error
	Stop()
}

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	jobs   []job
	logger zerolog.Logger
}

func NewJobManager(
	reconcile reconcileHandler,
	expire expireHandler,
	schedules Schedules,
	jobMetrics *metrics.CronJobMetrics,
	logger zerolog.Logger,
) *JobManager {
	jm := &JobManager{
		jobs:   []job{NewReconcileAssignmentsJob(reconcile, schedules.Reconcile, jobMetrics, logger)},
		logger: logger,
	}
	if schedules.BroadcastTTL > 0 {
		jm.jobs = append(jm.jobs, NewExpireBroadcastsJob(expire, schedules.Expire, schedules.BroadcastTTL, jobMetrics, logger))
	} else {
		logger.Info().Msg("broadcast expiry disabled")
	}
	return jm
}

// StartAll starts every job. When one fails the already started ones are stopped.
func (jm *JobManager) StartAll() error {
	for i, j := range jm.jobs {
		if err := j.Start(); err != nil {
			for _, started := range jm.jobs[:i] {
				started.Stop()
			}
			return fmt.Errorf("failed to start job %d: %w", i, err)
		}
	}
	return nil
}

func (jm *JobManager) StopAll() {
	for _, j := range jm.jobs {
		j.Stop()
	}
}

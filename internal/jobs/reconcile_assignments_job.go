package jobs

import (
	"context"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const reconcileJobName = "reconcile_assignments"

type reconcileHandler interface {
	Handle(ctx context.Context, cmd commands.ReconcileAssignmentsCommand) (int64, error)
}

// ReconcileAssignmentsJob periodically removes assignment records whose sub-order
// was delivered or whose order is gone.
type ReconcileAssignmentsJob struct {
	handler  reconcileHandler
	schedule string
	cron     *cron.Cron
	metrics  *metrics.CronJobMetrics
	logger   zerolog.Logger
}

func NewReconcileAssignmentsJob(
	handler reconcileHandler,
	schedule string,
	jobMetrics *metrics.CronJobMetrics,
	logger zerolog.Logger,
) *ReconcileAssignmentsJob {
	return &ReconcileAssignmentsJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		metrics:  jobMetrics,
		logger:   logger.With().Str("component", "reconcile_assignments_job").Logger(),
	}
}

func (j *ReconcileAssignmentsJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info().Str("schedule", j.schedule).Msg("reconcile job started")
	return nil
}

// Stop waits for a running sweep to finish.
func (j *ReconcileAssignmentsJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info().Msg("reconcile job stopped")
}

func (j *ReconcileAssignmentsJob) run(ctx context.Context) {
	started := time.Now()
	defer func() {
		j.metrics.ObserveDuration(reconcileJobName, time.Since(started))
	}()

	removed, err := j.handler.Handle(ctx, commands.NewReconcileAssignmentsCommand())
	if err != nil {
		j.metrics.IncFailure(reconcileJobName)
		j.logger.Error().Err(err).Msg("reconcile job failed")
		return
	}

	j.metrics.IncSuccess(reconcileJobName)
	if removed > 0 {
		j.logger.Info().Int64("removed", removed).Msg("settled assignments removed")
	}
}

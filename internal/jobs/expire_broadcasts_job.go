package jobs

import (
	"context"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const expireJobName = "expire_broadcasts"

type expireHandler interface {
	Handle(ctx context.Context, cmd commands.ExpireBroadcastsCommand) (int, error)
}

// ExpireBroadcastsJob withdraws offers nobody accepted within ttl.
type ExpireBroadcastsJob struct {
	handler  expireHandler
	schedule string
	ttl      time.Duration
	now      func() time.Time
	cron     *cron.Cron
	metrics  *metrics.CronJobMetrics
	logger   zerolog.Logger
}

func NewExpireBroadcastsJob(
	handler expireHandler,
	schedule string,
	ttl time.Duration,
	jobMetrics *metrics.CronJobMetrics,
	logger zerolog.Logger,
) *ExpireBroadcastsJob {
	return &ExpireBroadcastsJob{
		handler:  handler,
		schedule: schedule,
		ttl:      ttl,
		now:      time.Now,
		cron:     cron.New(cron.WithSeconds()),
		metrics:  jobMetrics,
		logger:   logger.With().Str("component", "expire_broadcasts_job").Logger(),
	}
}

func (j *ExpireBroadcastsJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info().
		Str("schedule", j.schedule).
		Dur("ttl", j.ttl).
		Msg("broadcast expiry job started")
	return nil
}

func (j *ExpireBroadcastsJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info().Msg("broadcast expiry job stopped")
}

func (j *ExpireBroadcastsJob) run(ctx context.Context) {
	started := time.Now()
	defer func() {
		j.metrics.ObserveDuration(expireJobName, time.Since(started))
	}()

	cmd, err := commands.NewExpireBroadcastsCommand(j.now().Add(-j.ttl), commands.DefaultExpireBatch)
	if err != nil {
		j.metrics.IncFailure(expireJobName)
		j.logger.Error().Err(err).Msg("broadcast expiry job misconfigured")
		return
	}

	expired, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.metrics.IncFailure(expireJobName)
		j.logger.Error().Err(err).Msg("broadcast expiry job failed")
		return
	}

	j.metrics.IncSuccess(expireJobName)
	if expired > 0 {
		j.logger.Info().Int("expired", expired).Msg("stale broadcasts withdrawn")
	}
}

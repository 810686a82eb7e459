package commands

import (
	"context"

	"fulfillment/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

type ReconcileAssignmentsCommandHandler struct {
	uowFactory AssignmentUoWFactory
	metrics    *metrics.BrokerMetrics
	logger     zerolog.Logger
}

func NewReconcileAssignmentsCommandHandler(
	uowFactory AssignmentUoWFactory,
	brokerMetrics *metrics.BrokerMetrics,
	logger zerolog.Logger,
) ReconcileAssignmentsCommandHandler {
	return ReconcileAssignmentsCommandHandler{
		uowFactory: uowFactory,
		metrics:    brokerMetrics,
		logger:     logger.With().Str("component", "reconcile_assignments").Logger(),
	}
}

// Handle returns the number of removed records. It is idempotent.
func (h ReconcileAssignmentsCommandHandler) Handle(ctx context.Context, cmd ReconcileAssignmentsCommand) (int64, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	removed, err := uow.AssignmentRepository().DeleteSettled(ctx)
	if err != nil {
		return 0, err
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	if removed > 0 {
		h.metrics.Reconciled(removed)
		h.logger.Info().Int64("removed", removed).Msg("stale assignments removed")
	}
	return removed, nil
}

// Reconcile runs one sweep. It lets read paths clean up before they answer.
func (h ReconcileAssignmentsCommandHandler) Reconcile(ctx context.Context) error {
	_, err := h.Handle(ctx, NewReconcileAssignmentsCommand())
	return err
}

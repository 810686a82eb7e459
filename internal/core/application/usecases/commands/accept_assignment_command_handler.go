package commands

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/assignment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

var (
	// ErrAlreadyBusy is returned when the worker already holds an active assignment.
	ErrAlreadyBusy = errors.New("delivery worker already holds an active assignment")

	// ErrNoLongerAvailable is returned when another worker won the claim, the broadcast
	// expired or the worker was never offered the job.
	ErrNoLongerAvailable = errors.New("assignment is no longer available")

	// ErrOrderMissing is returned when the claimed job points at an order or sub-order
	// that no longer exists. The claim is rolled back.
	ErrOrderMissing = errors.New("order for this assignment no longer exists")
)

type AcceptAssignmentCommandHandler struct {
	uowFactory UoWFactory
	pusher     pusher
	metrics    *metrics.BrokerMetrics
	logger     zerolog.Logger
}

func NewAcceptAssignmentCommandHandler(
	uowFactory UoWFactory,
	notifier ports.Notifier,
	brokerMetrics *metrics.BrokerMetrics,
	logger zerolog.Logger,
) AcceptAssignmentCommandHandler {
	log := logger.With().Str("component", "accept_assignment").Logger()
	return AcceptAssignmentCommandHandler{
		uowFactory: uowFactory,
		pusher:     pusher{notifier: notifier, metrics: brokerMetrics, logger: log},
		metrics:    brokerMetrics,
		logger:     log,
	}
}

// Handle claims the job for the worker. Of any number of concurrent accepts for the
// same assignment exactly one succeeds; the others get ErrNoLongerAvailable.
func (h AcceptAssignmentCommandHandler) Handle(ctx context.Context, cmd AcceptAssignmentCommand) (*assignment.Assignment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	assignments := uow.AssignmentRepository()

	busy, err := assignments.IsBusy(ctx, cmd.WorkerID())
	if err != nil {
		return nil, err
	}
	if busy {
		h.metrics.Claim(metrics.ClaimBusy)
		return nil, ErrAlreadyBusy
	}

	won, err := assignments.Claim(ctx, cmd.AssignmentID(), cmd.WorkerID(), cmd.At())
	if err != nil {
		if errors.Is(err, assignment.ErrActiveAssignmentConflict) {
			h.metrics.Claim(metrics.ClaimBusy)
			return nil, ErrAlreadyBusy
		}
		return nil, err
	}
	if !won {
		h.metrics.Claim(metrics.ClaimLost)
		return nil, ErrNoLongerAvailable
	}

	claimed, err := assignments.Get(ctx, cmd.AssignmentID())
	if err != nil {
		return nil, err
	}

	aggregate, err := uow.OrderRepository().Get(ctx, claimed.OrderID())
	if err != nil {
		return nil, h.orderMissing(claimed, err)
	}
	so, err := aggregate.SubOrder(claimed.SubOrderID())
	if err != nil {
		return nil, h.orderMissing(claimed, err)
	}

	if err = so.AttachWorker(cmd.WorkerID(), claimed.ID()); err != nil {
		h.metrics.Claim(metrics.ClaimRolledBack)
		return nil, err
	}
	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	h.metrics.Claim(metrics.ClaimWon)

	h.pusher.push(ctx, UserChannel(aggregate.Customer().ID()), EventAssignmentAccepted, AssignmentAcceptedPayload{
		AssignmentID: claimed.ID().String(),
		OrderID:      aggregate.ID().String(),
		SubOrderID:   so.ID().String(),
		WorkerID:     cmd.WorkerID().String(),
		AcceptedAt:   cmd.At(),
	})

	return claimed, nil
}

func (h AcceptAssignmentCommandHandler) orderMissing(claimed *assignment.Assignment, err error) error {
	var notFound *errs.ObjectNotFoundError
	if !errors.As(err, &notFound) {
		return err
	}
	h.metrics.Claim(metrics.ClaimRolledBack)
	h.logger.Warn().
		Str("assignment_id", claimed.ID().String()).
		Str("order_id", claimed.OrderID().String()).
		Msg("claimed assignment points at a missing order")
	return ErrOrderMissing
}

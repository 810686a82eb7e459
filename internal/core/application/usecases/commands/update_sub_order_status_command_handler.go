package commands

import (
	"context"
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

// UpdateSubOrderStatusResult reports the new status and the broadcast outcome.
// NoWorkersAvailable is set when the sub-order went out for delivery but nobody
// could be offered the job; the owner may broadcast again later.
type UpdateSubOrderStatusResult struct {
	Status             order.Status
	Candidates         int
	NoWorkersAvailable bool
}

type UpdateSubOrderStatusCommandHandler struct {
	uowFactory UoWFactory
	broker     *AssignmentBroker
	payments   ports.PaymentGateway
	pusher     pusher
	events     orderEvents
	logger     zerolog.Logger
}

func NewUpdateSubOrderStatusCommandHandler(
	uowFactory UoWFactory,
	broker *AssignmentBroker,
	payments ports.PaymentGateway,
	notifier ports.Notifier,
	publisher ports.OrderEventPublisher,
	brokerMetrics *metrics.BrokerMetrics,
	logger zerolog.Logger,
) UpdateSubOrderStatusCommandHandler {
	log := logger.With().Str("component", "update_sub_order_status").Logger()
	return UpdateSubOrderStatusCommandHandler{
		uowFactory: uowFactory,
		broker:     broker,
		payments:   payments,
		pusher:     pusher{notifier: notifier, metrics: brokerMetrics, logger: log},
		events:     orderEvents{publisher: publisher, logger: log},
		logger:     log,
	}
}

// Handle applies the transition and its effect in one transaction: moving out for
// delivery broadcasts the sub-order, cancelling closes its assignment. Pushes,
// integration events and refunds happen after commit.
func (h UpdateSubOrderStatusCommandHandler) Handle(
	ctx context.Context,
	cmd UpdateSubOrderStatusCommand,
) (UpdateSubOrderStatusResult, error) {
	if err := cmd.Validate(); err != nil {
		return UpdateSubOrderStatusResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return UpdateSubOrderStatusResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return UpdateSubOrderStatusResult{}, err
	}
	so, err := aggregate.SubOrder(cmd.SubOrderID())
	if err != nil {
		return UpdateSubOrderStatusResult{}, err
	}
	previousWorker := so.AssignedWorker()

	transition, err := so.ChangeStatus(cmd.Actor(), cmd.Status(), cmd.At())
	if err != nil {
		return UpdateSubOrderStatusResult{}, err
	}

	result := UpdateSubOrderStatusResult{Status: transition.To}
	var broadcast Broadcast

	switch transition.Effect {
	case order.EffectBroadcast:
		broadcast, err = h.broker.Broadcast(ctx, uow.AssignmentRepository(), aggregate, so, cmd.At())
		switch {
		case errors.Is(err, services.ErrNoCandidates):
			result.NoWorkersAvailable = true
		case err != nil:
			return UpdateSubOrderStatusResult{}, err
		default:
			result.Candidates = len(broadcast.Candidates)
		}
	case order.EffectRelease:
		if transition.Released != nil {
			if err = uow.AssignmentRepository().Complete(ctx, *transition.Released); err != nil {
				return UpdateSubOrderStatusResult{}, err
			}
		}
	case order.EffectNone:
	}

	refund := aggregate.NeedsRefund()
	if refund {
		aggregate.MarkRefundRequested()
	}

	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return UpdateSubOrderStatusResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return UpdateSubOrderStatusResult{}, err
	}

	h.broker.Announce(ctx, broadcast)

	payload := newStatusUpdatedPayload(aggregate, so, cmd.At())
	h.pusher.push(ctx, UserChannel(aggregate.Customer().ID()), EventUpdateStatus, payload)
	if transition.Released != nil && previousWorker != nil {
		h.pusher.push(ctx, UserChannel(*previousWorker), EventUpdateStatus, payload)
	}
	h.events.statusChanged(ctx, newStatusChangedEvent(aggregate, so, cmd.Actor().Role(), cmd.At()))

	if refund {
		h.requestRefund(ctx, aggregate.ID(), aggregate.Payment().TransactionID)
	}

	return result, nil
}

// requestRefund returns the captured payment and stores the provider's refund reference
// on the order. Failures are logged; the order keeps its refund_requested flag.
func (h UpdateSubOrderStatusCommandHandler) requestRefund(ctx context.Context, orderID kernel.UUID, transactionID string) {
	if h.payments == nil {
		return
	}
	log := h.logger.With().Str("order_id", orderID.String()).Str("transaction_id", transactionID).Logger()

	ref, err := h.payments.Refund(ctx, transactionID)
	if err != nil {
		log.Error().Err(fmt.Errorf("refund: %w", err)).Msg("refund request failed")
		return
	}
	if err = h.storeRefund(ctx, orderID, ref); err != nil {
		log.Error().Err(fmt.Errorf("store refund: %w", err)).Str("refund_ref", ref).Msg("refund accepted but not recorded")
		return
	}
	log.Info().Str("refund_ref", ref).Msg("refund requested")
}

func (h UpdateSubOrderStatusCommandHandler) storeRefund(ctx context.Context, orderID kernel.UUID, ref string) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, orderID)
	if err != nil {
		return err
	}
	if err = aggregate.RecordRefund(ref); err != nil {
		return err
	}
	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

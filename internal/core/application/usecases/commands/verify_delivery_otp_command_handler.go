package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

type VerifyDeliveryOtpCommandHandler struct {
	uowFactory UoWFactory
	pusher     pusher
	events     orderEvents
	metrics    *metrics.BrokerMetrics
}

func NewVerifyDeliveryOtpCommandHandler(
	uowFactory UoWFactory,
	notifier ports.Notifier,
	publisher ports.OrderEventPublisher,
	brokerMetrics *metrics.BrokerMetrics,
	logger zerolog.Logger,
) VerifyDeliveryOtpCommandHandler {
	log := logger.With().Str("component", "verify_delivery_otp").Logger()
	return VerifyDeliveryOtpCommandHandler{
		uowFactory: uowFactory,
		pusher:     pusher{notifier: notifier, metrics: brokerMetrics, logger: log},
		events:     orderEvents{publisher: publisher, logger: log},
		metrics:    brokerMetrics,
	}
}

// Handle marks the sub-order delivered and removes the worker's assignment, which
// frees the worker for new jobs.
func (h VerifyDeliveryOtpCommandHandler) Handle(ctx context.Context, cmd VerifyDeliveryOtpCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	so, err := aggregate.SubOrder(cmd.SubOrderID())
	if err != nil {
		return err
	}

	if err = so.ConfirmDelivery(cmd.Worker(), cmd.Code(), cmd.At()); err != nil {
		h.metrics.Otp("verify", false)
		return err
	}

	if _, err = uow.AssignmentRepository().DeleteHandoff(ctx, so.ID(), aggregate.ID(), cmd.Worker().ID()); err != nil {
		return err
	}
	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}
	h.metrics.Otp("verify", true)

	h.pusher.push(ctx, UserChannel(aggregate.Customer().ID()), EventUpdateStatus,
		newStatusUpdatedPayload(aggregate, so, cmd.At()))
	h.events.statusChanged(ctx, newStatusChangedEvent(aggregate, so, kernel.RoleSystem, cmd.At()))

	return nil
}

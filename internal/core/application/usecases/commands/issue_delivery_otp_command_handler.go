package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

// ErrDeliveryDispatchFailed is returned when the delivery code could not be handed to the
// mail server. The code is revoked and the worker may ask for a new one.
var ErrDeliveryDispatchFailed = errors.New("delivery code could not be sent")

type IssueDeliveryOtpResult struct {
	ExpiresAt time.Time
}

type IssueDeliveryOtpCommandHandler struct {
	uowFactory OrderUoWFactory
	sender     ports.OtpSender
	generate   func() (string, error)
	metrics    *metrics.BrokerMetrics
	logger     zerolog.Logger
}

func NewIssueDeliveryOtpCommandHandler(
	uowFactory OrderUoWFactory,
	sender ports.OtpSender,
	brokerMetrics *metrics.BrokerMetrics,
	logger zerolog.Logger,
) IssueDeliveryOtpCommandHandler {
	return IssueDeliveryOtpCommandHandler{
		uowFactory: uowFactory,
		sender:     sender,
		generate:   order.GenerateDeliveryOtp,
		metrics:    brokerMetrics,
		logger:     logger.With().Str("component", "issue_delivery_otp").Logger(),
	}
}

// Handle stores a fresh code, commits it and then emails it. The mail server is never
// contacted inside the transaction. If the send fails the code is revoked in a follow-up
// write; until then it exists only in the database and nobody has seen it.
func (h IssueDeliveryOtpCommandHandler) Handle(
	ctx context.Context,
	cmd IssueDeliveryOtpCommand,
) (IssueDeliveryOtpResult, error) {
	if err := cmd.Validate(); err != nil {
		return IssueDeliveryOtpResult{}, err
	}

	code, err := h.generate()
	if err != nil {
		return IssueDeliveryOtpResult{}, err
	}

	email, expiresAt, err := h.store(ctx, cmd, code)
	if err != nil {
		return IssueDeliveryOtpResult{}, err
	}

	if err = h.sender.SendDeliveryOtp(ctx, email, code); err != nil {
		h.metrics.Otp("issue", false)
		log := h.logger.With().Str("sub_order_id", cmd.SubOrderID().String()).Logger()
		log.Warn().Err(err).Msg("delivery code not sent")
		if revokeErr := h.revoke(context.WithoutCancel(ctx), cmd, code); revokeErr != nil {
			log.Error().Err(revokeErr).Msg("unsent delivery code could not be revoked")
		}
		return IssueDeliveryOtpResult{}, fmt.Errorf("%w: %w", ErrDeliveryDispatchFailed, err)
	}
	h.metrics.Otp("issue", true)

	return IssueDeliveryOtpResult{ExpiresAt: expiresAt}, nil
}

func (h IssueDeliveryOtpCommandHandler) store(
	ctx context.Context,
	cmd IssueDeliveryOtpCommand,
	code string,
) (string, time.Time, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", time.Time{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return "", time.Time{}, err
	}
	so, err := aggregate.SubOrder(cmd.SubOrderID())
	if err != nil {
		return "", time.Time{}, err
	}

	if err = so.IssueOtp(cmd.Worker(), code, cmd.At()); err != nil {
		return "", time.Time{}, err
	}
	email, err := aggregate.CustomerEmail()
	if err != nil {
		return "", time.Time{}, err
	}

	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return "", time.Time{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return "", time.Time{}, err
	}
	return email, *so.OtpExpiresAt(), nil
}

// revoke clears code unless a newer one has replaced it in the meantime.
func (h IssueDeliveryOtpCommandHandler) revoke(ctx context.Context, cmd IssueDeliveryOtpCommand, code string) error {
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
	if !so.RevokeOtp(code) {
		return nil
	}

	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

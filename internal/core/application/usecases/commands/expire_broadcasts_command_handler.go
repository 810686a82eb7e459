package commands

import (
	"context"
	"errors"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

type ExpireBroadcastsCommandHandler struct {
	uowFactory UoWFactory
	pusher     pusher
	metrics    *metrics.BrokerMetrics
	logger     zerolog.Logger
}

func NewExpireBroadcastsCommandHandler(
	uowFactory UoWFactory,
	notifier ports.Notifier,
	brokerMetrics *metrics.BrokerMetrics,
	logger zerolog.Logger,
) ExpireBroadcastsCommandHandler {
	log := logger.With().Str("component", "expire_broadcasts").Logger()
	return ExpireBroadcastsCommandHandler{
		uowFactory: uowFactory,
		pusher:     pusher{notifier: notifier, metrics: brokerMetrics, logger: log},
		metrics:    brokerMetrics,
		logger:     log,
	}
}

// Handle deletes stale unclaimed broadcasts and detaches them from their sub-orders
// so owners can broadcast again. A record claimed while the sweep runs is kept.
func (h ExpireBroadcastsCommandHandler) Handle(ctx context.Context, cmd ExpireBroadcastsCommand) (int, error) {
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

	stale, err := uow.AssignmentRepository().FindBroadcastedBefore(ctx, cmd.Cutoff(), cmd.Limit())
	if err != nil {
		return 0, err
	}

	type expiredOffer struct {
		channel string
		payload BroadcastExpiredPayload
	}
	expired := make([]expiredOffer, 0, len(stale))
	for _, record := range stale {
		deleted, delErr := uow.AssignmentRepository().DeleteUnclaimed(ctx, record.ID())
		if delErr != nil {
			return 0, delErr
		}
		if !deleted {
			continue
		}

		expired = append(expired, expiredOffer{
			channel: ShopChannel(record.ShopID()),
			payload: BroadcastExpiredPayload{
				AssignmentID: record.ID().String(),
				OrderID:      record.OrderID().String(),
				SubOrderID:   record.SubOrderID().String(),
			},
		})

		aggregate, getErr := uow.OrderRepository().Get(ctx, record.OrderID())
		if getErr != nil {
			var notFound *errs.ObjectNotFoundError
			if errors.As(getErr, &notFound) {
				continue
			}
			return 0, getErr
		}
		so, soErr := aggregate.SubOrder(record.SubOrderID())
		if soErr != nil {
			continue
		}
		if so.ExpireBroadcast(record.ID()) {
			if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
				return 0, err
			}
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	if len(expired) == 0 {
		return 0, nil
	}
	h.metrics.Expired(len(expired))
	for _, offer := range expired {
		h.pusher.push(ctx, offer.channel, EventBroadcastExpired, offer.payload)
	}
	h.logger.Info().Int("expired", len(expired)).Msg("unclaimed broadcasts expired")

	return len(expired), nil
}

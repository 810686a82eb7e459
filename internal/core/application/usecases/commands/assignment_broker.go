package commands

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/assignment"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

// DefaultSearchRadiusMeters is how far from the delivery address workers are searched.
const DefaultSearchRadiusMeters = 5000

// Broadcast is the outcome of offering a sub-order to nearby workers.
type Broadcast struct {
	AssignmentID kernel.UUID
	Candidates   []kernel.UUID
	Summary      JobSummary
}

// AssignmentBroker discovers eligible workers for a sub-order and records the offer.
// It runs inside the caller's unit of work; Announce is called after commit.
//
// Example:
//
//	bc, err := broker.Broadcast(ctx, uow.AssignmentRepository(), o, so, now)
//	if errors.Is(err, services.ErrNoCandidates) {
//	    // commit the status change anyway
//	}
//	...
//	_ = uow.Commit(ctx)
//	broker.Announce(ctx, bc)
type AssignmentBroker struct {
	locator      ports.WorkerLocator
	selector     services.CandidateSelector
	radiusMeters float64
	pusher       pusher
	metrics      *metrics.BrokerMetrics
	logger       zerolog.Logger
}

func NewAssignmentBroker(
	locator ports.WorkerLocator,
	notifier ports.Notifier,
	radiusMeters float64,
	brokerMetrics *metrics.BrokerMetrics,
	logger zerolog.Logger,
) *AssignmentBroker {
	if radiusMeters <= 0 {
		radiusMeters = DefaultSearchRadiusMeters
	}
	log := logger.With().Str("component", "assignment_broker").Logger()
	return &AssignmentBroker{
		locator:      locator,
		selector:     services.NewCandidateSelector(),
		radiusMeters: radiusMeters,
		pusher:       pusher{notifier: notifier, metrics: brokerMetrics, logger: log},
		metrics:      brokerMetrics,
		logger:       log,
	}
}

// Broadcast finds idle workers around the delivery address, stores a Broadcasted
// record offered to all of them and links it to the sub-order. It returns
// services.ErrNoCandidates when nobody is available; nothing is written in that case.
func (b *AssignmentBroker) Broadcast(
	ctx context.Context,
	assignments ports.AssignmentRepository,
	o *order.Order,
	so *order.SubOrder,
	at time.Time,
) (Broadcast, error) {
	nearby, err := b.locator.FindWithinRadius(ctx, o.DeliveryAddress().Location(), b.radiusMeters)
	if err != nil {
		return Broadcast{}, err
	}

	busy, err := assignments.BusyAmong(ctx, nearby)
	if err != nil {
		return Broadcast{}, err
	}

	available, err := b.selector.Select(nearby, busy)
	if err != nil {
		if errors.Is(err, services.ErrNoCandidates) {
			b.metrics.Broadcast(0)
			b.logger.Info().
				Str("order_id", o.ID().String()).
				Str("sub_order_id", so.ID().String()).
				Int("nearby", len(nearby)).
				Int("busy", len(busy)).
				Msg("no delivery workers available")
		}
		return Broadcast{}, err
	}

	record, err := assignment.NewAssignment(kernel.NewUUID(), o.ID(), so.Shop().ID(), so.ID(), available, at)
	if err != nil {
		return Broadcast{}, err
	}
	if err = assignments.Add(ctx, record); err != nil {
		return Broadcast{}, err
	}
	if err = so.AttachBroadcast(record.ID()); err != nil {
		return Broadcast{}, err
	}

	return Broadcast{
		AssignmentID: record.ID(),
		Candidates:   record.BroadcastTo(),
		Summary:      newJobSummary(record.ID(), o, so),
	}, nil
}

// Announce sends the job summary to every candidate's channel.
func (b *AssignmentBroker) Announce(ctx context.Context, bc Broadcast) {
	if len(bc.Candidates) == 0 {
		return
	}
	b.metrics.Broadcast(len(bc.Candidates))
	for _, workerID := range bc.Candidates {
		b.pusher.push(ctx, UserChannel(workerID), EventNewAssignment, bc.Summary)
	}
	b.logger.Info().
		Str("assignment_id", bc.AssignmentID.String()).
		Int("candidates", len(bc.Candidates)).
		Msg("assignment broadcast")
}

package commands

import (
	"context"
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/worker"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/rs/zerolog"
)

type UpdateWorkerLocationCommandHandler struct {
	uowFactory WorkerUoWFactory
	locator    ports.WorkerLocator
	pusher     pusher
}

func NewUpdateWorkerLocationCommandHandler(
	uowFactory WorkerUoWFactory,
	locator ports.WorkerLocator,
	notifier ports.Notifier,
	logger zerolog.Logger,
) UpdateWorkerLocationCommandHandler {
	return UpdateWorkerLocationCommandHandler{
		uowFactory: uowFactory,
		locator:    locator,
		pusher: pusher{
			notifier: notifier,
			logger:   logger.With().Str("component", "update_worker_location").Logger(),
		},
	}
}

// Handle stores the position, indexes it for radius search and forwards it to the
// customer of the worker's current job.
func (h UpdateWorkerLocationCommandHandler) Handle(ctx context.Context, cmd UpdateWorkerLocationCommand) error {
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

	profile, err := h.loadOrCreate(ctx, uow.WorkerRepository(), cmd)
	if err != nil {
		return err
	}
	if err = profile.MoveTo(cmd.Location(), cmd.At()); err != nil {
		return err
	}
	if err = uow.WorkerRepository().Save(ctx, profile); err != nil {
		return err
	}

	job, err := h.currentJob(ctx, uow, cmd)
	if err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if err = h.locator.UpdateLocation(ctx, cmd.WorkerID(), cmd.Location()); err != nil {
		return fmt.Errorf("index worker location: %w", err)
	}

	if job != nil {
		h.pusher.push(ctx, UserChannel(job.customerID), EventDeliveryLocation, job.payload)
	}
	return nil
}

func (h UpdateWorkerLocationCommandHandler) loadOrCreate(
	ctx context.Context,
	workers ports.WorkerRepository,
	cmd UpdateWorkerLocationCommand,
) (*worker.Worker, error) {
	profile, err := workers.Get(ctx, cmd.WorkerID())
	var notFound *errs.ObjectNotFoundError
	switch {
	case errors.As(err, &notFound):
		return worker.NewWorker(cmd.WorkerID(), cmd.Name(), cmd.Email())
	case err != nil:
		return nil, err
	}

	if cmd.Name() != "" {
		if err = profile.Rename(cmd.Name(), cmd.Email()); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

type activeJob struct {
	customerID kernel.UUID
	payload    DeliveryLocationPayload
}

func (h UpdateWorkerLocationCommandHandler) currentJob(
	ctx context.Context,
	uow WorkerUoW,
	cmd UpdateWorkerLocationCommand,
) (*activeJob, error) {
	record, err := uow.AssignmentRepository().FindAssignedTo(ctx, cmd.WorkerID())
	var notFound *errs.ObjectNotFoundError
	if errors.As(err, &notFound) {
		return nil, nil //nolint:nilnil // no active job
	}
	if err != nil {
		return nil, err
	}

	aggregate, err := uow.OrderRepository().Get(ctx, record.OrderID())
	if errors.As(err, &notFound) {
		return nil, nil //nolint:nilnil // order removed, reconcile will clean up
	}
	if err != nil {
		return nil, err
	}
	so, err := aggregate.SubOrder(record.SubOrderID())
	if err != nil || so.Status() != order.OutForDelivery {
		return nil, nil //nolint:nilerr,nilnil // nothing to track
	}

	return &activeJob{
		customerID: aggregate.Customer().ID(),
		payload: DeliveryLocationPayload{
			OrderID:    aggregate.ID().String(),
			SubOrderID: so.ID().String(),
			WorkerID:   cmd.WorkerID().String(),
			Latitude:   cmd.Location().Latitude(),
			Longitude:  cmd.Location().Longitude(),
			At:         cmd.At(),
		},
	}, nil
}

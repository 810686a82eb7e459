package commands_test

import (
	"errors"
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/assignment"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/worker"
	"fulfillment/internal/pkg/errs"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUpdateWorkerLocationCommandHandler_Handle_FirstPingCreatesProfile(t *testing.T) {
	ctx := t.Context()
	workerID := kernel.NewUUID()
	cmd, err := commands.NewUpdateWorkerLocationCommand(workerID, "Ivan", "ivan@example.com", 55.75, 37.61, testNow)
	require.NoError(t, err)

	uow := newMockUoW()
	locator := new(MockWorkerLocator)
	notifier := new(MockNotifier)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.workers.On("Get", ctx, workerID).Return(nil, errs.NewObjectNotFoundError("worker", workerID.String())).Once(),
		uow.workers.On("Save", ctx, mock.MatchedBy(func(w *worker.Worker) bool {
			return w.Name() == "Ivan" && w.Location() != nil
		})).Return(nil).Once(),
		uow.assignments.On("FindAssignedTo", ctx, workerID).
			Return(nil, errs.NewObjectNotFoundError("assignment", workerID.String())).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		locator.On("UpdateLocation", ctx, workerID, cmd.Location()).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockWorkerUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewUpdateWorkerLocationCommandHandler(factory, locator, notifier, zerolog.Nop())
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	uow.assertExpectations(t)
	locator.AssertExpectations(t)
	notifier.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateWorkerLocationCommandHandler_Handle_ForwardsToCustomer(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t, order.PaymentMethodCashOnDelivery, "")
	workerID := kernel.NewUUID()
	assignmentID := f.assigned(t, workerID)
	record, err := assignment.RestoreAssignment(assignmentID, f.order.ID(), f.subOrder.Shop().ID(), f.subOrder.ID(),
		[]kernel.UUID{workerID}, &workerID, assignment.Assigned, nil, testNow)
	require.NoError(t, err)
	profile, err := worker.NewWorker(workerID, "Ivan", "")
	require.NoError(t, err)

	cmd, err := commands.NewUpdateWorkerLocationCommand(workerID, "", "", 55.76, 37.62, testNow)
	require.NoError(t, err)

	uow := newMockUoW()
	locator := new(MockWorkerLocator)
	notifier := new(MockNotifier)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.workers.On("Get", ctx, workerID).Return(profile, nil).Once(),
		uow.workers.On("Save", ctx, profile).Return(nil).Once(),
		uow.assignments.On("FindAssignedTo", ctx, workerID).Return(record, nil).Once(),
		uow.orders.On("Get", ctx, f.order.ID()).Return(f.order, nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		locator.On("UpdateLocation", ctx, workerID, cmd.Location()).Return(nil).Once(),
		notifier.On("Publish", ctx, commands.UserChannel(f.customerID), commands.EventDeliveryLocation,
			mock.MatchedBy(func(p commands.DeliveryLocationPayload) bool {
				return p.WorkerID == workerID.String() && p.SubOrderID == f.subOrder.ID().String()
			})).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockWorkerUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewUpdateWorkerLocationCommandHandler(factory, locator, notifier, zerolog.Nop())
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, "Ivan", profile.Name())
	uow.assertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestUpdateWorkerLocationCommandHandler_Handle_LocatorError(t *testing.T) {
	ctx := t.Context()
	workerID := kernel.NewUUID()
	profile, err := worker.NewWorker(workerID, "Ivan", "")
	require.NoError(t, err)
	cmd, err := commands.NewUpdateWorkerLocationCommand(workerID, "", "", 55.75, 37.61, testNow)
	require.NoError(t, err)

	uow := newMockUoW()
	locator := new(MockWorkerLocator)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.workers.On("Get", ctx, workerID).Return(profile, nil).Once(),
		uow.workers.On("Save", ctx, profile).Return(nil).Once(),
		uow.assignments.On("FindAssignedTo", ctx, workerID).
			Return(nil, errs.NewObjectNotFoundError("assignment", workerID.String())).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		locator.On("UpdateLocation", ctx, workerID, cmd.Location()).Return(errors.New("redis down")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockWorkerUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewUpdateWorkerLocationCommandHandler(factory, locator, nil, zerolog.Nop())
	err = handler.Handle(ctx, cmd)

	require.ErrorContains(t, err, "redis down")
}

package commands_test

import (
	"fmt"
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/assignment"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func claimedRecord(t *testing.T, f fixture, assignmentID, workerID kernel.UUID) *assignment.Assignment {
	t.Helper()
	acceptedAt := testNow
	record, err := assignment.RestoreAssignment(assignmentID, f.order.ID(), f.subOrder.Shop().ID(), f.subOrder.ID(),
		[]kernel.UUID{workerID}, &workerID, assignment.Assigned, &acceptedAt, testNow)
	require.NoError(t, err)
	return record
}

func newAcceptHandler(uow *MockUoW, notifier ports.Notifier) (commands.AcceptAssignmentCommandHandler, *MockUoWFactory) {
	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()
	return commands.NewAcceptAssignmentCommandHandler(factory, notifier, nil, zerolog.Nop()), factory
}

func TestAcceptAssignmentCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t, order.PaymentMethodCashOnDelivery, "")
	assignmentID := f.outForDelivery(t)
	workerID := kernel.NewUUID()
	cmd, err := commands.NewAcceptAssignmentCommand(workerID, assignmentID, testNow)
	require.NoError(t, err)

	uow := newMockUoW()
	notifier := new(MockNotifier)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.assignments.On("IsBusy", ctx, workerID).Return(false, nil).Once(),
		uow.assignments.On("Claim", ctx, assignmentID, workerID, testNow).Return(true, nil).Once(),
		uow.assignments.On("Get", ctx, assignmentID).Return(claimedRecord(t, f, assignmentID, workerID), nil).Once(),
		uow.orders.On("Get", ctx, f.order.ID()).Return(f.order, nil).Once(),
		uow.orders.On("Update", ctx, f.order).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		notifier.On("Publish", ctx, commands.UserChannel(f.customerID), commands.EventAssignmentAccepted,
			mock.AnythingOfType("commands.AssignmentAcceptedPayload")).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	handler, factory := newAcceptHandler(uow, notifier)
	record, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, assignment.Assigned, record.Status())
	require.NotNil(t, f.subOrder.AssignedWorker())
	assert.True(t, f.subOrder.AssignedWorker().IsEqual(workerID))
	uow.assertExpectations(t)
	notifier.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestAcceptAssignmentCommandHandler_Handle_WorkerAlreadyBusy(t *testing.T) {
	ctx := t.Context()
	workerID := kernel.NewUUID()
	cmd, err := commands.NewAcceptAssignmentCommand(workerID, kernel.NewUUID(), testNow)
	require.NoError(t, err)

	uow := newMockUoW()
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.assignments.On("IsBusy", ctx, workerID).Return(true, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	handler, _ := newAcceptHandler(uow, nil)
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, commands.ErrAlreadyBusy)
	uow.assignments.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	uow.assertExpectations(t)
}

func TestAcceptAssignmentCommandHandler_Handle_LostRace(t *testing.T) {
	ctx := t.Context()
	workerID := kernel.NewUUID()
	assignmentID := kernel.NewUUID()
	cmd, err := commands.NewAcceptAssignmentCommand(workerID, assignmentID, testNow)
	require.NoError(t, err)

	uow := newMockUoW()
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.assignments.On("IsBusy", ctx, workerID).Return(false, nil).Once(),
		uow.assignments.On("Claim", ctx, assignmentID, workerID, testNow).Return(false, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	handler, _ := newAcceptHandler(uow, nil)
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, commands.ErrNoLongerAvailable)
	uow.assertExpectations(t)
}

func TestAcceptAssignmentCommandHandler_Handle_ConcurrentClaimOfSecondJob(t *testing.T) {
	ctx := t.Context()
	workerID := kernel.NewUUID()
	assignmentID := kernel.NewUUID()
	cmd, err := commands.NewAcceptAssignmentCommand(workerID, assignmentID, testNow)
	require.NoError(t, err)

	conflict := fmt.Errorf("%w: duplicated key", assignment.ErrActiveAssignmentConflict)

	uow := newMockUoW()
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.assignments.On("IsBusy", ctx, workerID).Return(false, nil).Once(),
		uow.assignments.On("Claim", ctx, assignmentID, workerID, testNow).Return(false, conflict).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	handler, _ := newAcceptHandler(uow, nil)
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, commands.ErrAlreadyBusy)
}

func TestAcceptAssignmentCommandHandler_Handle_OrderDeletedRollsBackClaim(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t, order.PaymentMethodCashOnDelivery, "")
	assignmentID := f.outForDelivery(t)
	workerID := kernel.NewUUID()
	cmd, err := commands.NewAcceptAssignmentCommand(workerID, assignmentID, testNow)
	require.NoError(t, err)

	uow := newMockUoW()
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.assignments.On("IsBusy", ctx, workerID).Return(false, nil).Once(),
		uow.assignments.On("Claim", ctx, assignmentID, workerID, testNow).Return(true, nil).Once(),
		uow.assignments.On("Get", ctx, assignmentID).Return(claimedRecord(t, f, assignmentID, workerID), nil).Once(),
		uow.orders.On("Get", ctx, f.order.ID()).
			Return(nil, errs.NewObjectNotFoundError("order", f.order.ID().String())).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	handler, _ := newAcceptHandler(uow, nil)
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, commands.ErrOrderMissing)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	uow.assertExpectations(t)
}

func TestAcceptAssignmentCommandHandler_Handle_ValidationError(t *testing.T) {
	factory := new(MockUoWFactory)
	handler := commands.NewAcceptAssignmentCommandHandler(factory, nil, nil, zerolog.Nop())

	_, err := handler.Handle(t.Context(), commands.AcceptAssignmentCommand{})

	require.ErrorIs(t, err, commands.ErrAcceptAssignmentCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}

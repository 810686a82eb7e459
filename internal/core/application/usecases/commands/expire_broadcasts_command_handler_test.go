package commands_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/assignment"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExpireBroadcastsCommandHandler_Handle_DetachesStaleBroadcast(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t, order.PaymentMethodCashOnDelivery, "")
	assignmentID := f.outForDelivery(t)
	record, err := assignment.RestoreAssignment(assignmentID, f.order.ID(), f.subOrder.Shop().ID(), f.subOrder.ID(),
		[]kernel.UUID{kernel.NewUUID()}, nil, assignment.Broadcasted, nil, testNow)
	require.NoError(t, err)

	cutoff := testNow.Add(10 * time.Minute)
	cmd, err := commands.NewExpireBroadcastsCommand(cutoff, 50)
	require.NoError(t, err)

	uow := newMockUoW()
	notifier := new(MockNotifier)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.assignments.On("FindBroadcastedBefore", ctx, cutoff, 50).Return([]*assignment.Assignment{record}, nil).Once(),
		uow.assignments.On("DeleteUnclaimed", ctx, assignmentID).Return(true, nil).Once(),
		uow.orders.On("Get", ctx, f.order.ID()).Return(f.order, nil).Once(),
		uow.orders.On("Update", ctx, f.order).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		notifier.On("Publish", ctx, commands.ShopChannel(f.subOrder.Shop().ID()), commands.EventBroadcastExpired,
			mock.AnythingOfType("commands.BroadcastExpiredPayload")).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewExpireBroadcastsCommandHandler(factory, notifier, nil, zerolog.Nop())
	expired, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	assert.Nil(t, f.subOrder.AssignmentRef())
	assert.Equal(t, order.OutForDelivery, f.subOrder.Status())
	uow.assertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestExpireBroadcastsCommandHandler_Handle_ClaimedMeanwhileIsKept(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t, order.PaymentMethodCashOnDelivery, "")
	assignmentID := f.outForDelivery(t)
	record, err := assignment.RestoreAssignment(assignmentID, f.order.ID(), f.subOrder.Shop().ID(), f.subOrder.ID(),
		[]kernel.UUID{kernel.NewUUID()}, nil, assignment.Broadcasted, nil, testNow)
	require.NoError(t, err)

	cmd, err := commands.NewExpireBroadcastsCommand(testNow.Add(time.Hour), 10)
	require.NoError(t, err)

	uow := newMockUoW()
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.assignments.On("FindBroadcastedBefore", ctx, cmd.Cutoff(), 10).Return([]*assignment.Assignment{record}, nil).Once(),
		uow.assignments.On("DeleteUnclaimed", ctx, assignmentID).Return(false, nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewExpireBroadcastsCommandHandler(factory, nil, nil, zerolog.Nop())
	expired, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Zero(t, expired)
	assert.NotNil(t, f.subOrder.AssignmentRef())
	uow.orders.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	uow.assertExpectations(t)
}

package queries_test

import (
	"errors"
	"testing"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrderQueryHandler_Handle(t *testing.T) {
	db := newTestDB(t)
	s := newStore(t, db)
	handler := queries.NewGetOrderQueryHandler(db)

	workerID := kernel.NewUUID()
	p := s.placeOrder(testNow, "Corner Bakery", "Noodle Bar")
	assignmentID := s.dispatch(p, 1, testNow, workerID)
	s.accept(p, 1, assignmentID, workerID, testNow)

	read := func(t *testing.T, viewer kernel.Actor) (queries.OrderView, error) {
		t.Helper()
		query, err := queries.NewGetOrderQuery(p.order.ID(), viewer)
		require.NoError(t, err)
		return handler.Handle(t.Context(), query)
	}

	t.Run("customer sees every sub-order", func(t *testing.T) {
		view, err := read(t, actor(t, p.customerID, kernel.RoleCustomer))
		require.NoError(t, err)

		assert.Equal(t, p.order.ID(), view.ID)
		assert.Equal(t, order.PaymentMethodCashOnDelivery, view.PaymentMethod)
		assert.False(t, view.PaymentCaptured)
		assert.True(t, decimal.RequireFromString("10.00").Equal(view.TotalAmount))
		require.Len(t, view.SubOrders, 2)
		assert.Equal(t, "Corner Bakery", view.SubOrders[0].ShopName)
		assert.Equal(t, order.Placed, view.SubOrders[0].Status)
		assert.Len(t, view.SubOrders[0].Items, 1)
		assert.Equal(t, "Noodle Bar", view.SubOrders[1].ShopName)
		assert.Equal(t, order.OutForDelivery, view.SubOrders[1].Status)
	})

	t.Run("owner sees only their shop", func(t *testing.T) {
		view, err := read(t, p.owner(t, 0))
		require.NoError(t, err)

		require.Len(t, view.SubOrders, 1)
		assert.Equal(t, p.subOrder(0).ID(), view.SubOrders[0].ID)
	})

	t.Run("worker sees the sub-order assigned to them", func(t *testing.T) {
		view, err := read(t, actor(t, workerID, kernel.RoleDeliveryWorker))
		require.NoError(t, err)

		require.Len(t, view.SubOrders, 1)
		assert.Equal(t, p.subOrder(1).ID(), view.SubOrders[0].ID)
		require.NotNil(t, view.SubOrders[0].AssignedWorker)
		assert.Equal(t, workerID, *view.SubOrders[0].AssignedWorker)
	})

	t.Run("other users are forbidden", func(t *testing.T) {
		for _, viewer := range []kernel.Actor{
			actor(t, kernel.NewUUID(), kernel.RoleCustomer),
			actor(t, kernel.NewUUID(), kernel.RoleOwner),
			actor(t, kernel.NewUUID(), kernel.RoleDeliveryWorker),
		} {
			_, err := read(t, viewer)
			var forbidden *errs.ForbiddenError
			assert.True(t, errors.As(err, &forbidden), "viewer %s", viewer.Role())
		}
	})

	t.Run("system sees everything", func(t *testing.T) {
		view, err := read(t, kernel.SystemActor())
		require.NoError(t, err)
		assert.Len(t, view.SubOrders, 2)
	})

	t.Run("unknown order", func(t *testing.T) {
		query, err := queries.NewGetOrderQuery(kernel.NewUUID(), actor(t, p.customerID, kernel.RoleCustomer))
		require.NoError(t, err)

		_, err = handler.Handle(t.Context(), query)
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}

package queries_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOwnBroadcastsQueryHandler_Handle(t *testing.T) {
	db := newTestDB(t)
	s := newStore(t, db)
	handler := queries.NewGetOwnBroadcastsQueryHandler(db)

	first := kernel.NewUUID()
	second := kernel.NewUUID()
	outsider := kernel.NewUUID()

	older := s.placeOrder(testNow, "Corner Bakery")
	olderID := s.dispatch(older, 0, testNow, first, second)
	newer := s.placeOrder(testNow, "Noodle Bar")
	newerID := s.dispatch(newer, 0, testNow.Add(time.Minute), first)

	t.Run("lists open offers newest first", func(t *testing.T) {
		query, err := queries.NewGetOwnBroadcastsQuery(first)
		require.NoError(t, err)

		views, err := handler.Handle(t.Context(), query)
		require.NoError(t, err)
		require.Len(t, views, 2)

		assert.Equal(t, newerID, views[0].AssignmentID)
		assert.Equal(t, olderID, views[1].AssignmentID)

		view := views[1]
		assert.Equal(t, older.order.ID(), view.OrderID)
		assert.Equal(t, older.subOrder(0).ID(), view.SubOrderID)
		assert.Equal(t, "Corner Bakery", view.ShopName)
		assert.Equal(t, "Tverskaya 1", view.DeliveryAddress)
		assert.True(t, decimal.RequireFromString("5.00").Equal(view.Subtotal))
		require.Len(t, view.Items, 1)
		assert.Equal(t, "Croissant", view.Items[0].Name)
		assert.Equal(t, 2, view.Items[0].Quantity)
	})

	t.Run("workers outside the candidate set see nothing", func(t *testing.T) {
		query, err := queries.NewGetOwnBroadcastsQuery(outsider)
		require.NoError(t, err)

		views, err := handler.Handle(t.Context(), query)
		require.NoError(t, err)
		assert.Empty(t, views)
	})

	t.Run("claimed offers disappear for the other candidates", func(t *testing.T) {
		s.accept(older, 0, olderID, second, testNow.Add(2*time.Minute))

		query, err := queries.NewGetOwnBroadcastsQuery(first)
		require.NoError(t, err)

		views, err := handler.Handle(t.Context(), query)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, newerID, views[0].AssignmentID)

		query, err = queries.NewGetOwnBroadcastsQuery(second)
		require.NoError(t, err)
		views, err = handler.Handle(t.Context(), query)
		require.NoError(t, err)
		assert.Empty(t, views)
	})
}

func TestGetOwnBroadcastsQueryHandler_RejectsZeroValueQuery(t *testing.T) {
	handler := queries.NewGetOwnBroadcastsQueryHandler(newTestDB(t))

	_, err := handler.Handle(t.Context(), queries.GetOwnBroadcastsQuery{})
	require.ErrorIs(t, err, queries.ErrGetOwnBroadcastsQueryIsNotConstructed)
}

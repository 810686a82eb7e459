package queries_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStatusHistoryQueryHandler_Handle(t *testing.T) {
	db := newTestDB(t)
	s := newStore(t, db)
	handler := queries.NewGetStatusHistoryQueryHandler(db)

	workerID := kernel.NewUUID()
	p := s.placeOrder(testNow, "Corner Bakery", "Noodle Bar")

	_, err := p.subOrder(0).ChangeStatus(p.owner(t, 0), order.Preparing, testNow.Add(time.Minute))
	require.NoError(t, err)
	require.NoError(t, s.orders.Update(t.Context(), p.order))
	assignmentID := s.dispatch(p, 0, testNow.Add(2*time.Minute), workerID)
	s.accept(p, 0, assignmentID, workerID, testNow.Add(3*time.Minute))
	s.deliver(p, 0, workerID, testNow.Add(20*time.Minute))

	t.Run("entries come oldest first", func(t *testing.T) {
		query, err := queries.NewGetStatusHistoryQuery(p.order.ID(), p.subOrder(0).ID(), actor(t, p.customerID, kernel.RoleCustomer))
		require.NoError(t, err)

		history, err := handler.Handle(t.Context(), query)
		require.NoError(t, err)
		require.Len(t, history, 4)

		statuses := make([]order.Status, 0, len(history))
		for _, change := range history {
			statuses = append(statuses, change.Status)
		}
		assert.Equal(t, []order.Status{order.Placed, order.Preparing, order.OutForDelivery, order.Delivered}, statuses)

		assert.Equal(t, p.customerID, history[0].ActorID)
		assert.Equal(t, kernel.RoleCustomer, history[0].ActorRole)
		assert.Equal(t, p.ownerIDs[0], history[1].ActorID)
		assert.Equal(t, kernel.RoleOwner, history[1].ActorRole)
		assert.Equal(t, kernel.RoleSystem, history[3].ActorRole)
		assert.True(t, testNow.Add(20*time.Minute).Equal(history[3].ChangedAt))
	})

	t.Run("other shop's sub-order is hidden from an owner", func(t *testing.T) {
		query, err := queries.NewGetStatusHistoryQuery(p.order.ID(), p.subOrder(0).ID(), p.owner(t, 1))
		require.NoError(t, err)

		_, err = handler.Handle(t.Context(), query)
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("unknown order", func(t *testing.T) {
		query, err := queries.NewGetStatusHistoryQuery(kernel.NewUUID(), kernel.NewUUID(), kernel.SystemActor())
		require.NoError(t, err)

		_, err = handler.Handle(t.Context(), query)
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}

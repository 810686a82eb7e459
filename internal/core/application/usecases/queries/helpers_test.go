package queries_test

import (
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/assignmentrepo"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/workerrepo"
	"fulfillment/internal/core/domain/model/assignment"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

type noopTracker struct{}

func (noopTracker) TrackAggregate(kernel.UUID, any) {}

// newTestDB opens a private in-memory database with the application schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), postgres.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, postgres.AutoMigrate(db))
	return db
}

type store struct {
	t           *testing.T
	orders      *orderrepo.GormOrderRepository
	assignments *assignmentrepo.GormAssignmentRepository
	workers     *workerrepo.GormWorkerRepository
}

func newStore(t *testing.T, db *gorm.DB) store {
	return store{
		t:           t,
		orders:      orderrepo.NewGormOrderRepository(db, noopTracker{}),
		assignments: assignmentrepo.NewGormAssignmentRepository(db, noopTracker{}),
		workers:     workerrepo.NewGormWorkerRepository(db, noopTracker{}),
	}
}

type placedOrder struct {
	order      *order.Order
	customerID kernel.UUID
	ownerIDs   []kernel.UUID
}

func (p placedOrder) subOrder(i int) *order.SubOrder {
	return p.order.SubOrders()[i]
}

func (p placedOrder) owner(t *testing.T, i int) kernel.Actor {
	t.Helper()
	actor, err := kernel.NewActor(p.ownerIDs[i], kernel.RoleOwner)
	require.NoError(t, err)
	return actor
}

// placeOrder stores an order with one sub-order per shop name. Every sub-order
// holds two croissants at 2.50.
func (s store) placeOrder(at time.Time, shops ...string) placedOrder {
	s.t.Helper()

	customerID := kernel.NewUUID()
	customer, err := order.NewCustomer(customerID, "ana@example.com")
	require.NoError(s.t, err)
	location, err := kernel.NewLocation(55.7558, 37.6173)
	require.NoError(s.t, err)
	address, err := order.NewDeliveryAddress("Tverskaya 1", location)
	require.NoError(s.t, err)

	ownerIDs := make([]kernel.UUID, 0, len(shops))
	subOrders := make([]*order.SubOrder, 0, len(shops))
	for _, name := range shops {
		shop, shopErr := order.NewShop(kernel.NewUUID(), name)
		require.NoError(s.t, shopErr)
		item, itemErr := order.NewItem(kernel.NewUUID(), "Croissant", decimal.RequireFromString("2.50"), 2)
		require.NoError(s.t, itemErr)
		ownerID := kernel.NewUUID()
		so, soErr := order.NewSubOrder(kernel.NewUUID(), shop, ownerID, []order.Item{item})
		require.NoError(s.t, soErr)
		ownerIDs = append(ownerIDs, ownerID)
		subOrders = append(subOrders, so)
	}

	o, err := order.NewOrder(kernel.NewUUID(), customer, order.PaymentMethodCashOnDelivery, address, subOrders, at)
	require.NoError(s.t, err)
	require.NoError(s.t, s.orders.Add(s.t.Context(), o))

	return placedOrder{order: o, customerID: customerID, ownerIDs: ownerIDs}
}

// dispatch sends sub-order i out for delivery and offers it to the candidates.
func (s store) dispatch(p placedOrder, i int, at time.Time, candidates ...kernel.UUID) kernel.UUID {
	s.t.Helper()

	so := p.subOrder(i)
	_, err := so.ChangeStatus(p.owner(s.t, i), order.OutForDelivery, at)
	require.NoError(s.t, err)

	record, err := assignment.NewAssignment(kernel.NewUUID(), p.order.ID(), so.Shop().ID(), so.ID(), candidates, at)
	require.NoError(s.t, err)
	require.NoError(s.t, s.assignments.Add(s.t.Context(), record))
	require.NoError(s.t, so.AttachBroadcast(record.ID()))
	require.NoError(s.t, s.orders.Update(s.t.Context(), p.order))

	return record.ID()
}

// accept claims the offer for workerID and links the worker to the sub-order.
func (s store) accept(p placedOrder, i int, assignmentID, workerID kernel.UUID, at time.Time) {
	s.t.Helper()

	claimed, err := s.assignments.Claim(s.t.Context(), assignmentID, workerID, at)
	require.NoError(s.t, err)
	require.True(s.t, claimed)

	require.NoError(s.t, p.subOrder(i).AttachWorker(workerID, assignmentID))
	require.NoError(s.t, s.orders.Update(s.t.Context(), p.order))
}

// deliver confirms the handoff of sub-order i at the given time and frees the worker.
func (s store) deliver(p placedOrder, i int, workerID kernel.UUID, at time.Time) {
	s.t.Helper()

	actor, err := kernel.NewActor(workerID, kernel.RoleDeliveryWorker)
	require.NoError(s.t, err)

	so := p.subOrder(i)
	require.NoError(s.t, so.IssueOtp(actor, "4821", at.Add(-time.Minute)))
	require.NoError(s.t, so.ConfirmDelivery(actor, "4821", at))
	require.NoError(s.t, s.orders.Update(s.t.Context(), p.order))

	_, err = s.assignments.DeleteHandoff(s.t.Context(), so.ID(), p.order.ID(), workerID)
	require.NoError(s.t, err)
}

// deliverNew runs a single-shop order from checkout to delivery by workerID.
func (s store) deliverNew(workerID kernel.UUID, at time.Time) placedOrder {
	s.t.Helper()

	p := s.placeOrder(at.Add(-time.Hour), "Corner Bakery")
	assignmentID := s.dispatch(p, 0, at.Add(-30*time.Minute), workerID)
	s.accept(p, 0, assignmentID, workerID, at.Add(-25*time.Minute))
	s.deliver(p, 0, workerID, at)
	return p
}

func (s store) saveWorker(id kernel.UUID, latitude, longitude float64) {
	s.t.Helper()

	w, err := worker.NewWorker(id, "Ivan", "ivan@example.com")
	require.NoError(s.t, err)
	location, err := kernel.NewLocation(latitude, longitude)
	require.NoError(s.t, err)
	require.NoError(s.t, w.MoveTo(location, testNow))
	require.NoError(s.t, s.workers.Save(s.t.Context(), w))
}

func actor(t *testing.T, id kernel.UUID, role kernel.Role) kernel.Actor {
	t.Helper()
	a, err := kernel.NewActor(id, role)
	require.NoError(t, err)
	return a
}

package commands_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/assignment"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/worker"
	"fulfillment/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockAssignmentRepository struct{ mock.Mock }

func (m *MockAssignmentRepository) Add(ctx context.Context, a *assignment.Assignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssignmentRepository) Get(ctx context.Context, id kernel.UUID) (*assignment.Assignment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assignment.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) Claim(ctx context.Context, id, workerID kernel.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, workerID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockAssignmentRepository) Complete(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAssignmentRepository) DeleteHandoff(ctx context.Context, subOrderID, orderID, workerID kernel.UUID) (int64, error) {
	args := m.Called(ctx, subOrderID, orderID, workerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAssignmentRepository) DeleteUnclaimed(ctx context.Context, id kernel.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockAssignmentRepository) IsBusy(ctx context.Context, workerID kernel.UUID) (bool, error) {
	args := m.Called(ctx, workerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAssignmentRepository) BusyAmong(ctx context.Context, workerIDs []kernel.UUID) ([]kernel.UUID, error) {
	args := m.Called(ctx, workerIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kernel.UUID), args.Error(1)
}

func (m *MockAssignmentRepository) FindAssignedTo(ctx context.Context, workerID kernel.UUID) (*assignment.Assignment, error) {
	args := m.Called(ctx, workerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assignment.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) DeleteSettled(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAssignmentRepository) FindBroadcastedBefore(
	ctx context.Context,
	cutoff time.Time,
	limit int,
) ([]*assignment.Assignment, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*assignment.Assignment), args.Error(1)
}

type MockWorkerRepository struct{ mock.Mock }

func (m *MockWorkerRepository) Save(ctx context.Context, w *worker.Worker) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockWorkerRepository) Get(ctx context.Context, id kernel.UUID) (*worker.Worker, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*worker.Worker), args.Error(1)
}

// MockUoW mocks the transaction calls and hands out fixed repositories, so it
// satisfies every unit of work flavour used by the handlers.
type MockUoW struct {
	mock.Mock

	orders      *MockOrderRepository
	assignments *MockAssignmentRepository
	workers     *MockWorkerRepository
}

func newMockUoW() *MockUoW {
	return &MockUoW{
		orders:      new(MockOrderRepository),
		assignments: new(MockAssignmentRepository),
		workers:     new(MockWorkerRepository),
	}
}

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	return m.orders
}

func (m *MockUoW) AssignmentRepository() ports.AssignmentRepository {
	return m.assignments
}

func (m *MockUoW) WorkerRepository() ports.WorkerRepository {
	return m.workers
}

func (m *MockUoW) assertExpectations(t *testing.T) {
	t.Helper()
	m.AssertExpectations(t)
	m.orders.AssertExpectations(t)
	m.assignments.AssertExpectations(t)
	m.workers.AssertExpectations(t)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockAssignmentUoWFactory struct{ mock.Mock }

func (m *MockAssignmentUoWFactory) Create() commands.AssignmentUoW {
	args := m.Called()
	return args.Get(0).(commands.AssignmentUoW)
}

type MockWorkerUoWFactory struct{ mock.Mock }

func (m *MockWorkerUoWFactory) Create() commands.WorkerUoW {
	args := m.Called()
	return args.Get(0).(commands.WorkerUoW)
}

type MockWorkerLocator struct{ mock.Mock }

func (m *MockWorkerLocator) FindWithinRadius(
	ctx context.Context,
	center kernel.Location,
	radiusMeters float64,
) ([]kernel.UUID, error) {
	args := m.Called(ctx, center, radiusMeters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kernel.UUID), args.Error(1)
}

func (m *MockWorkerLocator) UpdateLocation(ctx context.Context, workerID kernel.UUID, location kernel.Location) error {
	args := m.Called(ctx, workerID, location)
	return args.Error(0)
}

func (m *MockWorkerLocator) Remove(ctx context.Context, workerID kernel.UUID) error {
	args := m.Called(ctx, workerID)
	return args.Error(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Publish(ctx context.Context, channel string, event string, payload any) error {
	args := m.Called(ctx, channel, event, payload)
	return args.Error(0)
}

type MockOtpSender struct{ mock.Mock }

func (m *MockOtpSender) SendDeliveryOtp(ctx context.Context, email string, code string) error {
	args := m.Called(ctx, email, code)
	return args.Error(0)
}

type MockPaymentGateway struct{ mock.Mock }

func (m *MockPaymentGateway) Verify(ctx context.Context, ref string) (ports.PaymentStatus, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(ports.PaymentStatus), args.Error(1)
}

func (m *MockPaymentGateway) Refund(ctx context.Context, ref string) (string, error) {
	args := m.Called(ctx, ref)
	return args.String(0), args.Error(1)
}

type MockOrderEventPublisher struct{ mock.Mock }

func (m *MockOrderEventPublisher) PublishStatusChanged(ctx context.Context, event ports.SubOrderStatusChanged) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

// fixture is an order with a single sub-order.
type fixture struct {
	order      *order.Order
	subOrder   *order.SubOrder
	customerID kernel.UUID
	ownerID    kernel.UUID
}

func newFixture(t *testing.T, method order.PaymentMethod, email string) fixture {
	t.Helper()

	customerID := kernel.NewUUID()
	ownerID := kernel.NewUUID()

	customer, err := order.NewCustomer(customerID, email)
	require.NoError(t, err)
	location, err := kernel.NewLocation(55.7558, 37.6173)
	require.NoError(t, err)
	address, err := order.NewDeliveryAddress("Tverskaya 1", location)
	require.NoError(t, err)
	shop, err := order.NewShop(kernel.NewUUID(), "Corner Bakery")
	require.NoError(t, err)
	item, err := order.NewItem(kernel.NewUUID(), "Croissant", decimal.RequireFromString("2.50"), 2)
	require.NoError(t, err)
	so, err := order.NewSubOrder(kernel.NewUUID(), shop, ownerID, []order.Item{item})
	require.NoError(t, err)

	o, err := order.NewOrder(kernel.NewUUID(), customer, method, address, []*order.SubOrder{so}, testNow)
	require.NoError(t, err)

	return fixture{order: o, subOrder: so, customerID: customerID, ownerID: ownerID}
}

func (f fixture) owner(t *testing.T) kernel.Actor {
	t.Helper()
	actor, err := kernel.NewActor(f.ownerID, kernel.RoleOwner)
	require.NoError(t, err)
	return actor
}

// outForDelivery moves the sub-order out and attaches a broadcast.
func (f fixture) outForDelivery(t *testing.T) kernel.UUID {
	t.Helper()
	_, err := f.subOrder.ChangeStatus(f.owner(t), order.OutForDelivery, testNow)
	require.NoError(t, err)
	assignmentID := kernel.NewUUID()
	require.NoError(t, f.subOrder.AttachBroadcast(assignmentID))
	return assignmentID
}

// assigned puts the sub-order in the hands of workerID and returns the assignment id.
func (f fixture) assigned(t *testing.T, workerID kernel.UUID) kernel.UUID {
	t.Helper()
	assignmentID := f.outForDelivery(t)
	require.NoError(t, f.subOrder.AttachWorker(workerID, assignmentID))
	return assignmentID
}

package queries

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrGetCurrentAssignmentQueryIsNotConstructed = errors.New(
	"GetCurrentAssignmentQuery must be created via NewGetCurrentAssignmentQuery constructor",
)

// Reconciler removes assignment records left behind by delivered or deleted orders.
type Reconciler interface {
	Reconcile(ctx context.Context) error
}

// GetCurrentAssignmentQuery returns the job a delivery worker is carrying.
type GetCurrentAssignmentQuery struct {
	workerID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetCurrentAssignmentQuery(workerID kernel.UUID) (GetCurrentAssignmentQuery, error) {
	if err := workerID.Validate(); err != nil {
		return GetCurrentAssignmentQuery{}, errs.NewValueIsRequiredErrorWithCause("worker", err)
	}
	return GetCurrentAssignmentQuery{workerID: workerID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetCurrentAssignmentQuery) Validate() error {
	return q.guard.Validate(ErrGetCurrentAssignmentQueryIsNotConstructed)
}

func (q GetCurrentAssignmentQuery) WorkerID() kernel.UUID {
	return q.workerID
}

// CurrentAssignmentView joins the assigned record with its order and the worker's
// last known position. WorkerLatitude and WorkerLongitude are nil before the first ping.
type CurrentAssignmentView struct {
	AssignmentID    kernel.UUID
	OrderID         kernel.UUID
	SubOrderID      kernel.UUID
	ShopID          kernel.UUID
	ShopName        string
	Status          order.Status
	Items           []ItemView
	Subtotal        decimal.Decimal
	CustomerID      kernel.UUID
	DeliveryAddress string
	Latitude        float64
	Longitude       float64
	WorkerLatitude  *float64
	WorkerLongitude *float64
	AcceptedAt      *time.Time
}

package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrGetOwnBroadcastsQueryIsNotConstructed = errors.New(
	"GetOwnBroadcastsQuery must be created via NewGetOwnBroadcastsQuery constructor",
)

// GetOwnBroadcastsQuery lists the open offers a delivery worker may still accept.
type GetOwnBroadcastsQuery struct {
	workerID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetOwnBroadcastsQuery(workerID kernel.UUID) (GetOwnBroadcastsQuery, error) {
	if err := workerID.Validate(); err != nil {
		return GetOwnBroadcastsQuery{}, errs.NewValueIsRequiredErrorWithCause("worker", err)
	}
	return GetOwnBroadcastsQuery{workerID: workerID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOwnBroadcastsQuery) Validate() error {
	return q.guard.Validate(ErrGetOwnBroadcastsQueryIsNotConstructed)
}

func (q GetOwnBroadcastsQuery) WorkerID() kernel.UUID {
	return q.workerID
}

type ItemView struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// BroadcastView is the job summary shown to a candidate worker.
type BroadcastView struct {
	AssignmentID    kernel.UUID
	OrderID         kernel.UUID
	SubOrderID      kernel.UUID
	ShopID          kernel.UUID
	ShopName        string
	Items           []ItemView
	Subtotal        decimal.Decimal
	DeliveryAddress string
	Latitude        float64
	Longitude       float64
	CreatedAt       time.Time
}

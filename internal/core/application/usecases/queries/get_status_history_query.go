package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrGetStatusHistoryQueryIsNotConstructed = errors.New(
	"GetStatusHistoryQuery must be created via NewGetStatusHistoryQuery constructor",
)

// GetStatusHistoryQuery reads a sub-order's audit trail, oldest entry first.
type GetStatusHistoryQuery struct {
	orderID    kernel.UUID
	subOrderID kernel.UUID
	viewer     kernel.Actor

	guard guard.ConstructorGuard
}

func NewGetStatusHistoryQuery(orderID, subOrderID kernel.UUID, viewer kernel.Actor) (GetStatusHistoryQuery, error) {
	if err := errors.Join(orderID.Validate(), subOrderID.Validate()); err != nil {
		return GetStatusHistoryQuery{}, errs.NewValueIsRequiredErrorWithCause("sub-order", err)
	}
	if err := viewer.Validate(); err != nil {
		return GetStatusHistoryQuery{}, err
	}
	return GetStatusHistoryQuery{
		orderID:    orderID,
		subOrderID: subOrderID,
		viewer:     viewer,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (q GetStatusHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetStatusHistoryQueryIsNotConstructed)
}

func (q GetStatusHistoryQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q GetStatusHistoryQuery) SubOrderID() kernel.UUID {
	return q.subOrderID
}

func (q GetStatusHistoryQuery) Viewer() kernel.Actor {
	return q.viewer
}

type StatusChangeView struct {
	Status    order.Status
	ChangedAt time.Time
	ActorID   kernel.UUID
	ActorRole kernel.Role
}

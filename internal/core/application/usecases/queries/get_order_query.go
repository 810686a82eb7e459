package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery reads an order as seen by the viewer. Owners and workers only get
// the sub-orders they are involved in.
type GetOrderQuery struct {
	orderID kernel.UUID
	viewer  kernel.Actor

	guard guard.ConstructorGuard
}

func NewGetOrderQuery(orderID kernel.UUID, viewer kernel.Actor) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, errs.NewValueIsRequiredErrorWithCause("order", err)
	}
	if err := viewer.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{orderID: orderID, viewer: viewer, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q GetOrderQuery) Viewer() kernel.Actor {
	return q.viewer
}

type SubOrderView struct {
	ID             kernel.UUID
	ShopID         kernel.UUID
	ShopName       string
	OwnerID        kernel.UUID
	Items          []ItemView
	Subtotal       decimal.Decimal
	Status         order.Status
	AssignedWorker *kernel.UUID
	OtpExpiresAt   *time.Time
	DeliveredAt    *time.Time
}

type OrderView struct {
	ID              kernel.UUID
	CustomerID      kernel.UUID
	PaymentMethod   order.PaymentMethod
	PaymentCaptured bool
	DeliveryAddress string
	Latitude        float64
	Longitude       float64
	TotalAmount     decimal.Decimal
	CreatedAt       time.Time
	SubOrders       []SubOrderView
}

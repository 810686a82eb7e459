package commands

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderItem is a cart line priced by the catalog at checkout.
type CreateOrderItem struct {
	ItemRef  kernel.UUID
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// CreateOrderShopGroup is the part of the cart sold by one shop. It becomes a sub-order.
type CreateOrderShopGroup struct {
	ShopID   kernel.UUID
	ShopName string
	OwnerID  kernel.UUID
	Items    []CreateOrderItem
}

type CreateOrderAddress struct {
	Text      string
	Latitude  float64
	Longitude float64
}

// CreateOrderCommand places a customer's cart as one order with a sub-order per shop.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), customerID, "ana@example.com",
//	    order.PaymentMethodCashOnDelivery, address, groups, time.Now())
//	if err != nil {
//	    return err
//	}
//	created, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID       kernel.UUID
	customerID    kernel.UUID
	customerEmail string
	paymentMethod order.PaymentMethod
	address       CreateOrderAddress
	groups        []CreateOrderShopGroup
	at            time.Time

	guard guard.ConstructorGuard
}

func NewCreateOrderCommand(
	orderID kernel.UUID,
	customerID kernel.UUID,
	customerEmail string,
	paymentMethod order.PaymentMethod,
	address CreateOrderAddress,
	groups []CreateOrderShopGroup,
	at time.Time,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		customerEmail: customerEmail,
		address:       address,
		at:            at,
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCustomerID(customerID),
		cmd.setPaymentMethod(paymentMethod),
		cmd.setGroups(groups),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateOrderCommand) CustomerID() kernel.UUID {
	return c.customerID
}

func (c CreateOrderCommand) CustomerEmail() string {
	return c.customerEmail
}

func (c CreateOrderCommand) PaymentMethod() order.PaymentMethod {
	return c.paymentMethod
}

func (c CreateOrderCommand) Address() CreateOrderAddress {
	return c.address
}

func (c CreateOrderCommand) Groups() []CreateOrderShopGroup {
	groups := make([]CreateOrderShopGroup, len(c.groups))
	copy(groups, c.groups)
	return groups
}

func (c CreateOrderCommand) At() time.Time {
	return c.at
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customer", err)
	}
	c.customerID = customerID
	return nil
}

func (c *CreateOrderCommand) setPaymentMethod(method order.PaymentMethod) error {
	if method != order.PaymentMethodCashOnDelivery && method != order.PaymentMethodOnline {
		return errs.NewValueIsRequiredError("payment method")
	}
	c.paymentMethod = method
	return nil
}

func (c *CreateOrderCommand) setGroups(groups []CreateOrderShopGroup) error {
	if len(groups) == 0 {
		return errs.NewValueIsRequiredError("shop groups")
	}
	c.groups = make([]CreateOrderShopGroup, len(groups))
	copy(c.groups, groups)
	return nil
}

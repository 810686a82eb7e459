package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// the NewOrder or RestoreOrder factory methods.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	ErrDeliveryAddressIsNotConstructed = errors.New("DeliveryAddress must be created via NewDeliveryAddress constructor")
	ErrCustomerIsNotConstructed        = errors.New("Customer must be created via NewCustomer constructor")

	// ErrDeliveryContactMissing is returned when the customer has no address to send a delivery code to.
	ErrDeliveryContactMissing = errors.New("customer has no delivery contact")

	// ErrPaymentNotCaptured is returned when an online payment has not been captured by the provider.
	ErrPaymentNotCaptured = errors.New("payment is not captured")
)

// PaymentMethod is how the customer pays for the whole order.
type PaymentMethod int

const (
	PaymentMethodUnknown PaymentMethod = iota
	PaymentMethodCashOnDelivery
	PaymentMethodOnline
)

func (m PaymentMethod) String() string {
	switch m {
	case PaymentMethodCashOnDelivery:
		return "cod"
	case PaymentMethodOnline:
		return "online"
	default:
		return "unknown"
	}
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cod":
		return PaymentMethodCashOnDelivery, nil
	case "online":
		return PaymentMethodOnline, nil
	default:
		return PaymentMethodUnknown, errs.NewValueIsInvalidErrorWithCause("payment method", fmt.Errorf("%q is not supported", s))
	}
}

// Customer is the buyer. The contact e-mail is copied at checkout and may be empty.
type Customer struct {
	id    kernel.UUID
	email string
	guard guard.ConstructorGuard
}

func NewCustomer(id kernel.UUID, email string) (Customer, error) {
	if err := id.Validate(); err != nil {
		return Customer{}, err
	}
	return Customer{id: id, email: strings.TrimSpace(email), guard: guard.NewConstructorGuard()}, nil
}

func (c Customer) Validate() error {
	return c.guard.Validate(ErrCustomerIsNotConstructed)
}

func (c Customer) ID() kernel.UUID {
	return c.id
}

func (c Customer) Email() string {
	return c.email
}

// DeliveryAddress is where every sub-order of the order is delivered.
type DeliveryAddress struct {
	text     string
	location kernel.Location
	guard    guard.ConstructorGuard
}

func NewDeliveryAddress(text string, location kernel.Location) (DeliveryAddress, error) {
	text = strings.TrimSpace(text)

	var textErr error
	if text == "" {
		textErr = errs.NewValueIsRequiredError("delivery address")
	}
	if err := errors.Join(textErr, location.Validate()); err != nil {
		return DeliveryAddress{}, err
	}

	return DeliveryAddress{text: text, location: location, guard: guard.NewConstructorGuard()}, nil
}

func (a DeliveryAddress) Validate() error {
	return a.guard.Validate(ErrDeliveryAddressIsNotConstructed)
}

func (a DeliveryAddress) Text() string {
	return a.text
}

func (a DeliveryAddress) Location() kernel.Location {
	return a.location
}

// Payment is the capture and refund state of an order's payment.
type Payment struct {
	Captured        bool
	TransactionID   string
	RefundRequested bool
	// RefundRef is the provider's reference for the refund once it has been accepted.
	RefundRef       string
}

// Order is the aggregate root of a customer purchase. It owns one SubOrder per shop.
//
// Invariants:
//   - at least one sub-order
//   - totalAmount equals the sum of the sub-order subtotals
//   - sub-orders are reachable only through their order
type Order struct {
	id              kernel.UUID
	customer        Customer
	paymentMethod   PaymentMethod
	deliveryAddress DeliveryAddress
	totalAmount     decimal.Decimal
	payment         Payment
	subOrders       []*SubOrder
	createdAt       time.Time
	paymentModified bool

	isConstructed bool
}

// NewOrder creates an order at checkout. Every sub-order starts Placed and gets an
// audit entry attributed to the customer.
func NewOrder(
	id kernel.UUID,
	customer Customer,
	paymentMethod PaymentMethod,
	deliveryAddress DeliveryAddress,
	subOrders []*SubOrder,
	createdAt time.Time,
) (*Order, error) {
	o := &Order{
		createdAt:     createdAt,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomer(customer),
		o.setPaymentMethod(paymentMethod),
		o.setDeliveryAddress(deliveryAddress),
		o.setSubOrders(subOrders),
	); err != nil {
		return nil, err
	}

	placedBy, err := kernel.NewActor(customer.ID(), kernel.RoleCustomer)
	if err != nil {
		return nil, err
	}
	for _, so := range o.subOrders {
		if so.status != Placed {
			return nil, fmt.Errorf("%w: new sub-order must be placed, got %s", ErrInvalidTransition, so.status)
		}
		so.record(placedBy, createdAt)
	}

	return o, nil
}

// RestoreOrder rebuilds an order from storage.
func RestoreOrder(
	id kernel.UUID,
	customer Customer,
	paymentMethod PaymentMethod,
	deliveryAddress DeliveryAddress,
	payment Payment,
	subOrders []*SubOrder,
	createdAt time.Time,
) (*Order, error) {
	o := &Order{
		payment:       payment,
		createdAt:     createdAt,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomer(customer),
		o.setPaymentMethod(paymentMethod),
		o.setDeliveryAddress(deliveryAddress),
		o.setSubOrders(subOrders),
	); err != nil {
		return nil, err
	}

	return o, nil
}

func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) Customer() Customer {
	return o.customer
}

func (o *Order) PaymentMethod() PaymentMethod {
	return o.paymentMethod
}

func (o *Order) DeliveryAddress() DeliveryAddress {
	return o.deliveryAddress
}

func (o *Order) TotalAmount() decimal.Decimal {
	return o.totalAmount
}

func (o *Order) Payment() Payment {
	return o.payment
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// SubOrders returns the sub-orders in checkout order.
func (o *Order) SubOrders() []*SubOrder {
	subOrders := make([]*SubOrder, len(o.subOrders))
	copy(subOrders, o.subOrders)
	return subOrders
}

// SubOrder finds a sub-order of this order by id.
func (o *Order) SubOrder(id kernel.UUID) (*SubOrder, error) {
	for _, so := range o.subOrders {
		if so.id.IsEqual(id) {
			return so, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("sub-order", id.String())
}

// CustomerEmail returns the contact for delivery codes or ErrDeliveryContactMissing.
func (o *Order) CustomerEmail() (string, error) {
	if o.customer.email == "" {
		return "", ErrDeliveryContactMissing
	}
	return o.customer.email, nil
}

// ConfirmPayment records the provider's capture. Repeating it is a no-op.
func (o *Order) ConfirmPayment(transactionID string) error {
	if o.paymentMethod != PaymentMethodOnline {
		return errs.NewValueIsInvalidErrorWithCause("payment method",
			fmt.Errorf("%s orders are not paid online", o.paymentMethod))
	}
	if o.payment.Captured {
		return nil
	}
	if strings.TrimSpace(transactionID) == "" {
		return errs.NewValueIsRequiredError("transaction id")
	}
	o.payment.Captured = true
	o.payment.TransactionID = transactionID
	o.paymentModified = true
	return nil
}

// NeedsRefund reports whether a captured online payment should be returned because
// every sub-order has been cancelled.
func (o *Order) NeedsRefund() bool {
	if o.paymentMethod != PaymentMethodOnline || !o.payment.Captured || o.payment.RefundRequested {
		return false
	}
	for _, so := range o.subOrders {
		if so.status != Cancelled {
			return false
		}
	}
	return true
}

func (o *Order) MarkRefundRequested() {
	o.payment.RefundRequested = true
	o.paymentModified = true
}

// RecordRefund stores the provider's reference for an accepted refund.
func (o *Order) RecordRefund(ref string) error {
	if strings.TrimSpace(ref) == "" {
		return errs.NewValueIsRequiredError("refund ref")
	}
	if !o.payment.Captured {
		return ErrPaymentNotCaptured
	}
	o.payment.RefundRequested = true
	o.payment.RefundRef = ref
	o.paymentModified = true
	return nil
}

// PaymentModified reports whether the payment state changed since the order was loaded or last saved.
func (o *Order) PaymentModified() bool {
	return o.paymentModified
}

// MarkSaved is called by the repository once the order and its changed sub-orders are stored.
func (o *Order) MarkSaved() {
	o.paymentModified = false
	for _, so := range o.subOrders {
		so.MarkSaved()
	}
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCustomer(customer Customer) error {
	if err := customer.Validate(); err != nil {
		return err
	}
	o.customer = customer
	return nil
}

func (o *Order) setPaymentMethod(method PaymentMethod) error {
	if method != PaymentMethodCashOnDelivery && method != PaymentMethodOnline {
		return errs.NewValueIsInvalidErrorWithCause("payment method", fmt.Errorf("%d is not supported", method))
	}
	o.paymentMethod = method
	return nil
}

func (o *Order) setDeliveryAddress(address DeliveryAddress) error {
	if err := address.Validate(); err != nil {
		return err
	}
	o.deliveryAddress = address
	return nil
}

func (o *Order) setSubOrders(subOrders []*SubOrder) error {
	if len(subOrders) == 0 {
		return errs.NewValueIsRequiredError("sub-orders")
	}

	total := decimal.Zero
	seen := make(map[kernel.UUID]struct{}, len(subOrders))
	for _, so := range subOrders {
		if err := so.Validate(); err != nil {
			return err
		}
		if _, dup := seen[so.id]; dup {
			return errs.NewValueIsInvalidErrorWithCause("sub-orders", fmt.Errorf("duplicate sub-order %s", so.id))
		}
		seen[so.id] = struct{}{}
		total = total.Add(so.subtotal)
	}

	o.subOrders = make([]*SubOrder, len(subOrders))
	copy(o.subOrders, subOrders)
	o.totalAmount = total
	return nil
}

package order

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrItemIsNotConstructed = errors.New("Item must be created via NewItem constructor")
	ErrShopIsNotConstructed = errors.New("Shop must be created via NewShop constructor")
)

// Item is a purchased line, priced at checkout time.
type Item struct {
	itemRef  kernel.UUID
	name     string
	price    decimal.Decimal
	quantity int
	guard    guard.ConstructorGuard
}

func NewItem(itemRef kernel.UUID, name string, price decimal.Decimal, quantity int) (Item, error) {
	name = strings.TrimSpace(name)

	var nameErr, priceErr, quantityErr error
	if name == "" {
		nameErr = errs.NewValueIsRequiredError("item name")
	}
	if price.IsNegative() {
		priceErr = errs.NewValueIsInvalidErrorWithCause("item price", fmt.Errorf("%s is negative", price))
	}
	if quantity < 1 {
		quantityErr = errs.NewValueIsInvalidErrorWithCause("item quantity", fmt.Errorf("%d is not greater than 0", quantity))
	}
	if err := errors.Join(itemRef.Validate(), nameErr, priceErr, quantityErr); err != nil {
		return Item{}, err
	}

	return Item{
		itemRef:  itemRef,
		name:     name,
		price:    price,
		quantity: quantity,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (i Item) Validate() error {
	return i.guard.Validate(ErrItemIsNotConstructed)
}

func (i Item) ItemRef() kernel.UUID {
	return i.itemRef
}

func (i Item) Name() string {
	return i.name
}

func (i Item) Price() decimal.Decimal {
	return i.price
}

func (i Item) Quantity() int {
	return i.quantity
}

// LineTotal is price times quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.price.Mul(decimal.NewFromInt(int64(i.quantity)))
}

// Shop is the seller a sub-order belongs to. The name is denormalized for notifications.
type Shop struct {
	id    kernel.UUID
	name  string
	guard guard.ConstructorGuard
}

func NewShop(id kernel.UUID, name string) (Shop, error) {
	name = strings.TrimSpace(name)

	var nameErr error
	if name == "" {
		nameErr = errs.NewValueIsRequiredError("shop name")
	}
	if err := errors.Join(id.Validate(), nameErr); err != nil {
		return Shop{}, err
	}

	return Shop{id: id, name: name, guard: guard.NewConstructorGuard()}, nil
}

func (s Shop) Validate() error {
	return s.guard.Validate(ErrShopIsNotConstructed)
}

func (s Shop) ID() kernel.UUID {
	return s.id
}

func (s Shop) Name() string {
	return s.name
}

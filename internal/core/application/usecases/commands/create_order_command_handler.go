package commands

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"github.com/rs/zerolog"
)

// CreateOrderCommandHandler turns a checkout into an Order aggregate. Subtotals and
// the order total are computed by the domain, never taken from the client.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	pusher     pusher
}

func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	notifier ports.Notifier,
	logger zerolog.Logger,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		pusher: pusher{
			notifier: notifier,
			logger:   logger.With().Str("component", "create_order").Logger(),
		},
	}
}

// Handle stores the order and tells every shop about its new sub-order.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	aggregate, err := buildOrder(cmd)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	for _, so := range aggregate.SubOrders() {
		h.pusher.push(ctx, ShopChannel(so.Shop().ID()), EventNewOrder, NewOrderPayload{
			OrderID:    aggregate.ID().String(),
			SubOrderID: so.ID().String(),
			Subtotal:   so.Subtotal().StringFixed(2),
			Items:      len(so.Items()),
		})
	}

	return aggregate, nil
}

func buildOrder(cmd CreateOrderCommand) (*order.Order, error) {
	customer, err := order.NewCustomer(cmd.CustomerID(), cmd.CustomerEmail())
	if err != nil {
		return nil, err
	}

	location, err := kernel.NewLocation(cmd.Address().Latitude, cmd.Address().Longitude)
	if err != nil {
		return nil, err
	}
	address, err := order.NewDeliveryAddress(cmd.Address().Text, location)
	if err != nil {
		return nil, err
	}

	groups := cmd.Groups()
	subOrders := make([]*order.SubOrder, 0, len(groups))
	for _, group := range groups {
		so, soErr := buildSubOrder(group)
		if soErr != nil {
			return nil, soErr
		}
		subOrders = append(subOrders, so)
	}

	return order.NewOrder(cmd.OrderID(), customer, cmd.PaymentMethod(), address, subOrders, cmd.At())
}

func buildSubOrder(group CreateOrderShopGroup) (*order.SubOrder, error) {
	shop, err := order.NewShop(group.ShopID, group.ShopName)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(group.Items))
	var itemErrs []error
	for _, line := range group.Items {
		item, itemErr := order.NewItem(line.ItemRef, line.Name, line.Price, line.Quantity)
		if itemErr != nil {
			itemErrs = append(itemErrs, itemErr)
			continue
		}
		items = append(items, item)
	}
	if err = errors.Join(itemErrs...); err != nil {
		return nil, err
	}

	return order.NewSubOrder(kernel.NewUUID(), shop, group.OwnerID, items)
}

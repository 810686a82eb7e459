package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

type OrderRepository interface {
	// Add stores a new order with its sub-orders, items and initial audit entries.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update stores payment and sub-order handoff changes and appends pending audit entries.
	Update(ctx context.Context, aggregate *order.Order) error

	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
}

package ports

import (
	"context"
	"time"
)

// SubOrderStatusChanged is the integration event emitted after every committed transition.
type SubOrderStatusChanged struct {
	OrderID    string    `json:"orderId"`
	SubOrderID string    `json:"subOrderId"`
	ShopID     string    `json:"shopId"`
	Status     string    `json:"status"`
	ActorRole  string    `json:"actorRole"`
	ChangedAt  time.Time `json:"changedAt"`
}

type OrderEventPublisher interface {
	PublishStatusChanged(ctx context.Context, event SubOrderStatusChanged) error
}

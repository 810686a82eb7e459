package ports

import (
	"context"
)

// Notifier pushes an event to a per-user or per-shop channel. Delivery is
// best effort; callers log failures and carry on.
type Notifier interface {
	Publish(ctx context.Context, channel string, event string, payload any) error
}

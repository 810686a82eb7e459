package ports

import (
	"context"
)

type PaymentStatus struct {
	Captured      bool
	TransactionID string
}

// PaymentGateway is the payment provider. ref is the engine's order id.
type PaymentGateway interface {
	Verify(ctx context.Context, ref string) (PaymentStatus, error)

	// Refund returns the provider's refund reference.
	Refund(ctx context.Context, ref string) (string, error)
}

package ports

import (
	"context"
)

type OtpSender interface {
	SendDeliveryOtp(ctx context.Context, email string, code string) error
}

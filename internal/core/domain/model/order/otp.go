package order

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"fulfillment/internal/pkg/errs"
)

// DeliveryOtpTTL is how long an issued delivery code stays valid.
const DeliveryOtpTTL = 5 * time.Minute

const (
	otpMin = 1000
	otpMax = 9999
)

// GenerateDeliveryOtp returns a uniformly random four-digit code.
func GenerateDeliveryOtp() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", fmt.Errorf("generate delivery code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+otpMin), nil
}

func validateOtp(code string) error {
	if len(code) != 4 {
		return errs.NewValueIsInvalidErrorWithCause("delivery code", fmt.Errorf("%q is not four digits", code))
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return errs.NewValueIsInvalidErrorWithCause("delivery code", fmt.Errorf("%q is not four digits", code))
		}
	}
	return nil
}

package commands

import (
	"errors"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrVerifyDeliveryOtpCommandIsNotConstructed = errors.New(
	"VerifyDeliveryOtpCommand must be created via NewVerifyDeliveryOtpCommand constructor",
)

// VerifyDeliveryOtpCommand carries the code the customer read out to the worker.
type VerifyDeliveryOtpCommand struct { //nolint:recvcheck //using for validation
	orderID    kernel.UUID
	subOrderID kernel.UUID
	worker     kernel.Actor
	code       string
	at         time.Time

	guard guard.ConstructorGuard
}

func NewVerifyDeliveryOtpCommand(
	orderID, subOrderID, workerID kernel.UUID,
	code string,
	at time.Time,
) (VerifyDeliveryOtpCommand, error) {
	worker, err := kernel.NewActor(workerID, kernel.RoleDeliveryWorker)
	if err != nil {
		return VerifyDeliveryOtpCommand{}, errs.NewValueIsRequiredErrorWithCause("worker", err)
	}
	if err = errors.Join(orderID.Validate(), subOrderID.Validate()); err != nil {
		return VerifyDeliveryOtpCommand{}, errs.NewValueIsRequiredErrorWithCause("sub-order", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return VerifyDeliveryOtpCommand{}, errs.NewValueIsRequiredError("code")
	}

	return VerifyDeliveryOtpCommand{
		orderID:    orderID,
		subOrderID: subOrderID,
		worker:     worker,
		code:       code,
		at:         at,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c VerifyDeliveryOtpCommand) Validate() error {
	return c.guard.Validate(ErrVerifyDeliveryOtpCommandIsNotConstructed)
}

func (c VerifyDeliveryOtpCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c VerifyDeliveryOtpCommand) SubOrderID() kernel.UUID {
	return c.subOrderID
}

func (c VerifyDeliveryOtpCommand) Worker() kernel.Actor {
	return c.worker
}

func (c VerifyDeliveryOtpCommand) Code() string {
	return c.code
}

func (c VerifyDeliveryOtpCommand) At() time.Time {
	return c.at
}

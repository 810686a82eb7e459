package commands

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrIssueDeliveryOtpCommandIsNotConstructed = errors.New(
	"IssueDeliveryOtpCommand must be created via NewIssueDeliveryOtpCommand constructor",
)

// IssueDeliveryOtpCommand is sent by the assigned worker on arrival. The customer
// receives a one-time code by email and reads it out at the door.
type IssueDeliveryOtpCommand struct { //nolint:recvcheck //using for validation
	orderID    kernel.UUID
	subOrderID kernel.UUID
	worker     kernel.Actor
	at         time.Time

	guard guard.ConstructorGuard
}

func NewIssueDeliveryOtpCommand(
	orderID, subOrderID, workerID kernel.UUID,
	at time.Time,
) (IssueDeliveryOtpCommand, error) {
	worker, err := kernel.NewActor(workerID, kernel.RoleDeliveryWorker)
	if err != nil {
		return IssueDeliveryOtpCommand{}, errs.NewValueIsRequiredErrorWithCause("worker", err)
	}
	if err = errors.Join(orderID.Validate(), subOrderID.Validate()); err != nil {
		return IssueDeliveryOtpCommand{}, errs.NewValueIsRequiredErrorWithCause("sub-order", err)
	}

	return IssueDeliveryOtpCommand{
		orderID:    orderID,
		subOrderID: subOrderID,
		worker:     worker,
		at:         at,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c IssueDeliveryOtpCommand) Validate() error {
	return c.guard.Validate(ErrIssueDeliveryOtpCommandIsNotConstructed)
}

func (c IssueDeliveryOtpCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c IssueDeliveryOtpCommand) SubOrderID() kernel.UUID {
	return c.subOrderID
}

func (c IssueDeliveryOtpCommand) Worker() kernel.Actor {
	return c.worker
}

func (c IssueDeliveryOtpCommand) At() time.Time {
	return c.at
}

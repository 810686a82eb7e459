package commands

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrUpdateSubOrderStatusCommandIsNotConstructed = errors.New(
	"UpdateSubOrderStatusCommand must be created via NewUpdateSubOrderStatusCommand constructor",
)

// UpdateSubOrderStatusCommand is an owner or worker request to move a sub-order
// to a new status.
type UpdateSubOrderStatusCommand struct { //nolint:recvcheck //using for validation
	orderID    kernel.UUID
	subOrderID kernel.UUID
	status     order.Status
	actor      kernel.Actor
	at         time.Time

	guard guard.ConstructorGuard
}

func NewUpdateSubOrderStatusCommand(
	orderID, subOrderID kernel.UUID,
	status order.Status,
	actor kernel.Actor,
	at time.Time,
) (UpdateSubOrderStatusCommand, error) {
	cmd := UpdateSubOrderStatusCommand{
		at:    at,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setIDs(orderID, subOrderID),
		cmd.setStatus(status),
		cmd.setActor(actor),
	); err != nil {
		return UpdateSubOrderStatusCommand{}, err
	}

	return cmd, nil
}

func (c UpdateSubOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateSubOrderStatusCommandIsNotConstructed)
}

func (c UpdateSubOrderStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c UpdateSubOrderStatusCommand) SubOrderID() kernel.UUID {
	return c.subOrderID
}

func (c UpdateSubOrderStatusCommand) Status() order.Status {
	return c.status
}

func (c UpdateSubOrderStatusCommand) Actor() kernel.Actor {
	return c.actor
}

func (c UpdateSubOrderStatusCommand) At() time.Time {
	return c.at
}

func (c *UpdateSubOrderStatusCommand) setIDs(orderID, subOrderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("order", err)
	}
	if err := subOrderID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("sub-order", err)
	}
	c.orderID = orderID
	c.subOrderID = subOrderID
	return nil
}

func (c *UpdateSubOrderStatusCommand) setStatus(status order.Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	c.status = status
	return nil
}

func (c *UpdateSubOrderStatusCommand) setActor(actor kernel.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	c.actor = actor
	return nil
}

package commands

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrAcceptAssignmentCommandIsNotConstructed = errors.New(
	"AcceptAssignmentCommand must be created via NewAcceptAssignmentCommand constructor",
)

// AcceptAssignmentCommand is a worker's attempt to claim a broadcast job.
type AcceptAssignmentCommand struct { //nolint:recvcheck //using for validation
	workerID     kernel.UUID
	assignmentID kernel.UUID
	at           time.Time

	guard guard.ConstructorGuard
}

func NewAcceptAssignmentCommand(workerID, assignmentID kernel.UUID, at time.Time) (AcceptAssignmentCommand, error) {
	cmd := AcceptAssignmentCommand{
		at:    at,
		guard: guard.NewConstructorGuard(),
	}

	if err := workerID.Validate(); err != nil {
		return AcceptAssignmentCommand{}, errs.NewValueIsRequiredErrorWithCause("worker", err)
	}
	if err := assignmentID.Validate(); err != nil {
		return AcceptAssignmentCommand{}, errs.NewValueIsRequiredErrorWithCause("assignment", err)
	}
	cmd.workerID = workerID
	cmd.assignmentID = assignmentID

	return cmd, nil
}

func (c AcceptAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrAcceptAssignmentCommandIsNotConstructed)
}

func (c AcceptAssignmentCommand) WorkerID() kernel.UUID {
	return c.workerID
}

func (c AcceptAssignmentCommand) AssignmentID() kernel.UUID {
	return c.assignmentID
}

func (c AcceptAssignmentCommand) At() time.Time {
	return c.at
}

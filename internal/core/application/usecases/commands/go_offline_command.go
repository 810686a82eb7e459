package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrGoOfflineCommandIsNotConstructed = errors.New(
	"GoOfflineCommand must be created via NewGoOfflineCommand constructor",
)

// GoOfflineCommand stops a worker from receiving new offers. A job already
// accepted stays with the worker.
type GoOfflineCommand struct { //nolint:recvcheck //using for validation
	workerID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGoOfflineCommand(workerID kernel.UUID) (GoOfflineCommand, error) {
	if err := workerID.Validate(); err != nil {
		return GoOfflineCommand{}, errs.NewValueIsRequiredErrorWithCause("worker", err)
	}
	return GoOfflineCommand{workerID: workerID, guard: guard.NewConstructorGuard()}, nil
}

func (c GoOfflineCommand) Validate() error {
	return c.guard.Validate(ErrGoOfflineCommandIsNotConstructed)
}

func (c GoOfflineCommand) WorkerID() kernel.UUID {
	return c.workerID
}

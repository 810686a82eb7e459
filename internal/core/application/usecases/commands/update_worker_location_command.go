package commands

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrUpdateWorkerLocationCommandIsNotConstructed = errors.New(
	"UpdateWorkerLocationCommand must be created via NewUpdateWorkerLocationCommand constructor",
)

// UpdateWorkerLocationCommand is a position ping from a worker's app. The first ping
// creates the worker profile.
type UpdateWorkerLocationCommand struct { //nolint:recvcheck //using for validation
	workerID kernel.UUID
	name     string
	email    string
	location kernel.Location
	at       time.Time

	guard guard.ConstructorGuard
}

func NewUpdateWorkerLocationCommand(
	workerID kernel.UUID,
	name, email string,
	latitude, longitude float64,
	at time.Time,
) (UpdateWorkerLocationCommand, error) {
	if err := workerID.Validate(); err != nil {
		return UpdateWorkerLocationCommand{}, errs.NewValueIsRequiredErrorWithCause("worker", err)
	}
	location, err := kernel.NewLocation(latitude, longitude)
	if err != nil {
		return UpdateWorkerLocationCommand{}, err
	}

	return UpdateWorkerLocationCommand{
		workerID: workerID,
		name:     name,
		email:    email,
		location: location,
		at:       at,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateWorkerLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateWorkerLocationCommandIsNotConstructed)
}

func (c UpdateWorkerLocationCommand) WorkerID() kernel.UUID {
	return c.workerID
}

func (c UpdateWorkerLocationCommand) Name() string {
	return c.name
}

func (c UpdateWorkerLocationCommand) Email() string {
	return c.email
}

func (c UpdateWorkerLocationCommand) Location() kernel.Location {
	return c.location
}

func (c UpdateWorkerLocationCommand) At() time.Time {
	return c.at
}

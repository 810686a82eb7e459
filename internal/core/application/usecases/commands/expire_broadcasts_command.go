package commands

import (
	"errors"
	"time"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrExpireBroadcastsCommandIsNotConstructed = errors.New(
	"ExpireBroadcastsCommand must be created via NewExpireBroadcastsCommand constructor",
)

// DefaultExpireBatch bounds how many broadcasts one sweep handles.
const DefaultExpireBatch = 100

// ExpireBroadcastsCommand withdraws offers nobody accepted before the cut-off.
type ExpireBroadcastsCommand struct { //nolint:recvcheck //using for validation
	cutoff time.Time
	limit  int

	guard guard.ConstructorGuard
}

func NewExpireBroadcastsCommand(cutoff time.Time, limit int) (ExpireBroadcastsCommand, error) {
	if cutoff.IsZero() {
		return ExpireBroadcastsCommand{}, errs.NewValueIsRequiredError("cutoff")
	}
	if limit <= 0 {
		limit = DefaultExpireBatch
	}

	return ExpireBroadcastsCommand{
		cutoff: cutoff,
		limit:  limit,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (c ExpireBroadcastsCommand) Validate() error {
	return c.guard.Validate(ErrExpireBroadcastsCommandIsNotConstructed)
}

func (c ExpireBroadcastsCommand) Cutoff() time.Time {
	return c.cutoff
}

func (c ExpireBroadcastsCommand) Limit() int {
	return c.limit
}

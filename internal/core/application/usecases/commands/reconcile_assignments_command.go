package commands

import (
	"errors"

	"fulfillment/internal/pkg/guard"
)

var ErrReconcileAssignmentsCommandIsNotConstructed = errors.New(
	"ReconcileAssignmentsCommand must be created via NewReconcileAssignmentsCommand constructor",
)

// ReconcileAssignmentsCommand removes assignment records left behind by delivered
// or deleted orders.
type ReconcileAssignmentsCommand struct { //nolint:recvcheck //using for validation
	guard guard.ConstructorGuard
}

func NewReconcileAssignmentsCommand() ReconcileAssignmentsCommand {
	return ReconcileAssignmentsCommand{guard: guard.NewConstructorGuard()}
}

func (c ReconcileAssignmentsCommand) Validate() error {
	return c.guard.Validate(ErrReconcileAssignmentsCommandIsNotConstructed)
}

// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management,
// persistence, and push notifications once the transaction has committed.
package commands

import (
	"context"

	"fulfillment/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// Each handler asks only for the repositories it touches.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// AssignmentRepoFactory provides access to assignment repository within a transaction.
	AssignmentRepoFactory interface {
		AssignmentRepository() ports.AssignmentRepository
	}

	// WorkerRepoFactory provides access to worker repository within a transaction.
	WorkerRepoFactory interface {
		WorkerRepository() ports.WorkerRepository
	}

	// OrderUoW manages transactions for order-only operations.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// AssignmentUoW manages transactions that only touch assignment records.
	AssignmentUoW interface {
		TxManager
		AssignmentRepoFactory
	}

	AssignmentUoWFactory interface {
		Create() AssignmentUoW
	}

	// UoW manages transactions across order and assignment aggregates.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   orders := uow.OrderRepository()
	//   assignments := uow.AssignmentRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		OrderRepoFactory
		AssignmentRepoFactory
	}

	UoWFactory interface {
		Create() UoW
	}

	// WorkerUoW is used by location updates, which write the worker profile and read
	// the worker's current job.
	WorkerUoW interface {
		TxManager
		WorkerRepoFactory
		AssignmentRepoFactory
		OrderRepoFactory
	}

	WorkerUoWFactory interface {
		Create() WorkerUoW
	}
)

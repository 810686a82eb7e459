package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/assignment"
	"fulfillment/internal/core/domain/model/kernel"
)

type AssignmentRepository interface {
	Add(ctx context.Context, aggregate *assignment.Assignment) error

	Get(ctx context.Context, id kernel.UUID) (*assignment.Assignment, error)

	// Claim atomically moves a broadcasted, unassigned record offered to workerID to
	// Assigned. It reports false when the record was not in that state.
	Claim(ctx context.Context, id kernel.UUID, workerID kernel.UUID, at time.Time) (bool, error)

	// Complete closes an active record, e.g. when its sub-order is cancelled.
	Complete(ctx context.Context, id kernel.UUID) error

	// DeleteHandoff removes the record matching a confirmed delivery.
	DeleteHandoff(ctx context.Context, subOrderID, orderID, workerID kernel.UUID) (int64, error)

	// DeleteUnclaimed removes the record only while it is still Broadcasted and
	// reports whether it did.
	DeleteUnclaimed(ctx context.Context, id kernel.UUID) (bool, error)

	// IsBusy reports whether the worker holds an active assignment.
	IsBusy(ctx context.Context, workerID kernel.UUID) (bool, error)

	// BusyAmong returns the subset of workerIDs that hold an active assignment.
	BusyAmong(ctx context.Context, workerIDs []kernel.UUID) ([]kernel.UUID, error)

	// FindAssignedTo returns the worker's current job.
	FindAssignedTo(ctx context.Context, workerID kernel.UUID) (*assignment.Assignment, error)

	// DeleteSettled removes assigned records whose sub-order is delivered and records
	// whose order no longer exists.
	DeleteSettled(ctx context.Context) (int64, error)

	// FindBroadcastedBefore lists unclaimed records created before the cut-off.
	FindBroadcastedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*assignment.Assignment, error)
}

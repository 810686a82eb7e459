package assignment

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrAssignmentIsNotConstructed = errors.New("Assignment must be created via NewAssignment constructor")

	// ErrNotACandidate is returned when a worker outside broadcastTo tries to claim.
	ErrNotACandidate = errors.New("worker was not offered this assignment")

	// ErrActiveAssignmentConflict is returned by storage when a write would give a
	// sub-order two active records or a worker two assigned ones.
	ErrActiveAssignmentConflict = errors.New("conflicting active assignment")
)

// Assignment is the offer of one sub-order to a fixed set of candidate workers,
// and later the record of which worker holds it.
//
// Invariants:
//   - broadcastTo is non-empty and never changes
//   - assignedTo is set exactly when the status is Assigned or later
//   - at most one active record per sub-order, at most one Assigned record per worker
//     (both enforced by storage)
type Assignment struct {
	id          kernel.UUID
	orderID     kernel.UUID
	shopID      kernel.UUID
	subOrderID  kernel.UUID
	broadcastTo []kernel.UUID
	assignedTo  *kernel.UUID
	status      Status
	acceptedAt  *time.Time
	createdAt   time.Time

	guard guard.ConstructorGuard
}

// NewAssignment creates a Broadcasted record offered to the given workers.
func NewAssignment(
	id, orderID, shopID, subOrderID kernel.UUID,
	broadcastTo []kernel.UUID,
	createdAt time.Time,
) (*Assignment, error) {
	a := &Assignment{
		status:    Broadcasted,
		createdAt: createdAt,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		a.setIDs(id, orderID, shopID, subOrderID),
		a.setBroadcastTo(broadcastTo),
	); err != nil {
		return nil, err
	}

	return a, nil
}

// RestoreAssignment rebuilds a record from storage.
func RestoreAssignment(
	id, orderID, shopID, subOrderID kernel.UUID,
	broadcastTo []kernel.UUID,
	assignedTo *kernel.UUID,
	status Status,
	acceptedAt *time.Time,
	createdAt time.Time,
) (*Assignment, error) {
	a := &Assignment{
		assignedTo: assignedTo,
		acceptedAt: acceptedAt,
		createdAt:  createdAt,
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		a.setIDs(id, orderID, shopID, subOrderID),
		a.setBroadcastTo(broadcastTo),
		status.Validate(),
	); err != nil {
		return nil, err
	}
	a.status = status

	if status == Assigned && assignedTo == nil {
		return nil, errs.NewValueIsRequiredError("assigned to")
	}
	if status == Broadcasted && assignedTo != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("assigned to", errors.New("broadcasted record has a worker"))
	}

	return a, nil
}

func (a *Assignment) Validate() error {
	if a == nil {
		return ErrAssignmentIsNotConstructed
	}
	return a.guard.Validate(ErrAssignmentIsNotConstructed)
}

func (a *Assignment) ID() kernel.UUID {
	return a.id
}

func (a *Assignment) OrderID() kernel.UUID {
	return a.orderID
}

func (a *Assignment) ShopID() kernel.UUID {
	return a.shopID
}

func (a *Assignment) SubOrderID() kernel.UUID {
	return a.subOrderID
}

func (a *Assignment) BroadcastTo() []kernel.UUID {
	out := make([]kernel.UUID, len(a.broadcastTo))
	copy(out, a.broadcastTo)
	return out
}

func (a *Assignment) AssignedTo() *kernel.UUID {
	return a.assignedTo
}

func (a *Assignment) Status() Status {
	return a.status
}

func (a *Assignment) AcceptedAt() *time.Time {
	return a.acceptedAt
}

func (a *Assignment) CreatedAt() time.Time {
	return a.createdAt
}

func (a *Assignment) IsCandidate(workerID kernel.UUID) bool {
	for _, id := range a.broadcastTo {
		if id.IsEqual(workerID) {
			return true
		}
	}
	return false
}

// Accept hands the record to a candidate. Storage performs the same check
// atomically; this method keeps an in-memory aggregate consistent with it.
func (a *Assignment) Accept(workerID kernel.UUID, at time.Time) error {
	if err := workerID.Validate(); err != nil {
		return err
	}
	if !a.IsCandidate(workerID) {
		return ErrNotACandidate
	}

	next, err := a.status.Assign()
	if err != nil {
		return err
	}

	a.status = next
	a.assignedTo = &workerID
	a.acceptedAt = &at
	return nil
}

// Complete closes an active record.
func (a *Assignment) Complete() error {
	next, err := a.status.Complete()
	if err != nil {
		return err
	}
	a.status = next
	return nil
}

func (a *Assignment) setIDs(id, orderID, shopID, subOrderID kernel.UUID) error {
	if err := errors.Join(id.Validate(), orderID.Validate(), shopID.Validate(), subOrderID.Validate()); err != nil {
		return err
	}
	a.id, a.orderID, a.shopID, a.subOrderID = id, orderID, shopID, subOrderID
	return nil
}

func (a *Assignment) setBroadcastTo(workers []kernel.UUID) error {
	if len(workers) == 0 {
		return errs.NewValueIsRequiredError("broadcast to")
	}
	seen := make(map[kernel.UUID]struct{}, len(workers))
	out := make([]kernel.UUID, 0, len(workers))
	for _, w := range workers {
		if err := w.Validate(); err != nil {
			return err
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	a.broadcastTo = out
	return nil
}

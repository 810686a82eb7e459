package worker

import (
	"errors"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrNameIsRequired         = errs.NewValueIsRequiredError("name")
	ErrWorkerIsNotConstructed = errors.New("Worker must be created via NewWorker constructor")
)

// Worker is a delivery worker's profile and last reported position. Whether a worker
// is busy is never stored here; it is derived from active assignment records.
type Worker struct {
	id         kernel.UUID
	name       string
	email      string
	location   *kernel.Location
	lastSeenAt *time.Time
	guard      guard.ConstructorGuard
}

func NewWorker(id kernel.UUID, name string, email string) (*Worker, error) {
	w := &Worker{
		email: strings.TrimSpace(email),
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		w.setID(id),
		w.setName(name),
	); err != nil {
		return nil, err
	}

	return w, nil
}

func RestoreWorker(
	id kernel.UUID,
	name string,
	email string,
	location *kernel.Location,
	lastSeenAt *time.Time,
) (*Worker, error) {
	w, err := NewWorker(id, name, email)
	if err != nil {
		return nil, err
	}
	if location != nil {
		if err = location.Validate(); err != nil {
			return nil, err
		}
	}
	w.location = location
	w.lastSeenAt = lastSeenAt
	return w, nil
}

func (w *Worker) IsEqual(other *Worker) bool {
	if other == nil {
		return false
	}
	return w.id.IsEqual(other.id)
}

func (w *Worker) Validate() error {
	if w == nil {
		return ErrWorkerIsNotConstructed
	}
	return w.guard.Validate(ErrWorkerIsNotConstructed)
}

func (w *Worker) ID() kernel.UUID {
	return w.id
}

func (w *Worker) Name() string {
	return w.name
}

func (w *Worker) Email() string {
	return w.email
}

// Location is nil until the worker reports a position.
func (w *Worker) Location() *kernel.Location {
	return w.location
}

func (w *Worker) LastSeenAt() *time.Time {
	return w.lastSeenAt
}

// Rename keeps the profile in sync with the identity provider's claims.
func (w *Worker) Rename(name string, email string) error {
	if err := w.setName(name); err != nil {
		return err
	}
	w.email = strings.TrimSpace(email)
	return nil
}

// MoveTo records a position report. Older reports than the last one are ignored.
func (w *Worker) MoveTo(location kernel.Location, at time.Time) error {
	if err := location.Validate(); err != nil {
		return err
	}
	if w.lastSeenAt != nil && at.Before(*w.lastSeenAt) {
		return nil
	}
	w.location = &location
	w.lastSeenAt = &at
	return nil
}

func (w *Worker) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	w.id = id
	return nil
}

func (w *Worker) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}
	w.name = name
	return nil
}

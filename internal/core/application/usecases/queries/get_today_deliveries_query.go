package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrGetTodayDeliveriesQueryIsNotConstructed = errors.New(
	"GetTodayDeliveriesQuery must be created via NewGetTodayDeliveriesQuery constructor",
)

// GetTodayDeliveriesQuery counts a worker's deliveries of the current day, per hour.
// The day boundary is taken in the location of now.
type GetTodayDeliveriesQuery struct {
	workerID kernel.UUID
	now      time.Time

	guard guard.ConstructorGuard
}

func NewGetTodayDeliveriesQuery(workerID kernel.UUID, now time.Time) (GetTodayDeliveriesQuery, error) {
	if err := workerID.Validate(); err != nil {
		return GetTodayDeliveriesQuery{}, errs.NewValueIsRequiredErrorWithCause("worker", err)
	}
	if now.IsZero() {
		return GetTodayDeliveriesQuery{}, errs.NewValueIsRequiredError("now")
	}
	return GetTodayDeliveriesQuery{workerID: workerID, now: now, guard: guard.NewConstructorGuard()}, nil
}

func (q GetTodayDeliveriesQuery) Validate() error {
	return q.guard.Validate(ErrGetTodayDeliveriesQueryIsNotConstructed)
}

func (q GetTodayDeliveriesQuery) WorkerID() kernel.UUID {
	return q.workerID
}

// Day returns the start and end of the day containing now.
func (q GetTodayDeliveriesQuery) Day() (time.Time, time.Time) {
	start := time.Date(q.now.Year(), q.now.Month(), q.now.Day(), 0, 0, 0, 0, q.now.Location())
	return start, start.AddDate(0, 0, 1)
}

type HourCount struct {
	Hour  int
	Count int
}

// TodayDeliveries has one entry per hour of the day, including empty hours.
type TodayDeliveries struct {
	Total int
	Hours []HourCount
}

package assignment

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status is the lifecycle of an assignment record.
//
//	Broadcasted ──> Assigned ──> Completed
//	     │                           ^
//	     └───────────────────────────┘
//
// The numeric values are stored and referenced by the partial unique indexes.
type Status int

const (
	Unknown     Status = 0
	Broadcasted Status = 1
	Assigned    Status = 2
	Completed   Status = 3
)

func (s Status) String() string {
	switch s {
	case Broadcasted:
		return "broadcasted"
	case Assigned:
		return "assigned"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

func (s Status) Validate() error {
	if s < Broadcasted || s > Completed {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// IsActive reports whether the record still blocks its sub-order.
func (s Status) IsActive() bool {
	return s == Broadcasted || s == Assigned
}

func (s Status) Assign() (Status, error) {
	if s != Broadcasted {
		return Unknown, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to assign", s),
		)
	}
	return Assigned, nil
}

func (s Status) Complete() (Status, error) {
	if !s.IsActive() {
		return Unknown, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to complete", s),
		)
	}
	return Completed, nil
}

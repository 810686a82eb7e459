package order

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// ErrInvalidTransition is returned when a status change is not allowed from the
// current status for the requesting role.
var ErrInvalidTransition = errors.New("invalid status transition")

// Status is the fulfillment state of a single shop's sub-order.
//
//	Placed ──> Preparing ──> OutForDelivery ──> Delivered
//	  │            │               │
//	  └────────────┴───────────────┴──────────> Cancelled
//
// Placed may also go straight to OutForDelivery. Delivered and Cancelled are terminal.
type Status int

const (
	// Unknown catches uninitialized values.
	Unknown Status = iota
	Placed
	Preparing
	OutForDelivery
	Delivered
	Cancelled
)

// Effect is the side effect the engine must run after a transition commits.
type Effect int

const (
	EffectNone Effect = iota
	// EffectBroadcast asks the assignment broker to offer the sub-order to nearby workers.
	EffectBroadcast
	// EffectRelease asks the broker to close the sub-order's active assignment.
	EffectRelease
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "unknown",
		Placed:         "placed",
		Preparing:      "preparing",
		OutForDelivery: "out_for_delivery",
		Delivered:      "delivered",
		Cancelled:      "cancelled",
	}
}

// ParseStatus converts the wire name of a status. Unknown is never accepted.
func ParseStatus(s string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for status, name := range getStatusStrings() {
		if status != Unknown && name == normalized {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// TransitionBy applies the transition table for a role. hasAssignment tells whether the
// sub-order currently references an assignment record. Delivered is not reachable here;
// it is only entered through delivery confirmation.
func (s Status) TransitionBy(role kernel.Role, to Status, hasAssignment bool) (Effect, error) {
	if err := to.Validate(); err != nil {
		return EffectNone, err
	}

	switch {
	case role == kernel.RoleOwner && s == Placed && to == Preparing:
		return EffectNone, nil

	case role == kernel.RoleOwner && (s == Placed || s == Preparing) && to == OutForDelivery:
		return EffectBroadcast, nil

	// re-broadcast after an expired or empty broadcast
	case role == kernel.RoleOwner && s == OutForDelivery && to == OutForDelivery && !hasAssignment:
		return EffectBroadcast, nil

	case (role == kernel.RoleOwner || role == kernel.RoleDeliveryWorker) && !s.IsTerminal() && to == Cancelled:
		if hasAssignment {
			return EffectRelease, nil
		}
		return EffectNone, nil
	}

	return EffectNone, s.invalidTransition(to)
}

// Deliver is the OTP-confirmed transition.
func (s Status) Deliver() (Status, error) {
	if s != OutForDelivery {
		return Unknown, s.invalidTransition(Delivered)
	}
	return Delivered, nil
}

func (s Status) invalidTransition(to Status) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, to)
}

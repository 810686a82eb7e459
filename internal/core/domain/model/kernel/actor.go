package kernel

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// Role is the capacity in which a user acts on an order.
type Role int

const (
	RoleUnknown Role = iota
	RoleCustomer
	RoleOwner
	RoleDeliveryWorker
	RoleSystem
)

func getRoleStrings() map[Role]string {
	return map[Role]string{
		RoleUnknown:        "unknown",
		RoleCustomer:       "customer",
		RoleOwner:          "owner",
		RoleDeliveryWorker: "delivery_worker",
		RoleSystem:         "system",
	}
}

func (r Role) String() string {
	if s, ok := getRoleStrings()[r]; ok {
		return s
	}
	return "unknown"
}

func (r Role) Validate() error {
	if r <= RoleUnknown || r > RoleSystem {
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%d is not a valid role", r))
	}
	return nil
}

// ParseRole accepts the role names issued in access tokens.
func ParseRole(s string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for role, name := range getRoleStrings() {
		if role != RoleUnknown && name == normalized {
			return role, nil
		}
	}
	return RoleUnknown, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a valid role", s))
}

var ErrActorIsNotConstructed = errs.NewValueIsRequiredError("actor must be created via NewActor or SystemActor")

// systemID identifies engine-initiated changes in the audit trail.
var systemID = UUID{id: [16]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x4f, 0xff, 0xbf, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}}

// Actor is the authenticated user (or the engine itself) requesting a change.
type Actor struct {
	id    UUID
	role  Role
	guard guard.ConstructorGuard
}

func NewActor(id UUID, role Role) (Actor, error) {
	if err := errors.Join(id.Validate(), role.Validate()); err != nil {
		return Actor{}, err
	}
	return Actor{id: id, role: role, guard: guard.NewConstructorGuard()}, nil
}

func SystemActor() Actor {
	return Actor{id: systemID, role: RoleSystem, guard: guard.NewConstructorGuard()}
}

func (a Actor) Validate() error {
	return a.guard.Validate(ErrActorIsNotConstructed)
}

func (a Actor) ID() UUID {
	return a.id
}

func (a Actor) Role() Role {
	return a.role
}

// Is reports whether the actor is the given user acting in the given role.
func (a Actor) Is(id UUID, role Role) bool {
	return a.role == role && a.id.IsEqual(id)
}

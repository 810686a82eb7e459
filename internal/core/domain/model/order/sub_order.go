package order

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	ErrSubOrderIsNotConstructed = errors.New("SubOrder must be created via NewSubOrder constructor")

	// ErrInvalidOrExpiredOtp covers a missing, mismatched or expired delivery code.
	ErrInvalidOrExpiredOtp = errors.New("delivery code is invalid or expired")
)

// StatusChange is one entry of a sub-order's append-only audit trail.
type StatusChange struct {
	Status    Status
	At        time.Time
	ActorID   kernel.UUID
	ActorRole kernel.Role
}

// Transition describes an applied status change and what the caller must do next.
type Transition struct {
	From   Status
	To     Status
	Effect Effect
	// Released is the assignment detached by a cancellation, if any.
	Released *kernel.UUID
}

// Handoff is the delivery-side state of a sub-order, used when restoring from storage.
type Handoff struct {
	AssignedWorker *kernel.UUID
	AssignmentRef  *kernel.UUID
	DeliveryOtp    string
	OtpExpiresAt   *time.Time
	DeliveredAt    *time.Time
}

// SubOrder is the portion of an order fulfilled by one shop. It is only reachable
// through its Order aggregate.
//
// Invariants:
//   - shop, owner, items and subtotal never change after creation
//   - an assigned worker implies an assignment reference
//   - Delivered status if and only if deliveredAt is set
type SubOrder struct {
	id       kernel.UUID
	shop     Shop
	ownerID  kernel.UUID
	items    []Item
	subtotal decimal.Decimal
	status   Status

	assignedWorker *kernel.UUID
	assignmentRef  *kernel.UUID
	deliveryOtp    string
	otpExpiresAt   *time.Time
	deliveredAt    *time.Time

	pendingChanges []StatusChange
	modified       bool

	isConstructed bool
}

// NewSubOrder creates a placed sub-order; the subtotal is computed from the items.
func NewSubOrder(id kernel.UUID, shop Shop, ownerID kernel.UUID, items []Item) (*SubOrder, error) {
	so := &SubOrder{
		status:        Placed,
		modified:      true,
		isConstructed: true,
	}

	if err := errors.Join(
		so.setID(id),
		so.setShop(shop),
		so.setOwner(ownerID),
		so.setItems(items),
	); err != nil {
		return nil, err
	}

	so.subtotal = decimal.Zero
	for _, item := range so.items {
		so.subtotal = so.subtotal.Add(item.LineTotal())
	}

	return so, nil
}

// RestoreSubOrder rebuilds a sub-order from storage and re-checks its invariants.
func RestoreSubOrder(
	id kernel.UUID,
	shop Shop,
	ownerID kernel.UUID,
	items []Item,
	subtotal decimal.Decimal,
	status Status,
	handoff Handoff,
) (*SubOrder, error) {
	so := &SubOrder{
		subtotal:       subtotal,
		assignedWorker: handoff.AssignedWorker,
		assignmentRef:  handoff.AssignmentRef,
		deliveryOtp:    handoff.DeliveryOtp,
		otpExpiresAt:   handoff.OtpExpiresAt,
		deliveredAt:    handoff.DeliveredAt,
		isConstructed:  true,
	}

	if err := errors.Join(
		so.setID(id),
		so.setShop(shop),
		so.setOwner(ownerID),
		so.setItems(items),
		status.Validate(),
	); err != nil {
		return nil, err
	}
	so.status = status

	if so.assignedWorker != nil && so.assignmentRef == nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("assignment reference",
			errors.New("assigned worker without assignment reference"))
	}
	if (status == Delivered) != (so.deliveredAt != nil) {
		return nil, errs.NewValueIsInvalidErrorWithCause("delivered at",
			fmt.Errorf("status %s does not match delivered at", status))
	}

	return so, nil
}

func (s *SubOrder) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrSubOrderIsNotConstructed
	}
	return nil
}

func (s *SubOrder) ID() kernel.UUID {
	return s.id
}

func (s *SubOrder) Shop() Shop {
	return s.shop
}

func (s *SubOrder) OwnerID() kernel.UUID {
	return s.ownerID
}

func (s *SubOrder) Items() []Item {
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

func (s *SubOrder) Subtotal() decimal.Decimal {
	return s.subtotal
}

func (s *SubOrder) Status() Status {
	return s.status
}

func (s *SubOrder) AssignedWorker() *kernel.UUID {
	return s.assignedWorker
}

func (s *SubOrder) AssignmentRef() *kernel.UUID {
	return s.assignmentRef
}

func (s *SubOrder) DeliveryOtp() string {
	return s.deliveryOtp
}

func (s *SubOrder) OtpExpiresAt() *time.Time {
	return s.otpExpiresAt
}

func (s *SubOrder) DeliveredAt() *time.Time {
	return s.deliveredAt
}

// IsAssignedTo reports whether workerID currently holds this sub-order.
func (s *SubOrder) IsAssignedTo(workerID kernel.UUID) bool {
	return s.assignedWorker != nil && s.assignedWorker.IsEqual(workerID)
}

// PendingStatusChanges returns audit entries not yet written to storage.
func (s *SubOrder) PendingStatusChanges() []StatusChange {
	changes := make([]StatusChange, len(s.pendingChanges))
	copy(changes, s.pendingChanges)
	return changes
}

// IsModified reports whether the sub-order changed since it was loaded or last saved.
// Repositories write only modified sub-orders, so a request never overwrites a sibling
// that another request changed in the meantime.
func (s *SubOrder) IsModified() bool {
	return s.modified
}

// MarkSaved is called by the repository once the sub-order and its audit entries are stored.
func (s *SubOrder) MarkSaved() {
	s.pendingChanges = nil
	s.modified = false
}

// ChangeStatus applies an owner or worker requested transition.
//
// Owners may only act on their own shop's sub-order and workers only on the
// sub-order assigned to them. A cancellation detaches the active assignment and
// returns it in Transition.Released so the caller can close the record.
func (s *SubOrder) ChangeStatus(actor kernel.Actor, to Status, at time.Time) (Transition, error) {
	if err := actor.Validate(); err != nil {
		return Transition{}, err
	}

	switch actor.Role() {
	case kernel.RoleOwner:
		if !actor.ID().IsEqual(s.ownerID) {
			return Transition{}, errs.NewForbiddenError("sub-order belongs to another shop owner")
		}
	case kernel.RoleDeliveryWorker:
		if !s.IsAssignedTo(actor.ID()) {
			return Transition{}, errs.NewForbiddenError("sub-order is not assigned to this worker")
		}
	default:
		return Transition{}, errs.NewForbiddenError(fmt.Sprintf("%s cannot change sub-order status", actor.Role()))
	}

	effect, err := s.status.TransitionBy(actor.Role(), to, s.assignmentRef != nil)
	if err != nil {
		return Transition{}, err
	}

	transition := Transition{From: s.status, To: to, Effect: effect}
	if effect == EffectRelease {
		transition.Released = s.assignmentRef
		s.assignmentRef = nil
		s.assignedWorker = nil
	}
	if to == Cancelled {
		s.clearOtp()
	}

	s.status = to
	s.record(actor, at)
	return transition, nil
}

// AttachBroadcast links the sub-order to a freshly broadcast assignment.
func (s *SubOrder) AttachBroadcast(assignmentID kernel.UUID) error {
	if err := assignmentID.Validate(); err != nil {
		return err
	}
	if s.status != OutForDelivery || s.assignmentRef != nil {
		return fmt.Errorf("%w: cannot broadcast sub-order in status %s", ErrInvalidTransition, s.status)
	}
	s.assignmentRef = &assignmentID
	s.modified = true
	return nil
}

// AttachWorker records the worker that won the claim on assignmentID.
func (s *SubOrder) AttachWorker(workerID, assignmentID kernel.UUID) error {
	if err := errors.Join(workerID.Validate(), assignmentID.Validate()); err != nil {
		return err
	}
	if s.status != OutForDelivery || s.assignedWorker != nil ||
		s.assignmentRef == nil || !s.assignmentRef.IsEqual(assignmentID) {
		return fmt.Errorf("%w: sub-order %s is not awaiting assignment %s", ErrInvalidTransition, s.id, assignmentID)
	}
	s.assignedWorker = &workerID
	s.modified = true
	return nil
}

// ExpireBroadcast detaches an unclaimed assignment so the owner can broadcast again.
// It reports whether anything changed.
func (s *SubOrder) ExpireBroadcast(assignmentID kernel.UUID) bool {
	if s.assignedWorker != nil || s.assignmentRef == nil || !s.assignmentRef.IsEqual(assignmentID) {
		return false
	}
	s.assignmentRef = nil
	s.modified = true
	return true
}

// IssueOtp stores a delivery code valid for DeliveryOtpTTL. Only the assigned
// worker may request it, and a new code replaces any previous one.
func (s *SubOrder) IssueOtp(actor kernel.Actor, code string, at time.Time) error {
	if !s.IsAssignedTo(actor.ID()) || actor.Role() != kernel.RoleDeliveryWorker {
		return errs.NewForbiddenError("sub-order is not assigned to this worker")
	}
	if s.status != OutForDelivery {
		return fmt.Errorf("%w: cannot issue a delivery code in status %s", ErrInvalidTransition, s.status)
	}
	if err := validateOtp(code); err != nil {
		return err
	}

	expiresAt := at.Add(DeliveryOtpTTL)
	s.deliveryOtp = code
	s.otpExpiresAt = &expiresAt
	s.modified = true
	return nil
}

// RevokeOtp drops the stored code if it is still code. A newer code issued in the
// meantime is kept. It reports whether anything changed.
func (s *SubOrder) RevokeOtp(code string) bool {
	if code == "" || s.deliveryOtp != code {
		return false
	}
	s.clearOtp()
	s.modified = true
	return true
}

// ConfirmDelivery checks the code and moves the sub-order to Delivered. A code is
// accepted only strictly before its expiry and only once.
func (s *SubOrder) ConfirmDelivery(actor kernel.Actor, code string, at time.Time) error {
	if !s.IsAssignedTo(actor.ID()) || actor.Role() != kernel.RoleDeliveryWorker {
		return errs.NewForbiddenError("sub-order is not assigned to this worker")
	}
	if s.deliveryOtp == "" || s.otpExpiresAt == nil ||
		subtle.ConstantTimeCompare([]byte(s.deliveryOtp), []byte(code)) != 1 ||
		!at.Before(*s.otpExpiresAt) {
		return ErrInvalidOrExpiredOtp
	}

	next, err := s.status.Deliver()
	if err != nil {
		return err
	}

	s.status = next
	s.deliveredAt = &at
	s.clearOtp()
	s.record(kernel.SystemActor(), at)
	return nil
}

func (s *SubOrder) record(actor kernel.Actor, at time.Time) {
	s.modified = true
	s.pendingChanges = append(s.pendingChanges, StatusChange{
		Status:    s.status,
		At:        at,
		ActorID:   actor.ID(),
		ActorRole: actor.Role(),
	})
}

func (s *SubOrder) clearOtp() {
	s.deliveryOtp = ""
	s.otpExpiresAt = nil
}

func (s *SubOrder) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.id = id
	return nil
}

func (s *SubOrder) setShop(shop Shop) error {
	if err := shop.Validate(); err != nil {
		return err
	}
	s.shop = shop
	return nil
}

func (s *SubOrder) setOwner(ownerID kernel.UUID) error {
	if err := ownerID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("owner", err)
	}
	s.ownerID = ownerID
	return nil
}

func (s *SubOrder) setItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	s.items = make([]Item, len(items))
	copy(s.items, items)
	return nil
}

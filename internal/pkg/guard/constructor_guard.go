// Package guard detects zero-value structs that bypassed their constructors.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is embedded in commands, queries and value objects. Only
// NewConstructorGuard sets the flag, so a zero value always fails Validate.
//
//	var ErrAcceptAssignmentCommandIsNotConstructed = errors.New("...")
//
//	type AcceptAssignmentCommand struct {
//	    assignmentID kernel.UUID
//	    guard        guard.ConstructorGuard
//	}
//
//	func (c AcceptAssignmentCommand) Validate() error {
//	    return c.guard.Validate(ErrAcceptAssignmentCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard marks the enclosing value as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the enclosing value was not built by its constructor.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}

// Package worker provides the delivery worker profile used by the worker directory.
//
// Key business rules:
//   - Workers must have a valid identifier and a name
//   - A worker's position only moves forward in time
//   - Busy state is derived from assignments and is not part of the profile
package worker

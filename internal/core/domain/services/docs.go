// Package services holds domain services that operate across aggregates.
//
// The package includes:
//   - CandidateSelector: computes the workers a sub-order is broadcast to
package services

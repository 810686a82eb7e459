// Package kernel provides the value objects shared by every aggregate of the
// fulfillment engine.
//
// The package includes:
//   - UUID: identifiers for orders, sub-orders, assignments, shops and users
//   - Location: a WGS84 point with haversine distance
//   - Actor and Role: who is requesting a change, used by the status rules
//
// Zero values of these types are invalid and fail their Validate method.
package kernel

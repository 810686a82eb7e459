// Package order provides the Order aggregate and the fulfillment state machine of
// its sub-orders.
//
// The package includes:
//   - Order: the aggregate root of a checkout, grouping one SubOrder per shop
//   - SubOrder: a shop's part of the order with its delivery handoff state
//   - Status: the transition table keyed by actor role
//   - delivery code (OTP) issuing and confirmation
//
// Key business rules:
//   - Owners move their own sub-orders Placed -> Preparing -> OutForDelivery
//   - OutForDelivery asks the broker to broadcast the job to nearby workers
//   - Owners and the assigned worker may cancel any non-terminal sub-order
//   - Delivered is reached only by confirming a valid, unexpired delivery code
//   - Every transition appends an entry to the sub-order's audit trail
package order

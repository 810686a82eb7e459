// Package assignment provides the Assignment aggregate: one broadcast of a
// sub-order to nearby delivery workers and the claim that follows.
package assignment

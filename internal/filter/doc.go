// Package filter evaluates declarative filter trees against records.
//
// A Filter is either a Condition (one field/operator/value test) or a
// Compound (and/or/not over nested filters). Filter is a sealed interface:
// only the types in this package implement it, so every evaluator is an
// exhaustive type switch rather than a shape check.
//
// Evaluation is pure. Records are never mutated, nothing is cached and every
// function is safe for concurrent use.
//
// Hard failures are limited to caller errors: a nil or unrecognized filter
// (ErrMalformedFilter), a compound operator outside and/or/not
// (ErrUnknownLogicalOperator) and a condition operator outside the closed
// Operator set (ErrUnknownOperator). Every data-shaped problem (null
// operands, type mismatches, non-array values where an array is required)
// evaluates to false instead.
//
// Compound semantics:
//
//	and  true iff every entry is true (an empty list is true)
//	or   true iff any entry is true (an empty list is false)
//	not  NOT(and(entries)), so an empty not is false and a not with
//	     several entries is true as soon as one entry fails
package filter

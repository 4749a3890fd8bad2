/*
errors.go - Centralized error types for the aggregate layer

PURPOSE:
  All sentinel errors for aggregate mutations in one place. Callers use
  errors.Is; the HTTP layer maps these onto status codes.

  Note what is NOT here: out-of-range amounts. Invalid amounts are clamped
  or coerced on write (tolerant-editing contract), never raised.
*/
package benefit

import "errors"

var (
	// ErrNotCarryover is returned when an instance operation targets a
	// benefit that is not carryover-kind.
	ErrNotCarryover = errors.New("benefit is not a carryover benefit")

	// ErrAlreadyEarnedThisYear enforces the one-earn-per-calendar-year rule.
	ErrAlreadyEarnedThisYear = errors.New("carryover instance already earned this year")

	// ErrInstanceNotFound is returned for an out-of-range instance index.
	ErrInstanceNotFound = errors.New("earned instance not found")

	// ErrJustificationNotFound is returned for an unknown justification ID.
	ErrJustificationNotFound = errors.New("usage justification not found")

	// ErrBenefitNotFound is returned when a card has no benefit with the ID.
	ErrBenefitNotFound = errors.New("benefit not found")

	// ErrMinimumSpendNotFound is returned when a card has no minimum spend
	// with the ID.
	ErrMinimumSpendNotFound = errors.New("minimum spend not found")

	// ErrBenefitLocked is returned when earning/using a benefit whose
	// required minimum spend is not met.
	ErrBenefitLocked = errors.New("benefit locked by unmet minimum spend")

	// ErrReorderMismatch is returned when a reorder request does not name
	// exactly the current children.
	ErrReorderMismatch = errors.New("reorder list does not match current items")
)

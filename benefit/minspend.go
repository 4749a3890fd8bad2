/*
minspend.go - The MinimumSpend aggregate

PURPOSE:
  Tracks progress toward a spend threshold and the derived-but-stored
  isMet flag. A MinimumSpend can gate one or more benefits on its card:
  while unmet, linked benefits are locked.

THE isMet CONTRACT:
  isMet flips true the instant currentAmount reaches targetAmount, and
  flips back false if progress is later reduced below target (re-locking
  any gated benefit). Every write to currentAmount goes through
  recomputeMet so the flag can never drift from the amounts.
*/
package benefit

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/benefit-engine/cycle"
)

type MinimumSpend struct {
	ID            string
	Description   string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal

	Frequency cycle.Frequency
	ResetType cycle.ResetType
	Deadline  cycle.TimePoint // one-time only
	LastReset cycle.TimePoint

	IsMet   bool
	MetDate cycle.TimePoint

	Ignored        bool
	IgnoredEndDate cycle.TimePoint

	// The owning card's anniversary, maintained by the Card.
	Anniversary cycle.TimePoint
}

// NewMinimumSpend creates a spend requirement with a fresh ID. Recurring
// requirements anchor their first window at the creation date.
func NewMinimumSpend(description string, target decimal.Decimal, freq cycle.Frequency, resetType cycle.ResetType, deadline, createdAt cycle.TimePoint) *MinimumSpend {
	m := &MinimumSpend{
		ID:           uuid.NewString(),
		Description:  description,
		TargetAmount: cycle.ClampNonNegative(target),
		Frequency:    freq,
	}
	if freq == cycle.FreqOneTime {
		m.Deadline = deadline
	} else {
		m.ResetType = resetType
		m.LastReset = createdAt
	}
	return m
}

// Cycle derives the deadline/window calculator from current fields.
func (m *MinimumSpend) Cycle() cycle.MinimumSpendCycle {
	return cycle.NewMinimumSpendCycle(m.Frequency, m.ResetType, m.Deadline, m.LastReset, m.Anniversary)
}

// SetCurrentAmount writes progress (clamped >= 0) and recomputes isMet.
// ref is the reference date stamped as MetDate when the threshold is first
// crossed.
func (m *MinimumSpend) SetCurrentAmount(v decimal.Decimal, ref cycle.TimePoint) {
	m.CurrentAmount = cycle.ClampNonNegative(v)
	m.recomputeMet(ref)
}

// AddProgress adds a spend amount to the running total.
func (m *MinimumSpend) AddProgress(delta decimal.Decimal, ref cycle.TimePoint) {
	m.SetCurrentAmount(m.CurrentAmount.Add(delta), ref)
}

// SetTargetAmount changes the threshold and re-evaluates isMet against it.
func (m *MinimumSpend) SetTargetAmount(v decimal.Decimal, ref cycle.TimePoint) {
	m.TargetAmount = cycle.ClampNonNegative(v)
	m.recomputeMet(ref)
}

// recomputeMet is the only place the isMet flag changes.
func (m *MinimumSpend) recomputeMet(ref cycle.TimePoint) {
	met := m.CurrentAmount.GreaterThanOrEqual(m.TargetAmount) && m.TargetAmount.IsPositive()
	switch {
	case met && !m.IsMet:
		m.IsMet = true
		m.MetDate = ref
	case !met && m.IsMet:
		m.IsMet = false
		m.MetDate = cycle.TimePoint{}
	}
}

// Reset zeroes progress for a new window and stamps the window start.
func (m *MinimumSpend) Reset(date cycle.TimePoint) {
	m.CurrentAmount = decimal.Zero
	m.IsMet = false
	m.MetDate = cycle.TimePoint{}
	m.LastReset = date
}

// ShouldReset reports whether a new window has started since the last reset.
func (m *MinimumSpend) ShouldReset(ref cycle.TimePoint) bool {
	return m.Cycle().ShouldReset(ref)
}

// IsExpired reports whether a one-time requirement's deadline has passed
// while unmet.
func (m *MinimumSpend) IsExpired(ref cycle.TimePoint) bool {
	return !m.IsMet && m.Cycle().IsExpired(ref)
}

// IsIgnoredActive reports whether the requirement is muted at ref.
func (m *MinimumSpend) IsIgnoredActive(ref cycle.TimePoint) bool {
	return m.Ignored && !m.IgnoredEndDate.IsZero() && m.IgnoredEndDate.AfterOrEqual(ref)
}

// SetIgnored mutes or unmutes the requirement through the given end date.
func (m *MinimumSpend) SetIgnored(on bool, end cycle.TimePoint) {
	m.Ignored = on
	m.IgnoredEndDate = end
	if !on {
		m.IgnoredEndDate = cycle.TimePoint{}
	}
}

// Remaining returns how much spend is still needed.
func (m *MinimumSpend) Remaining() decimal.Decimal {
	return cycle.ClampNonNegative(m.TargetAmount.Sub(m.CurrentAmount))
}

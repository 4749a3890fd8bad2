/*
expiry.go - Next-reset calculation for recurring benefits

PURPOSE:
  Answers "when does this benefit's period roll over?" for any reference
  date, no matter how far the user has jumped ahead. This is the heart of
  the temporal catch-up logic: a user who hasn't opened the tool for six
  months must see exactly the same state as one who opened it every day.

BOUNDARY MODELS:
  Calendar:    boundaries are calendar buckets. Months roll on the 1st,
               quarters on Jan/Apr/Jul/Oct 1, half-years on Jan/Jul 1,
               years on Jan 1. Every-4-years rolls on Jan 1 of the year
               four after the last reset.
  Anniversary: boundaries share the card anniversary's month/day, advanced
               by the period length. The day-of-month is clamped per target
               month (anniversary on the 31st lands on Apr 30, Jun 30, ...)
               but never drifts: the original anniversary day is reapplied
               at every step.

THE CATCH-UP RULE:
  NextResetDate(ref) starts from the first boundary strictly after the
  stored last reset and advances while the following boundary is still
  on/before ref. The result is therefore:
    - the next upcoming boundary, when the benefit is current;
    - the most recently passed boundary, when the benefit is overdue.
  IsExpired(d) is simply NextResetDate(d) <= d. Because the result is a
  pure function of (lastReset, ref), re-running the calculation after a
  reset that stamps lastReset to the returned boundary yields the same
  forward schedule - catch-up across skipped periods is idempotent.
*/
package cycle

import "time"

// =============================================================================
// EXPIRY CYCLE - Pure calculator for recurring benefit periods
// =============================================================================

// ExpiryCycle computes period boundaries for one benefit. It is rebuilt from
// the benefit's raw fields before every query; it holds no mutable state.
type ExpiryCycle struct {
	Frequency   Frequency
	ResetType   ResetType
	LastReset   TimePoint
	Anniversary TimePoint // required iff ResetType == ResetAnniversary
	kind        Kind
}

// NewExpiryCycle derives a cycle view from raw benefit fields.
func NewExpiryCycle(freq Frequency, resetType ResetType, lastReset, anniversary TimePoint) ExpiryCycle {
	return ExpiryCycle{
		Frequency:   freq,
		ResetType:   resetType,
		LastReset:   lastReset,
		Anniversary: anniversary,
		kind:        KindOf(freq, freq == FreqCarryover),
	}
}

// Recurring reports whether this cycle has period boundaries at all.
// One-time and carryover benefits do not.
func (c ExpiryCycle) Recurring() bool {
	return c.kind == KindRecurring && !c.LastReset.IsZero()
}

// NextResetDate returns the boundary the benefit's state should be judged
// against at ref: the next upcoming boundary when current, the most recently
// passed boundary when overdue. ok is false for non-recurring cycles.
func (c ExpiryCycle) NextResetDate(ref TimePoint) (TimePoint, bool) {
	if !c.Recurring() {
		return TimePoint{}, false
	}
	b := c.boundaryAfter(c.LastReset)
	for {
		nb := c.boundaryAfter(b)
		if nb.After(ref) {
			return b, true
		}
		b = nb
	}
}

// IsExpired reports whether the benefit has crossed a period boundary and is
// due for a reset. Non-recurring cycles are never expired.
func (c ExpiryCycle) IsExpired(ref TimePoint) bool {
	next, ok := c.NextResetDate(ref)
	return ok && next.BeforeOrEqual(ref)
}

// DaysUntilReset returns the whole days from ref to the governing boundary.
// Zero or negative means the boundary has passed.
func (c ExpiryCycle) DaysUntilReset(ref TimePoint) (int, bool) {
	next, ok := c.NextResetDate(ref)
	if !ok {
		return 0, false
	}
	return DaysBetween(ref, next), true
}

// ExpiresWithin reports whether the current period ends after ref but within
// the given window. Already-overdue benefits are excluded; those surface
// through the needs-reset query instead.
func (c ExpiryCycle) ExpiresWithin(ref TimePoint, windowDays int) bool {
	next, ok := c.NextResetDate(ref)
	if !ok {
		return false
	}
	return next.After(ref) && next.BeforeOrEqual(ref.AddDays(windowDays))
}

// UseByDate returns the last day of the current period (the deadline shown
// to the user), i.e. the day before the next boundary.
func (c ExpiryCycle) UseByDate(ref TimePoint) (TimePoint, bool) {
	next, ok := c.NextResetDate(ref)
	if !ok {
		return TimePoint{}, false
	}
	return next.AddDays(-1), true
}

// =============================================================================
// BOUNDARY CALCULATION
// =============================================================================

// boundaryAfter returns the first period boundary strictly after d.
// Always makes strict forward progress, so the catch-up loop terminates in
// O(periods skipped).
func (c ExpiryCycle) boundaryAfter(d TimePoint) TimePoint {
	if c.ResetType == ResetAnniversary && !c.Anniversary.IsZero() {
		return c.anniversaryBoundaryAfter(d)
	}
	return c.calendarBoundaryAfter(d)
}

// calendarBoundaryAfter finds the start of the next calendar bucket after d.
func (c ExpiryCycle) calendarBoundaryAfter(d TimePoint) TimePoint {
	switch c.Frequency {
	case FreqMonthly:
		return StartOfMonth(d.Year(), d.Month()).AddMonthsClamped(1)
	case FreqQuarterly:
		// Quarters start at months 1/4/7/10.
		q := (int(d.Month()) - 1) / 3
		return NewTimePoint(d.Year(), time.Month(q*3+1), 1).AddMonthsClamped(3)
	case FreqBiannual:
		h := (int(d.Month()) - 1) / 6
		return NewTimePoint(d.Year(), time.Month(h*6+1), 1).AddMonthsClamped(6)
	case FreqAnnual:
		return StartOfYear(d.Year() + 1)
	case FreqEvery4Years:
		return StartOfYear(d.Year() + 4)
	default:
		// Unreachable for recurring cycles; keep the calculator total.
		return StartOfYear(d.Year() + 1)
	}
}

// anniversaryBoundaryAfter finds the next date sharing the anniversary's
// month/day (day clamped per month), advanced by whole periods until it is
// strictly after d.
func (c ExpiryCycle) anniversaryBoundaryAfter(d TimePoint) TimePoint {
	annDay := c.Anniversary.Day()

	if years := c.Frequency.PeriodYears(); years > 0 {
		cand := NewTimePoint(d.Year(), c.Anniversary.Month(), 1).WithDayClamped(annDay)
		for !cand.After(d) {
			cand = NewTimePoint(cand.Year()+years, c.Anniversary.Month(), 1).WithDayClamped(annDay)
		}
		return cand
	}

	months := c.Frequency.PeriodMonths()
	if months == 0 {
		months = 12
	}

	// Walk month indexes from one year back so the first candidate is never
	// ahead of d; reapply the anniversary day at each step so clamping in a
	// short month doesn't shift later boundaries.
	year := d.Year() - 1
	monthIdx := int(c.Anniversary.Month()) - 1 // 0-based
	cand := NewTimePoint(year, time.Month(monthIdx+1), 1).WithDayClamped(annDay)
	for !cand.After(d) {
		monthIdx += months
		year += monthIdx / 12
		monthIdx %= 12
		cand = NewTimePoint(year, time.Month(monthIdx+1), 1).WithDayClamped(annDay)
	}
	return cand
}

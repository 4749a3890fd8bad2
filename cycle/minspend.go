/*
minspend.go - Spend-requirement deadlines and period windows

PURPOSE:
  A minimum spend is a threshold ("spend $4,000 in 3 months") that can
  gate a benefit's availability. One-time requirements have a fixed
  deadline; recurring ones live in calendar or anniversary-anchored
  period windows and should have their progress zeroed when a new
  window begins.

  Like the other calculators, this is stateless: the owning aggregate
  holds the raw fields and derives a cycle view before every query.
*/
package cycle

// =============================================================================
// PERIOD - An inclusive [Start, End] day window
// =============================================================================

type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains reports whether the day falls within the window.
func (p Period) Contains(tp TimePoint) bool {
	return tp.AfterOrEqual(p.Start) && tp.BeforeOrEqual(p.End)
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// MINIMUM SPEND CYCLE - Pure calculator for spend-requirement windows
// =============================================================================

// MinimumSpendCycle computes the current deadline and period boundaries for
// one spend requirement.
type MinimumSpendCycle struct {
	Frequency   Frequency
	ResetType   ResetType
	Deadline    TimePoint // one-time only
	LastReset   TimePoint
	Anniversary TimePoint // required iff ResetType == ResetAnniversary
}

func NewMinimumSpendCycle(freq Frequency, resetType ResetType, deadline, lastReset, anniversary TimePoint) MinimumSpendCycle {
	return MinimumSpendCycle{
		Frequency:   freq,
		ResetType:   resetType,
		Deadline:    deadline,
		LastReset:   lastReset,
		Anniversary: anniversary,
	}
}

// OneTime reports whether this requirement has a single fixed deadline.
func (c MinimumSpendCycle) OneTime() bool {
	return c.Frequency == FreqOneTime
}

// IsExpired reports whether a one-time requirement's deadline has passed.
// Only meaningful while the requirement is unmet; recurring requirements
// roll into a new window instead of expiring.
func (c MinimumSpendCycle) IsExpired(ref TimePoint) bool {
	return c.OneTime() && !c.Deadline.IsZero() && ref.After(c.Deadline)
}

// CurrentPeriod returns the window containing ref for a recurring
// requirement. ok is false for one-time requirements and for frequencies
// without a month-based window.
func (c MinimumSpendCycle) CurrentPeriod(ref TimePoint) (Period, bool) {
	if c.Frequency.PeriodMonths() == 0 {
		return Period{}, false
	}
	// The same boundary walk as recurring benefits: seed far enough back
	// that the catch-up loop lands on the most recent boundary <= ref.
	ec := NewExpiryCycle(c.Frequency, c.ResetType, ref.AddYears(-2), c.Anniversary)
	start, ok := ec.NextResetDate(ref)
	if !ok {
		return Period{}, false
	}
	end := ec.boundaryAfter(start).AddDays(-1)
	return Period{Start: start, End: end}, true
}

// CurrentDeadline returns the date the requirement must be met by: the fixed
// deadline for one-time, the end of the current window for recurring.
func (c MinimumSpendCycle) CurrentDeadline(ref TimePoint) (TimePoint, bool) {
	if c.OneTime() {
		if c.Deadline.IsZero() {
			return TimePoint{}, false
		}
		return c.Deadline, true
	}
	p, ok := c.CurrentPeriod(ref)
	if !ok {
		return TimePoint{}, false
	}
	return p.End, true
}

// DaysUntilDeadline returns whole days from ref to the current deadline.
// Negative means the deadline has passed.
func (c MinimumSpendCycle) DaysUntilDeadline(ref TimePoint) (int, bool) {
	deadline, ok := c.CurrentDeadline(ref)
	if !ok {
		return 0, false
	}
	return DaysBetween(ref, deadline), true
}

// ShouldReset reports whether a recurring requirement has rolled into a new
// window since its last reset, signaling the controller to zero progress.
// Detection only: this method never mutates anything.
func (c MinimumSpendCycle) ShouldReset(ref TimePoint) bool {
	if c.OneTime() || c.LastReset.IsZero() {
		return false
	}
	p, ok := c.CurrentPeriod(ref)
	if !ok {
		return false
	}
	return p.Start.After(c.LastReset)
}

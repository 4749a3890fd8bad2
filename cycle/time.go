/*
Package cycle provides the pure calculators of the benefit engine.

PURPOSE:
  Everything in this package is a stateless calculation over raw benefit
  fields: given a frequency, a reset anchor and a reference "today", it
  answers questions like "when does the next period start?", "is this
  benefit overdue for a reset?", "which carryover instances are still
  usable?". Nothing here reads a clock, performs I/O, or holds state
  beyond constructor inputs.

KEY CONCEPTS IN THIS FILE (time.go):
  - TimePoint: A calendar day, normalized to midnight UTC
  - Clamped month arithmetic: adding months never rolls into the
    following month (Jan 31 + 1 month = Feb 28/29, not Mar 2)

DESIGN PRINCIPLES:
  1. Determinism: "today" is always an injected value, never time.Now()
  2. Day granularity: all dates normalize to a midnight boundary before
     any comparison or arithmetic
  3. No errors: every query returns a value for structurally valid input

SEE ALSO:
  - expiry.go: Next-reset calculation for recurring benefits
  - carryover.go: Calendar-year earned-instance windows
  - minspend.go: Spend-requirement deadlines and period windows
*/
package cycle

import "time"

// =============================================================================
// TIME POINT - A calendar day (midnight-normalized)
// =============================================================================

// TimePoint is a single calendar day. The zero value means "no date".
type TimePoint struct {
	t time.Time
}

// NewTimePoint builds a TimePoint for the given calendar day.
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime normalizes an arbitrary time to its local midnight boundary.
// The wall-clock day is kept; the time-of-day and zone are discarded.
func FromTime(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// Parse reads an ISO-8601 date or date-time string. Both "2024-01-15" and
// "2024-01-15T00:00:00Z" (the persisted form) are accepted; the time-of-day
// part is dropped.
func Parse(s string) (TimePoint, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return FromTime(t), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return TimePoint{}, err
	}
	return FromTime(t), nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.t.Before(other.t) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.t.Equal(other.t) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.t.After(other.t) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.t.After(other.t) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.t.Before(other.t) }
func (tp TimePoint) IsZero() bool                       { return tp.t.IsZero() }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint  { return FromTime(tp.t.AddDate(0, 0, n)) }
func (tp TimePoint) AddYears(n int) TimePoint { return FromTime(tp.t.AddDate(n, 0, 0)) }

// AddMonthsClamped adds n months, clamping the day-of-month to the length of
// the target month. Unlike time.AddDate, Jan 31 + 1 month is Feb 28 (or 29),
// never Mar 2. Anniversary arithmetic depends on this.
func (tp TimePoint) AddMonthsClamped(n int) TimePoint {
	year := tp.t.Year()
	month := int(tp.t.Month()) + n
	// Normalize month into [1,12] adjusting the year.
	year += (month - 1) / 12
	month = (month-1)%12 + 1
	if month <= 0 {
		month += 12
		year--
	}
	day := tp.t.Day()
	if last := DaysInMonth(year, time.Month(month)); day > last {
		day = last
	}
	return NewTimePoint(year, time.Month(month), day)
}

// WithDayClamped returns the same year/month with the day-of-month replaced,
// clamped to the month's length.
func (tp TimePoint) WithDayClamped(day int) TimePoint {
	if last := DaysInMonth(tp.Year(), tp.Month()); day > last {
		day = last
	}
	return NewTimePoint(tp.Year(), tp.Month(), day)
}

// Properties
func (tp TimePoint) Year() int         { return tp.t.Year() }
func (tp TimePoint) Month() time.Month { return tp.t.Month() }
func (tp TimePoint) Day() int          { return tp.t.Day() }
func (tp TimePoint) Time() time.Time   { return tp.t }

func (tp TimePoint) String() string { return tp.t.Format("2006-01-02") }

// ISO returns the persisted wire form: a midnight-normalized RFC 3339 string.
func (tp TimePoint) ISO() string { return tp.t.Format(time.RFC3339) }

// =============================================================================
// TIME UTILITIES
// =============================================================================

func DaysBetween(from, to TimePoint) int { return int(to.t.Sub(from.t).Hours() / 24) }

func StartOfYear(year int) TimePoint { return NewTimePoint(year, time.January, 1) }
func EndOfYear(year int) TimePoint   { return NewTimePoint(year, time.December, 31) }

func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MinTime / MaxTime helpers for optional dates.
func MinPoint(a, b TimePoint) TimePoint {
	if a.Before(b) {
		return a
	}
	return b
}

func MaxPoint(a, b TimePoint) TimePoint {
	if a.After(b) {
		return a
	}
	return b
}

/*
types.go - Frequencies, reset anchors, and amounts

PURPOSE:
  Defines the vocabulary shared by every calculator: how often a benefit
  resets (Frequency), what its periods are anchored to (ResetType), the
  three behavioral families of benefit (Kind), and decimal amounts.

KIND - THE TAGGED UNION:
  Every benefit belongs to exactly one family, derived once from its raw
  fields and matched exhaustively wherever behavior differs:

    KindRecurring: has a reset cycle (monthly ... every-4-years)
    KindOneTime:   no cycle; optional fixed expiry date
    KindCarryover: no cycle; an independently-expiring instance per year

  One-time and carryover benefits never carry a ResetType or lastReset
  and are never classified as "due for reset".

AMOUNTS:
  Monetary values use decimal.Decimal throughout (never float64), the
  same way resource quantities are handled across the engine.
*/
package cycle

import "github.com/shopspring/decimal"

// =============================================================================
// FREQUENCY - How often a benefit's period rolls over
// =============================================================================

type Frequency string

const (
	FreqMonthly     Frequency = "monthly"
	FreqQuarterly   Frequency = "quarterly"
	FreqBiannual    Frequency = "biannual"
	FreqAnnual      Frequency = "annual"
	FreqEvery4Years Frequency = "every_4_years"
	FreqOneTime     Frequency = "one_time"
	FreqCarryover   Frequency = "carryover"
)

// Frequencies lists every valid frequency, in schema-enum order.
func Frequencies() []Frequency {
	return []Frequency{
		FreqMonthly, FreqQuarterly, FreqBiannual, FreqAnnual,
		FreqEvery4Years, FreqOneTime, FreqCarryover,
	}
}

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	for _, v := range Frequencies() {
		if f == v {
			return true
		}
	}
	return false
}

// ValidForMinimumSpend reports whether f can govern a spend requirement:
// a one-time deadline or a month-based window. Multi-year and carryover
// schedules have no spend window.
func (f Frequency) ValidForMinimumSpend() bool {
	return f == FreqOneTime || f.PeriodMonths() > 0
}

// PeriodMonths returns the period length in months for month-based
// frequencies, or 0 for annual-multiple and non-recurring frequencies.
func (f Frequency) PeriodMonths() int {
	switch f {
	case FreqMonthly:
		return 1
	case FreqQuarterly:
		return 3
	case FreqBiannual:
		return 6
	case FreqAnnual:
		return 12
	default:
		return 0
	}
}

// PeriodYears returns the period length in whole years, or 0 when the
// period is expressed in months.
func (f Frequency) PeriodYears() int {
	if f == FreqEvery4Years {
		return 4
	}
	return 0
}

// =============================================================================
// RESET TYPE - What period boundaries are anchored to
// =============================================================================

type ResetType string

const (
	// ResetCalendar anchors boundaries to calendar buckets: months start on
	// the 1st, quarters on Jan/Apr/Jul/Oct, half-years on Jan/Jul.
	ResetCalendar ResetType = "calendar"

	// ResetAnniversary anchors boundaries to the owning card's anniversary
	// month/day, advanced by the benefit's period length.
	ResetAnniversary ResetType = "anniversary"
)

func (rt ResetType) Valid() bool {
	return rt == ResetCalendar || rt == ResetAnniversary
}

// =============================================================================
// KIND - Behavioral family of a benefit
// =============================================================================

type Kind int

const (
	KindRecurring Kind = iota
	KindOneTime
	KindCarryover
)

// KindOf classifies a benefit from its raw fields. This is the single place
// that turns the frequency/isCarryover flags into a variant; callers match
// on the result instead of re-testing the flags.
func KindOf(freq Frequency, isCarryover bool) Kind {
	switch {
	case isCarryover || freq == FreqCarryover:
		return KindCarryover
	case freq == FreqOneTime:
		return KindOneTime
	default:
		return KindRecurring
	}
}

func (k Kind) String() string {
	switch k {
	case KindOneTime:
		return "one_time"
	case KindCarryover:
		return "carryover"
	default:
		return "recurring"
	}
}

// =============================================================================
// AMOUNT HELPERS
// =============================================================================

// ClampAmount coerces an amount into [0, max]. Negative (or NaN-ish, i.e.
// unparseable upstream) values become 0; values above max become max.
// Invalid user input is tolerated, never raised.
func ClampAmount(v, max decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	if max.IsPositive() && v.GreaterThan(max) {
		return max
	}
	return v
}

// ClampNonNegative coerces an amount to be >= 0 with no upper bound.
func ClampNonNegative(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

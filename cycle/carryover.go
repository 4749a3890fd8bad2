/*
carryover.go - Calendar-year earned-instance windows

PURPOSE:
  Carryover benefits don't reset; they accumulate. Each calendar year the
  user may "earn" one instance of the benefit, and that instance stays
  usable through December 31 of the following year, independent of every
  other instance and of the card's anniversary. A benefit can therefore
  have two live instances at once (last year's and this year's), each with
  its own used amount.

INVARIANTS:
  - At most one instance earned per calendar year
  - Instance earned in year X expires strictly after Dec 31 of X+1
  - Instances are never deleted on expiry; expiry only affects the
    active filter. History is retained for audit and justifications.
*/
package cycle

import "github.com/shopspring/decimal"

// =============================================================================
// EARNED INSTANCE - One yearly earn event of a carryover benefit
// =============================================================================

// EarnedInstance is a single earn event. EarnedDate is fixed at creation;
// only the usage side mutates, and only through the owning benefit.
type EarnedInstance struct {
	EarnedDate TimePoint
	UsedAmount decimal.Decimal
}

// ExpiryDate is the last day the instance can be used: December 31 of the
// year after it was earned, regardless of anniversary.
func (i EarnedInstance) ExpiryDate() TimePoint {
	return EndOfYear(i.EarnedDate.Year() + 1)
}

// ActiveAt reports whether the instance is still usable on the given day.
func (i EarnedInstance) ActiveAt(ref TimePoint) bool {
	return i.ExpiryDate().AfterOrEqual(ref)
}

// Remaining returns the unused value of this instance given the benefit's
// per-instance total. Never negative.
func (i EarnedInstance) Remaining(perInstanceTotal decimal.Decimal) decimal.Decimal {
	return ClampNonNegative(perInstanceTotal.Sub(i.UsedAmount))
}

// =============================================================================
// CARRYOVER CYCLE - Pure calculator over the instance list
// =============================================================================

// CarryoverCycle is derived fresh from a benefit's earned-instance list
// before every query. The slice is treated as read-only.
type CarryoverCycle struct {
	Instances []EarnedInstance
}

func NewCarryoverCycle(instances []EarnedInstance) CarryoverCycle {
	return CarryoverCycle{Instances: instances}
}

// ActiveInstances returns the indexes of instances still usable at ref,
// in their original (earn) order.
func (c CarryoverCycle) ActiveInstances(ref TimePoint) []int {
	var active []int
	for idx, inst := range c.Instances {
		if inst.ActiveAt(ref) {
			active = append(active, idx)
		}
	}
	return active
}

// HasActiveInstances reports whether any instance is usable at ref.
func (c CarryoverCycle) HasActiveInstances(ref TimePoint) bool {
	for _, inst := range c.Instances {
		if inst.ActiveAt(ref) {
			return true
		}
	}
	return false
}

// TotalRemaining sums the unused value of every active instance. Expired
// instances contribute nothing, whatever their used amount.
func (c CarryoverCycle) TotalRemaining(perInstanceTotal decimal.Decimal, ref TimePoint) decimal.Decimal {
	total := decimal.Zero
	for _, inst := range c.Instances {
		if inst.ActiveAt(ref) {
			total = total.Add(inst.Remaining(perInstanceTotal))
		}
	}
	return total
}

// CanEarnThisYear reports whether no instance has been earned in ref's
// calendar year yet. Expired instances from the same year still count:
// one earn per year, full stop.
func (c CarryoverCycle) CanEarnThisYear(ref TimePoint) bool {
	for _, inst := range c.Instances {
		if inst.EarnedDate.Year() == ref.Year() {
			return false
		}
	}
	return true
}

// EarnDeadline is the last day an instance can still be earned for ref's
// year (December 31).
func (c CarryoverCycle) EarnDeadline(ref TimePoint) TimePoint {
	return EndOfYear(ref.Year())
}

// EarliestExpiryDate returns the soonest expiry among active instances.
// ok is false when nothing is active.
func (c CarryoverCycle) EarliestExpiryDate(ref TimePoint) (TimePoint, bool) {
	var earliest TimePoint
	found := false
	for _, inst := range c.Instances {
		if !inst.ActiveAt(ref) {
			continue
		}
		exp := inst.ExpiryDate()
		if !found || exp.Before(earliest) {
			earliest = exp
			found = true
		}
	}
	return earliest, found
}

// DaysUntilEarliestExpiry returns whole days from ref to the soonest active
// expiry. ok is false when nothing is active.
func (c CarryoverCycle) DaysUntilEarliestExpiry(ref TimePoint) (int, bool) {
	earliest, ok := c.EarliestExpiryDate(ref)
	if !ok {
		return 0, false
	}
	return DaysBetween(ref, earliest), true
}

// ExpiringInstances returns indexes of instances whose expiry is strictly
// after ref and on/before ref+windowDays. Used for "expiring soon" surfacing.
func (c CarryoverCycle) ExpiringInstances(ref TimePoint, windowDays int) []int {
	limit := ref.AddDays(windowDays)
	var expiring []int
	for idx, inst := range c.Instances {
		exp := inst.ExpiryDate()
		if exp.After(ref) && exp.BeforeOrEqual(limit) {
			expiring = append(expiring, idx)
		}
	}
	return expiring
}

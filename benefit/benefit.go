/*
Package benefit contains the aggregate entities of the engine: Benefit,
MinimumSpend, and the Card that owns them.

PURPOSE:
  Aggregates hold the raw persisted fields and are the unit of mutation.
  They never cache a cycle calculator: every cycle query derives a fresh
  view from the current fields (see Expiry()/Carryover()), so a field
  edit can never leave a stale calculator behind.

KEY INVARIANTS (enforced here, not at call sites):
  - usedAmount is clamped to [0, totalAmount] on every write
  - autoClaim and ignored are mutually exclusive; every path that touches
    either flag goes through applyClaimFlag
  - Reset is the only method that advances lastReset
  - earned instances are append-only; expiry never deletes them

SEE ALSO:
  - cycle: the pure calculators these aggregates derive views from
  - engine: decides WHEN Reset is called; aggregates only know HOW
*/
package benefit

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/benefit-engine/cycle"
)

// =============================================================================
// USAGE JUSTIFICATION - Free-form ledger entry attached to a benefit
// =============================================================================

// Justification records why some amount of a benefit was used. Entries are
// informational: the justified total is never reconciled against usedAmount.
type Justification struct {
	ID            string
	Amount        decimal.Decimal
	Justification string
	ReminderDate  cycle.TimePoint // zero = none
	ChargeDate    cycle.TimePoint // zero = none
	Confirmed     bool
}

// EarnedInstance is one yearly earn event of a carryover benefit, with its
// own usage ledger. EarnedDate is immutable after creation.
type EarnedInstance struct {
	EarnedDate          cycle.TimePoint
	UsedAmount          decimal.Decimal
	UsageJustifications []Justification
}

// =============================================================================
// BENEFIT - The unit of mutation
// =============================================================================

type Benefit struct {
	ID          string
	Description string
	TotalAmount decimal.Decimal
	UsedAmount  decimal.Decimal

	Frequency cycle.Frequency
	ResetType cycle.ResetType // empty for one-time and carryover
	LastReset cycle.TimePoint // zero for one-time

	AutoClaim        bool
	AutoClaimEndDate cycle.TimePoint
	Ignored          bool
	IgnoredEndDate   cycle.TimePoint

	ExpiryDate cycle.TimePoint // one-time only

	IsCarryover     bool
	EarnedInstances []EarnedInstance

	RequiredMinimumSpendID string

	UsageJustifications []Justification

	// The owning card's anniversary, maintained by the Card so that
	// anniversary-based cycle views always reflect the latest edit.
	Anniversary cycle.TimePoint
}

// NewBenefit creates a benefit with a fresh ID. Recurring benefits get their
// first period anchored at the creation date.
func NewBenefit(description string, total decimal.Decimal, freq cycle.Frequency, resetType cycle.ResetType, createdAt cycle.TimePoint) *Benefit {
	b := &Benefit{
		ID:          uuid.NewString(),
		Description: description,
		TotalAmount: cycle.ClampNonNegative(total),
		Frequency:   freq,
		IsCarryover: freq == cycle.FreqCarryover,
	}
	if b.Kind() == cycle.KindRecurring {
		b.ResetType = resetType
		b.LastReset = createdAt
	}
	return b
}

// Kind returns the behavioral family, derived from raw fields.
func (b *Benefit) Kind() cycle.Kind {
	return cycle.KindOf(b.Frequency, b.IsCarryover)
}

// =============================================================================
// DERIVED CYCLE VIEWS - Never cached
// =============================================================================

// Expiry derives the recurring-cycle view from current fields.
func (b *Benefit) Expiry() cycle.ExpiryCycle {
	return cycle.NewExpiryCycle(b.Frequency, b.ResetType, b.LastReset, b.Anniversary)
}

// Carryover derives the carryover-cycle view from the current instance list.
func (b *Benefit) Carryover() cycle.CarryoverCycle {
	instances := make([]cycle.EarnedInstance, len(b.EarnedInstances))
	for i, inst := range b.EarnedInstances {
		instances[i] = cycle.EarnedInstance{EarnedDate: inst.EarnedDate, UsedAmount: inst.UsedAmount}
	}
	return cycle.NewCarryoverCycle(instances)
}

// =============================================================================
// USAGE
// =============================================================================

// SetUsedAmount writes the used amount, clamped to [0, TotalAmount].
// Out-of-range input is coerced, never rejected.
func (b *Benefit) SetUsedAmount(v decimal.Decimal) {
	b.UsedAmount = cycle.ClampAmount(v, b.TotalAmount)
}

// SetTotalAmount updates the face value and re-clamps usage against it.
func (b *Benefit) SetTotalAmount(v decimal.Decimal) {
	b.TotalAmount = cycle.ClampNonNegative(v)
	b.UsedAmount = cycle.ClampAmount(b.UsedAmount, b.TotalAmount)
}

// Remaining returns the unused value at ref: the aggregate across active
// instances for carryover, total minus used otherwise.
func (b *Benefit) Remaining(ref cycle.TimePoint) decimal.Decimal {
	if b.Kind() == cycle.KindCarryover {
		return b.Carryover().TotalRemaining(b.TotalAmount, ref)
	}
	return cycle.ClampNonNegative(b.TotalAmount.Sub(b.UsedAmount))
}

// IsFullyUsed reports whether nothing is left to claim at ref.
func (b *Benefit) IsFullyUsed(ref cycle.TimePoint) bool {
	return !b.Remaining(ref).IsPositive()
}

// Reset zeroes usage and stamps the new period start. This is the only path
// that advances LastReset; the engine decides when to call it. No-op for
// benefits without a reset cycle.
func (b *Benefit) Reset(date cycle.TimePoint) {
	if b.Kind() != cycle.KindRecurring {
		return
	}
	b.UsedAmount = decimal.Zero
	b.LastReset = date
}

// =============================================================================
// AUTO-CLAIM / IGNORE - Centralized flag transition
// =============================================================================

// claimFlag identifies which of the two mutually exclusive flags a
// transition targets.
type claimFlag int

const (
	flagAutoClaim claimFlag = iota
	flagIgnored
)

// applyClaimFlag is the single transition function for the auto-claim/ignore
// pair. Setting either flag clears the other; callers never juggle the pair
// themselves.
func (b *Benefit) applyClaimFlag(which claimFlag, on bool, end cycle.TimePoint) {
	switch which {
	case flagAutoClaim:
		b.AutoClaim = on
		b.AutoClaimEndDate = end
		if on {
			b.Ignored = false
			b.IgnoredEndDate = cycle.TimePoint{}
		}
	case flagIgnored:
		b.Ignored = on
		b.IgnoredEndDate = end
		if on {
			b.AutoClaim = false
			b.AutoClaimEndDate = cycle.TimePoint{}
		}
	}
}

// SetAutoClaim enables or disables auto-claim through the given end date.
func (b *Benefit) SetAutoClaim(on bool, end cycle.TimePoint) {
	b.applyClaimFlag(flagAutoClaim, on, end)
}

// SetIgnored enables or disables silent rolling through the given end date.
func (b *Benefit) SetIgnored(on bool, end cycle.TimePoint) {
	b.applyClaimFlag(flagIgnored, on, end)
}

// IsAutoClaimActive reports whether auto-claim applies at ref: the flag is
// set and its end date has not passed. A set flag with no end date never
// applies; the mutation entry points reject that shape. Always false for
// one-time benefits.
func (b *Benefit) IsAutoClaimActive(ref cycle.TimePoint) bool {
	if b.Kind() == cycle.KindOneTime {
		return false
	}
	return b.AutoClaim && !b.AutoClaimEndDate.IsZero() && b.AutoClaimEndDate.AfterOrEqual(ref)
}

// IsIgnoredActive reports whether silent rolling applies at ref, under the
// same end-date rule as IsAutoClaimActive.
func (b *Benefit) IsIgnoredActive(ref cycle.TimePoint) bool {
	if b.Kind() == cycle.KindOneTime {
		return false
	}
	return b.Ignored && !b.IgnoredEndDate.IsZero() && b.IgnoredEndDate.AfterOrEqual(ref)
}

// =============================================================================
// CARRYOVER INSTANCES
// =============================================================================

// EarnInstance records this year's earn event. At most one instance per
// calendar year; existing instances are never touched.
func (b *Benefit) EarnInstance(date cycle.TimePoint) error {
	if b.Kind() != cycle.KindCarryover {
		return ErrNotCarryover
	}
	if !b.Carryover().CanEarnThisYear(date) {
		return ErrAlreadyEarnedThisYear
	}
	b.EarnedInstances = append(b.EarnedInstances, EarnedInstance{
		EarnedDate: date,
		UsedAmount: decimal.Zero,
	})
	return nil
}

// SetInstanceUsedAmount writes an instance's used amount, clamped to
// [0, TotalAmount].
func (b *Benefit) SetInstanceUsedAmount(index int, v decimal.Decimal) error {
	if index < 0 || index >= len(b.EarnedInstances) {
		return ErrInstanceNotFound
	}
	b.EarnedInstances[index].UsedAmount = cycle.ClampAmount(v, b.TotalAmount)
	return nil
}

// =============================================================================
// MINIMUM SPEND LINKAGE
// =============================================================================

// HasRequiredMinimumSpend reports whether this benefit is gated on a spend
// requirement. Whether the gate is open is the Card's call (it can resolve
// the referenced MinimumSpend).
func (b *Benefit) HasRequiredMinimumSpend() bool {
	return b.RequiredMinimumSpendID != ""
}

// =============================================================================
// JUSTIFICATION LEDGER
// =============================================================================

// AddJustification appends a ledger entry and returns its ID.
func (b *Benefit) AddJustification(amount decimal.Decimal, text string, reminder, charge cycle.TimePoint) string {
	j := Justification{
		ID:            uuid.NewString(),
		Amount:        cycle.ClampNonNegative(amount),
		Justification: text,
		ReminderDate:  reminder,
		ChargeDate:    charge,
	}
	b.UsageJustifications = append(b.UsageJustifications, j)
	return j.ID
}

// ConfirmJustification marks an entry confirmed.
func (b *Benefit) ConfirmJustification(id string) error {
	for i := range b.UsageJustifications {
		if b.UsageJustifications[i].ID == id {
			b.UsageJustifications[i].Confirmed = true
			return nil
		}
	}
	return ErrJustificationNotFound
}

// RemoveJustification deletes an entry from the ledger.
func (b *Benefit) RemoveJustification(id string) error {
	for i := range b.UsageJustifications {
		if b.UsageJustifications[i].ID == id {
			b.UsageJustifications = append(b.UsageJustifications[:i], b.UsageJustifications[i+1:]...)
			return nil
		}
	}
	return ErrJustificationNotFound
}

// AddInstanceJustification appends a ledger entry to one earned instance
// and returns its ID.
func (b *Benefit) AddInstanceJustification(index int, amount decimal.Decimal, text string, reminder, charge cycle.TimePoint) (string, error) {
	if index < 0 || index >= len(b.EarnedInstances) {
		return "", ErrInstanceNotFound
	}
	j := Justification{
		ID:            uuid.NewString(),
		Amount:        cycle.ClampNonNegative(amount),
		Justification: text,
		ReminderDate:  reminder,
		ChargeDate:    charge,
	}
	inst := &b.EarnedInstances[index]
	inst.UsageJustifications = append(inst.UsageJustifications, j)
	return j.ID, nil
}

// ConfirmInstanceJustification marks an instance's ledger entry confirmed.
func (b *Benefit) ConfirmInstanceJustification(index int, id string) error {
	if index < 0 || index >= len(b.EarnedInstances) {
		return ErrInstanceNotFound
	}
	js := b.EarnedInstances[index].UsageJustifications
	for i := range js {
		if js[i].ID == id {
			js[i].Confirmed = true
			return nil
		}
	}
	return ErrJustificationNotFound
}

// RemoveInstanceJustification deletes an entry from an instance's ledger.
func (b *Benefit) RemoveInstanceJustification(index int, id string) error {
	if index < 0 || index >= len(b.EarnedInstances) {
		return ErrInstanceNotFound
	}
	inst := &b.EarnedInstances[index]
	for i := range inst.UsageJustifications {
		if inst.UsageJustifications[i].ID == id {
			inst.UsageJustifications = append(inst.UsageJustifications[:i], inst.UsageJustifications[i+1:]...)
			return nil
		}
	}
	return ErrJustificationNotFound
}

// TotalJustified sums the ledger. Informational only: never reconciled
// against UsedAmount.
func (b *Benefit) TotalJustified() decimal.Decimal {
	total := decimal.Zero
	for _, j := range b.UsageJustifications {
		total = total.Add(j.Amount)
	}
	return total
}

/*
card.go - The Card aggregate

PURPOSE:
  A Card owns an ordered collection of Benefits and MinimumSpends that
  share one anniversary date. It exposes the filtering/aggregation
  queries the reset engine and callers rely on; the queries never mutate.

ANNIVERSARY PROPAGATION:
  Children keep a copy of the card's anniversary so their cycle views can
  be derived without reaching back to the parent. Every edit path that
  changes the anniversary (SetAnniversary, AddBenefit, AddMinimumSpend)
  re-stamps the children, so anniversary-based cycles can never be
  derived from a stale date.
*/
package benefit

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/benefit-engine/cycle"
)

type Card struct {
	ID          string
	Name        string
	Anniversary cycle.TimePoint // month/day significant; year ignored for anniversary math

	Benefits      []*Benefit
	MinimumSpends []*MinimumSpend
}

// NewCard creates a card with a fresh ID.
func NewCard(name string, anniversary cycle.TimePoint) *Card {
	return &Card{
		ID:          uuid.NewString(),
		Name:        name,
		Anniversary: anniversary,
	}
}

// =============================================================================
// CHILD MANAGEMENT
// =============================================================================

// AddBenefit appends a benefit and stamps it with the card's anniversary.
func (c *Card) AddBenefit(b *Benefit) {
	b.Anniversary = c.Anniversary
	c.Benefits = append(c.Benefits, b)
}

// RemoveBenefit deletes a benefit by ID.
func (c *Card) RemoveBenefit(id string) error {
	for i, b := range c.Benefits {
		if b.ID == id {
			c.Benefits = append(c.Benefits[:i], c.Benefits[i+1:]...)
			return nil
		}
	}
	return ErrBenefitNotFound
}

// AddMinimumSpend appends a spend requirement and stamps the anniversary.
func (c *Card) AddMinimumSpend(m *MinimumSpend) {
	m.Anniversary = c.Anniversary
	c.MinimumSpends = append(c.MinimumSpends, m)
}

// RemoveMinimumSpend deletes a requirement and unlinks any benefit gated
// on it, so no dangling reference can keep a benefit locked.
func (c *Card) RemoveMinimumSpend(id string) error {
	for i, m := range c.MinimumSpends {
		if m.ID == id {
			c.MinimumSpends = append(c.MinimumSpends[:i], c.MinimumSpends[i+1:]...)
			for _, b := range c.Benefits {
				if b.RequiredMinimumSpendID == id {
					b.RequiredMinimumSpendID = ""
				}
			}
			return nil
		}
	}
	return ErrMinimumSpendNotFound
}

// ReorderBenefits re-sorts the benefit list to match ids, which must name
// exactly the current benefits.
func (c *Card) ReorderBenefits(ids []string) error {
	if len(ids) != len(c.Benefits) {
		return ErrReorderMismatch
	}
	byID := make(map[string]*Benefit, len(c.Benefits))
	for _, b := range c.Benefits {
		byID[b.ID] = b
	}
	ordered := make([]*Benefit, 0, len(ids))
	for _, id := range ids {
		b, ok := byID[id]
		if !ok {
			return ErrReorderMismatch
		}
		ordered = append(ordered, b)
		delete(byID, id)
	}
	c.Benefits = ordered
	return nil
}

// SetAnniversary changes the card's anniversary and re-derives every
// child's anniversary-based cycle by re-stamping the copied date.
func (c *Card) SetAnniversary(d cycle.TimePoint) {
	c.Anniversary = d
	for _, b := range c.Benefits {
		b.Anniversary = d
	}
	for _, m := range c.MinimumSpends {
		m.Anniversary = d
	}
}

// FindBenefit returns the benefit with the given ID.
func (c *Card) FindBenefit(id string) (*Benefit, error) {
	for _, b := range c.Benefits {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, ErrBenefitNotFound
}

// FindMinimumSpend returns the requirement with the given ID.
func (c *Card) FindMinimumSpend(id string) (*MinimumSpend, error) {
	for _, m := range c.MinimumSpends {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, ErrMinimumSpendNotFound
}

// =============================================================================
// QUERIES - Read-only; the reset engine builds its snapshot from these
// =============================================================================

// BenefitsNeedingReset returns the recurring benefits whose period boundary
// has passed at ref. This is the authoritative "action required" query and
// must not mutate anything.
func (c *Card) BenefitsNeedingReset(ref cycle.TimePoint) []*Benefit {
	var due []*Benefit
	for _, b := range c.Benefits {
		if b.Kind() != cycle.KindRecurring {
			continue
		}
		if b.Expiry().IsExpired(ref) {
			due = append(due, b)
		}
	}
	return due
}

// BenefitsExpiringWithin returns benefits whose current value runs out
// within the window: recurring periods ending soon, plus carryover
// benefits with instances expiring soon.
func (c *Card) BenefitsExpiringWithin(ref cycle.TimePoint, windowDays int) []*Benefit {
	var expiring []*Benefit
	for _, b := range c.Benefits {
		switch b.Kind() {
		case cycle.KindRecurring:
			if b.Expiry().ExpiresWithin(ref, windowDays) {
				expiring = append(expiring, b)
			}
		case cycle.KindCarryover:
			if len(b.Carryover().ExpiringInstances(ref, windowDays)) > 0 {
				expiring = append(expiring, b)
			}
		case cycle.KindOneTime:
			if !b.ExpiryDate.IsZero() && b.ExpiryDate.After(ref) && b.ExpiryDate.BeforeOrEqual(ref.AddDays(windowDays)) {
				expiring = append(expiring, b)
			}
		}
	}
	return expiring
}

// UnlockedBenefits returns the benefits gated on the given requirement when
// it is currently met; empty otherwise.
func (c *Card) UnlockedBenefits(minSpendID string) []*Benefit {
	m, err := c.FindMinimumSpend(minSpendID)
	if err != nil || !m.IsMet {
		return nil
	}
	var unlocked []*Benefit
	for _, b := range c.Benefits {
		if b.RequiredMinimumSpendID == minSpendID {
			unlocked = append(unlocked, b)
		}
	}
	return unlocked
}

// IsBenefitLocked reports whether the benefit's required minimum spend
// exists and is unmet. Benefits without a link are never locked; a link to
// a missing requirement is treated as unlinked.
func (c *Card) IsBenefitLocked(b *Benefit) bool {
	if !b.HasRequiredMinimumSpend() {
		return false
	}
	m, err := c.FindMinimumSpend(b.RequiredMinimumSpendID)
	if err != nil {
		return false
	}
	return !m.IsMet
}

// MinimumSpendsNeedingReset returns recurring requirements whose window has
// rolled since their last reset.
func (c *Card) MinimumSpendsNeedingReset(ref cycle.TimePoint) []*MinimumSpend {
	var due []*MinimumSpend
	for _, m := range c.MinimumSpends {
		if m.ShouldReset(ref) {
			due = append(due, m)
		}
	}
	return due
}

// TotalRemaining sums the remaining value of every benefit on the card at
// ref. Locked benefits are excluded: their value is not yet available.
func (c *Card) TotalRemaining(ref cycle.TimePoint) decimal.Decimal {
	total := decimal.Zero
	for _, b := range c.Benefits {
		if c.IsBenefitLocked(b) {
			continue
		}
		total = total.Add(b.Remaining(ref))
	}
	return total
}

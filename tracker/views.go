/*
views.go - Read-side projections for display surfaces

PURPOSE:
  A view is a card plus everything the UI would otherwise recompute:
  remaining amounts, next reset and use-by dates, lock status, carryover
  instance summaries, minimum-spend periods. Views are computed on demand
  at an explicit reference date and never stored.
*/
package tracker

import (
	"github.com/shopspring/decimal"

	"github.com/warp/benefit-engine/benefit"
	"github.com/warp/benefit-engine/cycle"
)

type CardView struct {
	ID             string
	Name           string
	Anniversary    cycle.TimePoint
	TotalRemaining decimal.Decimal
	Benefits       []BenefitView
	MinimumSpends  []MinimumSpendView
}

type BenefitView struct {
	ID          string
	Description string
	Kind        cycle.Kind
	Total       decimal.Decimal
	Used        decimal.Decimal
	Remaining   decimal.Decimal
	Locked      bool

	// Recurring only.
	NextResetDate  cycle.TimePoint
	DaysUntilReset int
	UseByDate      cycle.TimePoint
	HasCycle       bool

	// Flags evaluated at the reference date.
	AutoClaimActive bool
	IgnoredActive   bool

	// Carryover only.
	ActiveInstances []InstanceView
	CanEarnThisYear bool
	EarnDeadline    cycle.TimePoint
}

type InstanceView struct {
	Index      int
	EarnedDate cycle.TimePoint
	ExpiryDate cycle.TimePoint
	Remaining  decimal.Decimal
}

type MinimumSpendView struct {
	ID          string
	Description string
	Target      decimal.Decimal
	Current     decimal.Decimal
	Remaining   decimal.Decimal
	IsMet       bool

	Period            cycle.Period
	Deadline          cycle.TimePoint
	DaysUntilDeadline int
	HasDeadline       bool
}

func newCardView(c *benefit.Card, ref cycle.TimePoint) CardView {
	view := CardView{
		ID:             c.ID,
		Name:           c.Name,
		Anniversary:    c.Anniversary,
		TotalRemaining: c.TotalRemaining(ref),
	}
	for _, b := range c.Benefits {
		view.Benefits = append(view.Benefits, newBenefitView(c, b, ref))
	}
	for _, m := range c.MinimumSpends {
		view.MinimumSpends = append(view.MinimumSpends, newMinimumSpendView(m, ref))
	}
	return view
}

func newBenefitView(c *benefit.Card, b *benefit.Benefit, ref cycle.TimePoint) BenefitView {
	view := BenefitView{
		ID:              b.ID,
		Description:     b.Description,
		Kind:            b.Kind(),
		Total:           b.TotalAmount,
		Used:            b.UsedAmount,
		Remaining:       b.Remaining(ref),
		Locked:          c.IsBenefitLocked(b),
		AutoClaimActive: b.IsAutoClaimActive(ref),
		IgnoredActive:   b.IsIgnoredActive(ref),
	}

	switch b.Kind() {
	case cycle.KindRecurring:
		exp := b.Expiry()
		if next, ok := exp.NextResetDate(ref); ok {
			view.NextResetDate = next
			view.HasCycle = true
		}
		if days, ok := exp.DaysUntilReset(ref); ok {
			view.DaysUntilReset = days
		}
		if useBy, ok := exp.UseByDate(ref); ok {
			view.UseByDate = useBy
		}
	case cycle.KindCarryover:
		co := b.Carryover()
		for _, idx := range co.ActiveInstances(ref) {
			inst := co.Instances[idx]
			view.ActiveInstances = append(view.ActiveInstances, InstanceView{
				Index:      idx,
				EarnedDate: inst.EarnedDate,
				ExpiryDate: inst.ExpiryDate(),
				Remaining:  inst.Remaining(b.TotalAmount),
			})
		}
		view.CanEarnThisYear = co.CanEarnThisYear(ref)
		view.EarnDeadline = co.EarnDeadline(ref)
	}
	return view
}

func newMinimumSpendView(m *benefit.MinimumSpend, ref cycle.TimePoint) MinimumSpendView {
	view := MinimumSpendView{
		ID:          m.ID,
		Description: m.Description,
		Target:      m.TargetAmount,
		Current:     m.CurrentAmount,
		Remaining:   m.Remaining(),
		IsMet:       m.IsMet,
	}

	mc := m.Cycle()
	if mc.OneTime() {
		if !m.Deadline.IsZero() {
			view.Deadline = m.Deadline
			view.HasDeadline = true
			view.DaysUntilDeadline = cycle.DaysBetween(ref, m.Deadline)
		}
		return view
	}
	if period, ok := mc.CurrentPeriod(ref); ok {
		view.Period = period
	}
	if deadline, ok := mc.CurrentDeadline(ref); ok {
		view.Deadline = deadline
		view.HasDeadline = true
	}
	if days, ok := mc.DaysUntilDeadline(ref); ok {
		view.DaysUntilDeadline = days
	}
	return view
}

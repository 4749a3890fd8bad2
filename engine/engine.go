/*
Package engine implements the reset-detection and application pass.

PURPOSE:
  Once per load (and once per scheduler tick) the engine walks every card
  and classifies each benefit against the injected reference date:

    Current       no action
    AutoClaimed   auto-claim active, value not yet marked used; usage is
                  forced to the full amount immediately, independent of
                  any period boundary
    AutoReset     period boundary passed, auto-claim active; new period is
                  stamped and usage forced to the full amount
    SilentRoll    period boundary passed, ignore active; new period is
                  stamped with usage zeroed, nothing surfaced to the user
    PendingManual period boundary passed, no policy set; queued for an
                  explicit user accept/decline, data left untouched

  Recurring minimum spends whose window rolled are zeroed in the same
  pass.

SNAPSHOT ORDERING:
  The full classification of every benefit is computed BEFORE any
  mutation is applied, so pending-manual decisions are always based on a
  consistent snapshot, never on state partially mutated earlier in the
  same pass.

DECLINE SEMANTICS:
  Declining a pending reset changes nothing: the benefit stays due for
  reset (byte-identical usage and lastReset) until the user accepts or
  sets an auto-claim/ignore policy.
*/
package engine

import (
	"github.com/warp/benefit-engine/benefit"
	"github.com/warp/benefit-engine/cycle"
)

// =============================================================================
// CLASSIFICATION
// =============================================================================

// State is the per-benefit outcome of a reset-detection pass.
type State string

const (
	StateCurrent       State = "current"
	StateAutoClaimed   State = "auto_claimed"
	StateAutoReset     State = "auto_reset"
	StateSilentRoll    State = "silent_roll"
	StatePendingManual State = "pending_manual"
)

// Outcome records what the pass decided (and, after Run, did) for one
// benefit.
type Outcome struct {
	CardID      string
	CardName    string
	BenefitID   string
	Description string
	State       State

	// ResetDate is the boundary stamped as the new period start for
	// AutoReset/SilentRoll, and the boundary a PendingManual accept would
	// stamp. Zero for Current/AutoClaimed.
	ResetDate cycle.TimePoint
}

// Result is the outcome of one full pass.
type Result struct {
	AutoClaimed []Outcome
	AutoReset   []Outcome
	SilentRoll  []Outcome
	Pending     []Outcome

	// MinimumSpendResets lists recurring requirements zeroed for a new
	// window, as (cardID, minimumSpendID) pairs.
	MinimumSpendResets [][2]string
}

// Changed reports whether the pass mutated any aggregate (pending items do
// not count; they are surfaced, not applied).
func (r Result) Changed() bool {
	return len(r.AutoClaimed) > 0 || len(r.AutoReset) > 0 ||
		len(r.SilentRoll) > 0 || len(r.MinimumSpendResets) > 0
}

// =============================================================================
// THE PASS
// =============================================================================

// Run classifies every benefit at today, then applies the auto/silent
// outcomes. Pending-manual items are returned untouched for the caller to
// surface. Running twice at the same date is a no-op the second time.
func Run(cards []*benefit.Card, today cycle.TimePoint) Result {
	type application struct {
		b       *benefit.Benefit
		outcome Outcome
	}
	type minSpendApp struct {
		m      *benefit.MinimumSpend
		cardID string
		start  cycle.TimePoint
	}

	var (
		result     Result
		toApply    []application
		msSnapshot []minSpendApp
	)

	// Phase 1: classify everything from an unmutated snapshot.
	for _, card := range cards {
		for _, b := range card.Benefits {
			outcome := classify(card, b, today)
			switch outcome.State {
			case StateCurrent:
				continue
			case StatePendingManual:
				result.Pending = append(result.Pending, outcome)
			default:
				toApply = append(toApply, application{b: b, outcome: outcome})
			}
		}
		for _, m := range card.MinimumSpendsNeedingReset(today) {
			period, ok := m.Cycle().CurrentPeriod(today)
			if !ok {
				continue
			}
			msSnapshot = append(msSnapshot, minSpendApp{m: m, cardID: card.ID, start: period.Start})
		}
	}

	// Phase 2: apply the auto/silent outcomes.
	for _, app := range toApply {
		switch app.outcome.State {
		case StateAutoClaimed:
			app.b.SetUsedAmount(app.b.TotalAmount)
			result.AutoClaimed = append(result.AutoClaimed, app.outcome)
		case StateAutoReset:
			app.b.Reset(app.outcome.ResetDate)
			app.b.SetUsedAmount(app.b.TotalAmount)
			result.AutoReset = append(result.AutoReset, app.outcome)
		case StateSilentRoll:
			app.b.Reset(app.outcome.ResetDate)
			result.SilentRoll = append(result.SilentRoll, app.outcome)
		}
	}
	for _, app := range msSnapshot {
		app.m.Reset(app.start)
		result.MinimumSpendResets = append(result.MinimumSpendResets, [2]string{app.cardID, app.m.ID})
	}

	return result
}

// classify computes the state of one benefit without mutating it.
func classify(card *benefit.Card, b *benefit.Benefit, today cycle.TimePoint) Outcome {
	outcome := Outcome{
		CardID:      card.ID,
		CardName:    card.Name,
		BenefitID:   b.ID,
		Description: b.Description,
		State:       StateCurrent,
	}

	if b.Kind() != cycle.KindRecurring {
		return outcome
	}

	ec := b.Expiry()
	if !ec.IsExpired(today) {
		if b.IsAutoClaimActive(today) && !b.IsFullyUsed(today) {
			outcome.State = StateAutoClaimed
		}
		return outcome
	}

	boundary, _ := ec.NextResetDate(today)
	outcome.ResetDate = boundary
	switch {
	case b.IsAutoClaimActive(today):
		outcome.State = StateAutoReset
	case b.IsIgnoredActive(today):
		outcome.State = StateSilentRoll
	default:
		outcome.State = StatePendingManual
	}
	return outcome
}

// =============================================================================
// MANUAL DECISIONS
// =============================================================================

// Accept applies a batch of pending manual resets: each benefit is reset
// with its recorded boundary as the new period start. The in-memory batch
// always applies as a unit; persistence is the caller's job, and on a
// persistence failure the caller must treat the in-memory state as
// non-durable and re-fetch.
func Accept(cards []*benefit.Card, pending []Outcome) error {
	// Resolve everything first so an unknown ID fails before any mutation.
	resolved := make([]*benefit.Benefit, 0, len(pending))
	for _, p := range pending {
		b, err := findBenefit(cards, p.CardID, p.BenefitID)
		if err != nil {
			return err
		}
		resolved = append(resolved, b)
	}
	for i, p := range pending {
		resolved[i].Reset(p.ResetDate)
	}
	return nil
}

// Decline records a user's refusal. Deliberately a no-op on the data: the
// benefit remains due for reset and will be re-surfaced on the next pass.
func Decline(cards []*benefit.Card, pending []Outcome) {
	// Nothing to do. The function exists so both decision paths are
	// explicit call sites rather than one being "just don't call Accept".
}

func findBenefit(cards []*benefit.Card, cardID, benefitID string) (*benefit.Benefit, error) {
	for _, c := range cards {
		if c.ID != cardID {
			continue
		}
		return c.FindBenefit(benefitID)
	}
	return nil, benefit.ErrBenefitNotFound
}

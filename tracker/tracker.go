/*
Package tracker is the top-level controller: it owns the loaded card set,
exposes every mutation entry point, and sequences persistence around them.

PURPOSE:
  The cycle calculators and aggregates are pure and synchronous; the
  tracker is the single caller that wires them to a Store. Each mutation
  follows the same shape:

    1. snapshot the current record set
    2. apply the mutation to the aggregates
    3. save the full record set
    4. on save failure, restore the snapshot and report the error

  so a persistence failure never leaves the in-memory state claiming to
  be durable.

REFERENCE DATES:
  "Today" is always an argument. The tracker never reads a wall clock;
  cmd/ and the scheduler decide what today is. That keeps every pass
  deterministically replayable.

CONCURRENCY:
  One mutex serializes all access. The engine is not designed for
  concurrent mutation of the same card set from multiple execution
  contexts; when a remote set is re-imported, state is re-derived fresh
  from whichever records are loaded (last successful write wins).
*/
package tracker

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/warp/benefit-engine/benefit"
	"github.com/warp/benefit-engine/cycle"
	"github.com/warp/benefit-engine/engine"
	"github.com/warp/benefit-engine/record"
)

type Tracker struct {
	mu      sync.Mutex
	store   record.Store
	log     *logrus.Logger
	cards   []*benefit.Card
	pending []engine.Outcome
}

func New(store record.Store, log *logrus.Logger) *Tracker {
	if log == nil {
		log = logrus.New()
	}
	return &Tracker{store: store, log: log}
}

// =============================================================================
// LOAD AND RESET PASSES
// =============================================================================

// Load reads the stored record set, rebuilds the aggregates, and runs one
// reset-detection pass at today. Auto/silent outcomes are persisted
// immediately; pending-manual items are queued for accept/decline.
func (t *Tracker) Load(ctx context.Context, today cycle.TimePoint) (engine.Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	records, err := t.store.LoadData(ctx)
	if err != nil {
		return engine.Result{}, fmt.Errorf("loading records: %w", err)
	}
	t.cards = record.ToDomain(records)
	return t.runPassLocked(ctx, today)
}

// RunResetPass re-runs reset detection on the already-loaded set. The
// scheduler calls this daily so auto-claims and silent rolls apply even
// when the user never opens the tool.
func (t *Tracker) RunResetPass(ctx context.Context, today cycle.TimePoint) (engine.Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runPassLocked(ctx, today)
}

func (t *Tracker) runPassLocked(ctx context.Context, today cycle.TimePoint) (engine.Result, error) {
	snapshot := record.FromDomain(t.cards)
	result := engine.Run(t.cards, today)
	t.pending = result.Pending

	if result.Changed() {
		if err := t.store.SaveData(ctx, record.FromDomain(t.cards)); err != nil {
			t.cards = record.ToDomain(snapshot)
			t.pending = nil
			return engine.Result{}, fmt.Errorf("persisting reset pass: %w", err)
		}
		t.log.WithFields(logrus.Fields{
			"auto_claimed": len(result.AutoClaimed),
			"auto_reset":   len(result.AutoReset),
			"silent_roll":  len(result.SilentRoll),
			"pending":      len(result.Pending),
		}).Info("reset pass applied")
	}
	return result, nil
}

// =============================================================================
// QUERIES
// =============================================================================

// Records returns the current set in serialized form.
func (t *Tracker) Records() []record.Card {
	t.mu.Lock()
	defer t.mu.Unlock()
	return record.FromDomain(t.cards)
}

// PendingResets returns the queued manual decisions from the last pass.
func (t *Tracker) PendingResets() []engine.Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]engine.Outcome, len(t.pending))
	copy(out, t.pending)
	return out
}

// CardViews computes the display projection of every card at ref.
func (t *Tracker) CardViews(ref cycle.TimePoint) []CardView {
	t.mu.Lock()
	defer t.mu.Unlock()
	views := make([]CardView, 0, len(t.cards))
	for _, c := range t.cards {
		views = append(views, newCardView(c, ref))
	}
	return views
}

// =============================================================================
// CARD MUTATIONS
// =============================================================================

func (t *Tracker) AddCard(ctx context.Context, name string, anniversary cycle.TimePoint) (string, error) {
	var id string
	err := t.mutate(ctx, func() error {
		c := benefit.NewCard(name, anniversary)
		t.cards = append(t.cards, c)
		id = c.ID
		return nil
	})
	return id, err
}

// UpdateCard renames a card and/or moves its anniversary. An anniversary
// edit re-derives every child's anniversary-based cycle.
func (t *Tracker) UpdateCard(ctx context.Context, cardID, name string, anniversary cycle.TimePoint) error {
	return t.mutate(ctx, func() error {
		c, err := t.findCard(cardID)
		if err != nil {
			return err
		}
		if name != "" {
			c.Name = name
		}
		if !anniversary.IsZero() {
			c.SetAnniversary(anniversary)
		}
		return nil
	})
}

// DeleteCard removes a card and, with it, every child benefit and minimum
// spend (cascade).
func (t *Tracker) DeleteCard(ctx context.Context, cardID string) error {
	return t.mutate(ctx, func() error {
		for i, c := range t.cards {
			if c.ID == cardID {
				t.cards = append(t.cards[:i], t.cards[i+1:]...)
				t.dropPendingForCard(cardID)
				return nil
			}
		}
		return ErrCardNotFound
	})
}

func (t *Tracker) ReorderCards(ctx context.Context, ids []string) error {
	return t.mutate(ctx, func() error {
		if len(ids) != len(t.cards) {
			return benefit.ErrReorderMismatch
		}
		byID := make(map[string]*benefit.Card, len(t.cards))
		for _, c := range t.cards {
			byID[c.ID] = c
		}
		ordered := make([]*benefit.Card, 0, len(ids))
		for _, id := range ids {
			c, ok := byID[id]
			if !ok {
				return benefit.ErrReorderMismatch
			}
			ordered = append(ordered, c)
			delete(byID, id)
		}
		t.cards = ordered
		return nil
	})
}

// =============================================================================
// BENEFIT MUTATIONS
// =============================================================================

// BenefitInput carries the user-editable fields for creating a benefit.
type BenefitInput struct {
	Description            string
	TotalAmount            decimal.Decimal
	Frequency              string // wire form; synonyms accepted
	ResetType              string
	ExpiryDate             cycle.TimePoint // one-time only
	RequiredMinimumSpendID string
}

func (t *Tracker) AddBenefit(ctx context.Context, cardID string, in BenefitInput, today cycle.TimePoint) (string, error) {
	var id string
	err := t.mutate(ctx, func() error {
		c, err := t.findCard(cardID)
		if err != nil {
			return err
		}
		freq := record.NormalizeFrequency(in.Frequency)
		if !freq.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidFrequency, in.Frequency)
		}
		b := benefit.NewBenefit(in.Description, in.TotalAmount, freq, cycle.ResetType(in.ResetType), today)
		if b.Kind() == cycle.KindOneTime {
			b.ExpiryDate = in.ExpiryDate
		}
		b.RequiredMinimumSpendID = in.RequiredMinimumSpendID
		c.AddBenefit(b)
		id = b.ID
		return nil
	})
	return id, err
}

// BenefitUpdate carries the editable fields for an existing benefit. Nil
// pointers mean "leave unchanged".
type BenefitUpdate struct {
	Description            *string
	TotalAmount            *decimal.Decimal
	Frequency              *string // wire form; synonyms accepted
	ResetType              *string
	RequiredMinimumSpendID *string
	ExpiryDate             *cycle.TimePoint
	AutoClaim              *bool
	AutoClaimEndDate       cycle.TimePoint
	Ignored                *bool
	IgnoredEndDate         cycle.TimePoint
}

func (t *Tracker) UpdateBenefit(ctx context.Context, cardID, benefitID string, in BenefitUpdate, today cycle.TimePoint) error {
	return t.mutate(ctx, func() error {
		b, _, err := t.findBenefit(cardID, benefitID)
		if err != nil {
			return err
		}
		if in.Description != nil {
			b.Description = *in.Description
		}
		if in.TotalAmount != nil {
			b.SetTotalAmount(*in.TotalAmount)
		}
		if in.RequiredMinimumSpendID != nil {
			b.RequiredMinimumSpendID = *in.RequiredMinimumSpendID
		}
		if in.Frequency != nil || in.ResetType != nil {
			if in.Frequency != nil {
				freq := record.NormalizeFrequency(*in.Frequency)
				if !freq.Valid() {
					return fmt.Errorf("%w: %q", ErrInvalidFrequency, *in.Frequency)
				}
				b.Frequency = freq
				b.IsCarryover = freq == cycle.FreqCarryover
			}
			if in.ResetType != nil {
				b.ResetType = cycle.ResetType(*in.ResetType)
			}
			// Re-derive the cycle fields for the (possibly new) kind, and drop
			// any queued decision computed under the old schedule.
			if b.Kind() == cycle.KindRecurring {
				if b.LastReset.IsZero() {
					b.LastReset = today
				}
			} else {
				b.ResetType = ""
				if b.Kind() == cycle.KindCarryover {
					b.LastReset = cycle.TimePoint{}
				}
			}
			t.dropPendingForBenefit(benefitID)
		}
		if in.ExpiryDate != nil && b.Kind() == cycle.KindOneTime {
			b.ExpiryDate = *in.ExpiryDate
		}
		// The flag setters keep auto-claim and ignore mutually exclusive. A
		// flag without an end date would never apply, so enabling one
		// requires a date.
		if in.AutoClaim != nil {
			if *in.AutoClaim && in.AutoClaimEndDate.IsZero() {
				return ErrEndDateRequired
			}
			b.SetAutoClaim(*in.AutoClaim, in.AutoClaimEndDate)
		}
		if in.Ignored != nil {
			if *in.Ignored && in.IgnoredEndDate.IsZero() {
				return ErrEndDateRequired
			}
			b.SetIgnored(*in.Ignored, in.IgnoredEndDate)
		}
		return nil
	})
}

func (t *Tracker) DeleteBenefit(ctx context.Context, cardID, benefitID string) error {
	return t.mutate(ctx, func() error {
		c, err := t.findCard(cardID)
		if err != nil {
			return err
		}
		if err := c.RemoveBenefit(benefitID); err != nil {
			return err
		}
		t.dropPendingForBenefit(benefitID)
		return nil
	})
}

// SetBenefitUsage writes the used amount (clamped by the aggregate).
func (t *Tracker) SetBenefitUsage(ctx context.Context, cardID, benefitID string, amount decimal.Decimal) error {
	return t.mutate(ctx, func() error {
		b, _, err := t.findBenefit(cardID, benefitID)
		if err != nil {
			return err
		}
		b.SetUsedAmount(amount)
		return nil
	})
}

// EarnCarryover records this year's earn event for a carryover benefit.
// A benefit gated on an unmet minimum spend cannot earn.
func (t *Tracker) EarnCarryover(ctx context.Context, cardID, benefitID string, today cycle.TimePoint) error {
	return t.mutate(ctx, func() error {
		b, c, err := t.findBenefit(cardID, benefitID)
		if err != nil {
			return err
		}
		if c.IsBenefitLocked(b) {
			return benefit.ErrBenefitLocked
		}
		return b.EarnInstance(today)
	})
}

func (t *Tracker) SetInstanceUsage(ctx context.Context, cardID, benefitID string, index int, amount decimal.Decimal) error {
	return t.mutate(ctx, func() error {
		b, _, err := t.findBenefit(cardID, benefitID)
		if err != nil {
			return err
		}
		return b.SetInstanceUsedAmount(index, amount)
	})
}

// =============================================================================
// JUSTIFICATION MUTATIONS
// =============================================================================

func (t *Tracker) AddJustification(ctx context.Context, cardID, benefitID string, amount decimal.Decimal, text string, reminder, charge cycle.TimePoint) (string, error) {
	var id string
	err := t.mutate(ctx, func() error {
		b, _, err := t.findBenefit(cardID, benefitID)
		if err != nil {
			return err
		}
		id = b.AddJustification(amount, text, reminder, charge)
		return nil
	})
	return id, err
}

func (t *Tracker) ConfirmJustification(ctx context.Context, cardID, benefitID, justificationID string) error {
	return t.mutate(ctx, func() error {
		b, _, err := t.findBenefit(cardID, benefitID)
		if err != nil {
			return err
		}
		return b.ConfirmJustification(justificationID)
	})
}

func (t *Tracker) RemoveJustification(ctx context.Context, cardID, benefitID, justificationID string) error {
	return t.mutate(ctx, func() error {
		b, _, err := t.findBenefit(cardID, benefitID)
		if err != nil {
			return err
		}
		return b.RemoveJustification(justificationID)
	})
}

// AddInstanceJustification records a use against one earned carryover
// instance; the entry lives on that instance's own ledger.
func (t *Tracker) AddInstanceJustification(ctx context.Context, cardID, benefitID string, index int, amount decimal.Decimal, text string, reminder, charge cycle.TimePoint) (string, error) {
	var id string
	err := t.mutate(ctx, func() error {
		b, _, err := t.findBenefit(cardID, benefitID)
		if err != nil {
			return err
		}
		id, err = b.AddInstanceJustification(index, amount, text, reminder, charge)
		return err
	})
	return id, err
}

func (t *Tracker) ConfirmInstanceJustification(ctx context.Context, cardID, benefitID string, index int, justificationID string) error {
	return t.mutate(ctx, func() error {
		b, _, err := t.findBenefit(cardID, benefitID)
		if err != nil {
			return err
		}
		return b.ConfirmInstanceJustification(index, justificationID)
	})
}

func (t *Tracker) RemoveInstanceJustification(ctx context.Context, cardID, benefitID string, index int, justificationID string) error {
	return t.mutate(ctx, func() error {
		b, _, err := t.findBenefit(cardID, benefitID)
		if err != nil {
			return err
		}
		return b.RemoveInstanceJustification(index, justificationID)
	})
}

// =============================================================================
// MINIMUM SPEND MUTATIONS
// =============================================================================

type MinimumSpendInput struct {
	Description  string
	TargetAmount decimal.Decimal
	Frequency    string
	ResetType    string
	Deadline     cycle.TimePoint // one-time only
}

func (t *Tracker) AddMinimumSpend(ctx context.Context, cardID string, in MinimumSpendInput, today cycle.TimePoint) (string, error) {
	var id string
	err := t.mutate(ctx, func() error {
		c, err := t.findCard(cardID)
		if err != nil {
			return err
		}
		freq := record.NormalizeFrequency(in.Frequency)
		if !freq.ValidForMinimumSpend() {
			return fmt.Errorf("%w: %q", ErrInvalidFrequency, in.Frequency)
		}
		m := benefit.NewMinimumSpend(in.Description, in.TargetAmount, freq, cycle.ResetType(in.ResetType), in.Deadline, today)
		c.AddMinimumSpend(m)
		id = m.ID
		return nil
	})
	return id, err
}

// SetMinimumSpendProgress writes progress; the aggregate recomputes isMet,
// locking or unlocking any gated benefit as a consequence.
func (t *Tracker) SetMinimumSpendProgress(ctx context.Context, cardID, minSpendID string, amount decimal.Decimal, today cycle.TimePoint) error {
	return t.mutate(ctx, func() error {
		c, err := t.findCard(cardID)
		if err != nil {
			return err
		}
		m, err := c.FindMinimumSpend(minSpendID)
		if err != nil {
			return err
		}
		m.SetCurrentAmount(amount, today)
		return nil
	})
}

func (t *Tracker) DeleteMinimumSpend(ctx context.Context, cardID, minSpendID string) error {
	return t.mutate(ctx, func() error {
		c, err := t.findCard(cardID)
		if err != nil {
			return err
		}
		return c.RemoveMinimumSpend(minSpendID)
	})
}

// =============================================================================
// MANUAL RESET DECISIONS
// =============================================================================

// AcceptPendingResets applies the queued resets for the given benefit IDs
// as one batch. If persistence fails the snapshot is restored and the items
// stay queued; callers should re-fetch.
func (t *Tracker) AcceptPendingResets(ctx context.Context, benefitIDs []string) error {
	return t.mutate(ctx, func() error {
		batch, rest, err := t.takePending(benefitIDs)
		if err != nil {
			return err
		}
		if err := engine.Accept(t.cards, batch); err != nil {
			return err
		}
		t.pending = rest
		return nil
	})
}

// DeclinePendingResets dismisses queued items for this session. The data is
// untouched; the benefits remain due and re-surface on the next pass.
func (t *Tracker) DeclinePendingResets(benefitIDs []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	batch, rest, err := t.takePending(benefitIDs)
	if err != nil {
		return
	}
	engine.Decline(t.cards, batch)
	t.pending = rest
}

// =============================================================================
// IMPORT / EXPORT
// =============================================================================

// ImportRecords replaces the loaded set with an externally sourced one. The
// candidate is schema-validated first and rejected whole on any violation.
func (t *Tracker) ImportRecords(ctx context.Context, raw []byte, today cycle.TimePoint) (engine.Result, []string, error) {
	cards, violations, err := record.ParseAndValidate(raw)
	if err != nil {
		return engine.Result{}, nil, err
	}
	if len(violations) > 0 {
		return engine.Result{}, violations, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	previous := t.cards
	prevPending := t.pending
	t.cards = record.ToDomain(cards)
	result, err := t.runPassLocked(ctx, today)
	if err != nil {
		t.cards = previous
		t.pending = prevPending
		return engine.Result{}, nil, err
	}
	if !result.Changed() {
		// The pass only persists when it mutates; an import must persist
		// regardless.
		if err := t.store.SaveData(ctx, record.FromDomain(t.cards)); err != nil {
			t.cards = previous
			t.pending = prevPending
			return engine.Result{}, nil, fmt.Errorf("persisting import: %w", err)
		}
	}
	return result, nil, nil
}

// =============================================================================
// INTERNALS
// =============================================================================

// mutate wraps a mutation with snapshot/persist/restore sequencing.
func (t *Tracker) mutate(ctx context.Context, fn func() error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := record.FromDomain(t.cards)
	pendingSnapshot := make([]engine.Outcome, len(t.pending))
	copy(pendingSnapshot, t.pending)

	if err := fn(); err != nil {
		return err
	}
	if err := t.store.SaveData(ctx, record.FromDomain(t.cards)); err != nil {
		t.cards = record.ToDomain(snapshot)
		t.pending = pendingSnapshot
		t.log.WithError(err).Error("save failed, in-memory state restored")
		return fmt.Errorf("saving records: %w", err)
	}
	return nil
}

func (t *Tracker) findCard(id string) (*benefit.Card, error) {
	for _, c := range t.cards {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, ErrCardNotFound
}

func (t *Tracker) findBenefit(cardID, benefitID string) (*benefit.Benefit, *benefit.Card, error) {
	c, err := t.findCard(cardID)
	if err != nil {
		return nil, nil, err
	}
	b, err := c.FindBenefit(benefitID)
	if err != nil {
		return nil, nil, err
	}
	return b, c, nil
}

// takePending splits the queue into the named batch and the remainder.
func (t *Tracker) takePending(benefitIDs []string) (batch, rest []engine.Outcome, err error) {
	wanted := make(map[string]bool, len(benefitIDs))
	for _, id := range benefitIDs {
		wanted[id] = true
	}
	for _, p := range t.pending {
		if wanted[p.BenefitID] {
			batch = append(batch, p)
			delete(wanted, p.BenefitID)
		} else {
			rest = append(rest, p)
		}
	}
	if len(wanted) > 0 {
		return nil, nil, ErrPendingNotFound
	}
	return batch, rest, nil
}

func (t *Tracker) dropPendingForCard(cardID string) {
	var rest []engine.Outcome
	for _, p := range t.pending {
		if p.CardID != cardID {
			rest = append(rest, p)
		}
	}
	t.pending = rest
}

func (t *Tracker) dropPendingForBenefit(benefitID string) {
	var rest []engine.Outcome
	for _, p := range t.pending {
		if p.BenefitID != benefitID {
			rest = append(rest, p)
		}
	}
	t.pending = rest
}

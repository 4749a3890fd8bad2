package engine_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/benefit-engine/benefit"
	"github.com/warp/benefit-engine/cycle"
	"github.com/warp/benefit-engine/engine"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func day(year int, month time.Month, d int) cycle.TimePoint {
	return cycle.NewTimePoint(year, month, d)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func cardWith(benefits ...*benefit.Benefit) *benefit.Card {
	c := benefit.NewCard("Platinum", day(2020, time.March, 15))
	for _, b := range benefits {
		c.AddBenefit(b)
	}
	return c
}

func monthly(desc string, lastReset cycle.TimePoint) *benefit.Benefit {
	return benefit.NewBenefit(desc, dec("50"), cycle.FreqMonthly, cycle.ResetCalendar, lastReset)
}

// =============================================================================
// CLASSIFICATION TESTS
// =============================================================================

func TestEngine_CurrentBenefit_Untouched(t *testing.T) {
	// GIVEN: A monthly benefit inside its period, no policy flags
	// WHEN: The pass runs
	// THEN: Nothing changes and nothing is queued

	b := monthly("dining", day(2024, time.January, 15))
	b.SetUsedAmount(dec("20"))
	cards := []*benefit.Card{cardWith(b)}

	result := engine.Run(cards, day(2024, time.January, 20))

	assert.False(t, result.Changed())
	assert.Empty(t, result.Pending)
	assert.True(t, b.UsedAmount.Equal(dec("20")))
	assert.Equal(t, day(2024, time.January, 15), b.LastReset)
}

func TestEngine_AutoClaim_MidPeriod(t *testing.T) {
	// GIVEN: Auto-claim active, period not yet over, value unclaimed
	// WHEN: The pass runs
	// THEN: Usage is forced to the full amount without touching lastReset

	b := monthly("dining", day(2024, time.January, 15))
	b.SetAutoClaim(true, day(2024, time.December, 31))
	cards := []*benefit.Card{cardWith(b)}

	result := engine.Run(cards, day(2024, time.January, 20))

	require.Len(t, result.AutoClaimed, 1)
	assert.Equal(t, engine.StateAutoClaimed, result.AutoClaimed[0].State)
	assert.True(t, b.UsedAmount.Equal(dec("50")))
	assert.Equal(t, day(2024, time.January, 15), b.LastReset)

	// A second pass at the same date is a no-op.
	again := engine.Run(cards, day(2024, time.January, 20))
	assert.False(t, again.Changed())
}

func TestEngine_AutoReset_AcrossBoundary(t *testing.T) {
	// GIVEN: Auto-claim active and the boundary passed
	// WHEN: The pass runs
	// THEN: New period stamped at the boundary, usage forced to full

	b := monthly("dining", day(2024, time.January, 15))
	b.SetUsedAmount(dec("50"))
	b.SetAutoClaim(true, day(2024, time.December, 31))
	cards := []*benefit.Card{cardWith(b)}

	result := engine.Run(cards, day(2024, time.February, 10))

	require.Len(t, result.AutoReset, 1)
	assert.Equal(t, day(2024, time.February, 1), result.AutoReset[0].ResetDate)
	assert.Equal(t, day(2024, time.February, 1), b.LastReset)
	assert.True(t, b.UsedAmount.Equal(dec("50")))
}

func TestEngine_SilentRoll_AcrossBoundary(t *testing.T) {
	// GIVEN: Ignore active and the boundary passed
	// WHEN: The pass runs
	// THEN: New period stamped with usage zeroed, nothing queued

	b := monthly("dining", day(2024, time.January, 15))
	b.SetUsedAmount(dec("30"))
	b.SetIgnored(true, day(2024, time.December, 31))
	cards := []*benefit.Card{cardWith(b)}

	result := engine.Run(cards, day(2024, time.February, 10))

	require.Len(t, result.SilentRoll, 1)
	assert.Empty(t, result.Pending)
	assert.True(t, b.UsedAmount.IsZero())
	assert.Equal(t, day(2024, time.February, 1), b.LastReset)
}

func TestEngine_PendingManual_DataUntouched(t *testing.T) {
	// GIVEN: Boundary passed, no policy flags
	// WHEN: The pass runs
	// THEN: Queued for a decision; usage and lastReset unchanged

	b := monthly("dining", day(2024, time.January, 15))
	b.SetUsedAmount(dec("30"))
	cards := []*benefit.Card{cardWith(b)}

	result := engine.Run(cards, day(2024, time.February, 10))

	require.Len(t, result.Pending, 1)
	assert.Equal(t, engine.StatePendingManual, result.Pending[0].State)
	assert.Equal(t, day(2024, time.February, 1), result.Pending[0].ResetDate)
	assert.False(t, result.Changed())
	assert.True(t, b.UsedAmount.Equal(dec("30")))
	assert.Equal(t, day(2024, time.January, 15), b.LastReset)
}

func TestEngine_ExpiredFlag_FallsBackToPending(t *testing.T) {
	// An auto-claim whose end date has passed no longer governs the reset.
	b := monthly("dining", day(2024, time.January, 15))
	b.SetAutoClaim(true, day(2024, time.January, 31))
	cards := []*benefit.Card{cardWith(b)}

	result := engine.Run(cards, day(2024, time.March, 10))

	assert.Empty(t, result.AutoReset)
	require.Len(t, result.Pending, 1)
}

func TestEngine_SkippedPeriods_SingleCatchUp(t *testing.T) {
	// GIVEN: A silent-rolling benefit untouched for five months
	// WHEN: One pass runs
	// THEN: It lands directly on the most recent boundary, and a rerun at
	//       the same date is a no-op

	b := monthly("dining", day(2024, time.January, 15))
	b.SetIgnored(true, day(2025, time.December, 31))
	cards := []*benefit.Card{cardWith(b)}

	result := engine.Run(cards, day(2024, time.June, 10))

	require.Len(t, result.SilentRoll, 1)
	assert.Equal(t, day(2024, time.June, 1), b.LastReset)

	again := engine.Run(cards, day(2024, time.June, 10))
	assert.False(t, again.Changed())
}

// =============================================================================
// SNAPSHOT ORDERING
// =============================================================================

func TestEngine_ClassifiesFromUnmutatedSnapshot(t *testing.T) {
	// GIVEN: Two overdue benefits on one card, one silent-rolling and one
	//        with no policy
	// WHEN: The pass runs
	// THEN: The pending classification was taken before the silent roll
	//       mutated anything; both outcomes carry the same boundary

	rolling := monthly("rolling", day(2024, time.January, 15))
	rolling.SetIgnored(true, day(2024, time.December, 31))
	manual := monthly("manual", day(2024, time.January, 15))
	cards := []*benefit.Card{cardWith(rolling, manual)}

	result := engine.Run(cards, day(2024, time.February, 10))

	require.Len(t, result.SilentRoll, 1)
	require.Len(t, result.Pending, 1)
	assert.Equal(t, day(2024, time.February, 1), result.SilentRoll[0].ResetDate)
	assert.Equal(t, day(2024, time.February, 1), result.Pending[0].ResetDate)
	assert.Equal(t, day(2024, time.January, 15), manual.LastReset)
}

// =============================================================================
// MINIMUM SPEND RESETS
// =============================================================================

func TestEngine_MinimumSpendWindowRoll_ZeroesProgress(t *testing.T) {
	// GIVEN: A quarterly requirement met in Q1
	// WHEN: The pass runs in Q2
	// THEN: Progress and isMet are zeroed, lastReset moves to the window start

	c := benefit.NewCard("Platinum", day(2020, time.March, 15))
	m := benefit.NewMinimumSpend("spend 1k", dec("1000"), cycle.FreqQuarterly, cycle.ResetCalendar, cycle.TimePoint{}, day(2024, time.January, 1))
	c.AddMinimumSpend(m)
	m.SetCurrentAmount(dec("1500"), day(2024, time.February, 1))

	result := engine.Run([]*benefit.Card{c}, day(2024, time.April, 10))

	require.Len(t, result.MinimumSpendResets, 1)
	assert.Equal(t, [2]string{c.ID, m.ID}, result.MinimumSpendResets[0])
	assert.True(t, m.CurrentAmount.IsZero())
	assert.False(t, m.IsMet)
	assert.Equal(t, day(2024, time.April, 1), m.LastReset)
}

// =============================================================================
// ACCEPT / DECLINE
// =============================================================================

func TestEngine_Accept_AppliesBatch(t *testing.T) {
	// GIVEN: Two pending resets from one pass
	// WHEN: The user accepts both
	// THEN: Each benefit is reset with its recorded boundary

	b1 := monthly("one", day(2024, time.January, 15))
	b1.SetUsedAmount(dec("50"))
	b2 := monthly("two", day(2024, time.January, 10))
	b2.SetUsedAmount(dec("25"))
	cards := []*benefit.Card{cardWith(b1, b2)}

	result := engine.Run(cards, day(2024, time.February, 10))
	require.Len(t, result.Pending, 2)

	require.NoError(t, engine.Accept(cards, result.Pending))
	assert.True(t, b1.UsedAmount.IsZero())
	assert.True(t, b2.UsedAmount.IsZero())
	assert.Equal(t, day(2024, time.February, 1), b1.LastReset)
	assert.Equal(t, day(2024, time.February, 1), b2.LastReset)

	// The next pass finds everything current.
	again := engine.Run(cards, day(2024, time.February, 10))
	assert.False(t, again.Changed())
	assert.Empty(t, again.Pending)
}

func TestEngine_Accept_UnknownIDFailsBeforeMutating(t *testing.T) {
	b := monthly("one", day(2024, time.January, 15))
	b.SetUsedAmount(dec("50"))
	cards := []*benefit.Card{cardWith(b)}

	result := engine.Run(cards, day(2024, time.February, 10))
	require.Len(t, result.Pending, 1)

	bogus := result.Pending[0]
	bogus.BenefitID = "ghost"
	err := engine.Accept(cards, []engine.Outcome{result.Pending[0], bogus})

	assert.ErrorIs(t, err, benefit.ErrBenefitNotFound)
	assert.True(t, b.UsedAmount.Equal(dec("50")), "failed batch must not mutate")
}

func TestEngine_Decline_IsDataNoOp(t *testing.T) {
	// GIVEN: A pending reset
	// WHEN: The user declines
	// THEN: Usage and lastReset are byte-identical and the next pass
	//       re-surfaces the same item

	b := monthly("one", day(2024, time.January, 15))
	b.SetUsedAmount(dec("30"))
	cards := []*benefit.Card{cardWith(b)}

	result := engine.Run(cards, day(2024, time.February, 10))
	require.Len(t, result.Pending, 1)

	engine.Decline(cards, result.Pending)
	assert.True(t, b.UsedAmount.Equal(dec("30")))
	assert.Equal(t, day(2024, time.January, 15), b.LastReset)

	again := engine.Run(cards, day(2024, time.February, 11))
	require.Len(t, again.Pending, 1)
	assert.Equal(t, b.ID, again.Pending[0].BenefitID)
}

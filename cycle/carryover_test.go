package cycle_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/benefit-engine/cycle"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// =============================================================================
// INSTANCE LIFETIME TESTS
// =============================================================================

func TestEarnedInstance_ExpiresEndOfFollowingYear(t *testing.T) {
	// GIVEN: An instance earned Jun 15 2023
	// THEN: It is usable through Dec 31 2024 and dead on Jan 1 2025

	inst := cycle.EarnedInstance{EarnedDate: day(2023, time.June, 15)}

	assert.Equal(t, day(2024, time.December, 31), inst.ExpiryDate())
	assert.True(t, inst.ActiveAt(day(2023, time.June, 15)))
	assert.True(t, inst.ActiveAt(day(2024, time.December, 31)))
	assert.False(t, inst.ActiveAt(day(2025, time.January, 1)))
}

func TestEarnedInstance_Remaining_NeverNegative(t *testing.T) {
	inst := cycle.EarnedInstance{
		EarnedDate: day(2024, time.March, 1),
		UsedAmount: dec("500"),
	}
	assert.True(t, inst.Remaining(dec("300")).IsZero())
	assert.True(t, inst.Remaining(dec("800")).Equal(dec("300")))
}

// =============================================================================
// CYCLE-LEVEL TESTS
// =============================================================================

func TestCarryoverCycle_TwoLiveInstances_IndependentUsage(t *testing.T) {
	// GIVEN: Instances earned in 2023 and 2024, each partially used
	// WHEN: Querying in mid-2024 (both still active)
	// THEN: Remaining sums per-instance leftovers; usage never bleeds across

	co := cycle.NewCarryoverCycle([]cycle.EarnedInstance{
		{EarnedDate: day(2023, time.May, 1), UsedAmount: dec("100")},
		{EarnedDate: day(2024, time.February, 1), UsedAmount: dec("40")},
	})
	ref := day(2024, time.June, 1)

	assert.Equal(t, []int{0, 1}, co.ActiveInstances(ref))
	assert.True(t, co.TotalRemaining(dec("200"), ref).Equal(dec("260")))
}

func TestCarryoverCycle_ExpiredInstanceDropsOutOfTotals(t *testing.T) {
	// GIVEN: A 2023 instance and a 2025 instance
	// WHEN: Querying in 2025 (the 2023 one expired Dec 31 2024)
	// THEN: Only the live instance counts, but the list still holds both

	instances := []cycle.EarnedInstance{
		{EarnedDate: day(2023, time.May, 1)},
		{EarnedDate: day(2025, time.January, 10)},
	}
	co := cycle.NewCarryoverCycle(instances)
	ref := day(2025, time.March, 1)

	assert.Equal(t, []int{1}, co.ActiveInstances(ref))
	assert.True(t, co.TotalRemaining(dec("200"), ref).Equal(dec("200")))
	assert.Len(t, co.Instances, 2)
}

func TestCarryoverCycle_OneEarnPerCalendarYear(t *testing.T) {
	// GIVEN: An instance earned in 2024
	// THEN: No second earn in 2024, but 2025 is open again

	co := cycle.NewCarryoverCycle([]cycle.EarnedInstance{
		{EarnedDate: day(2024, time.March, 1)},
	})

	assert.False(t, co.CanEarnThisYear(day(2024, time.November, 1)))
	assert.True(t, co.CanEarnThisYear(day(2025, time.January, 2)))
	assert.Equal(t, day(2024, time.December, 31), co.EarnDeadline(day(2024, time.November, 1)))
}

func TestCarryoverCycle_EarliestExpiry(t *testing.T) {
	co := cycle.NewCarryoverCycle([]cycle.EarnedInstance{
		{EarnedDate: day(2023, time.May, 1)},   // expires 2024-12-31
		{EarnedDate: day(2024, time.March, 1)}, // expires 2025-12-31
	})
	ref := day(2024, time.June, 1)

	earliest, ok := co.EarliestExpiryDate(ref)
	require.True(t, ok)
	assert.Equal(t, day(2024, time.December, 31), earliest)

	days, ok := co.DaysUntilEarliestExpiry(ref)
	require.True(t, ok)
	assert.Equal(t, 213, days)
}

func TestCarryoverCycle_ExpiringInstances_Window(t *testing.T) {
	// GIVEN: An instance expiring Dec 31 2024
	// THEN: It surfaces inside a 30-day window ending past expiry, not before

	co := cycle.NewCarryoverCycle([]cycle.EarnedInstance{
		{EarnedDate: day(2023, time.May, 1)},
	})

	assert.Equal(t, []int{0}, co.ExpiringInstances(day(2024, time.December, 10), 30))
	assert.Empty(t, co.ExpiringInstances(day(2024, time.October, 1), 30))
	assert.Empty(t, co.ExpiringInstances(day(2025, time.January, 2), 30))
}

func TestCarryoverCycle_Empty(t *testing.T) {
	co := cycle.NewCarryoverCycle(nil)
	ref := day(2024, time.June, 1)

	assert.False(t, co.HasActiveInstances(ref))
	assert.True(t, co.CanEarnThisYear(ref))
	assert.True(t, co.TotalRemaining(dec("200"), ref).IsZero())
	_, ok := co.EarliestExpiryDate(ref)
	assert.False(t, ok)
}

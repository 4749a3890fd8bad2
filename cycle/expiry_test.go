package cycle_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/benefit-engine/cycle"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func day(year int, month time.Month, d int) cycle.TimePoint {
	return cycle.NewTimePoint(year, month, d)
}

func calendarCycle(freq cycle.Frequency, lastReset cycle.TimePoint) cycle.ExpiryCycle {
	return cycle.NewExpiryCycle(freq, cycle.ResetCalendar, lastReset, cycle.TimePoint{})
}

func anniversaryCycle(freq cycle.Frequency, lastReset, anniversary cycle.TimePoint) cycle.ExpiryCycle {
	return cycle.NewExpiryCycle(freq, cycle.ResetAnniversary, lastReset, anniversary)
}

// =============================================================================
// CALENDAR BOUNDARY TESTS
// =============================================================================

func TestExpiryCycle_Monthly_Calendar_UpcomingBoundary(t *testing.T) {
	// GIVEN: Monthly benefit last reset Jan 15
	// WHEN: Asking for the next reset on Jan 20
	// THEN: Feb 1, and the benefit is not expired through Jan 31

	ec := calendarCycle(cycle.FreqMonthly, day(2024, time.January, 15))

	next, ok := ec.NextResetDate(day(2024, time.January, 20))
	require.True(t, ok)
	assert.Equal(t, day(2024, time.February, 1), next)

	assert.False(t, ec.IsExpired(day(2024, time.January, 31)))
	assert.True(t, ec.IsExpired(day(2024, time.February, 1)))
}

func TestExpiryCycle_Monthly_Calendar_OverdueReturnsMostRecentBoundary(t *testing.T) {
	// GIVEN: Monthly benefit last reset Jan 15, untouched for months
	// WHEN: Asking for the next reset on Apr 10
	// THEN: The most recently passed boundary (Apr 1), and the benefit is expired

	ec := calendarCycle(cycle.FreqMonthly, day(2024, time.January, 15))

	next, ok := ec.NextResetDate(day(2024, time.April, 10))
	require.True(t, ok)
	assert.Equal(t, day(2024, time.April, 1), next)
	assert.True(t, ec.IsExpired(day(2024, time.April, 10)))
}

func TestExpiryCycle_Quarterly_Calendar(t *testing.T) {
	// GIVEN: Quarterly benefit last reset Feb 10
	// THEN: The quarter rolls on Apr 1

	ec := calendarCycle(cycle.FreqQuarterly, day(2024, time.February, 10))

	next, ok := ec.NextResetDate(day(2024, time.March, 1))
	require.True(t, ok)
	assert.Equal(t, day(2024, time.April, 1), next)
}

func TestExpiryCycle_Biannual_Calendar(t *testing.T) {
	// GIVEN: Half-year benefit last reset Mar 5
	// THEN: The half rolls on Jul 1

	ec := calendarCycle(cycle.FreqBiannual, day(2024, time.March, 5))

	next, ok := ec.NextResetDate(day(2024, time.May, 1))
	require.True(t, ok)
	assert.Equal(t, day(2024, time.July, 1), next)
}

func TestExpiryCycle_Annual_Calendar(t *testing.T) {
	// GIVEN: Annual benefit last reset Jun 1 2024
	// THEN: The year rolls on Jan 1 2025

	ec := calendarCycle(cycle.FreqAnnual, day(2024, time.June, 1))

	next, ok := ec.NextResetDate(day(2024, time.November, 20))
	require.True(t, ok)
	assert.Equal(t, day(2025, time.January, 1), next)
}

func TestExpiryCycle_Every4Years_Calendar(t *testing.T) {
	// GIVEN: Every-4-years benefit last reset Jan 1 2024
	// WHEN: Asking mid-2024
	// THEN: Jan 1 2028, not expired anywhere in between

	ec := calendarCycle(cycle.FreqEvery4Years, day(2024, time.January, 1))

	next, ok := ec.NextResetDate(day(2024, time.June, 15))
	require.True(t, ok)
	assert.Equal(t, day(2028, time.January, 1), next)

	assert.False(t, ec.IsExpired(day(2027, time.December, 31)))
	assert.True(t, ec.IsExpired(day(2028, time.January, 1)))
}

// =============================================================================
// ANNIVERSARY BOUNDARY TESTS
// =============================================================================

func TestExpiryCycle_Annual_Anniversary(t *testing.T) {
	// GIVEN: Annual benefit on a Mar 15 anniversary, last reset Mar 15 2024
	// THEN: The next boundary is Mar 15 2025

	ec := anniversaryCycle(cycle.FreqAnnual, day(2024, time.March, 15), day(2020, time.March, 15))

	next, ok := ec.NextResetDate(day(2024, time.June, 1))
	require.True(t, ok)
	assert.Equal(t, day(2025, time.March, 15), next)
}

func TestExpiryCycle_Monthly_Anniversary_ClampsShortMonths(t *testing.T) {
	// GIVEN: Monthly benefit on a Jan 31 anniversary
	// WHEN: Walking boundaries through February and April
	// THEN: Short months clamp (Feb 28, Apr 30) but the 31st returns in
	//       March and May; clamping never drifts the schedule

	ann := day(2023, time.January, 31)
	ec := anniversaryCycle(cycle.FreqMonthly, ann, ann)

	next, ok := ec.NextResetDate(day(2023, time.February, 10))
	require.True(t, ok)
	assert.Equal(t, day(2023, time.February, 28), next)

	ec.LastReset = day(2023, time.February, 28)
	next, ok = ec.NextResetDate(day(2023, time.March, 10))
	require.True(t, ok)
	assert.Equal(t, day(2023, time.March, 31), next)

	ec.LastReset = day(2023, time.March, 31)
	next, ok = ec.NextResetDate(day(2023, time.April, 10))
	require.True(t, ok)
	assert.Equal(t, day(2023, time.April, 30), next)
}

func TestExpiryCycle_Monthly_Anniversary_LeapFebruary(t *testing.T) {
	// GIVEN: Monthly benefit on a Jan 31 anniversary in a leap year
	// THEN: February clamps to the 29th

	ann := day(2024, time.January, 31)
	ec := anniversaryCycle(cycle.FreqMonthly, ann, ann)

	next, ok := ec.NextResetDate(day(2024, time.February, 10))
	require.True(t, ok)
	assert.Equal(t, day(2024, time.February, 29), next)
}

func TestExpiryCycle_Every4Years_Anniversary(t *testing.T) {
	// GIVEN: Every-4-years benefit on a Mar 15 anniversary, last reset Mar 15 2024
	// THEN: The next boundary is Mar 15 2028

	ec := anniversaryCycle(cycle.FreqEvery4Years, day(2024, time.March, 15), day(2020, time.March, 15))

	next, ok := ec.NextResetDate(day(2025, time.August, 1))
	require.True(t, ok)
	assert.Equal(t, day(2028, time.March, 15), next)
}

// =============================================================================
// CATCH-UP IDEMPOTENCE
// =============================================================================

func TestExpiryCycle_CatchUp_IsIdempotent(t *testing.T) {
	// GIVEN: Monthly benefit six months overdue
	// WHEN: Stamping lastReset to the returned boundary (what a reset does)
	// THEN: Re-running at the same date yields the upcoming boundary and
	//       the benefit is no longer expired

	ec := calendarCycle(cycle.FreqMonthly, day(2024, time.January, 15))
	ref := day(2024, time.July, 10)

	first, ok := ec.NextResetDate(ref)
	require.True(t, ok)
	assert.Equal(t, day(2024, time.July, 1), first)
	assert.True(t, ec.IsExpired(ref))

	ec.LastReset = first
	second, ok := ec.NextResetDate(ref)
	require.True(t, ok)
	assert.Equal(t, day(2024, time.August, 1), second)
	assert.False(t, ec.IsExpired(ref))
}

// =============================================================================
// DERIVED QUERIES
// =============================================================================

func TestExpiryCycle_UseByDate_IsDayBeforeBoundary(t *testing.T) {
	ec := calendarCycle(cycle.FreqMonthly, day(2024, time.January, 15))

	useBy, ok := ec.UseByDate(day(2024, time.January, 20))
	require.True(t, ok)
	assert.Equal(t, day(2024, time.January, 31), useBy)
}

func TestExpiryCycle_DaysUntilReset(t *testing.T) {
	ec := calendarCycle(cycle.FreqMonthly, day(2024, time.January, 15))

	days, ok := ec.DaysUntilReset(day(2024, time.January, 30))
	require.True(t, ok)
	assert.Equal(t, 2, days)
}

func TestExpiryCycle_ExpiresWithin_Window(t *testing.T) {
	// GIVEN: Monthly benefit with the boundary on Feb 1
	// THEN: A 7-day window from Jan 28 includes it; from Jan 10 it does not;
	//       an already-passed boundary never matches

	ec := calendarCycle(cycle.FreqMonthly, day(2024, time.January, 15))

	assert.True(t, ec.ExpiresWithin(day(2024, time.January, 28), 7))
	assert.False(t, ec.ExpiresWithin(day(2024, time.January, 10), 7))
	assert.False(t, ec.ExpiresWithin(day(2024, time.February, 2), 7))
}

func TestExpiryCycle_NonRecurring_NeverExpires(t *testing.T) {
	// GIVEN: One-time and carryover cycles
	// THEN: No boundaries, never expired

	oneTime := cycle.NewExpiryCycle(cycle.FreqOneTime, "", day(2024, time.January, 1), cycle.TimePoint{})
	_, ok := oneTime.NextResetDate(day(2030, time.January, 1))
	assert.False(t, ok)
	assert.False(t, oneTime.IsExpired(day(2030, time.January, 1)))

	carry := cycle.NewExpiryCycle(cycle.FreqCarryover, "", cycle.TimePoint{}, cycle.TimePoint{})
	_, ok = carry.NextResetDate(day(2030, time.January, 1))
	assert.False(t, ok)
}

func TestExpiryCycle_ZeroLastReset_NotRecurring(t *testing.T) {
	// A recurring benefit with no lastReset has no schedule to judge against.
	ec := calendarCycle(cycle.FreqMonthly, cycle.TimePoint{})
	_, ok := ec.NextResetDate(day(2024, time.June, 1))
	assert.False(t, ok)
}

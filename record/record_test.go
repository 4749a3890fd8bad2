package record_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/benefit-engine/benefit"
	"github.com/warp/benefit-engine/cycle"
	"github.com/warp/benefit-engine/record"
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

// fixtureCard builds a card exercising every record shape: a recurring
// benefit with flags and justifications, a carryover with instances, a
// one-time with an expiry, and both kinds of minimum spend.
func fixtureCard() *benefit.Card {
	c := benefit.NewCard("Platinum", day(2020, time.March, 15))

	dining := benefit.NewBenefit("dining credit", dec("50"), cycle.FreqMonthly, cycle.ResetCalendar, day(2024, time.January, 15))
	dining.SetUsedAmount(dec("20"))
	dining.SetAutoClaim(true, day(2024, time.December, 31))
	dining.AddJustification(dec("20"), "dinner", cycle.TimePoint{}, day(2024, time.January, 10))
	c.AddBenefit(dining)

	pass := benefit.NewBenefit("companion pass", dec("200"), cycle.FreqCarryover, "", cycle.TimePoint{})
	c.AddBenefit(pass)
	_ = pass.EarnInstance(day(2023, time.June, 15))
	_ = pass.EarnInstance(day(2024, time.February, 1))
	_ = pass.SetInstanceUsedAmount(0, dec("150"))

	bonus := benefit.NewBenefit("welcome bonus", dec("500"), cycle.FreqOneTime, "", cycle.TimePoint{})
	bonus.ExpiryDate = day(2024, time.September, 30)
	c.AddBenefit(bonus)

	gate := benefit.NewMinimumSpend("spend 4k", dec("4000"), cycle.FreqOneTime, "", day(2024, time.June, 30), day(2024, time.January, 1))
	gate.SetCurrentAmount(dec("2500"), day(2024, time.March, 1))
	c.AddMinimumSpend(gate)
	bonus.RequiredMinimumSpendID = gate.ID

	quarterly := benefit.NewMinimumSpend("spend 1k", dec("1000"), cycle.FreqQuarterly, cycle.ResetCalendar, cycle.TimePoint{}, day(2024, time.January, 1))
	quarterly.SetCurrentAmount(dec("1100"), day(2024, time.February, 10))
	c.AddMinimumSpend(quarterly)

	return c
}

// =============================================================================
// ROUND-TRIP TESTS
// =============================================================================

func TestRoundTrip_ObservableQueriesSurvive(t *testing.T) {
	// GIVEN: A card exercising every shape
	// WHEN: Serializing and reconstructing
	// THEN: Every observable query result at a fixed date is identical

	original := fixtureCard()
	ref := day(2024, time.March, 10)

	restored := record.ToDomain(record.FromDomain([]*benefit.Card{original}))
	require.Len(t, restored, 1)
	rc := restored[0]

	assert.Equal(t, original.ID, rc.ID)
	assert.Equal(t, original.Name, rc.Name)
	assert.True(t, original.TotalRemaining(ref).Equal(rc.TotalRemaining(ref)))

	require.Len(t, rc.Benefits, 3)
	for i, ob := range original.Benefits {
		nb := rc.Benefits[i]
		assert.Equal(t, ob.ID, nb.ID)
		assert.Equal(t, ob.Kind(), nb.Kind())
		assert.True(t, ob.Remaining(ref).Equal(nb.Remaining(ref)), "benefit %d remaining", i)
		assert.Equal(t, ob.IsAutoClaimActive(ref), nb.IsAutoClaimActive(ref))

		oNext, oOK := ob.Expiry().NextResetDate(ref)
		nNext, nOK := nb.Expiry().NextResetDate(ref)
		assert.Equal(t, oOK, nOK)
		assert.Equal(t, oNext, nNext)
	}

	// Carryover instances keep their own usage and active windows.
	pass := rc.Benefits[1]
	require.Len(t, pass.EarnedInstances, 2)
	assert.Equal(t, []int{0, 1}, pass.Carryover().ActiveInstances(ref))
	assert.True(t, pass.EarnedInstances[0].UsedAmount.Equal(dec("150")))

	// Minimum spends keep their met status and deadlines.
	require.Len(t, rc.MinimumSpends, 2)
	assert.False(t, rc.MinimumSpends[0].IsMet)
	assert.True(t, rc.MinimumSpends[1].IsMet)
	assert.Equal(t, day(2024, time.February, 10), rc.MinimumSpends[1].MetDate)

	// The gate link survives, so the bonus is still locked.
	assert.True(t, rc.IsBenefitLocked(rc.Benefits[2]))
}

func TestToDomain_ReclampsAmounts(t *testing.T) {
	// Out-of-range stored amounts are coerced on the way in.
	lastReset := day(2024, time.January, 1).ISO()
	rt := "calendar"
	records := []record.Card{{
		ID:   "c1",
		Name: "test",
		Benefits: []record.Benefit{{
			ID:          "b1",
			Description: "x",
			TotalAmount: dec("50"),
			UsedAmount:  dec("120"),
			Frequency:   "monthly",
			ResetType:   &rt,
			LastReset:   &lastReset,
		}},
	}}

	cards := record.ToDomain(records)
	require.Len(t, cards, 1)
	assert.True(t, cards[0].Benefits[0].UsedAmount.Equal(dec("50")))
}

func TestToDomain_StripsCycleFieldsFromNonRecurring(t *testing.T) {
	// A stored one-time benefit with a stray resetType loses it; a carryover
	// with a stray lastReset loses that.
	rt := "calendar"
	lastReset := day(2024, time.January, 1).ISO()
	records := []record.Card{{
		ID:   "c1",
		Name: "test",
		Benefits: []record.Benefit{
			{ID: "b1", Description: "one-time", TotalAmount: dec("100"), Frequency: "one_time", ResetType: &rt},
			{ID: "b2", Description: "carry", TotalAmount: dec("200"), Frequency: "carryover", IsCarryover: true, LastReset: &lastReset},
		},
	}}

	cards := record.ToDomain(records)
	require.Len(t, cards[0].Benefits, 2)
	assert.Empty(t, string(cards[0].Benefits[0].ResetType))
	assert.True(t, cards[0].Benefits[1].LastReset.IsZero())
}

// =============================================================================
// FREQUENCY SYNONYMS
// =============================================================================

func TestNormalizeFrequency_Synonyms(t *testing.T) {
	cases := map[string]cycle.Frequency{
		"yearly":        cycle.FreqAnnual,
		"annual":        cycle.FreqAnnual,
		"semiannual":    cycle.FreqBiannual,
		"biannual":      cycle.FreqBiannual,
		"one-time":      cycle.FreqOneTime,
		"one_time":      cycle.FreqOneTime,
		"every-4-years": cycle.FreqEvery4Years,
		"every_4_years": cycle.FreqEvery4Years,
		"monthly":       cycle.FreqMonthly,
		"quarterly":     cycle.FreqQuarterly,
	}
	for in, want := range cases {
		assert.Equal(t, want, record.NormalizeFrequency(in), in)
	}
}

package record_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/benefit-engine/record"
)

func validPayload() string {
	return `[{
		"id": "c1",
		"name": "Platinum",
		"anniversaryDate": "2020-03-15T00:00:00Z",
		"benefits": [{
			"id": "b1",
			"description": "dining credit",
			"totalAmount": "50",
			"usedAmount": 20,
			"frequency": "monthly",
			"resetType": "calendar",
			"lastReset": "2024-01-15T00:00:00Z",
			"autoClaim": false,
			"autoClaimEndDate": null,
			"ignored": false,
			"ignoredEndDate": null,
			"expiryDate": null,
			"isCarryover": false,
			"earnedInstances": [],
			"requiredMinimumSpendId": null,
			"usageJustifications": []
		}],
		"minimumSpends": []
	}]`
}

// =============================================================================
// ACCEPTANCE
// =============================================================================

func TestParseAndValidate_AcceptsWellFormedSet(t *testing.T) {
	cards, violations, err := record.ParseAndValidate([]byte(validPayload()))
	require.NoError(t, err)
	assert.Empty(t, violations)
	require.Len(t, cards, 1)
	assert.Equal(t, "c1", cards[0].ID)
	require.Len(t, cards[0].Benefits, 1)
	assert.True(t, cards[0].Benefits[0].TotalAmount.Equal(dec("50")))
}

func TestValidate_AcceptsFrequencySynonyms(t *testing.T) {
	// Wire synonyms like "yearly" and "one-time" are valid enum members.
	payload := `[{
		"id": "c1", "name": "x", "anniversaryDate": "2020-03-15T00:00:00Z",
		"benefits": [
			{"id": "b1", "description": "a", "totalAmount": 10, "frequency": "yearly"},
			{"id": "b2", "description": "b", "totalAmount": 10, "frequency": "one-time"}
		],
		"minimumSpends": []
	}]`
	_, violations, err := record.ParseAndValidate([]byte(payload))
	require.NoError(t, err)
	assert.Empty(t, violations)
}

// =============================================================================
// REJECTION
// =============================================================================

func TestValidate_PathQualifiedViolations(t *testing.T) {
	// GIVEN: A set with a bad frequency, a null required field, and a
	//        missing field across nested paths
	// WHEN: Validating
	// THEN: Each violation names its exact path; the set is rejected whole

	payload := `[{
		"id": "c1",
		"name": null,
		"anniversaryDate": "2020-03-15T00:00:00Z",
		"benefits": [{
			"id": "b1",
			"totalAmount": "50",
			"frequency": "weekly"
		}],
		"minimumSpends": []
	}]`

	cards, violations, err := record.ParseAndValidate([]byte(payload))
	require.NoError(t, err)
	assert.Nil(t, cards, "violating set must not be partially applied")

	assert.Contains(t, violations, "root[0].name must not be null")
	assert.Contains(t, violations, "root[0].benefits[0].description is required")
	assert.Contains(t, violations,
		"root[0].benefits[0].frequency should be one of monthly, quarterly, biannual, annual, every_4_years, one_time, carryover")
}

func TestValidate_MinimumSpendFrequency_RejectsBenefitOnlyValues(t *testing.T) {
	// A minimum spend is a deadline or a month-based window; the multi-year
	// and carryover frequencies are valid for benefits only.
	payload := `[{
		"id": "c1", "name": "x", "anniversaryDate": "2020-03-15T00:00:00Z",
		"benefits": [],
		"minimumSpends": [{
			"id": "m1", "description": "gate", "targetAmount": 1000,
			"frequency": "every_4_years"
		}]
	}]`

	cards, violations, err := record.ParseAndValidate([]byte(payload))
	require.NoError(t, err)
	assert.Nil(t, cards)
	assert.Contains(t, violations,
		"root[0].minimumSpends[0].frequency should be one of monthly, quarterly, biannual, annual, one_time")
}

func TestValidate_RootMustBeArray(t *testing.T) {
	violations := record.Validate(map[string]any{"id": "c1"})
	assert.Equal(t, []string{"root should be an array of card records"}, violations)
}

func TestValidate_TypeViolations(t *testing.T) {
	payload := `[{
		"id": "c1", "name": "x", "anniversaryDate": "not-a-date",
		"benefits": [{
			"id": "b1", "description": "a", "totalAmount": "abc",
			"frequency": "monthly", "autoClaim": "yes"
		}],
		"minimumSpends": [{
			"id": "m1", "description": "gate", "targetAmount": 1000,
			"frequency": "quarterly", "resetType": "weekly"
		}]
	}]`

	_, violations, err := record.ParseAndValidate([]byte(payload))
	require.NoError(t, err)

	assert.Contains(t, violations, "root[0].anniversaryDate should be an ISO-8601 date-time string or null")
	assert.Contains(t, violations, "root[0].benefits[0].totalAmount should be a decimal amount")
	assert.Contains(t, violations, "root[0].benefits[0].autoClaim should be a boolean")
	assert.Contains(t, violations, "root[0].minimumSpends[0].resetType should be one of calendar, anniversary")
}

func TestParseAndValidate_MalformedJSON(t *testing.T) {
	_, _, err := record.ParseAndValidate([]byte(`{not json`))
	assert.Error(t, err)
}

func TestFormatViolations_Joins(t *testing.T) {
	out := record.FormatViolations([]string{"a is required", "b must not be null"})
	assert.Equal(t, "a is required; b must not be null", out)
}

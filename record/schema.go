/*
schema.go - Boundary validation for externally sourced record sets

PURPOSE:
  Before a record set from outside the engine (remote store, assistant
  proposal, imported file) is trusted, it is validated against a
  recursive required/nullable/enum descriptor. Violations are collected
  as path-qualified strings, e.g.

    root[0].benefits[2].frequency should be one of monthly, quarterly, ...

  and the whole candidate set is rejected atomically - a record set with
  any violation is never partially applied.

  The validator works on decoded JSON (any), so it can report every
  problem in one pass instead of stopping at the first unmarshal error.
*/
package record

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/benefit-engine/cycle"
)

// =============================================================================
// DESCRIPTORS
// =============================================================================

type fieldKind int

const (
	kindString fieldKind = iota
	kindBool
	kindAmount // decimal: JSON number or numeric string
	kindDate   // ISO-8601 date or date-time string
	kindArray  // array of objects described by elem
)

type fieldSpec struct {
	name     string
	kind     fieldKind
	required bool
	nullable bool
	enum     []string // canonical values plus accepted synonyms
	enumMsg  string   // canonical list shown in violations
	elem     *objectSpec
}

type objectSpec struct {
	fields []fieldSpec
}

var (
	frequencyEnum = []string{
		"monthly", "quarterly", "biannual", "semiannual", "annual", "yearly",
		"every_4_years", "every-4-years", "one_time", "one-time", "carryover",
	}
	frequencyEnumMsg = "monthly, quarterly, biannual, annual, every_4_years, one_time, carryover"

	// Minimum spends are one-time deadlines or month-based windows; the
	// multi-year and carryover frequencies are benefit-only.
	spendFrequencyEnum = []string{
		"monthly", "quarterly", "biannual", "semiannual", "annual", "yearly",
		"one_time", "one-time",
	}
	spendFrequencyEnumMsg = "monthly, quarterly, biannual, annual, one_time"

	resetTypeEnum    = []string{"calendar", "anniversary"}
	resetTypeEnumMsg = "calendar, anniversary"
)

func justificationSpec() *objectSpec {
	return &objectSpec{fields: []fieldSpec{
		{name: "id", kind: kindString, required: true},
		{name: "amount", kind: kindAmount, required: true},
		{name: "justification", kind: kindString, required: true},
		{name: "reminderDate", kind: kindDate, nullable: true},
		{name: "chargeDate", kind: kindDate, nullable: true},
		{name: "confirmed", kind: kindBool},
	}}
}

func benefitSpec() *objectSpec {
	return &objectSpec{fields: []fieldSpec{
		{name: "id", kind: kindString, required: true},
		{name: "description", kind: kindString, required: true},
		{name: "totalAmount", kind: kindAmount, required: true},
		{name: "usedAmount", kind: kindAmount},
		{name: "frequency", kind: kindString, required: true, enum: frequencyEnum, enumMsg: frequencyEnumMsg},
		{name: "resetType", kind: kindString, nullable: true, enum: resetTypeEnum, enumMsg: resetTypeEnumMsg},
		{name: "lastReset", kind: kindDate, nullable: true},
		{name: "autoClaim", kind: kindBool},
		{name: "autoClaimEndDate", kind: kindDate, nullable: true},
		{name: "ignored", kind: kindBool},
		{name: "ignoredEndDate", kind: kindDate, nullable: true},
		{name: "expiryDate", kind: kindDate, nullable: true},
		{name: "isCarryover", kind: kindBool},
		{name: "earnedInstances", kind: kindArray, elem: &objectSpec{fields: []fieldSpec{
			{name: "earnedDate", kind: kindDate, required: true},
			{name: "usedAmount", kind: kindAmount},
			{name: "usageJustifications", kind: kindArray, elem: justificationSpec()},
		}}},
		{name: "requiredMinimumSpendId", kind: kindString, nullable: true},
		{name: "usageJustifications", kind: kindArray, elem: justificationSpec()},
	}}
}

func minimumSpendSpec() *objectSpec {
	return &objectSpec{fields: []fieldSpec{
		{name: "id", kind: kindString, required: true},
		{name: "description", kind: kindString, required: true},
		{name: "targetAmount", kind: kindAmount, required: true},
		{name: "currentAmount", kind: kindAmount},
		{name: "frequency", kind: kindString, required: true, enum: spendFrequencyEnum, enumMsg: spendFrequencyEnumMsg},
		{name: "resetType", kind: kindString, nullable: true, enum: resetTypeEnum, enumMsg: resetTypeEnumMsg},
		{name: "deadline", kind: kindDate, nullable: true},
		{name: "lastReset", kind: kindDate, nullable: true},
		{name: "isMet", kind: kindBool},
		{name: "metDate", kind: kindDate, nullable: true},
		{name: "ignored", kind: kindBool},
		{name: "ignoredEndDate", kind: kindDate, nullable: true},
	}}
}

func cardSpec() *objectSpec {
	return &objectSpec{fields: []fieldSpec{
		{name: "id", kind: kindString, required: true},
		{name: "name", kind: kindString, required: true},
		{name: "anniversaryDate", kind: kindDate, required: true},
		{name: "benefits", kind: kindArray, required: true, elem: benefitSpec()},
		{name: "minimumSpends", kind: kindArray, required: true, elem: minimumSpendSpec()},
	}}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks a decoded JSON value against the card-array schema and
// returns every violation as a path-qualified string. An empty result means
// the value is structurally trustworthy.
func Validate(data any) []string {
	arr, ok := data.([]any)
	if !ok {
		return []string{"root should be an array of card records"}
	}
	var violations []string
	spec := cardSpec()
	for i, item := range arr {
		violations = append(violations, validateObject(fmt.Sprintf("root[%d]", i), item, spec)...)
	}
	return violations
}

// ParseAndValidate unmarshals raw JSON, validates it, and decodes it into
// typed records. On any violation the candidate is rejected whole: no
// records are returned.
func ParseAndValidate(raw []byte) ([]Card, []string, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, nil, fmt.Errorf("malformed record payload: %w", err)
	}
	if violations := Validate(decoded); len(violations) > 0 {
		return nil, violations, nil
	}
	var cards []Card
	if err := json.Unmarshal(raw, &cards); err != nil {
		return nil, nil, fmt.Errorf("decoding validated records: %w", err)
	}
	return cards, nil, nil
}

func validateObject(path string, v any, spec *objectSpec) []string {
	obj, ok := v.(map[string]any)
	if !ok {
		return []string{path + " should be an object"}
	}
	var violations []string
	for _, f := range spec.fields {
		fieldPath := path + "." + f.name
		raw, present := obj[f.name]
		if !present {
			if f.required {
				violations = append(violations, fieldPath+" is required")
			}
			continue
		}
		if raw == nil {
			if !f.nullable {
				violations = append(violations, fieldPath+" must not be null")
			}
			continue
		}
		violations = append(violations, validateField(fieldPath, raw, f)...)
	}
	return violations
}

func validateField(path string, v any, f fieldSpec) []string {
	switch f.kind {
	case kindString:
		s, ok := v.(string)
		if !ok {
			return []string{path + " should be a string"}
		}
		if len(f.enum) > 0 && !contains(f.enum, s) {
			return []string{path + " should be one of " + f.enumMsg}
		}
	case kindBool:
		if _, ok := v.(bool); !ok {
			return []string{path + " should be a boolean"}
		}
	case kindAmount:
		switch a := v.(type) {
		case float64:
			// JSON number: fine.
		case string:
			if _, err := decimal.NewFromString(a); err != nil {
				return []string{path + " should be a decimal amount"}
			}
		default:
			return []string{path + " should be a decimal amount"}
		}
	case kindDate:
		s, ok := v.(string)
		if !ok {
			return []string{path + " should be an ISO-8601 date-time string or null"}
		}
		if _, err := cycle.Parse(s); err != nil {
			return []string{path + " should be an ISO-8601 date-time string or null"}
		}
	case kindArray:
		arr, ok := v.([]any)
		if !ok {
			return []string{path + " should be an array"}
		}
		var violations []string
		for i, item := range arr {
			violations = append(violations, validateObject(fmt.Sprintf("%s[%d]", path, i), item, f.elem)...)
		}
		return violations
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// FormatViolations joins violations for logs and error responses.
func FormatViolations(violations []string) string {
	return strings.Join(violations, "; ")
}

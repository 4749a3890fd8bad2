/*
Package record defines the serialized form of the card/benefit/minimum-spend
aggregates and the persistence capability that moves it.

PURPOSE:
  The record shapes are the persisted/transmitted contract: an array of
  Card records with dates as midnight-normalized ISO-8601 date-time
  strings (or null) and amounts as decimal strings. Externally sourced
  record sets are schema-validated (schema.go) before being trusted;
  conversion back to aggregates is tolerant of in-range noise but assumes
  the schema has already been enforced.

ROUND-TRIP CONTRACT:
  FromDomain followed by ToDomain reproduces identical observable query
  results (remaining amounts, next reset dates, active instances) for any
  fixed reference date.
*/
package record

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/warp/benefit-engine/benefit"
	"github.com/warp/benefit-engine/cycle"
)

// =============================================================================
// WIRE SHAPES
// =============================================================================

type Card struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	AnniversaryDate *string        `json:"anniversaryDate"`
	Benefits        []Benefit      `json:"benefits"`
	MinimumSpends   []MinimumSpend `json:"minimumSpends"`
}

type Benefit struct {
	ID                     string           `json:"id"`
	Description            string           `json:"description"`
	TotalAmount            decimal.Decimal  `json:"totalAmount"`
	UsedAmount             decimal.Decimal  `json:"usedAmount"`
	Frequency              string           `json:"frequency"`
	ResetType              *string          `json:"resetType"`
	LastReset              *string          `json:"lastReset"`
	AutoClaim              bool             `json:"autoClaim"`
	AutoClaimEndDate       *string          `json:"autoClaimEndDate"`
	Ignored                bool             `json:"ignored"`
	IgnoredEndDate         *string          `json:"ignoredEndDate"`
	ExpiryDate             *string          `json:"expiryDate"`
	IsCarryover            bool             `json:"isCarryover"`
	EarnedInstances        []EarnedInstance `json:"earnedInstances"`
	RequiredMinimumSpendID *string          `json:"requiredMinimumSpendId"`
	UsageJustifications    []Justification  `json:"usageJustifications"`
}

type EarnedInstance struct {
	EarnedDate          *string         `json:"earnedDate"`
	UsedAmount          decimal.Decimal `json:"usedAmount"`
	UsageJustifications []Justification `json:"usageJustifications"`
}

type Justification struct {
	ID            string          `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Justification string          `json:"justification"`
	ReminderDate  *string         `json:"reminderDate"`
	ChargeDate    *string         `json:"chargeDate"`
	Confirmed     bool            `json:"confirmed"`
}

type MinimumSpend struct {
	ID             string          `json:"id"`
	Description    string          `json:"description"`
	TargetAmount   decimal.Decimal `json:"targetAmount"`
	CurrentAmount  decimal.Decimal `json:"currentAmount"`
	Frequency      string          `json:"frequency"`
	ResetType      *string         `json:"resetType"`
	Deadline       *string         `json:"deadline"`
	LastReset      *string         `json:"lastReset"`
	IsMet          bool            `json:"isMet"`
	MetDate        *string         `json:"metDate"`
	Ignored        bool            `json:"ignored"`
	IgnoredEndDate *string         `json:"ignoredEndDate"`
}

// =============================================================================
// PERSISTENCE CAPABILITY
// =============================================================================

// Store is the persistence surface the controller consumes. Implementations
// live under store/; the engine itself never persists.
type Store interface {
	// LoadData returns the full record set, or an empty slice when no prior
	// data exists.
	LoadData(ctx context.Context) ([]Card, error)

	// SaveData replaces the full record set. All-or-nothing: a failed save
	// leaves the previously stored set intact.
	SaveData(ctx context.Context, cards []Card) error
}

// =============================================================================
// DOMAIN -> RECORD
// =============================================================================

// FromDomain serializes aggregates into their record form.
func FromDomain(cards []*benefit.Card) []Card {
	out := make([]Card, 0, len(cards))
	for _, c := range cards {
		out = append(out, Card{
			ID:              c.ID,
			Name:            c.Name,
			AnniversaryDate: dateOut(c.Anniversary),
			Benefits:        benefitsOut(c.Benefits),
			MinimumSpends:   minSpendsOut(c.MinimumSpends),
		})
	}
	return out
}

func benefitsOut(benefits []*benefit.Benefit) []Benefit {
	out := make([]Benefit, 0, len(benefits))
	for _, b := range benefits {
		out = append(out, Benefit{
			ID:                     b.ID,
			Description:            b.Description,
			TotalAmount:            b.TotalAmount,
			UsedAmount:             b.UsedAmount,
			Frequency:              string(b.Frequency),
			ResetType:              strOut(string(b.ResetType)),
			LastReset:              dateOut(b.LastReset),
			AutoClaim:              b.AutoClaim,
			AutoClaimEndDate:       dateOut(b.AutoClaimEndDate),
			Ignored:                b.Ignored,
			IgnoredEndDate:         dateOut(b.IgnoredEndDate),
			ExpiryDate:             dateOut(b.ExpiryDate),
			IsCarryover:            b.IsCarryover,
			EarnedInstances:        instancesOut(b.EarnedInstances),
			RequiredMinimumSpendID: strOut(b.RequiredMinimumSpendID),
			UsageJustifications:    justificationsOut(b.UsageJustifications),
		})
	}
	return out
}

func instancesOut(instances []benefit.EarnedInstance) []EarnedInstance {
	out := make([]EarnedInstance, 0, len(instances))
	for _, inst := range instances {
		out = append(out, EarnedInstance{
			EarnedDate:          dateOut(inst.EarnedDate),
			UsedAmount:          inst.UsedAmount,
			UsageJustifications: justificationsOut(inst.UsageJustifications),
		})
	}
	return out
}

func justificationsOut(js []benefit.Justification) []Justification {
	out := make([]Justification, 0, len(js))
	for _, j := range js {
		out = append(out, Justification{
			ID:            j.ID,
			Amount:        j.Amount,
			Justification: j.Justification,
			ReminderDate:  dateOut(j.ReminderDate),
			ChargeDate:    dateOut(j.ChargeDate),
			Confirmed:     j.Confirmed,
		})
	}
	return out
}

func minSpendsOut(spends []*benefit.MinimumSpend) []MinimumSpend {
	out := make([]MinimumSpend, 0, len(spends))
	for _, m := range spends {
		out = append(out, MinimumSpend{
			ID:             m.ID,
			Description:    m.Description,
			TargetAmount:   m.TargetAmount,
			CurrentAmount:  m.CurrentAmount,
			Frequency:      string(m.Frequency),
			ResetType:      strOut(string(m.ResetType)),
			Deadline:       dateOut(m.Deadline),
			LastReset:      dateOut(m.LastReset),
			IsMet:          m.IsMet,
			MetDate:        dateOut(m.MetDate),
			Ignored:        m.Ignored,
			IgnoredEndDate: dateOut(m.IgnoredEndDate),
		})
	}
	return out
}

// =============================================================================
// RECORD -> DOMAIN
// =============================================================================

// ToDomain reconstructs aggregates from records. Dates that fail to parse
// are treated as absent and amounts are re-clamped on the way in; callers
// that need hard guarantees validate the schema first.
func ToDomain(records []Card) []*benefit.Card {
	cards := make([]*benefit.Card, 0, len(records))
	for _, rc := range records {
		c := &benefit.Card{
			ID:          rc.ID,
			Name:        rc.Name,
			Anniversary: dateIn(rc.AnniversaryDate),
		}
		for _, rb := range rc.Benefits {
			c.Benefits = append(c.Benefits, benefitIn(rb, c.Anniversary))
		}
		for _, rm := range rc.MinimumSpends {
			c.MinimumSpends = append(c.MinimumSpends, minSpendIn(rm, c.Anniversary))
		}
		cards = append(cards, c)
	}
	return cards
}

func benefitIn(r Benefit, anniversary cycle.TimePoint) *benefit.Benefit {
	b := &benefit.Benefit{
		ID:                     r.ID,
		Description:            r.Description,
		TotalAmount:            cycle.ClampNonNegative(r.TotalAmount),
		Frequency:              NormalizeFrequency(r.Frequency),
		ResetType:              cycle.ResetType(strIn(r.ResetType)),
		LastReset:              dateIn(r.LastReset),
		AutoClaim:              r.AutoClaim,
		AutoClaimEndDate:       dateIn(r.AutoClaimEndDate),
		Ignored:                r.Ignored,
		IgnoredEndDate:         dateIn(r.IgnoredEndDate),
		ExpiryDate:             dateIn(r.ExpiryDate),
		IsCarryover:            r.IsCarryover,
		RequiredMinimumSpendID: strIn(r.RequiredMinimumSpendID),
		Anniversary:            anniversary,
	}
	b.UsedAmount = cycle.ClampAmount(r.UsedAmount, b.TotalAmount)
	for _, ri := range r.EarnedInstances {
		b.EarnedInstances = append(b.EarnedInstances, benefit.EarnedInstance{
			EarnedDate:          dateIn(ri.EarnedDate),
			UsedAmount:          cycle.ClampAmount(ri.UsedAmount, b.TotalAmount),
			UsageJustifications: justificationsIn(ri.UsageJustifications),
		})
	}
	b.UsageJustifications = justificationsIn(r.UsageJustifications)

	// The reset cycle belongs to recurring benefits only.
	if b.Kind() != cycle.KindRecurring {
		b.ResetType = ""
		if b.Kind() == cycle.KindCarryover {
			b.LastReset = cycle.TimePoint{}
		}
	}
	return b
}

func justificationsIn(rs []Justification) []benefit.Justification {
	var out []benefit.Justification
	for _, r := range rs {
		out = append(out, benefit.Justification{
			ID:            r.ID,
			Amount:        cycle.ClampNonNegative(r.Amount),
			Justification: r.Justification,
			ReminderDate:  dateIn(r.ReminderDate),
			ChargeDate:    dateIn(r.ChargeDate),
			Confirmed:     r.Confirmed,
		})
	}
	return out
}

func minSpendIn(r MinimumSpend, anniversary cycle.TimePoint) *benefit.MinimumSpend {
	m := &benefit.MinimumSpend{
		ID:             r.ID,
		Description:    r.Description,
		TargetAmount:   cycle.ClampNonNegative(r.TargetAmount),
		CurrentAmount:  cycle.ClampNonNegative(r.CurrentAmount),
		Frequency:      NormalizeFrequency(r.Frequency),
		ResetType:      cycle.ResetType(strIn(r.ResetType)),
		Deadline:       dateIn(r.Deadline),
		LastReset:      dateIn(r.LastReset),
		IsMet:          r.IsMet,
		MetDate:        dateIn(r.MetDate),
		Ignored:        r.Ignored,
		IgnoredEndDate: dateIn(r.IgnoredEndDate),
		Anniversary:    anniversary,
	}
	return m
}

// =============================================================================
// FIELD HELPERS
// =============================================================================

// NormalizeFrequency maps wire synonyms onto canonical frequencies:
// "yearly" means annual, hyphenated spellings are accepted, unknown values
// pass through (the schema rejects them before they get here).
func NormalizeFrequency(s string) cycle.Frequency {
	switch s {
	case "yearly", "annual":
		return cycle.FreqAnnual
	case "semiannual", "biannual":
		return cycle.FreqBiannual
	case "one-time", "one_time":
		return cycle.FreqOneTime
	case "every-4-years", "every_4_years":
		return cycle.FreqEvery4Years
	default:
		return cycle.Frequency(s)
	}
}

func dateOut(tp cycle.TimePoint) *string {
	if tp.IsZero() {
		return nil
	}
	s := tp.ISO()
	return &s
}

func dateIn(s *string) cycle.TimePoint {
	if s == nil || *s == "" {
		return cycle.TimePoint{}
	}
	tp, err := cycle.Parse(*s)
	if err != nil {
		return cycle.TimePoint{}
	}
	return tp
}

func strOut(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strIn(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

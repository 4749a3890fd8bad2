/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupled from the
  internal aggregates. Amounts are decimal strings, dates are ISO-8601
  date-times at midnight UTC or null.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
  - record: the persisted wire shapes (shared amount/date conventions)
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/benefit-engine/cycle"
	"github.com/warp/benefit-engine/tracker"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// CardDTO is the display projection of one card at the request's reference
// date.
type CardDTO struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Anniversary    *string           `json:"anniversaryDate"`
	TotalRemaining decimal.Decimal   `json:"totalRemaining"`
	Benefits       []BenefitDTO      `json:"benefits"`
	MinimumSpends  []MinimumSpendDTO `json:"minimumSpends"`
}

type BenefitDTO struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Kind        string          `json:"kind"`
	Total       decimal.Decimal `json:"totalAmount"`
	Used        decimal.Decimal `json:"usedAmount"`
	Remaining   decimal.Decimal `json:"remaining"`
	Locked      bool            `json:"locked"`

	NextResetDate  *string `json:"nextResetDate,omitempty"`
	DaysUntilReset *int    `json:"daysUntilReset,omitempty"`
	UseByDate      *string `json:"useByDate,omitempty"`

	AutoClaimActive bool `json:"autoClaimActive"`
	IgnoredActive   bool `json:"ignoredActive"`

	ActiveInstances []InstanceDTO `json:"activeInstances,omitempty"`
	CanEarnThisYear *bool         `json:"canEarnThisYear,omitempty"`
	EarnDeadline    *string       `json:"earnDeadline,omitempty"`
}

type InstanceDTO struct {
	Index      int             `json:"index"`
	EarnedDate *string         `json:"earnedDate"`
	ExpiryDate *string         `json:"expiryDate"`
	Remaining  decimal.Decimal `json:"remaining"`
}

type MinimumSpendDTO struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Target      decimal.Decimal `json:"targetAmount"`
	Current     decimal.Decimal `json:"currentAmount"`
	Remaining   decimal.Decimal `json:"remaining"`
	IsMet       bool            `json:"isMet"`

	PeriodStart       *string `json:"periodStart,omitempty"`
	PeriodEnd         *string `json:"periodEnd,omitempty"`
	Deadline          *string `json:"deadline,omitempty"`
	DaysUntilDeadline *int    `json:"daysUntilDeadline,omitempty"`
}

// PendingResetDTO is one queued manual decision.
type PendingResetDTO struct {
	CardID      string  `json:"cardId"`
	CardName    string  `json:"cardName"`
	BenefitID   string  `json:"benefitId"`
	Description string  `json:"description"`
	ResetDate   *string `json:"resetDate"`
}

// ResetPassDTO summarizes one engine pass.
type ResetPassDTO struct {
	AutoClaimed []PendingResetDTO `json:"autoClaimed"`
	AutoReset   []PendingResetDTO `json:"autoReset"`
	SilentRoll  []PendingResetDTO `json:"silentRoll"`
	Pending     []PendingResetDTO `json:"pending"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error      string   `json:"error"`
	Details    string   `json:"details,omitempty"`
	Violations []string `json:"violations,omitempty"`
}

// IDResponse returns the identifier of a created entity.
type IDResponse struct {
	ID string `json:"id"`
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

type CreateCardRequest struct {
	Name            string `json:"name"`
	AnniversaryDate string `json:"anniversaryDate"`
}

type UpdateCardRequest struct {
	Name            string `json:"name"`
	AnniversaryDate string `json:"anniversaryDate"`
}

type ReorderRequest struct {
	IDs []string `json:"ids"`
}

type CreateBenefitRequest struct {
	Description            string          `json:"description"`
	TotalAmount            decimal.Decimal `json:"totalAmount"`
	Frequency              string          `json:"frequency"`
	ResetType              string          `json:"resetType"`
	ExpiryDate             string          `json:"expiryDate"`
	RequiredMinimumSpendID string          `json:"requiredMinimumSpendId"`
}

type UpdateBenefitRequest struct {
	Description            *string          `json:"description"`
	TotalAmount            *decimal.Decimal `json:"totalAmount"`
	Frequency              *string          `json:"frequency"`
	ResetType              *string          `json:"resetType"`
	RequiredMinimumSpendID *string          `json:"requiredMinimumSpendId"`
	ExpiryDate             *string          `json:"expiryDate"`
	AutoClaim              *bool            `json:"autoClaim"`
	AutoClaimEndDate       string           `json:"autoClaimEndDate"`
	Ignored                *bool            `json:"ignored"`
	IgnoredEndDate         string           `json:"ignoredEndDate"`
}

type UsageRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type InstanceUsageRequest struct {
	Index  int             `json:"index"`
	Amount decimal.Decimal `json:"amount"`
}

type JustificationRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Justification string          `json:"justification"`
	ReminderDate  string          `json:"reminderDate"`
	ChargeDate    string          `json:"chargeDate"`
}

type CreateMinimumSpendRequest struct {
	Description  string          `json:"description"`
	TargetAmount decimal.Decimal `json:"targetAmount"`
	Frequency    string          `json:"frequency"`
	ResetType    string          `json:"resetType"`
	Deadline     string          `json:"deadline"`
}

type ProgressRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type ResetDecisionRequest struct {
	BenefitIDs []string `json:"benefitIds"`
}

// =============================================================================
// VIEW -> DTO
// =============================================================================

func toCardDTO(v tracker.CardView) CardDTO {
	dto := CardDTO{
		ID:             v.ID,
		Name:           v.Name,
		Anniversary:    dateDTO(v.Anniversary),
		TotalRemaining: v.TotalRemaining,
		Benefits:       []BenefitDTO{},
		MinimumSpends:  []MinimumSpendDTO{},
	}
	for _, b := range v.Benefits {
		dto.Benefits = append(dto.Benefits, toBenefitDTO(b))
	}
	for _, m := range v.MinimumSpends {
		dto.MinimumSpends = append(dto.MinimumSpends, toMinimumSpendDTO(m))
	}
	return dto
}

func toBenefitDTO(v tracker.BenefitView) BenefitDTO {
	dto := BenefitDTO{
		ID:              v.ID,
		Description:     v.Description,
		Kind:            v.Kind.String(),
		Total:           v.Total,
		Used:            v.Used,
		Remaining:       v.Remaining,
		Locked:          v.Locked,
		AutoClaimActive: v.AutoClaimActive,
		IgnoredActive:   v.IgnoredActive,
	}
	if v.HasCycle {
		dto.NextResetDate = dateDTO(v.NextResetDate)
		days := v.DaysUntilReset
		dto.DaysUntilReset = &days
		dto.UseByDate = dateDTO(v.UseByDate)
	}
	if v.Kind == cycle.KindCarryover {
		canEarn := v.CanEarnThisYear
		dto.CanEarnThisYear = &canEarn
		dto.EarnDeadline = dateDTO(v.EarnDeadline)
		for _, inst := range v.ActiveInstances {
			dto.ActiveInstances = append(dto.ActiveInstances, InstanceDTO{
				Index:      inst.Index,
				EarnedDate: dateDTO(inst.EarnedDate),
				ExpiryDate: dateDTO(inst.ExpiryDate),
				Remaining:  inst.Remaining,
			})
		}
	}
	return dto
}

func toMinimumSpendDTO(v tracker.MinimumSpendView) MinimumSpendDTO {
	dto := MinimumSpendDTO{
		ID:          v.ID,
		Description: v.Description,
		Target:      v.Target,
		Current:     v.Current,
		Remaining:   v.Remaining,
		IsMet:       v.IsMet,
	}
	if !v.Period.Start.IsZero() {
		dto.PeriodStart = dateDTO(v.Period.Start)
		dto.PeriodEnd = dateDTO(v.Period.End)
	}
	if v.HasDeadline {
		dto.Deadline = dateDTO(v.Deadline)
		days := v.DaysUntilDeadline
		dto.DaysUntilDeadline = &days
	}
	return dto
}

func dateDTO(tp cycle.TimePoint) *string {
	if tp.IsZero() {
		return nil
	}
	s := tp.ISO()
	return &s
}

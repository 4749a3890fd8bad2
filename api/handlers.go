/*
handlers.go - HTTP API handlers for the benefit tracking engine

PURPOSE:
  Exposes the tracker via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to the controller.

ENDPOINTS:
  Cards:
    GET    /api/cards                          List card views
    POST   /api/cards                          Create card
    PUT    /api/cards/{id}                     Rename / move anniversary
    DELETE /api/cards/{id}                     Delete card (cascades)
    POST   /api/cards/reorder                  Reorder cards

  Benefits:
    POST   /api/cards/{id}/benefits            Create benefit
    PUT    /api/cards/{id}/benefits/{bid}      Update benefit
    DELETE /api/cards/{id}/benefits/{bid}      Delete benefit
    PUT    /api/cards/{id}/benefits/{bid}/usage          Set used amount
    POST   /api/cards/{id}/benefits/{bid}/earn           Earn carryover instance
    PUT    /api/cards/{id}/benefits/{bid}/instances/usage Set instance usage
    POST   /api/cards/{id}/benefits/{bid}/justifications  Add justification
    POST   /api/cards/{id}/benefits/{bid}/justifications/{jid}/confirm
    DELETE /api/cards/{id}/benefits/{bid}/justifications/{jid}
    POST   /api/cards/{id}/benefits/{bid}/instances/{idx}/justifications
    POST   /api/cards/{id}/benefits/{bid}/instances/{idx}/justifications/{jid}/confirm
    DELETE /api/cards/{id}/benefits/{bid}/instances/{idx}/justifications/{jid}

  Minimum spends:
    POST   /api/cards/{id}/minimum-spends            Create minimum spend
    PUT    /api/cards/{id}/minimum-spends/{mid}/progress Set progress
    DELETE /api/cards/{id}/minimum-spends/{mid}      Delete minimum spend

  Resets:
    GET    /api/resets/pending                 Queued manual decisions
    POST   /api/resets/accept                  Apply queued resets
    POST   /api/resets/decline                 Dismiss queued resets
    POST   /api/resets/run                     Run a detection pass now

  Records:
    GET    /api/records                        Export serialized record set
    PUT    /api/records                        Import (validated atomically)

REFERENCE DATE:
  Read endpoints accept ?asOf=2026-03-01 to evaluate cycles at a fixed
  date. Mutations that need "today" accept the same parameter; absent,
  the server's current UTC date is used.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Card/benefit/minimum spend not found
  - 409: Conflict (benefit locked, instance already earned this year)
  - 422: Imported record set failed schema validation
  - 500: Persistence errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/warp/benefit-engine/benefit"
	"github.com/warp/benefit-engine/cycle"
	"github.com/warp/benefit-engine/engine"
	"github.com/warp/benefit-engine/tracker"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Tracker *tracker.Tracker
	Log     *logrus.Logger
}

// NewHandler creates a new handler around the controller.
func NewHandler(t *tracker.Tracker, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.New()
	}
	return &Handler{Tracker: t, Log: log}
}

// refDate resolves the reference date for a request: ?asOf= when present,
// otherwise today in UTC.
func refDate(r *http.Request) (cycle.TimePoint, error) {
	if asOf := r.URL.Query().Get("asOf"); asOf != "" {
		return cycle.Parse(asOf)
	}
	return cycle.FromTime(time.Now().UTC()), nil
}

// =============================================================================
// CARD HANDLERS
// =============================================================================

// ListCards returns the display projection of every card.
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	ref, err := refDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid asOf date", err)
		return
	}

	views := h.Tracker.CardViews(ref)
	dtos := make([]CardDTO, 0, len(views))
	for _, v := range views {
		dtos = append(dtos, toCardDTO(v))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCard returns one card's projection.
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	ref, err := refDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid asOf date", err)
		return
	}

	id := chi.URLParam(r, "id")
	for _, v := range h.Tracker.CardViews(ref) {
		if v.ID == id {
			writeJSON(w, http.StatusOK, toCardDTO(v))
			return
		}
	}
	writeError(w, http.StatusNotFound, "Card not found", nil)
}

// CreateCard creates a new card.
func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	anniversary, err := cycle.Parse(req.AnniversaryDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid anniversaryDate", err)
		return
	}

	id, err := h.Tracker.AddCard(r.Context(), req.Name, anniversary)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, IDResponse{ID: id})
}

// UpdateCard renames a card and/or moves its anniversary.
func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	var req UpdateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var anniversary cycle.TimePoint
	if req.AnniversaryDate != "" {
		var err error
		anniversary, err = cycle.Parse(req.AnniversaryDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid anniversaryDate", err)
			return
		}
	}

	if err := h.Tracker.UpdateCard(r.Context(), chi.URLParam(r, "id"), req.Name, anniversary); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCard removes a card and all of its children.
func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := h.Tracker.DeleteCard(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderCards applies a full ordering of card IDs.
func (h *Handler) ReorderCards(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Tracker.ReorderCards(r.Context(), req.IDs); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// BENEFIT HANDLERS
// =============================================================================

// CreateBenefit adds a benefit to a card.
func (h *Handler) CreateBenefit(w http.ResponseWriter, r *http.Request) {
	var req CreateBenefitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	today, err := refDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid asOf date", err)
		return
	}

	in := tracker.BenefitInput{
		Description:            req.Description,
		TotalAmount:            req.TotalAmount,
		Frequency:              req.Frequency,
		ResetType:              req.ResetType,
		RequiredMinimumSpendID: req.RequiredMinimumSpendID,
	}
	if req.ExpiryDate != "" {
		expiry, err := cycle.Parse(req.ExpiryDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid expiryDate", err)
			return
		}
		in.ExpiryDate = expiry
	}

	id, err := h.Tracker.AddBenefit(r.Context(), chi.URLParam(r, "id"), in, today)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, IDResponse{ID: id})
}

// UpdateBenefit edits a benefit's user-editable fields.
func (h *Handler) UpdateBenefit(w http.ResponseWriter, r *http.Request) {
	var req UpdateBenefitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	today, err := refDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid asOf date", err)
		return
	}

	upd := tracker.BenefitUpdate{
		Description:            req.Description,
		TotalAmount:            req.TotalAmount,
		Frequency:              req.Frequency,
		ResetType:              req.ResetType,
		RequiredMinimumSpendID: req.RequiredMinimumSpendID,
		AutoClaim:              req.AutoClaim,
		Ignored:                req.Ignored,
	}
	if req.ExpiryDate != nil {
		expiry, err := cycle.Parse(*req.ExpiryDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid expiryDate", err)
			return
		}
		upd.ExpiryDate = &expiry
	}
	if req.AutoClaimEndDate != "" {
		end, err := cycle.Parse(req.AutoClaimEndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid autoClaimEndDate", err)
			return
		}
		upd.AutoClaimEndDate = end
	}
	if req.IgnoredEndDate != "" {
		end, err := cycle.Parse(req.IgnoredEndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid ignoredEndDate", err)
			return
		}
		upd.IgnoredEndDate = end
	}

	if err := h.Tracker.UpdateBenefit(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "bid"), upd, today); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteBenefit removes a benefit from a card.
func (h *Handler) DeleteBenefit(w http.ResponseWriter, r *http.Request) {
	if err := h.Tracker.DeleteBenefit(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "bid")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetBenefitUsage writes a benefit's used amount.
func (h *Handler) SetBenefitUsage(w http.ResponseWriter, r *http.Request) {
	var req UsageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Tracker.SetBenefitUsage(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "bid"), req.Amount); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EarnCarryover records this year's earn event for a carryover benefit.
func (h *Handler) EarnCarryover(w http.ResponseWriter, r *http.Request) {
	today, err := refDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid asOf date", err)
		return
	}
	if err := h.Tracker.EarnCarryover(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "bid"), today); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetInstanceUsage writes usage on one earned carryover instance.
func (h *Handler) SetInstanceUsage(w http.ResponseWriter, r *http.Request) {
	var req InstanceUsageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Tracker.SetInstanceUsage(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "bid"), req.Index, req.Amount); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// JUSTIFICATION HANDLERS
// =============================================================================

// AddJustification records a planned or completed use of a benefit.
func (h *Handler) AddJustification(w http.ResponseWriter, r *http.Request) {
	var req JustificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var reminder, charge cycle.TimePoint
	if req.ReminderDate != "" {
		var err error
		if reminder, err = cycle.Parse(req.ReminderDate); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid reminderDate", err)
			return
		}
	}
	if req.ChargeDate != "" {
		var err error
		if charge, err = cycle.Parse(req.ChargeDate); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid chargeDate", err)
			return
		}
	}

	id, err := h.Tracker.AddJustification(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "bid"),
		req.Amount, req.Justification, reminder, charge)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, IDResponse{ID: id})
}

// ConfirmJustification marks a planned use as actually charged.
func (h *Handler) ConfirmJustification(w http.ResponseWriter, r *http.Request) {
	err := h.Tracker.ConfirmJustification(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "bid"), chi.URLParam(r, "jid"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveJustification deletes a justification.
func (h *Handler) RemoveJustification(w http.ResponseWriter, r *http.Request) {
	err := h.Tracker.RemoveJustification(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "bid"), chi.URLParam(r, "jid"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// instanceIndex resolves the earned-instance index from the URL.
func instanceIndex(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "idx"))
}

// AddInstanceJustification records a use against one earned instance.
func (h *Handler) AddInstanceJustification(w http.ResponseWriter, r *http.Request) {
	idx, err := instanceIndex(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid instance index", err)
		return
	}
	var req JustificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var reminder, charge cycle.TimePoint
	if req.ReminderDate != "" {
		if reminder, err = cycle.Parse(req.ReminderDate); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid reminderDate", err)
			return
		}
	}
	if req.ChargeDate != "" {
		if charge, err = cycle.Parse(req.ChargeDate); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid chargeDate", err)
			return
		}
	}

	id, err := h.Tracker.AddInstanceJustification(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "bid"),
		idx, req.Amount, req.Justification, reminder, charge)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, IDResponse{ID: id})
}

// ConfirmInstanceJustification marks an instance-level planned use as charged.
func (h *Handler) ConfirmInstanceJustification(w http.ResponseWriter, r *http.Request) {
	idx, err := instanceIndex(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid instance index", err)
		return
	}
	err = h.Tracker.ConfirmInstanceJustification(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "bid"), idx, chi.URLParam(r, "jid"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveInstanceJustification deletes an instance-level justification.
func (h *Handler) RemoveInstanceJustification(w http.ResponseWriter, r *http.Request) {
	idx, err := instanceIndex(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid instance index", err)
		return
	}
	err = h.Tracker.RemoveInstanceJustification(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "bid"), idx, chi.URLParam(r, "jid"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// MINIMUM SPEND HANDLERS
// =============================================================================

// CreateMinimumSpend adds a minimum spend requirement to a card.
func (h *Handler) CreateMinimumSpend(w http.ResponseWriter, r *http.Request) {
	var req CreateMinimumSpendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	today, err := refDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid asOf date", err)
		return
	}

	in := tracker.MinimumSpendInput{
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
		Frequency:    req.Frequency,
		ResetType:    req.ResetType,
	}
	if req.Deadline != "" {
		deadline, err := cycle.Parse(req.Deadline)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid deadline", err)
			return
		}
		in.Deadline = deadline
	}

	id, err := h.Tracker.AddMinimumSpend(r.Context(), chi.URLParam(r, "id"), in, today)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, IDResponse{ID: id})
}

// SetMinimumSpendProgress writes the tracked spend amount; meeting the
// target unlocks any benefit gated on this requirement.
func (h *Handler) SetMinimumSpendProgress(w http.ResponseWriter, r *http.Request) {
	var req ProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	today, err := refDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid asOf date", err)
		return
	}
	if err := h.Tracker.SetMinimumSpendProgress(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "mid"), req.Amount, today); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteMinimumSpend removes a minimum spend; gated benefits unlock.
func (h *Handler) DeleteMinimumSpend(w http.ResponseWriter, r *http.Request) {
	if err := h.Tracker.DeleteMinimumSpend(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "mid")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// RESET HANDLERS
// =============================================================================

// ListPendingResets returns queued manual reset decisions.
func (h *Handler) ListPendingResets(w http.ResponseWriter, r *http.Request) {
	pending := h.Tracker.PendingResets()
	dtos := make([]PendingResetDTO, 0, len(pending))
	for _, p := range pending {
		dtos = append(dtos, toPendingDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AcceptResets applies queued resets for the given benefit IDs.
func (h *Handler) AcceptResets(w http.ResponseWriter, r *http.Request) {
	var req ResetDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Tracker.AcceptPendingResets(r.Context(), req.BenefitIDs); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeclineResets dismisses queued resets; the data is untouched.
func (h *Handler) DeclineResets(w http.ResponseWriter, r *http.Request) {
	var req ResetDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.Tracker.DeclinePendingResets(req.BenefitIDs)
	w.WriteHeader(http.StatusNoContent)
}

// RunResetPass triggers a detection pass immediately.
func (h *Handler) RunResetPass(w http.ResponseWriter, r *http.Request) {
	today, err := refDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid asOf date", err)
		return
	}
	result, err := h.Tracker.RunResetPass(r.Context(), today)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResetPassDTO(result))
}

// =============================================================================
// RECORD IMPORT/EXPORT
// =============================================================================

// ExportRecords returns the full serialized record set.
func (h *Handler) ExportRecords(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Tracker.Records())
}

// ImportRecords replaces the record set with a validated external one.
func (h *Handler) ImportRecords(w http.ResponseWriter, r *http.Request) {
	today, err := refDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid asOf date", err)
		return
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Reading request body", err)
		return
	}

	result, violations, err := h.Tracker.ImportRecords(r.Context(), raw, today)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Malformed record payload", err)
		return
	}
	if len(violations) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:      "Record set failed validation",
			Violations: violations,
		})
		return
	}
	writeJSON(w, http.StatusOK, toResetPassDTO(result))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func toPendingDTO(o engine.Outcome) PendingResetDTO {
	return PendingResetDTO{
		CardID:      o.CardID,
		CardName:    o.CardName,
		BenefitID:   o.BenefitID,
		Description: o.Description,
		ResetDate:   dateDTO(o.ResetDate),
	}
}

func toResetPassDTO(result engine.Result) ResetPassDTO {
	dto := ResetPassDTO{
		AutoClaimed: []PendingResetDTO{},
		AutoReset:   []PendingResetDTO{},
		SilentRoll:  []PendingResetDTO{},
		Pending:     []PendingResetDTO{},
	}
	for _, o := range result.AutoClaimed {
		dto.AutoClaimed = append(dto.AutoClaimed, toPendingDTO(o))
	}
	for _, o := range result.AutoReset {
		dto.AutoReset = append(dto.AutoReset, toPendingDTO(o))
	}
	for _, o := range result.SilentRoll {
		dto.SilentRoll = append(dto.SilentRoll, toPendingDTO(o))
	}
	for _, o := range result.Pending {
		dto.Pending = append(dto.Pending, toPendingDTO(o))
	}
	return dto
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps controller errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tracker.ErrCardNotFound),
		errors.Is(err, benefit.ErrBenefitNotFound),
		errors.Is(err, benefit.ErrMinimumSpendNotFound),
		errors.Is(err, benefit.ErrInstanceNotFound),
		errors.Is(err, benefit.ErrJustificationNotFound),
		errors.Is(err, tracker.ErrPendingNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, benefit.ErrBenefitLocked),
		errors.Is(err, benefit.ErrAlreadyEarnedThisYear):
		writeError(w, http.StatusConflict, "Conflict", err)
	case errors.Is(err, benefit.ErrNotCarryover),
		errors.Is(err, benefit.ErrReorderMismatch),
		errors.Is(err, tracker.ErrInvalidFrequency),
		errors.Is(err, tracker.ErrEndDateRequired):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

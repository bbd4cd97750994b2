/*
handlers.go - HTTP API handlers for the duty-roster and leave-credit engine

PURPOSE:
  Exposes the engine via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to the coordinator and the store.

ENDPOINTS:
  Members:
    GET    /api/members                      List all members
    POST   /api/members                      Create/update member
    GET    /api/members/{id}                 Get member details
    GET    /api/members/{id}/balance         Current point balance
    GET    /api/members/{id}/calendar        Month view (?month=2026-01)
    GET    /api/members/{id}/requests        Request history (newest first)
    POST   /api/members/{id}/requests        Submit a day-off request
    DELETE /api/members/{id}/requests/{date} Cancel the active request
    GET    /api/members/{id}/journal         Balance change journal

  Reference data:
    GET/POST /api/holidays, DELETE /api/holidays/{date}
    GET/POST /api/blocked-dates, DELETE /api/blocked-dates/{date}

  Admin:
    POST   /api/admin/grants                 Credit points to a member
    POST   /api/admin/audit                  Run the ledger audit now
    POST   /api/admin/seed                   Load the demo squad

ERROR HANDLING:
  Engine errors map to HTTP status by taxonomy:
  - 400: Invalid input, malformed or out-of-range dates
  - 404: Member or active request not found
  - 409: Day already requested, monthly quota exceeded
  - 422: Blocked date, off-duty day, insufficient balance
  - 500: Internal errors (including ledger consistency violations)

SEE ALSO:
  - dto.go: Request/response data structures
  - credit/errors.go: The error taxonomy being mapped
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/escala/roster-engine/calendar"
	"github.com/escala/roster-engine/credit"
	"github.com/escala/roster-engine/factory"
	"github.com/escala/roster-engine/personnel"
	"github.com/escala/roster-engine/roster"
	"github.com/escala/roster-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       *sqlite.Store
	Coordinator *credit.Coordinator
	Auditor     *Auditor
	Log         *logrus.Logger
}

// NewHandler creates a new handler.
func NewHandler(store *sqlite.Store, coordinator *credit.Coordinator, auditor *Auditor, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.New()
	}
	return &Handler{
		Store:       store,
		Coordinator: coordinator,
		Auditor:     auditor,
		Log:         log,
	}
}

// =============================================================================
// MEMBER HANDLERS
// =============================================================================

// ListMembers returns all members, ordered by ID.
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.Store.Members(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]MemberDTO, 0, len(members))
	for _, m := range members {
		dtos = append(dtos, toMemberDTO(m))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetMember returns a single member.
func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	id := personnel.MemberID(chi.URLParam(r, "id"))

	m, err := h.Store.Member(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberDTO(m))
}

// CreateMember creates or updates a member record.
func (h *Handler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req CreateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" || req.Team == "" {
		writeError(w, http.StatusBadRequest, "id, name, and team are required", nil)
		return
	}

	birthday, err := factory.ParseMonthDay(req.Birthday)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid birthday format (use MM-DD)", err)
		return
	}

	m := personnel.Member{
		ID:        personnel.MemberID(req.ID),
		Name:      req.Name,
		Team:      roster.Team(req.Team),
		Matricula: req.Matricula,
		Birthday:  birthday,
	}
	if err := h.Store.InsertMember(r.Context(), m); err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMemberDTO(m))
}

// =============================================================================
// BALANCE AND JOURNAL HANDLERS
// =============================================================================

// GetBalance returns the member's current point balance.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := personnel.MemberID(chi.URLParam(r, "id"))

	balance, err := h.Coordinator.Balance(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	f, _ := balance.Float64()
	writeJSON(w, http.StatusOK, BalanceDTO{MemberID: string(id), Balance: f})
}

// GetJournal returns the member's balance change history.
func (h *Handler) GetJournal(w http.ResponseWriter, r *http.Request) {
	id := personnel.MemberID(chi.URLParam(r, "id"))

	if _, err := h.Store.Member(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	entries, err := h.Store.EntriesByMember(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, toEntryDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// CALENDAR HANDLER
// =============================================================================

// GetMonthView returns the member's calendar month: per-day duty status,
// blocked reasons, and active requests, plus the current balance.
func (h *Handler) GetMonthView(w http.ResponseWriter, r *http.Request) {
	id := personnel.MemberID(chi.URLParam(r, "id"))

	monthParam := r.URL.Query().Get("month")
	var ym calendar.YearMonth
	if monthParam == "" {
		ym = calendar.Today().YearMonth()
	} else {
		var err error
		ym, err = calendar.ParseYearMonth(monthParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month format (use YYYY-MM)", err)
			return
		}
	}

	view, err := h.Coordinator.GetMonthView(r.Context(), id, ym)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthViewDTO(view))
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

// SubmitRequest submits a day-off request, charging the priced cost.
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	id := personnel.MemberID(chi.URLParam(r, "id"))

	var req SubmitRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	category := credit.Category(req.Category)
	if category == "" {
		category = credit.CategoryPTS
	}

	balance, err := h.Coordinator.SubmitRequest(r.Context(), id, date, category)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	f, _ := balance.Float64()
	writeJSON(w, http.StatusCreated, SubmitRequestResponse{
		Status:   "submitted",
		Date:     date.String(),
		Category: string(category),
		Balance:  f,
	})
}

// CancelRequest cancels the member's active request for the date and
// refunds the charged cost.
func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	id := personnel.MemberID(chi.URLParam(r, "id"))

	date, err := calendar.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	balance, err := h.Coordinator.CancelRequest(r.Context(), id, date)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	f, _ := balance.Float64()
	writeJSON(w, http.StatusOK, CancelRequestResponse{
		Status:  "canceled",
		Date:    date.String(),
		Balance: f,
	})
}

// GetHistory returns the member's requests, newest first, including
// canceled ones.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := personnel.MemberID(chi.URLParam(r, "id"))

	reqs, err := h.Coordinator.History(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(reqs))
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns the holidays for a month (?month=2026-01) or the
// current month.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	monthParam := r.URL.Query().Get("month")
	ym := calendar.Today().YearMonth()
	if monthParam != "" {
		var err error
		ym, err = calendar.ParseYearMonth(monthParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month format (use YYYY-MM)", err)
			return
		}
	}

	holidays := h.Store.HolidaysInMonth(ym)
	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, HolidayDTO{Date: hol.Date.String(), Name: hol.Name})
	}
	writeJSON(w, http.StatusOK, map[string]any{"month": ym.String(), "holidays": dtos})
}

// CreateHoliday registers a holiday. Days already purchased keep their
// charged cost; only future pricing changes.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req HolidayDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}
	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	if err := h.Store.AddHoliday(r.Context(), calendar.Holiday{Date: date, Name: req.Name}); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

// DeleteHoliday removes a holiday.
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	date, err := calendar.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	if err := h.Store.DeleteHoliday(r.Context(), date); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// BLOCKED DATE HANDLERS
// =============================================================================

// ListBlockedDates returns all administratively blocked dates.
func (h *Handler) ListBlockedDates(w http.ResponseWriter, r *http.Request) {
	blocked, err := h.Store.ListBlockedDates(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]BlockedDateDTO, 0, len(blocked))
	for _, b := range blocked {
		dtos = append(dtos, BlockedDateDTO{Date: b.Date.String(), Reason: b.Reason})
	}
	writeJSON(w, http.StatusOK, map[string]any{"blocked_dates": dtos})
}

// CreateBlockedDate vetoes a date. Existing active requests for the date
// stay valid; the veto only stops new submissions.
func (h *Handler) CreateBlockedDate(w http.ResponseWriter, r *http.Request) {
	var req BlockedDateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	if err := h.Store.AddBlockedDate(r.Context(), calendar.BlockedDate{Date: date, Reason: req.Reason}); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

// DeleteBlockedDate lifts the veto on a date.
func (h *Handler) DeleteBlockedDate(w http.ResponseWriter, r *http.Request) {
	date, err := calendar.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	if err := h.Store.RemoveBlockedDate(r.Context(), date); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// CreateGrant credits points to a member. Points are earned outside the
// engine (service hours, commendations); this is where they arrive.
func (h *Handler) CreateGrant(w http.ResponseWriter, r *http.Request) {
	var req GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "Amount must be positive", nil)
		return
	}

	id := personnel.MemberID(req.MemberID)
	balance, err := h.Coordinator.Grant(r.Context(), id, decimal.NewFromFloat(req.Amount), req.Reason)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	f, _ := balance.Float64()
	writeJSON(w, http.StatusCreated, GrantResponse{
		Status:   "granted",
		MemberID: req.MemberID,
		Balance:  f,
	})
}

// RunAudit runs the ledger consistency audit immediately.
func (h *Handler) RunAudit(w http.ResponseWriter, r *http.Request) {
	report, err := h.Auditor.RunOnce(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuditReportDTO(report))
}

// LoadSeed loads the demo squad: members, reference data, and starting
// balances.
func (h *Handler) LoadSeed(w http.ResponseWriter, r *http.Request) {
	if err := SeedDemo(r.Context(), h.Store, h.Coordinator); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "seeded"})
}

// =============================================================================
// HELPERS
// =============================================================================

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

// writeDomainError maps engine errors to HTTP statuses per the taxonomy.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Log.WithError(err).Error("internal error")
		writeError(w, status, "Internal error", nil)
		return
	}
	writeError(w, status, err.Error(), nil)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, personnel.ErrMemberNotFound),
		errors.Is(err, credit.ErrRequestNotFound):
		return http.StatusNotFound
	case errors.Is(err, credit.ErrAlreadyRequested),
		errors.Is(err, credit.ErrQuotaExceeded):
		return http.StatusConflict
	case errors.Is(err, credit.ErrInvalidDate):
		return http.StatusBadRequest
	case errors.Is(err, credit.ErrBlockedDate),
		errors.Is(err, credit.ErrNotOrdinaryDay),
		errors.Is(err, credit.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

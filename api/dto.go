/*
dto.go - Request/response data structures for the HTTP API

PURPOSE:
  JSON shapes exchanged with the portal frontend. Domain types (decimal
  amounts, calendar dates) are converted to JSON-friendly forms here:
  points as float64, dates as "YYYY-MM-DD" strings, timestamps as RFC3339.

CONVENTIONS:
  - snake_case JSON field names
  - Dates: "2006-01-02"
  - Months: "2006-01"
  - Birthdays: "MM-DD" (year-independent)

SEE ALSO:
  - handlers.go: Produces and consumes these
*/
package api

import (
	"time"

	"github.com/escala/roster-engine/credit"
	"github.com/escala/roster-engine/personnel"
)

// =============================================================================
// MEMBER DTOs
// =============================================================================

type MemberDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Team      string `json:"team"`
	Matricula string `json:"matricula"`
	Birthday  string `json:"birthday"` // MM-DD
}

type CreateMemberRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Team      string `json:"team"`
	Matricula string `json:"matricula"`
	Birthday  string `json:"birthday"` // MM-DD
}

func toMemberDTO(m personnel.Member) MemberDTO {
	return MemberDTO{
		ID:        string(m.ID),
		Name:      m.Name,
		Team:      string(m.Team),
		Matricula: m.Matricula,
		Birthday:  m.Birthday.String(),
	}
}

// =============================================================================
// REQUEST DTOs
// =============================================================================

type SubmitRequestRequest struct {
	Date     string `json:"date"`
	Category string `json:"category"` // defaults to PTS
}

// SubmitRequestResponse reports the charge and the balance after it.
type SubmitRequestResponse struct {
	Status   string  `json:"status"`
	Date     string  `json:"date"`
	Category string  `json:"category"`
	Balance  float64 `json:"balance"`
}

type CancelRequestResponse struct {
	Status  string  `json:"status"`
	Date    string  `json:"date"`
	Balance float64 `json:"balance"`
}

type RequestDTO struct {
	ID         string  `json:"id"`
	MemberID   string  `json:"member_id"`
	Date       string  `json:"date"`
	Category   string  `json:"category"`
	Cost       float64 `json:"cost"`
	CostLabel  string  `json:"cost_label"`
	Active     bool    `json:"active"`
	CreatedAt  string  `json:"created_at"`
	CanceledAt *string `json:"canceled_at,omitempty"`
}

func toRequestDTO(r credit.LeaveRequest) RequestDTO {
	cost, _ := r.CostCharged.Float64()
	dto := RequestDTO{
		ID:        string(r.ID),
		MemberID:  string(r.MemberID),
		Date:      r.Date.String(),
		Category:  string(r.Category),
		Cost:      cost,
		CostLabel: r.CostLabel,
		Active:    r.Active(),
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
	if r.CanceledAt != nil {
		s := r.CanceledAt.Format(time.RFC3339)
		dto.CanceledAt = &s
	}
	return dto
}

func toRequestDTOs(reqs []credit.LeaveRequest) []RequestDTO {
	dtos := make([]RequestDTO, 0, len(reqs))
	for _, r := range reqs {
		dtos = append(dtos, toRequestDTO(r))
	}
	return dtos
}

// =============================================================================
// CALENDAR DTOs
// =============================================================================

type DayDTO struct {
	Date          string       `json:"date"`
	Weekday       string       `json:"weekday"`
	DutyStatus    string       `json:"duty_status"`
	Blocked       bool         `json:"blocked"`
	BlockedReason string       `json:"blocked_reason,omitempty"`
	Requests      []RequestDTO `json:"requests,omitempty"`
}

type MonthViewDTO struct {
	Member  MemberDTO `json:"member"`
	Month   string    `json:"month"`
	Balance float64   `json:"balance"`
	Days    []DayDTO  `json:"days"`
}

func toMonthViewDTO(view *credit.MonthView) MonthViewDTO {
	balance, _ := view.Balance.Float64()
	days := make([]DayDTO, 0, len(view.Days))
	for _, d := range view.Days {
		days = append(days, DayDTO{
			Date:          d.Date.String(),
			Weekday:       d.Date.Weekday().String(),
			DutyStatus:    string(d.DutyStatus),
			Blocked:       d.BlockedReason != "",
			BlockedReason: d.BlockedReason,
			Requests:      toRequestDTOs(d.Requests),
		})
	}
	return MonthViewDTO{
		Member:  toMemberDTO(view.Member),
		Month:   view.Month.String(),
		Balance: balance,
		Days:    days,
	}
}

// =============================================================================
// BALANCE AND JOURNAL DTOs
// =============================================================================

type BalanceDTO struct {
	MemberID string  `json:"member_id"`
	Balance  float64 `json:"balance"`
}

type EntryDTO struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	Amount    float64 `json:"amount"`
	Delta     float64 `json:"delta"`
	RequestID string  `json:"request_id,omitempty"`
	Reason    string  `json:"reason"`
	CreatedAt string  `json:"created_at"`
}

func toEntryDTO(e credit.Entry) EntryDTO {
	amount, _ := e.Amount.Float64()
	delta, _ := e.Delta().Float64()
	return EntryDTO{
		ID:        e.ID,
		Kind:      string(e.Kind),
		Amount:    amount,
		Delta:     delta,
		RequestID: string(e.RequestID),
		Reason:    e.Reason,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// ADMIN DTOs
// =============================================================================

type GrantRequest struct {
	MemberID string  `json:"member_id"`
	Amount   float64 `json:"amount"`
	Reason   string  `json:"reason"`
}

type GrantResponse struct {
	Status   string  `json:"status"`
	MemberID string  `json:"member_id"`
	Balance  float64 `json:"balance"`
}

type HolidayDTO struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

type BlockedDateDTO struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

type AuditReportDTO struct {
	RanAt          string   `json:"ran_at"`
	MembersChecked int      `json:"members_checked"`
	Issues         []string `json:"issues"`
}

// =============================================================================
// ERROR RESPONSE
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

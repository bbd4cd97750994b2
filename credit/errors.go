/*
errors.go - Centralized error taxonomy for the leave-credit economy

PURPOSE:
  All engine errors in one place. Every validation failure is a typed,
  recoverable, user-facing error; callers match with errors.Is/As and
  re-issue after fixing the input. None are silently swallowed.

ERROR CATEGORIES:
  1. Validation errors - submit/cancel rule violations (client errors)
  2. Configuration errors - fatal, raised at construction, never per-call
  3. Consistency errors - broken invariants (internal, never user-facing)

USAGE:
  if errors.Is(err, credit.ErrQuotaExceeded) {
      var qe *credit.QuotaExceededError
      errors.As(err, &qe)
      ...
  }

SEE ALSO:
  - coordinator.go: Produces most of these
  - api/handlers.go: Maps them to HTTP statuses
*/
package credit

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/escala/roster-engine/calendar"
	"github.com/escala/roster-engine/personnel"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrBlockedDate is returned when the requested date carries an
	// administrative veto. Takes precedence over every other check.
	ErrBlockedDate = errors.New("date is blocked")

	// ErrNotOrdinaryDay is returned when the member's team is not on duty
	// on the requested date. Only working days can be sold for points.
	ErrNotOrdinaryDay = errors.New("not an ordinary duty day")

	// ErrAlreadyRequested is returned when an active request already
	// exists for the (member, date) pair.
	ErrAlreadyRequested = errors.New("day already requested")

	// ErrQuotaExceeded is returned when the member already holds the
	// monthly maximum of active requests for the category.
	ErrQuotaExceeded = errors.New("monthly quota exceeded")

	// ErrInsufficientBalance is returned when the day's cost exceeds the
	// member's point balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrRequestNotFound is returned on cancel when no active request
	// exists for the (member, date) pair.
	ErrRequestNotFound = errors.New("active request not found")

	// ErrInvalidDate is returned for zero, malformed, or out-of-range dates.
	ErrInvalidDate = errors.New("invalid date")

	// ErrConfiguration indicates broken reference configuration (empty
	// rotation, negative quota). Fatal at construction, never per-request.
	ErrConfiguration = errors.New("configuration error")

	// ErrCorruptLedger indicates an observed broken invariant (negative
	// balance, unmatched debit). Internal-consistency failure, not a
	// user-facing validation error.
	ErrCorruptLedger = errors.New("ledger consistency violation")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// BlockedDateError surfaces the administrative reason to the caller.
type BlockedDateError struct {
	Date   calendar.Date
	Reason string
}

func (e *BlockedDateError) Error() string {
	return fmt.Sprintf("date %s is blocked: %s", e.Date, e.Reason)
}

func (e *BlockedDateError) Unwrap() error { return ErrBlockedDate }

// QuotaExceededError reports the current usage against the configured max.
type QuotaExceededError struct {
	MemberID personnel.MemberID
	Category Category
	Month    calendar.YearMonth
	Count    int
	Max      int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: %d/%d active %s requests in %s",
		e.Count, e.Max, e.Category, e.Month)
}

func (e *QuotaExceededError) Unwrap() error { return ErrQuotaExceeded }

// InsufficientBalanceError reports the shortfall.
type InsufficientBalanceError struct {
	MemberID  personnel.MemberID
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available %s, requested %s",
		e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is a validation failure the
// caller can fix and re-issue.
func IsClientError(err error) bool {
	return errors.Is(err, ErrBlockedDate) ||
		errors.Is(err, ErrNotOrdinaryDay) ||
		errors.Is(err, ErrAlreadyRequested) ||
		errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrRequestNotFound) ||
		errors.Is(err, ErrInvalidDate)
}

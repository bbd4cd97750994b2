/*
store.go - Persistence interface for balances, requests, and the journal

PURPOSE:
  Defines the boundary between the economy logic and the database.
  Any store offering per-member read-your-writes consistency suffices;
  the engine's own per-member locking provides the serialization.

TRANSACTION BOUNDARY:
  WithTx brackets the submit/cancel check-then-act sequence so a failed
  validation leaves no partial mutation behind: the quota read, the
  balance debit, the journal append, and the record insert commit
  together or not at all.

IMPLEMENTATIONS:
  - credit/store/memory.go: In-memory, for tests and development
  - store/sqlite: Durable SQLite store

SEE ALSO:
  - ledger.go: Debit/Credit built on this interface
  - coordinator.go: The only caller of WithTx
*/
package credit

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/escala/roster-engine/calendar"
	"github.com/escala/roster-engine/personnel"
)

// Store persists balances, leave request records, and the journal.
type Store interface {
	// Balance returns the member's point balance, zero if never credited.
	Balance(ctx context.Context, id personnel.MemberID) (decimal.Decimal, error)

	// SetBalance replaces the member's balance. Only the Ledger calls this,
	// always paired with a journal append.
	SetBalance(ctx context.Context, id personnel.MemberID, balance decimal.Decimal) error

	// ActiveRequest returns the active request for (member, date), nil if none.
	ActiveRequest(ctx context.Context, id personnel.MemberID, date calendar.Date) (*LeaveRequest, error)

	// CountActiveInMonth counts the member's active requests of the given
	// category whose date falls inside the month.
	CountActiveInMonth(ctx context.Context, id personnel.MemberID, category Category, ym calendar.YearMonth) (int, error)

	// ActiveRequestsInMonth lists the member's active requests in the month,
	// ordered by date.
	ActiveRequestsInMonth(ctx context.Context, id personnel.MemberID, ym calendar.YearMonth) ([]LeaveRequest, error)

	// RequestsByMember lists all of the member's requests (active and
	// canceled), newest first.
	RequestsByMember(ctx context.Context, id personnel.MemberID) ([]LeaveRequest, error)

	// ActiveRequests lists every active request across members (audit).
	ActiveRequests(ctx context.Context) ([]LeaveRequest, error)

	// InsertRequest persists a new active request record.
	InsertRequest(ctx context.Context, req LeaveRequest) error

	// MarkCanceled sets the cancellation timestamp on a request.
	// The record itself is never deleted.
	MarkCanceled(ctx context.Context, id RequestID, at time.Time) error

	// AppendEntry appends an immutable journal line.
	AppendEntry(ctx context.Context, entry Entry) error

	// EntriesByMember returns the member's journal, oldest first.
	EntriesByMember(ctx context.Context, id personnel.MemberID) ([]Entry, error)

	// WithTx executes fn atomically. If fn returns an error the store is
	// left exactly as it was.
	WithTx(ctx context.Context, fn func(Store) error) error
}

/*
Package credit implements the leave-credit economy: the point ledger,
monthly quotas, and the request/cancel state machine behind the
personnel calendar.

KEY CONCEPTS IN THIS FILE (types.go):
  - Category: Leave request category ("PTS", "CPC"); quotas are per category
  - LeaveRequest: The request record; cost is captured at creation and
    immutable thereafter
  - Entry: An immutable journal line recording every balance change
  - Quotas: Category -> max active requests per member per calendar month

DESIGN PRINCIPLES:
  1. Stored cost: cancellation refunds exactly what was charged, never a
     recomputation against current rules
  2. Soft cancel: records keep a cancellation timestamp, never deleted
  3. Journal: balance mutations leave an auditable trail

SEE ALSO:
  - ledger.go: Debit/Credit over balances and the journal
  - coordinator.go: The single write path
*/
package credit

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/escala/roster-engine/calendar"
	"github.com/escala/roster-engine/personnel"
)

// =============================================================================
// CATEGORY - Leave request category
// =============================================================================

type Category string

const (
	// CategoryPTS is the point-based day-off request (dispensa).
	CategoryPTS Category = "PTS"

	// CategoryCPC is the complementary compensation category.
	CategoryCPC Category = "CPC"
)

// =============================================================================
// LEAVE REQUEST RECORD
// =============================================================================

type RequestID string

// LeaveRequest is one day-off purchase. CostCharged is fixed at submission
// time; cancellation refunds it verbatim.
type LeaveRequest struct {
	ID          RequestID
	MemberID    personnel.MemberID
	Date        calendar.Date
	Category    Category
	CostCharged decimal.Decimal
	CostLabel   string // pricing tier + birthday marker, for audit display
	CreatedAt   time.Time
	CanceledAt  *time.Time // nil while active
}

// Active reports whether the request still holds its day.
func (r LeaveRequest) Active() bool { return r.CanceledAt == nil }

// =============================================================================
// JOURNAL ENTRY - Immutable record of a balance change
// =============================================================================

type EntryKind string

const (
	EntryDebit  EntryKind = "debit"  // request submitted
	EntryCredit EntryKind = "credit" // request canceled (refund)
	EntryGrant  EntryKind = "grant"  // admin grant/adjustment
)

// Entry is one journal line. Amount is always positive; Delta gives the
// signed effect on the balance.
type Entry struct {
	ID        string
	MemberID  personnel.MemberID
	Kind      EntryKind
	Amount    decimal.Decimal
	RequestID RequestID // empty for grants
	Reason    string
	CreatedAt time.Time
}

// Delta returns the signed balance effect of this entry.
func (e Entry) Delta() decimal.Decimal {
	if e.Kind == EntryDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}

// =============================================================================
// QUOTAS - Category -> max active requests per member per month
// =============================================================================

// DefaultQuota is the monthly maximum used for categories without an
// explicit configuration.
const DefaultQuota = 1

// Quotas holds the per-category monthly maximums.
type Quotas struct {
	max map[Category]int
}

// NewQuotas validates and builds the quota table. A negative maximum is a
// configuration error, fatal at construction.
func NewQuotas(max map[Category]int) (Quotas, error) {
	for cat, m := range max {
		if m < 0 {
			return Quotas{}, fmt.Errorf("%w: negative quota %d for category %s",
				ErrConfiguration, m, cat)
		}
	}
	copied := make(map[Category]int, len(max))
	for cat, m := range max {
		copied[cat] = m
	}
	return Quotas{max: copied}, nil
}

// DefaultQuotas returns a table where every category gets DefaultQuota.
func DefaultQuotas() Quotas {
	q, _ := NewQuotas(nil)
	return q
}

// Max returns the monthly maximum for the category.
func (q Quotas) Max(category Category) int {
	if m, ok := q.max[category]; ok {
		return m
	}
	return DefaultQuota
}

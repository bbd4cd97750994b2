/*
quota.go - Monthly quota enforcement per member and category

PURPOSE:
  Limits how many active requests a member may hold per category per
  calendar month. Each category is tracked independently: a member may
  simultaneously hold one active PTS and one active CPC request.

NO CACHING:
  The count is always recomputed against current store state. A
  cancellation frees quota immediately, so a cancel-then-submit within
  the same call sequence succeeds.

SEE ALSO:
  - types.go: Quotas configuration
  - coordinator.go: Calls Allowed inside the submit transaction
*/
package credit

import (
	"context"

	"github.com/escala/roster-engine/calendar"
	"github.com/escala/roster-engine/personnel"
)

// QuotaTracker answers allow/deny for a member, category, and month.
// Stateless per call: every check re-reads the store.
type QuotaTracker struct {
	quotas Quotas
}

func NewQuotaTracker(quotas Quotas) *QuotaTracker {
	return &QuotaTracker{quotas: quotas}
}

// Allowed reports whether the member may submit another request of the
// category in the month, along with the current active count.
func (t *QuotaTracker) Allowed(ctx context.Context, store Store, id personnel.MemberID, category Category, ym calendar.YearMonth) (bool, int, error) {
	count, err := store.CountActiveInMonth(ctx, id, category, ym)
	if err != nil {
		return false, 0, err
	}
	return count < t.quotas.Max(category), count, nil
}

// Max exposes the configured monthly maximum for the category.
func (t *QuotaTracker) Max(category Category) int { return t.quotas.Max(category) }

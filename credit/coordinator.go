/*
coordinator.go - The submit/cancel state machine, the system's single write path

PURPOSE:
  Orchestrates the pure pieces (roster resolver, cost engine) and the
  stateful ones (quota tracker, ledger, request store) into the
  request/cancel state machine. Per (member, date) pair the state cycles
  between NONE and ACTIVE indefinitely.

SUBMIT CHECK ORDER (each failure aborts with no partial mutation):
  1. BLOCKED_DATE        administrative veto, beats everything
  2. NOT_ORDINARY_DAY    only days the member would otherwise work can
                         be sold (buy-back, not arbitrary day purchase)
  3. ALREADY_REQUESTED   at most one active request per (member, date)
  4. QUOTA_EXCEEDED      per category per calendar month
  5. price the day       pure, no failure mode
  6. INSUFFICIENT_BALANCE then debit + insert as one atomic unit

CANCEL:
  Refunds exactly the cost captured at submission time - never a fresh
  recomputation. If the holiday calendar changed since submission, the
  member still gets back precisely what they paid (round-trip law).

CONCURRENCY:
  All operations for one member run under that member's lock and inside
  one store transaction. Many members may hold active requests for the
  same date; only the (member, date) pair is exclusive.

SEE ALSO:
  - roster/cycle.go, pricing/cost.go: The pure collaborators
  - ledger.go, quota.go: The stateful collaborators
*/
package credit

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/escala/roster-engine/calendar"
	"github.com/escala/roster-engine/personnel"
	"github.com/escala/roster-engine/pricing"
	"github.com/escala/roster-engine/roster"
)

// Dates are accepted this many years around the duty-cycle epoch.
const (
	dateRangeYearsBack    = 1
	dateRangeYearsForward = 10
)

// =============================================================================
// COORDINATOR
// =============================================================================

// Coordinator is the single write path into the leave-credit economy.
type Coordinator struct {
	store     Store
	directory personnel.Directory
	cycle     *roster.DutyCycle
	pricer    *pricing.Engine
	blocked   calendar.BlockedDateRegistry
	quota     *QuotaTracker
	locks     *memberLocks
}

// NewCoordinator wires the collaborators. The duty cycle and quota table
// are validated configuration; everything else is injected.
func NewCoordinator(
	store Store,
	directory personnel.Directory,
	cycle *roster.DutyCycle,
	pricer *pricing.Engine,
	blocked calendar.BlockedDateRegistry,
	quotas Quotas,
) *Coordinator {
	if blocked == nil {
		blocked = calendar.NoBlockedDates{}
	}
	return &Coordinator{
		store:     store,
		directory: directory,
		cycle:     cycle,
		pricer:    pricer,
		blocked:   blocked,
		quota:     NewQuotaTracker(quotas),
		locks:     newMemberLocks(),
	}
}

// =============================================================================
// SUBMIT - NONE -> ACTIVE
// =============================================================================

// SubmitRequest prices and charges one day off. Returns the new balance.
func (c *Coordinator) SubmitRequest(ctx context.Context, id personnel.MemberID, date calendar.Date, category Category) (decimal.Decimal, error) {
	if err := c.validateDate(date); err != nil {
		return decimal.Zero, err
	}

	member, err := c.directory.Member(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}

	// Reference checks that need no store state. Blocked dates take
	// precedence over all other failures.
	if reason, isBlocked := c.blocked.Blocked(date); isBlocked {
		return decimal.Zero, &BlockedDateError{Date: date, Reason: reason}
	}
	if c.cycle.Resolve(date, member.Team) != roster.OnDuty {
		return decimal.Zero, fmt.Errorf("%w: team %s is off duty on %s",
			ErrNotOrdinaryDay, member.Team, date)
	}

	// Pricing is pure and cannot fail; computing it here keeps the
	// transaction below free of reference-data lookups.
	cost := c.pricer.ComputeCost(date, member)

	unlock := c.locks.acquire(id)
	defer unlock()

	var newBalance decimal.Decimal
	err = c.store.WithTx(ctx, func(s Store) error {
		existing, err := s.ActiveRequest(ctx, id, date)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %s on %s", ErrAlreadyRequested, id, date)
		}

		allowed, count, err := c.quota.Allowed(ctx, s, id, category, date.YearMonth())
		if err != nil {
			return err
		}
		if !allowed {
			return &QuotaExceededError{
				MemberID: id,
				Category: category,
				Month:    date.YearMonth(),
				Count:    count,
				Max:      c.quota.Max(category),
			}
		}

		now := time.Now().UTC()
		req := LeaveRequest{
			ID:          RequestID(fmt.Sprintf("req-%s-%d", id, now.UnixNano())),
			MemberID:    id,
			Date:        date,
			Category:    category,
			CostCharged: cost.Amount,
			CostLabel:   cost.Label(),
			CreatedAt:   now,
		}

		ledger := NewLedger(s)
		newBalance, err = ledger.Debit(ctx, id, cost.Amount, req.ID,
			fmt.Sprintf("dispensa %s (%s)", date, cost.Label()))
		if err != nil {
			return err
		}

		return s.InsertRequest(ctx, req)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

// =============================================================================
// CANCEL - ACTIVE -> NONE
// =============================================================================

// CancelRequest refunds the stored cost and releases the day. Returns the
// new balance. Immediate and unconditional once the active record is found.
func (c *Coordinator) CancelRequest(ctx context.Context, id personnel.MemberID, date calendar.Date) (decimal.Decimal, error) {
	if err := c.validateDate(date); err != nil {
		return decimal.Zero, err
	}

	unlock := c.locks.acquire(id)
	defer unlock()

	var newBalance decimal.Decimal
	err := c.store.WithTx(ctx, func(s Store) error {
		req, err := s.ActiveRequest(ctx, id, date)
		if err != nil {
			return err
		}
		if req == nil {
			return fmt.Errorf("%w: %s on %s", ErrRequestNotFound, id, date)
		}

		// Refund the captured cost, not a recomputation.
		ledger := NewLedger(s)
		newBalance, err = ledger.Credit(ctx, id, req.CostCharged, req.ID,
			fmt.Sprintf("dispensa %s canceled", date))
		if err != nil {
			return err
		}

		return s.MarkCanceled(ctx, req.ID, time.Now().UTC())
	})
	if err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

// =============================================================================
// GRANT - Admin credit (points are earned outside the engine)
// =============================================================================

// Grant credits points to a member via the admin path.
func (c *Coordinator) Grant(ctx context.Context, id personnel.MemberID, amount decimal.Decimal, reason string) (decimal.Decimal, error) {
	if _, err := c.directory.Member(ctx, id); err != nil {
		return decimal.Zero, err
	}

	unlock := c.locks.acquire(id)
	defer unlock()

	var newBalance decimal.Decimal
	err := c.store.WithTx(ctx, func(s Store) error {
		var err error
		newBalance, err = NewLedger(s).Grant(ctx, id, amount, reason)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

// =============================================================================
// MONTH VIEW - The calendar the portal renders
// =============================================================================

// DayView is one calendar day as the member sees it.
type DayView struct {
	Date          calendar.Date
	DutyStatus    roster.DutyStatus
	BlockedReason string // empty when not blocked
	Requests      []LeaveRequest
}

// MonthView is the member's calendar month plus their balance.
type MonthView struct {
	Member  personnel.Member
	Month   calendar.YearMonth
	Balance decimal.Decimal
	Days    []DayView
}

// GetMonthView assembles the per-day duty classification, blocked reasons,
// and active requests for a member's month.
func (c *Coordinator) GetMonthView(ctx context.Context, id personnel.MemberID, ym calendar.YearMonth) (*MonthView, error) {
	member, err := c.directory.Member(ctx, id)
	if err != nil {
		return nil, err
	}

	balance, err := c.store.Balance(ctx, id)
	if err != nil {
		return nil, err
	}

	active, err := c.store.ActiveRequestsInMonth(ctx, id, ym)
	if err != nil {
		return nil, err
	}
	byDate := make(map[calendar.Date][]LeaveRequest, len(active))
	for _, req := range active {
		byDate[req.Date] = append(byDate[req.Date], req)
	}

	var days []DayView
	for _, d := range ym.Days() {
		reason, _ := c.blocked.Blocked(d)
		days = append(days, DayView{
			Date:          d,
			DutyStatus:    c.cycle.Resolve(d, member.Team),
			BlockedReason: reason,
			Requests:      byDate[d],
		})
	}

	return &MonthView{Member: member, Month: ym, Balance: balance, Days: days}, nil
}

// History lists all of the member's requests, newest first.
func (c *Coordinator) History(ctx context.Context, id personnel.MemberID) ([]LeaveRequest, error) {
	if _, err := c.directory.Member(ctx, id); err != nil {
		return nil, err
	}
	return c.store.RequestsByMember(ctx, id)
}

// Balance returns the member's current point balance.
func (c *Coordinator) Balance(ctx context.Context, id personnel.MemberID) (decimal.Decimal, error) {
	if _, err := c.directory.Member(ctx, id); err != nil {
		return decimal.Zero, err
	}
	return c.store.Balance(ctx, id)
}

// =============================================================================
// VALIDATION
// =============================================================================

func (c *Coordinator) validateDate(date calendar.Date) error {
	if date.IsZero() {
		return fmt.Errorf("%w: zero date", ErrInvalidDate)
	}
	epochYear := c.cycle.Epoch().Year()
	if date.Year() < epochYear-dateRangeYearsBack || date.Year() > epochYear+dateRangeYearsForward {
		return fmt.Errorf("%w: %s outside configured range", ErrInvalidDate, date)
	}
	return nil
}

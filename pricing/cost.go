/*
Package pricing computes the point price of a day-off request.

PURPOSE:
  A day off is bought with accumulated points, and not every day costs
  the same. Days the roster makes expensive to lose — Fridays, weekends,
  holidays — carry a higher tariff. A member's birthday halves whatever
  tariff applies.

RULES (in order):
  1. Tier is HIGH when the weekday is Friday/Saturday/Sunday OR the
     date is a holiday; otherwise STANDARD.
  2. Base amount: STANDARD = 100 points, HIGH = 140 points.
  3. Birthday: if the date matches the member's birthday month/day,
     the amount is exactly half the base (50 or 70; both integral,
     no rounding involved).
  4. The label combines tier and the birthday marker for audit display.

DESIGN PRINCIPLES:
  - Pure: deterministic given the holiday set, no side effects
  - Exact: amounts are decimals, halving is exact division by 2

SEE ALSO:
  - calendar/refdata.go: HolidayCalendar
  - credit/coordinator.go: Charges the computed cost at submit time
*/
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/escala/roster-engine/calendar"
	"github.com/escala/roster-engine/personnel"
)

// =============================================================================
// TIERS AND BASE AMOUNTS
// =============================================================================

type Tier string

const (
	TierStandard Tier = "standard"
	TierHigh     Tier = "high"
)

var (
	baseStandard = decimal.NewFromInt(100)
	baseHigh     = decimal.NewFromInt(140)
	two          = decimal.NewFromInt(2)
)

// =============================================================================
// COST - Priced day-off request
// =============================================================================

// Cost is the price of one day off, captured verbatim on the request
// record at submit time.
type Cost struct {
	Amount           decimal.Decimal
	Tier             Tier
	BirthdayDiscount bool
}

// Label renders the tier plus the birthday marker for audit/display.
func (c Cost) Label() string {
	label := string(c.Tier)
	if c.BirthdayDiscount {
		label += "+birthday"
	}
	return label
}

// =============================================================================
// ENGINE - Pure date x member x holidays -> cost
// =============================================================================

// Engine prices day-off requests against a holiday calendar.
type Engine struct {
	Holidays calendar.HolidayCalendar
}

func NewEngine(holidays calendar.HolidayCalendar) *Engine {
	if holidays == nil {
		holidays = calendar.NoHolidays{}
	}
	return &Engine{Holidays: holidays}
}

// ComputeCost prices one day off for the member.
func (e *Engine) ComputeCost(date calendar.Date, member personnel.Member) Cost {
	tier := TierStandard
	amount := baseStandard
	if isHighTierWeekday(date) || e.Holidays.IsHoliday(date) {
		tier = TierHigh
		amount = baseHigh
	}

	birthday := member.Birthday.Matches(date)
	if birthday {
		amount = amount.Div(two)
	}

	return Cost{Amount: amount, Tier: tier, BirthdayDiscount: birthday}
}

func isHighTierWeekday(date calendar.Date) bool {
	switch date.Weekday() {
	case time.Friday, time.Saturday, time.Sunday:
		return true
	}
	return false
}

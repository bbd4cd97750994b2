/*
refdata.go - Holiday and blocked-date reference sets

PURPOSE:
  Two admin-managed date sets feed the engine:
  - Holidays raise the day-off price to the HIGH tier
  - Blocked dates veto day-off requests unconditionally

  Both are consulted, never mutated, by the engine. The static
  implementations here serve tests and small deployments; store/sqlite
  provides the durable ones.

SEE ALSO:
  - pricing/cost.go: Consumes HolidayCalendar
  - credit/coordinator.go: Consumes BlockedDateRegistry
  - store/sqlite: Durable implementations
*/
package calendar

import "sync"

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

// Holiday is a date with no additional attributes; membership is all that
// matters to the pricing engine.
type Holiday struct {
	Date Date
	Name string
}

// HolidayCalendar answers holiday membership queries.
type HolidayCalendar interface {
	// IsHoliday reports whether the date is a holiday.
	IsHoliday(date Date) bool

	// HolidaysInMonth returns the holidays falling in the given month.
	HolidaysInMonth(ym YearMonth) []Holiday
}

// NoHolidays is a calendar with no holidays, for tests and defaults.
type NoHolidays struct{}

func (NoHolidays) IsHoliday(Date) bool                 { return false }
func (NoHolidays) HolidaysInMonth(YearMonth) []Holiday { return nil }

// StaticHolidayCalendar is an in-memory holiday set.
type StaticHolidayCalendar struct {
	mu   sync.RWMutex
	days map[Date]Holiday
}

func NewStaticHolidayCalendar(holidays ...Holiday) *StaticHolidayCalendar {
	c := &StaticHolidayCalendar{days: make(map[Date]Holiday)}
	for _, h := range holidays {
		c.days[h.Date] = h
	}
	return c
}

func (c *StaticHolidayCalendar) Add(h Holiday) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.days[h.Date] = h
}

func (c *StaticHolidayCalendar) IsHoliday(date Date) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.days[date]
	return ok
}

func (c *StaticHolidayCalendar) HolidaysInMonth(ym YearMonth) []Holiday {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var result []Holiday
	for d, h := range c.days {
		if ym.Contains(d) {
			result = append(result, h)
		}
	}
	return result
}

// =============================================================================
// BLOCKED DATE REGISTRY
// =============================================================================

// BlockedDate is an administrative veto on day-off requests for a date.
type BlockedDate struct {
	Date   Date
	Reason string
}

// BlockedDateRegistry answers blocked-date queries.
// The returned reason is surfaced verbatim to the requesting member.
type BlockedDateRegistry interface {
	// Blocked returns the administrative reason if the date is blocked.
	Blocked(date Date) (reason string, blocked bool)
}

// NoBlockedDates is a registry that blocks nothing.
type NoBlockedDates struct{}

func (NoBlockedDates) Blocked(Date) (string, bool) { return "", false }

// StaticBlockedDateRegistry is an in-memory blocked-date set.
type StaticBlockedDateRegistry struct {
	mu   sync.RWMutex
	days map[Date]string
}

func NewStaticBlockedDateRegistry(blocked ...BlockedDate) *StaticBlockedDateRegistry {
	r := &StaticBlockedDateRegistry{days: make(map[Date]string)}
	for _, b := range blocked {
		r.days[b.Date] = b.Reason
	}
	return r
}

func (r *StaticBlockedDateRegistry) Add(b BlockedDate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.days[b.Date] = b.Reason
}

func (r *StaticBlockedDateRegistry) Blocked(date Date) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reason, ok := r.days[date]
	return reason, ok
}

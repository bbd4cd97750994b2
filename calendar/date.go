/*
Package calendar provides the date primitives the roster engine is built on.

PURPOSE:
  Every decision in the engine is keyed by a calendar day: duty rotation,
  day-off pricing, monthly quotas. This package wraps time.Time into a
  day-granularity Date so the rest of the code never worries about clocks,
  time zones, or sub-day precision.

KEY CONCEPTS IN THIS FILE (date.go):
  - Date: A calendar day (normalized to midnight UTC)
  - YearMonth: A calendar month, the quota accounting unit
  - MonthDay: A year-independent month/day pair (member birthdays)

DESIGN PRINCIPLES:
  1. Day granularity only: the engine has no concept of hours
  2. UTC everywhere: a duty day is the same day for every caller
  3. Value types: Dates are compared and passed by value

SEE ALSO:
  - refdata.go: Holiday and blocked-date reference sets
  - roster/cycle.go: Duty rotation arithmetic over Dates
*/
package calendar

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - A calendar day, normalized to midnight UTC
// =============================================================================

type Date struct {
	t time.Time
}

// NewDate builds a Date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an arbitrary instant to its UTC calendar day.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

// Today returns the current UTC calendar day.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses an ISO date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return DateOf(d.t.AddDate(0, 0, n)) }
func (d Date) AddMonths(n int) Date { return DateOf(d.t.AddDate(0, n, 0)) }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) Time() time.Time       { return d.t }

func (d Date) YearMonth() YearMonth { return YearMonth{Year: d.Year(), Month: d.Month()} }
func (d Date) MonthDay() MonthDay   { return MonthDay{Month: d.Month(), Day: d.Day()} }

func (d Date) String() string { return d.t.Format("2006-01-02") }

// DaysBetween returns to - from in whole days (negative if to is earlier).
// Both dates are midnight UTC, so the difference is always an exact day count.
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// =============================================================================
// YEAR-MONTH - The quota accounting unit
// =============================================================================

type YearMonth struct {
	Year  int
	Month time.Month
}

// ParseYearMonth parses "2006-01".
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid year-month %q: %w", s, err)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// First returns the first day of the month.
func (ym YearMonth) First() Date { return NewDate(ym.Year, ym.Month, 1) }

// Last returns the last day of the month.
func (ym YearMonth) Last() Date {
	return DateOf(time.Date(ym.Year, ym.Month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1))
}

// Contains reports whether the date falls inside this month.
func (ym YearMonth) Contains(d Date) bool {
	return d.Year() == ym.Year && d.Month() == ym.Month
}

// Days returns every day of the month in order.
func (ym YearMonth) Days() []Date {
	var days []Date
	for d := ym.First(); d.BeforeOrEqual(ym.Last()); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// =============================================================================
// MONTH-DAY - Year-independent month/day pair (birthdays)
// =============================================================================

type MonthDay struct {
	Month time.Month
	Day   int
}

// Matches reports whether the date has this month and day, any year.
func (md MonthDay) Matches(d Date) bool {
	return d.Month() == md.Month && d.Day() == md.Day
}

func (md MonthDay) String() string {
	return fmt.Sprintf("%02d-%02d", int(md.Month), md.Day)
}

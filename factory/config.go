/*
Package factory provides JSON to Go engine configuration conversion.

PURPOSE:
  Converts JSON configuration into a validated duty cycle, quota table,
  and reference data. This enables unit administration without code
  changes - the rotation, quotas, holidays, and squad roster live in a
  JSON document.

JSON SCHEMA:
  {
    "rotation": ["DELTA", "ALPHA", "BRAVO", "CHARLIE"],
    "epoch": "2026-01-01",
    "quotas": {"PTS": 1, "CPC": 1},
    "holidays": [{"date": "2026-04-21", "name": "Tiradentes"}],
    "blocked_dates": [{"date": "2026-12-31", "reason": "year-end operation"}],
    "members": [
      {"id": "m-001", "name": "Sgt. Moreira", "team": "ALPHA",
       "matricula": "113377-1", "birthday": "03-14"}
    ]
  }

VALIDATION:
  Empty rotation, bad dates, and negative quotas fail with errors
  wrapping credit.ErrConfiguration - fatal at load time, never surfaced
  as per-request failures.

SEE ALSO:
  - roster/cycle.go: DutyCycle validation
  - credit/types.go: Quotas validation
  - api/seed.go: Uses the same shapes for the demo scenario
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/escala/roster-engine/calendar"
	"github.com/escala/roster-engine/credit"
	"github.com/escala/roster-engine/personnel"
	"github.com/escala/roster-engine/roster"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ConfigJSON is the JSON representation of the engine configuration.
type ConfigJSON struct {
	Rotation     []string       `json:"rotation"`
	Epoch        string         `json:"epoch"`
	Quotas       map[string]int `json:"quotas,omitempty"`
	Holidays     []HolidayJSON  `json:"holidays,omitempty"`
	BlockedDates []BlockedJSON  `json:"blocked_dates,omitempty"`
	Members      []MemberJSON   `json:"members,omitempty"`
}

type HolidayJSON struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

type BlockedJSON struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

type MemberJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Team      string `json:"team"`
	Matricula string `json:"matricula"`
	Birthday  string `json:"birthday"` // MM-DD
}

// =============================================================================
// ENGINE CONFIG - Validated configuration
// =============================================================================

// EngineConfig is the validated result of parsing a ConfigJSON.
type EngineConfig struct {
	Cycle        *roster.DutyCycle
	Quotas       credit.Quotas
	Holidays     []calendar.Holiday
	BlockedDates []calendar.BlockedDate
	Members      []personnel.Member
}

// ParseConfig validates raw JSON into an EngineConfig.
func ParseConfig(data []byte) (*EngineConfig, error) {
	var cfg ConfigJSON
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", credit.ErrConfiguration, err)
	}
	return cfg.Build()
}

// LoadConfigFile reads and parses a configuration file.
func LoadConfigFile(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", credit.ErrConfiguration, path, err)
	}
	return ParseConfig(data)
}

// Build validates the JSON shapes into engine types.
func (c ConfigJSON) Build() (*EngineConfig, error) {
	epoch, err := calendar.ParseDate(c.Epoch)
	if err != nil {
		return nil, fmt.Errorf("%w: epoch: %v", credit.ErrConfiguration, err)
	}

	rotation := make([]roster.Team, 0, len(c.Rotation))
	for _, team := range c.Rotation {
		if strings.TrimSpace(team) == "" {
			return nil, fmt.Errorf("%w: blank team in rotation", credit.ErrConfiguration)
		}
		rotation = append(rotation, roster.Team(team))
	}
	cycle, err := roster.NewDutyCycle(rotation, epoch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", credit.ErrConfiguration, err)
	}

	quotaTable := make(map[credit.Category]int, len(c.Quotas))
	for cat, max := range c.Quotas {
		quotaTable[credit.Category(cat)] = max
	}
	quotas, err := credit.NewQuotas(quotaTable)
	if err != nil {
		return nil, err
	}

	var holidays []calendar.Holiday
	for _, h := range c.Holidays {
		d, err := calendar.ParseDate(h.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: holiday: %v", credit.ErrConfiguration, err)
		}
		holidays = append(holidays, calendar.Holiday{Date: d, Name: h.Name})
	}

	var blocked []calendar.BlockedDate
	for _, b := range c.BlockedDates {
		d, err := calendar.ParseDate(b.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: blocked date: %v", credit.ErrConfiguration, err)
		}
		blocked = append(blocked, calendar.BlockedDate{Date: d, Reason: b.Reason})
	}

	var members []personnel.Member
	for _, m := range c.Members {
		birthday, err := ParseMonthDay(m.Birthday)
		if err != nil {
			return nil, fmt.Errorf("%w: member %s: %v", credit.ErrConfiguration, m.ID, err)
		}
		members = append(members, personnel.Member{
			ID:        personnel.MemberID(m.ID),
			Name:      m.Name,
			Team:      roster.Team(m.Team),
			Matricula: m.Matricula,
			Birthday:  birthday,
		})
	}

	return &EngineConfig{
		Cycle:        cycle,
		Quotas:       quotas,
		Holidays:     holidays,
		BlockedDates: blocked,
		Members:      members,
	}, nil
}

// ParseMonthDay parses "MM-DD" into a year-independent birthday.
func ParseMonthDay(s string) (calendar.MonthDay, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return calendar.MonthDay{}, fmt.Errorf("invalid month-day %q", s)
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return calendar.MonthDay{}, fmt.Errorf("invalid month in %q", s)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil || day < 1 || day > 31 {
		return calendar.MonthDay{}, fmt.Errorf("invalid day in %q", s)
	}
	return calendar.MonthDay{Month: time.Month(month), Day: day}, nil
}

/*
Package roster implements the duty rotation calendar.

PURPOSE:
  A unit's squads rotate through duty in a fixed cycle: an ordered
  sequence of team identifiers anchored to an epoch date. Given any
  calendar date, the resolver answers which team is on duty, and
  therefore whether a given member's day is an "ordinary" (working)
  day — the only kind of day that may be sold back for points.

ALGORITHM:
  offset = days(date - epoch)                 // may be negative
  index  = ((offset mod N) + N) mod N         // non-negative for any offset
  onDuty = rotation[index] == team

  The double-mod keeps the rotation periodic on both sides of the
  epoch: a 4-team cycle repeats every 4 days for dates in 1999 just
  as it does in 2030.

DESIGN PRINCIPLES:
  1. Pure: no I/O, no clock reads, no failure modes per call
  2. Config validated once: an empty rotation is a fatal configuration
     error at construction, never a per-request error

SEE ALSO:
  - calendar/date.go: Date arithmetic
  - credit/coordinator.go: Uses the resolver to gate submissions
*/
package roster

import (
	"fmt"

	"github.com/escala/roster-engine/calendar"
)

// =============================================================================
// DUTY STATUS
// =============================================================================

type DutyStatus string

const (
	OnDuty  DutyStatus = "on_duty"
	OffDuty DutyStatus = "off_duty"
)

// Team identifies a duty squad (equipe).
type Team string

// =============================================================================
// DUTY CYCLE - Immutable rotation configuration
// =============================================================================

// DutyCycle is the rotation configuration: an ordered team sequence and
// the epoch date assigned to index 0. Construct with NewDutyCycle; a
// validated cycle never fails at resolve time.
type DutyCycle struct {
	rotation []Team
	epoch    calendar.Date
}

// NewDutyCycle validates and builds a duty cycle.
// An empty rotation is a configuration error, not a per-call error.
func NewDutyCycle(rotation []Team, epoch calendar.Date) (*DutyCycle, error) {
	if len(rotation) == 0 {
		return nil, fmt.Errorf("duty cycle: empty rotation")
	}
	if epoch.IsZero() {
		return nil, fmt.Errorf("duty cycle: zero epoch date")
	}
	r := make([]Team, len(rotation))
	copy(r, rotation)
	return &DutyCycle{rotation: r, epoch: epoch}, nil
}

// MustNewDutyCycle panics on invalid config. Use in tests and seed code.
func MustNewDutyCycle(rotation []Team, epoch calendar.Date) *DutyCycle {
	c, err := NewDutyCycle(rotation, epoch)
	if err != nil {
		panic(err)
	}
	return c
}

// Length returns the rotation period in days.
func (c *DutyCycle) Length() int { return len(c.rotation) }

// Epoch returns the date anchoring rotation index 0.
func (c *DutyCycle) Epoch() calendar.Date { return c.epoch }

// Rotation returns a copy of the team sequence.
func (c *DutyCycle) Rotation() []Team {
	r := make([]Team, len(c.rotation))
	copy(r, c.rotation)
	return r
}

// =============================================================================
// RESOLVER - Pure date -> duty classification
// =============================================================================

// AssignedTeam returns the team on duty on the given date.
func (c *DutyCycle) AssignedTeam(date calendar.Date) Team {
	n := len(c.rotation)
	offset := calendar.DaysBetween(c.epoch, date)
	index := ((offset % n) + n) % n
	return c.rotation[index]
}

// Resolve classifies the date for a member of the given team.
func (c *DutyCycle) Resolve(date calendar.Date, team Team) DutyStatus {
	if c.AssignedTeam(date) == team {
		return OnDuty
	}
	return OffDuty
}

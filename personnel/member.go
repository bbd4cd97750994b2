/*
Package personnel defines the member model and the directory collaborator.

PURPOSE:
  Members are owned by the unit's personnel directory; the roster engine
  only reads them. The fields carried here are exactly what the engine
  needs: the duty team for roster resolution and the birthday month/day
  for the pricing discount.

SEE ALSO:
  - pricing/cost.go: Uses Birthday
  - credit/coordinator.go: Uses Team via roster resolution
  - store/sqlite: Durable Directory implementation
*/
package personnel

import (
	"context"
	"errors"

	"github.com/escala/roster-engine/calendar"
	"github.com/escala/roster-engine/roster"
)

// ErrMemberNotFound is returned by Directory lookups for unknown ids.
var ErrMemberNotFound = errors.New("member not found")

// MemberID identifies a member across the engine.
type MemberID string

// Member is a unit member as seen by the engine. Read-only here.
type Member struct {
	ID        MemberID
	Name      string
	Team      roster.Team
	Matricula string            // service registration number
	Birthday  calendar.MonthDay // year-independent
}

// Directory is the external personnel directory.
type Directory interface {
	// Member returns the member record. Unknown ids fail with an error
	// wrapping ErrMemberNotFound.
	Member(ctx context.Context, id MemberID) (Member, error)

	// Members lists all members, for roster views and seeding.
	Members(ctx context.Context) ([]Member, error)
}

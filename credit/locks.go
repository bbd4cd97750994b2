/*
locks.go - Per-member mutual exclusion

PURPOSE:
  The submit sequence is a classic check-then-act race: two concurrent
  submissions for the same member must not both pass the quota and
  balance checks before either commits. The fix is serialization per
  member - a keyed lock registry, not a global lock - so operations on
  different members proceed fully in parallel.

SEE ALSO:
  - coordinator.go: Acquires the lock around submit/cancel/grant
*/
package credit

import (
	"sync"

	"github.com/escala/roster-engine/personnel"
)

// memberLocks hands out one mutex per member id. Locks are never removed;
// the registry grows with the roster, which is bounded by unit size.
type memberLocks struct {
	mu    sync.Mutex
	locks map[personnel.MemberID]*sync.Mutex
}

func newMemberLocks() *memberLocks {
	return &memberLocks{locks: make(map[personnel.MemberID]*sync.Mutex)}
}

// acquire locks the member's mutex and returns the unlock function.
func (m *memberLocks) acquire(id personnel.MemberID) func() {
	m.mu.Lock()
	lock, ok := m.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[id] = lock
	}
	m.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

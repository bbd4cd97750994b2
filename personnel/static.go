package personnel

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// StaticDirectory is an in-memory Directory for tests and seeding.
type StaticDirectory struct {
	mu      sync.RWMutex
	members map[MemberID]Member
}

func NewStaticDirectory(members ...Member) *StaticDirectory {
	d := &StaticDirectory{members: make(map[MemberID]Member)}
	for _, m := range members {
		d.members[m.ID] = m
	}
	return d
}

var _ Directory = (*StaticDirectory)(nil)

func (d *StaticDirectory) Add(m Member) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.members[m.ID] = m
}

func (d *StaticDirectory) Member(_ context.Context, id MemberID) (Member, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.members[id]
	if !ok {
		return Member{}, fmt.Errorf("%w: %s", ErrMemberNotFound, id)
	}
	return m, nil
}

func (d *StaticDirectory) Members(_ context.Context) ([]Member, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	result := make([]Member, 0, len(d.members))
	for _, m := range d.members {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Package store provides credit.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/escala/roster-engine/calendar"
	"github.com/escala/roster-engine/credit"
	"github.com/escala/roster-engine/personnel"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	balances map[personnel.MemberID]decimal.Decimal
	requests map[credit.RequestID]credit.LeaveRequest
	journal  []credit.Entry
}

func NewMemory() *Memory {
	return &Memory{
		balances: make(map[personnel.MemberID]decimal.Decimal),
		requests: make(map[credit.RequestID]credit.LeaveRequest),
	}
}

var _ credit.Store = (*Memory)(nil)

func (m *Memory) Balance(_ context.Context, id personnel.MemberID) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balanceLocked(id), nil
}

func (m *Memory) balanceLocked(id personnel.MemberID) decimal.Decimal {
	if b, ok := m.balances[id]; ok {
		return b
	}
	return decimal.Zero
}

func (m *Memory) SetBalance(_ context.Context, id personnel.MemberID, balance decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[id] = balance
	return nil
}

func (m *Memory) ActiveRequest(_ context.Context, id personnel.MemberID, date calendar.Date) (*credit.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeRequestLocked(id, date), nil
}

func (m *Memory) activeRequestLocked(id personnel.MemberID, date calendar.Date) *credit.LeaveRequest {
	for _, req := range m.requests {
		if req.MemberID == id && req.Date.Equal(date) && req.Active() {
			found := req
			return &found
		}
	}
	return nil
}

func (m *Memory) CountActiveInMonth(_ context.Context, id personnel.MemberID, category credit.Category, ym calendar.YearMonth) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, req := range m.requests {
		if req.MemberID == id && req.Category == category && req.Active() && ym.Contains(req.Date) {
			count++
		}
	}
	return count, nil
}

func (m *Memory) ActiveRequestsInMonth(_ context.Context, id personnel.MemberID, ym calendar.YearMonth) ([]credit.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []credit.LeaveRequest
	for _, req := range m.requests {
		if req.MemberID == id && req.Active() && ym.Contains(req.Date) {
			result = append(result, req)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (m *Memory) RequestsByMember(_ context.Context, id personnel.MemberID) ([]credit.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []credit.LeaveRequest
	for _, req := range m.requests {
		if req.MemberID == id {
			result = append(result, req)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *Memory) ActiveRequests(_ context.Context) ([]credit.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []credit.LeaveRequest
	for _, req := range m.requests {
		if req.Active() {
			result = append(result, req)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (m *Memory) InsertRequest(_ context.Context, req credit.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID] = req
	return nil
}

func (m *Memory) MarkCanceled(_ context.Context, id credit.RequestID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return credit.ErrRequestNotFound
	}
	canceled := at
	req.CanceledAt = &canceled
	m.requests[id] = req
	return nil
}

func (m *Memory) AppendEntry(_ context.Context, entry credit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.journal = append(m.journal, entry)
	return nil
}

func (m *Memory) EntriesByMember(_ context.Context, id personnel.MemberID) ([]credit.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []credit.Entry
	for _, e := range m.journal {
		if e.MemberID == id {
			result = append(result, e)
		}
	}
	return result, nil
}

// =============================================================================
// TRANSACTIONS - Snapshot + rollback on error
// =============================================================================

// WithTx executes fn against a view of the store, restoring the snapshot
// if fn fails. The store lock is held for the duration, so the transaction
// is serialized against all other access.
func (m *Memory) WithTx(ctx context.Context, fn func(credit.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshot()
	if err := fn(&memoryTxView{parent: m}); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	balances map[personnel.MemberID]decimal.Decimal
	requests map[credit.RequestID]credit.LeaveRequest
	journal  []credit.Entry
}

func (m *Memory) snapshot() memorySnapshot {
	balances := make(map[personnel.MemberID]decimal.Decimal, len(m.balances))
	for k, v := range m.balances {
		balances[k] = v
	}
	requests := make(map[credit.RequestID]credit.LeaveRequest, len(m.requests))
	for k, v := range m.requests {
		requests[k] = v
	}
	journal := append([]credit.Entry{}, m.journal...)
	return memorySnapshot{balances: balances, requests: requests, journal: journal}
}

func (m *Memory) restore(s memorySnapshot) {
	m.balances = s.balances
	m.requests = s.requests
	m.journal = s.journal
}

// memoryTxView accesses the parent's maps directly; the parent lock is
// already held by WithTx.
type memoryTxView struct {
	parent *Memory
}

var _ credit.Store = (*memoryTxView)(nil)

func (v *memoryTxView) Balance(_ context.Context, id personnel.MemberID) (decimal.Decimal, error) {
	return v.parent.balanceLocked(id), nil
}

func (v *memoryTxView) SetBalance(_ context.Context, id personnel.MemberID, balance decimal.Decimal) error {
	v.parent.balances[id] = balance
	return nil
}

func (v *memoryTxView) ActiveRequest(_ context.Context, id personnel.MemberID, date calendar.Date) (*credit.LeaveRequest, error) {
	return v.parent.activeRequestLocked(id, date), nil
}

func (v *memoryTxView) CountActiveInMonth(_ context.Context, id personnel.MemberID, category credit.Category, ym calendar.YearMonth) (int, error) {
	count := 0
	for _, req := range v.parent.requests {
		if req.MemberID == id && req.Category == category && req.Active() && ym.Contains(req.Date) {
			count++
		}
	}
	return count, nil
}

func (v *memoryTxView) ActiveRequestsInMonth(ctx context.Context, id personnel.MemberID, ym calendar.YearMonth) ([]credit.LeaveRequest, error) {
	var result []credit.LeaveRequest
	for _, req := range v.parent.requests {
		if req.MemberID == id && req.Active() && ym.Contains(req.Date) {
			result = append(result, req)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (v *memoryTxView) RequestsByMember(ctx context.Context, id personnel.MemberID) ([]credit.LeaveRequest, error) {
	var result []credit.LeaveRequest
	for _, req := range v.parent.requests {
		if req.MemberID == id {
			result = append(result, req)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (v *memoryTxView) ActiveRequests(ctx context.Context) ([]credit.LeaveRequest, error) {
	var result []credit.LeaveRequest
	for _, req := range v.parent.requests {
		if req.Active() {
			result = append(result, req)
		}
	}
	return result, nil
}

func (v *memoryTxView) InsertRequest(_ context.Context, req credit.LeaveRequest) error {
	v.parent.requests[req.ID] = req
	return nil
}

func (v *memoryTxView) MarkCanceled(_ context.Context, id credit.RequestID, at time.Time) error {
	req, ok := v.parent.requests[id]
	if !ok {
		return credit.ErrRequestNotFound
	}
	canceled := at
	req.CanceledAt = &canceled
	v.parent.requests[id] = req
	return nil
}

func (v *memoryTxView) AppendEntry(_ context.Context, entry credit.Entry) error {
	v.parent.journal = append(v.parent.journal, entry)
	return nil
}

func (v *memoryTxView) EntriesByMember(_ context.Context, id personnel.MemberID) ([]credit.Entry, error) {
	var result []credit.Entry
	for _, e := range v.parent.journal {
		if e.MemberID == id {
			result = append(result, e)
		}
	}
	return result, nil
}

// WithTx on a view runs fn directly; the outer transaction already
// provides atomicity.
func (v *memoryTxView) WithTx(_ context.Context, fn func(credit.Store) error) error {
	return fn(v)
}

/*
ledger.go - Point balance mutations with matched journal entries

PURPOSE:
  The Ledger is the only code allowed to change a balance. Every change
  is a matched pair: the new balance row plus an immutable journal entry
  carrying the kind, amount, and request reference. Replaying a member's
  journal from zero reproduces their balance - that is what the nightly
  audit checks.

INVARIANTS:
  1. Balance never goes negative: Debit fails with ErrInsufficientBalance
     before writing anything.
  2. Every mutation leaves a journal line. No silent adjustments.
  3. An observed negative balance is ErrCorruptLedger - an internal
     failure, never a validation error. It cannot happen while the
     coordinator's per-member serialization holds.

CONCURRENCY:
  The Ledger itself is not synchronized. The coordinator serializes all
  operations per member (see coordinator.go); operations on different
  members proceed fully in parallel.

SEE ALSO:
  - store.go: Persistence interface
  - coordinator.go: Per-member locking and transaction boundaries
*/
package credit

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/escala/roster-engine/personnel"
)

// Ledger performs balance mutations against a Store. Construct one per
// transaction view inside Store.WithTx.
type Ledger struct {
	store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// Balance returns the member's current balance.
func (l *Ledger) Balance(ctx context.Context, id personnel.MemberID) (decimal.Decimal, error) {
	return l.store.Balance(ctx, id)
}

// Debit removes amount from the member's balance, failing with
// ErrInsufficientBalance when amount exceeds it. Returns the new balance.
func (l *Ledger) Debit(ctx context.Context, id personnel.MemberID, amount decimal.Decimal, requestID RequestID, reason string) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative debit %s", ErrCorruptLedger, amount)
	}

	balance, err := l.store.Balance(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	if balance.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: member %s balance %s", ErrCorruptLedger, id, balance)
	}
	if amount.GreaterThan(balance) {
		return decimal.Zero, &InsufficientBalanceError{MemberID: id, Available: balance, Requested: amount}
	}

	newBalance := balance.Sub(amount)
	if err := l.apply(ctx, id, newBalance, EntryDebit, amount, requestID, reason); err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

// Credit adds amount to the member's balance. Always succeeds for
// non-negative amounts. Returns the new balance.
func (l *Ledger) Credit(ctx context.Context, id personnel.MemberID, amount decimal.Decimal, requestID RequestID, reason string) (decimal.Decimal, error) {
	return l.add(ctx, id, amount, EntryCredit, requestID, reason)
}

// Grant adds amount via the admin path (no request reference).
func (l *Ledger) Grant(ctx context.Context, id personnel.MemberID, amount decimal.Decimal, reason string) (decimal.Decimal, error) {
	return l.add(ctx, id, amount, EntryGrant, "", reason)
}

func (l *Ledger) add(ctx context.Context, id personnel.MemberID, amount decimal.Decimal, kind EntryKind, requestID RequestID, reason string) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative %s %s", ErrCorruptLedger, kind, amount)
	}

	balance, err := l.store.Balance(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	if balance.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: member %s balance %s", ErrCorruptLedger, id, balance)
	}

	newBalance := balance.Add(amount)
	if err := l.apply(ctx, id, newBalance, kind, amount, requestID, reason); err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

func (l *Ledger) apply(ctx context.Context, id personnel.MemberID, newBalance decimal.Decimal, kind EntryKind, amount decimal.Decimal, requestID RequestID, reason string) error {
	if err := l.store.SetBalance(ctx, id, newBalance); err != nil {
		return err
	}
	now := time.Now().UTC()
	return l.store.AppendEntry(ctx, Entry{
		ID:        fmt.Sprintf("entry-%s-%d", id, now.UnixNano()),
		MemberID:  id,
		Kind:      kind,
		Amount:    amount,
		RequestID: requestID,
		Reason:    reason,
		CreatedAt: now,
	})
}

package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escala/roster-engine/calendar"
	"github.com/escala/roster-engine/credit"
	"github.com/escala/roster-engine/personnel"
	"github.com/escala/roster-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testRequest(id string, memberID string, day string) credit.LeaveRequest {
	d, _ := calendar.ParseDate(day)
	return credit.LeaveRequest{
		ID:          credit.RequestID(id),
		MemberID:    personnel.MemberID(memberID),
		Date:        d,
		Category:    credit.CategoryPTS,
		CostCharged: decimal.NewFromInt(100),
		CostLabel:   "standard",
		CreatedAt:   time.Now().UTC(),
	}
}

// =============================================================================
// BALANCE TESTS
// =============================================================================

func TestBalance_UnknownMember_IsZero(t *testing.T) {
	store := newTestStore(t)

	balance, err := store.Balance(context.Background(), "m-404")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestSetBalance_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetBalance(ctx, "m-001", decimal.NewFromInt(250)))
	require.NoError(t, store.SetBalance(ctx, "m-001", decimal.NewFromInt(110)))

	balance, err := store.Balance(ctx, "m-001")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(110)), "got %s", balance)
}

// =============================================================================
// REQUEST TESTS
// =============================================================================

func TestActiveRequest_LifecycleAndSoftCancel(t *testing.T) {
	// GIVEN: An inserted request
	// WHEN: Looking it up, canceling it, and looking again
	// THEN: Found while active, gone after cancel, but kept in history

	store := newTestStore(t)
	ctx := context.Background()
	day, _ := calendar.ParseDate("2026-01-06")

	require.NoError(t, store.InsertRequest(ctx, testRequest("req-1", "m-001", "2026-01-06")))

	req, err := store.ActiveRequest(ctx, "m-001", day)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.True(t, req.CostCharged.Equal(decimal.NewFromInt(100)))

	require.NoError(t, store.MarkCanceled(ctx, "req-1", time.Now().UTC()))

	req, err = store.ActiveRequest(ctx, "m-001", day)
	require.NoError(t, err)
	assert.Nil(t, req)

	history, err := store.RequestsByMember(ctx, "m-001")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].Active())
	assert.NotNil(t, history[0].CanceledAt)
}

func TestMarkCanceled_AlreadyCanceled_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertRequest(ctx, testRequest("req-1", "m-001", "2026-01-06")))
	require.NoError(t, store.MarkCanceled(ctx, "req-1", time.Now().UTC()))

	err := store.MarkCanceled(ctx, "req-1", time.Now().UTC())
	assert.ErrorIs(t, err, credit.ErrRequestNotFound)
}

func TestInsertRequest_SecondActiveSameDay_RejectedByIndex(t *testing.T) {
	// The partial unique index is the database-level backstop for the
	// one-active-request-per-day rule.

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertRequest(ctx, testRequest("req-1", "m-001", "2026-01-06")))

	err := store.InsertRequest(ctx, testRequest("req-2", "m-001", "2026-01-06"))
	assert.Error(t, err)
}

func TestInsertRequest_AfterCancel_SameDayAllowed(t *testing.T) {
	// Canceled rows leave the partial index, so the day can be bought again.

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertRequest(ctx, testRequest("req-1", "m-001", "2026-01-06")))
	require.NoError(t, store.MarkCanceled(ctx, "req-1", time.Now().UTC()))

	err := store.InsertRequest(ctx, testRequest("req-2", "m-001", "2026-01-06"))
	assert.NoError(t, err)
}

func TestCountActiveInMonth_ScopesByCategoryAndMonth(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	jan := testRequest("req-1", "m-001", "2026-01-06")
	janCPC := testRequest("req-2", "m-001", "2026-01-10")
	janCPC.Category = credit.CategoryCPC
	feb := testRequest("req-3", "m-001", "2026-02-03")
	otherMember := testRequest("req-4", "m-002", "2026-01-14")

	for _, r := range []credit.LeaveRequest{jan, janCPC, feb, otherMember} {
		require.NoError(t, store.InsertRequest(ctx, r))
	}

	ymJan := calendar.YearMonth{Year: 2026, Month: time.January}
	count, err := store.CountActiveInMonth(ctx, "m-001", credit.CategoryPTS, ymJan)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = store.CountActiveInMonth(ctx, "m-001", credit.CategoryCPC, ymJan)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = store.CountActiveInMonth(ctx, "m-001", credit.CategoryPTS,
		calendar.YearMonth{Year: 2026, Month: time.February})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// =============================================================================
// TRANSACTION TESTS
// =============================================================================

func TestWithTx_ErrorRollsBackEverything(t *testing.T) {
	// GIVEN: A transaction that writes a balance, a request, and a journal
	//        entry, then fails
	// WHEN: It returns
	// THEN: None of the writes survive

	store := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(s credit.Store) error {
		if err := s.SetBalance(ctx, "m-001", decimal.NewFromInt(500)); err != nil {
			return err
		}
		if err := s.InsertRequest(ctx, testRequest("req-1", "m-001", "2026-01-06")); err != nil {
			return err
		}
		if err := s.AppendEntry(ctx, credit.Entry{
			ID: "entry-1", MemberID: "m-001", Kind: credit.EntryDebit,
			Amount: decimal.NewFromInt(100), CreatedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	balance, err := store.Balance(ctx, "m-001")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	day, _ := calendar.ParseDate("2026-01-06")
	req, err := store.ActiveRequest(ctx, "m-001", day)
	require.NoError(t, err)
	assert.Nil(t, req)

	entries, err := store.EntriesByMember(ctx, "m-001")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWithTx_SuccessCommits(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(s credit.Store) error {
		return s.SetBalance(ctx, "m-001", decimal.NewFromInt(500))
	})
	require.NoError(t, err)

	balance, err := store.Balance(ctx, "m-001")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(500)))
}

// =============================================================================
// DIRECTORY TESTS
// =============================================================================

func TestMembers_UpsertAndLookup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	m := personnel.Member{
		ID:        "m-001",
		Name:      "Sgt. Moreira",
		Team:      "ALPHA",
		Matricula: "113377-1",
		Birthday:  calendar.MonthDay{Month: time.March, Day: 14},
	}
	require.NoError(t, store.InsertMember(ctx, m))

	// Upsert: moving the member to another team
	m.Team = "BRAVO"
	require.NoError(t, store.InsertMember(ctx, m))

	got, err := store.Member(ctx, "m-001")
	require.NoError(t, err)
	assert.Equal(t, m, got)

	_, err = store.Member(ctx, "m-404")
	assert.ErrorIs(t, err, personnel.ErrMemberNotFound)

	members, err := store.Members(ctx)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

// =============================================================================
// REFERENCE DATA TESTS
// =============================================================================

func TestHolidays_CRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	tiradentes, _ := calendar.ParseDate("2026-04-21")

	assert.False(t, store.IsHoliday(tiradentes))

	require.NoError(t, store.AddHoliday(ctx, calendar.Holiday{Date: tiradentes, Name: "Tiradentes"}))
	assert.True(t, store.IsHoliday(tiradentes))

	inMonth := store.HolidaysInMonth(calendar.YearMonth{Year: 2026, Month: time.April})
	require.Len(t, inMonth, 1)
	assert.Equal(t, "Tiradentes", inMonth[0].Name)
	assert.Empty(t, store.HolidaysInMonth(calendar.YearMonth{Year: 2026, Month: time.May}))

	require.NoError(t, store.DeleteHoliday(ctx, tiradentes))
	assert.False(t, store.IsHoliday(tiradentes))
}

func TestBlockedDates_CRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	nye, _ := calendar.ParseDate("2026-12-31")

	_, blocked := store.Blocked(nye)
	assert.False(t, blocked)

	require.NoError(t, store.AddBlockedDate(ctx, calendar.BlockedDate{Date: nye, Reason: "year-end operation"}))

	reason, blocked := store.Blocked(nye)
	assert.True(t, blocked)
	assert.Equal(t, "year-end operation", reason)

	list, err := store.ListBlockedDates(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, store.RemoveBlockedDate(ctx, nye))
	_, blocked = store.Blocked(nye)
	assert.False(t, blocked)
}

package credit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escala/roster-engine/calendar"
	"github.com/escala/roster-engine/credit"
	"github.com/escala/roster-engine/credit/store"
	"github.com/escala/roster-engine/personnel"
	"github.com/escala/roster-engine/pricing"
	"github.com/escala/roster-engine/roster"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// The fixture rotation: [DELTA ALPHA BRAVO CHARLIE] from 2026-01-01.
// ALPHA's duty days in January 2026 land on the 2nd, 6th, 10th, ... -
// 2026-01-02 is a Friday (high tier), 2026-01-06 a Tuesday (standard).
type fixture struct {
	coord    *credit.Coordinator
	store    *store.Memory
	holidays *calendar.StaticHolidayCalendar
	blocked  *calendar.StaticBlockedDateRegistry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	epoch := calendar.NewDate(2026, time.January, 1)
	cycle := roster.MustNewDutyCycle([]roster.Team{"DELTA", "ALPHA", "BRAVO", "CHARLIE"}, epoch)

	directory := personnel.NewStaticDirectory(
		personnel.Member{
			ID:        "m-001",
			Name:      "Sgt. Moreira",
			Team:      "ALPHA",
			Matricula: "113377-1",
			Birthday:  calendar.MonthDay{Month: time.March, Day: 14},
		},
		personnel.Member{
			ID:        "m-002",
			Name:      "Cb. Tavares",
			Team:      "ALPHA",
			Matricula: "224488-2",
			Birthday:  calendar.MonthDay{Month: time.January, Day: 2},
		},
	)

	holidays := calendar.NewStaticHolidayCalendar()
	blocked := calendar.NewStaticBlockedDateRegistry()
	mem := store.NewMemory()

	coord := credit.NewCoordinator(mem, directory, cycle, pricing.NewEngine(holidays), blocked, credit.DefaultQuotas())
	return &fixture{coord: coord, store: mem, holidays: holidays, blocked: blocked}
}

func (f *fixture) grant(t *testing.T, id personnel.MemberID, points int64) {
	t.Helper()
	_, err := f.coord.Grant(context.Background(), id, decimal.NewFromInt(points), "test grant")
	require.NoError(t, err)
}

func date(t *testing.T, s string) calendar.Date {
	t.Helper()
	d, err := calendar.ParseDate(s)
	require.NoError(t, err)
	return d
}

// =============================================================================
// SUBMIT TESTS
// =============================================================================

func TestSubmitRequest_StandardDay_ChargesAndRecords(t *testing.T) {
	// GIVEN: m-001 (ALPHA) has 100 points; 2026-01-06 is an ALPHA Tuesday
	// WHEN: Submitting a PTS request for that day
	// THEN: Balance drops to 0 and an active request holds the charged cost

	f := newFixture(t)
	ctx := context.Background()
	f.grant(t, "m-001", 100)

	balance, err := f.coord.SubmitRequest(ctx, "m-001", date(t, "2026-01-06"), credit.CategoryPTS)
	require.NoError(t, err)
	assert.True(t, balance.IsZero(), "got %s", balance)

	req, err := f.store.ActiveRequest(ctx, "m-001", date(t, "2026-01-06"))
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.True(t, req.CostCharged.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "standard", req.CostLabel)
	assert.True(t, req.Active())
}

func TestSubmitRequest_FridayCostsHighTier(t *testing.T) {
	// GIVEN: 2026-01-02 is ALPHA's Friday
	// WHEN: Submitting with 200 points
	// THEN: 140 is charged

	f := newFixture(t)
	f.grant(t, "m-001", 200)

	balance, err := f.coord.SubmitRequest(context.Background(), "m-001", date(t, "2026-01-02"), credit.CategoryPTS)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(60)), "got %s", balance)
}

func TestSubmitRequest_BirthdayHalvesTheCharge(t *testing.T) {
	// GIVEN: m-002's birthday is 01-02, a high-tier Friday
	// WHEN: Submitting that day
	// THEN: 70 is charged (half of 140), and the label records it

	f := newFixture(t)
	ctx := context.Background()
	f.grant(t, "m-002", 70)

	balance, err := f.coord.SubmitRequest(ctx, "m-002", date(t, "2026-01-02"), credit.CategoryPTS)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	req, err := f.store.ActiveRequest(ctx, "m-002", date(t, "2026-01-02"))
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, "high+birthday", req.CostLabel)
}

func TestSubmitRequest_InsufficientBalance_NothingChanges(t *testing.T) {
	// GIVEN: m-001 has 100 points; the Friday costs 140
	// WHEN: Submitting
	// THEN: InsufficientBalanceError; balance, requests, and journal untouched

	f := newFixture(t)
	ctx := context.Background()
	f.grant(t, "m-001", 100)

	_, err := f.coord.SubmitRequest(ctx, "m-001", date(t, "2026-01-02"), credit.CategoryPTS)
	require.Error(t, err)
	assert.ErrorIs(t, err, credit.ErrInsufficientBalance)

	var ibe *credit.InsufficientBalanceError
	require.ErrorAs(t, err, &ibe)
	assert.True(t, ibe.Available.Equal(decimal.NewFromInt(100)))
	assert.True(t, ibe.Requested.Equal(decimal.NewFromInt(140)))

	balance, err := f.coord.Balance(ctx, "m-001")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(100)), "balance must be untouched")

	req, err := f.store.ActiveRequest(ctx, "m-001", date(t, "2026-01-02"))
	require.NoError(t, err)
	assert.Nil(t, req, "no request record on failure")

	entries, err := f.store.EntriesByMember(ctx, "m-001")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the grant entry survives the rollback")
}

func TestSubmitRequest_OffDutyDay_Rejected(t *testing.T) {
	// GIVEN: 2026-01-03 belongs to BRAVO
	// WHEN: m-001 (ALPHA) submits it
	// THEN: ErrNotOrdinaryDay; off-duty days cannot be sold

	f := newFixture(t)
	f.grant(t, "m-001", 300)

	_, err := f.coord.SubmitRequest(context.Background(), "m-001", date(t, "2026-01-03"), credit.CategoryPTS)
	assert.ErrorIs(t, err, credit.ErrNotOrdinaryDay)
}

func TestSubmitRequest_BlockedDate_BeatsEveryOtherCheck(t *testing.T) {
	// GIVEN: 2026-01-03 is blocked AND off-duty for m-001, who also has
	//        zero balance
	// WHEN: Submitting
	// THEN: The blocked-date veto wins, reason surfaced verbatim

	f := newFixture(t)
	f.blocked.Add(calendar.BlockedDate{Date: date(t, "2026-01-03"), Reason: "year-end operation"})

	_, err := f.coord.SubmitRequest(context.Background(), "m-001", date(t, "2026-01-03"), credit.CategoryPTS)
	require.Error(t, err)
	assert.ErrorIs(t, err, credit.ErrBlockedDate)

	var bde *credit.BlockedDateError
	require.ErrorAs(t, err, &bde)
	assert.Equal(t, "year-end operation", bde.Reason)
}

func TestSubmitRequest_SameDayTwice_Rejected(t *testing.T) {
	// GIVEN: An active request for 2026-01-06
	// WHEN: Submitting the same day again
	// THEN: ErrAlreadyRequested; the first charge stands alone

	f := newFixture(t)
	ctx := context.Background()
	f.grant(t, "m-001", 300)

	_, err := f.coord.SubmitRequest(ctx, "m-001", date(t, "2026-01-06"), credit.CategoryPTS)
	require.NoError(t, err)

	_, err = f.coord.SubmitRequest(ctx, "m-001", date(t, "2026-01-06"), credit.CategoryPTS)
	assert.ErrorIs(t, err, credit.ErrAlreadyRequested)

	balance, err := f.coord.Balance(ctx, "m-001")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(200)))
}

func TestSubmitRequest_UnknownMember_Rejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.coord.SubmitRequest(context.Background(), "m-999", date(t, "2026-01-06"), credit.CategoryPTS)
	assert.ErrorIs(t, err, personnel.ErrMemberNotFound)
}

func TestSubmitRequest_InvalidDates_Rejected(t *testing.T) {
	// Zero dates and dates far outside the configured range never reach
	// the economy.

	f := newFixture(t)
	f.grant(t, "m-001", 300)

	_, err := f.coord.SubmitRequest(context.Background(), "m-001", calendar.Date{}, credit.CategoryPTS)
	assert.ErrorIs(t, err, credit.ErrInvalidDate)

	_, err = f.coord.SubmitRequest(context.Background(), "m-001", date(t, "2050-01-06"), credit.CategoryPTS)
	assert.ErrorIs(t, err, credit.ErrInvalidDate)
}

// =============================================================================
// QUOTA TESTS
// =============================================================================

func TestSubmitRequest_MonthlyQuota_PerCategory(t *testing.T) {
	// GIVEN: Default quota of 1 active request per category per month;
	//        one active PTS request in January
	// WHEN: Submitting a second PTS day in January
	// THEN: QuotaExceededError - but a CPC day in January and a PTS day
	//       in February both pass

	f := newFixture(t)
	ctx := context.Background()
	f.grant(t, "m-001", 1000)

	_, err := f.coord.SubmitRequest(ctx, "m-001", date(t, "2026-01-06"), credit.CategoryPTS)
	require.NoError(t, err)

	_, err = f.coord.SubmitRequest(ctx, "m-001", date(t, "2026-01-14"), credit.CategoryPTS)
	require.Error(t, err)
	assert.ErrorIs(t, err, credit.ErrQuotaExceeded)

	var qe *credit.QuotaExceededError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, 1, qe.Count)
	assert.Equal(t, 1, qe.Max)

	// Different category, same month: allowed.
	_, err = f.coord.SubmitRequest(ctx, "m-001", date(t, "2026-01-14"), credit.CategoryCPC)
	assert.NoError(t, err)

	// Same category, next month: allowed (2026-02-03 is an ALPHA Tuesday).
	_, err = f.coord.SubmitRequest(ctx, "m-001", date(t, "2026-02-03"), credit.CategoryPTS)
	assert.NoError(t, err)
}

func TestSubmitRequest_CancelFreesTheQuotaSlot(t *testing.T) {
	// GIVEN: The January PTS quota is used up
	// WHEN: Canceling the active request
	// THEN: A new PTS submission in January succeeds

	f := newFixture(t)
	ctx := context.Background()
	f.grant(t, "m-001", 1000)

	_, err := f.coord.SubmitRequest(ctx, "m-001", date(t, "2026-01-06"), credit.CategoryPTS)
	require.NoError(t, err)

	_, err = f.coord.SubmitRequest(ctx, "m-001", date(t, "2026-01-14"), credit.CategoryPTS)
	require.ErrorIs(t, err, credit.ErrQuotaExceeded)

	_, err = f.coord.CancelRequest(ctx, "m-001", date(t, "2026-01-06"))
	require.NoError(t, err)

	_, err = f.coord.SubmitRequest(ctx, "m-001", date(t, "2026-01-14"), credit.CategoryPTS)
	assert.NoError(t, err)
}

// =============================================================================
// CANCEL TESTS
// =============================================================================

func TestCancelRequest_RoundTrip_RestoresBalance(t *testing.T) {
	// GIVEN: A submitted request
	// WHEN: Canceling it
	// THEN: The balance returns to its pre-submit value and the day frees up

	f := newFixture(t)
	ctx := context.Background()
	f.grant(t, "m-001", 250)

	_, err := f.coord.SubmitRequest(ctx, "m-001", date(t, "2026-01-06"), credit.CategoryPTS)
	require.NoError(t, err)

	balance, err := f.coord.CancelRequest(ctx, "m-001", date(t, "2026-01-06"))
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(250)), "got %s", balance)

	req, err := f.store.ActiveRequest(ctx, "m-001", date(t, "2026-01-06"))
	require.NoError(t, err)
	assert.Nil(t, req, "the day is free again")

	// The canceled record survives in the history.
	history, err := f.coord.History(ctx, "m-001")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].Active())
}

func TestCancelRequest_RefundsStoredCost_NotRecomputed(t *testing.T) {
	// GIVEN: A request charged 100 on a plain Tuesday, after which the day
	//        is declared a holiday (would now price at 140)
	// WHEN: Canceling
	// THEN: Exactly the stored 100 comes back

	f := newFixture(t)
	ctx := context.Background()
	f.grant(t, "m-001", 100)

	_, err := f.coord.SubmitRequest(ctx, "m-001", date(t, "2026-01-06"), credit.CategoryPTS)
	require.NoError(t, err)

	f.holidays.Add(calendar.Holiday{Date: date(t, "2026-01-06"), Name: "feriado novo"})

	balance, err := f.coord.CancelRequest(ctx, "m-001", date(t, "2026-01-06"))
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(100)), "got %s", balance)
}

func TestCancelRequest_NoActiveRequest_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.coord.CancelRequest(ctx, "m-001", date(t, "2026-01-06"))
	assert.ErrorIs(t, err, credit.ErrRequestNotFound)
}

func TestCancelRequest_Twice_SecondNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.grant(t, "m-001", 100)

	_, err := f.coord.SubmitRequest(ctx, "m-001", date(t, "2026-01-06"), credit.CategoryPTS)
	require.NoError(t, err)

	_, err = f.coord.CancelRequest(ctx, "m-001", date(t, "2026-01-06"))
	require.NoError(t, err)

	_, err = f.coord.CancelRequest(ctx, "m-001", date(t, "2026-01-06"))
	assert.ErrorIs(t, err, credit.ErrRequestNotFound)
}

func TestSubmitCancelSubmit_IndefiniteCycle(t *testing.T) {
	// The (member, date) pair cycles NONE -> ACTIVE -> NONE indefinitely.

	f := newFixture(t)
	ctx := context.Background()
	f.grant(t, "m-001", 100)

	for i := 0; i < 3; i++ {
		balance, err := f.coord.SubmitRequest(ctx, "m-001", date(t, "2026-01-06"), credit.CategoryPTS)
		require.NoError(t, err, "cycle %d", i)
		assert.True(t, balance.IsZero())

		balance, err = f.coord.CancelRequest(ctx, "m-001", date(t, "2026-01-06"))
		require.NoError(t, err, "cycle %d", i)
		assert.True(t, balance.Equal(decimal.NewFromInt(100)))
	}
}

// =============================================================================
// MONTH VIEW TESTS
// =============================================================================

func TestGetMonthView_AssemblesCalendar(t *testing.T) {
	// GIVEN: m-001 with a request on 2026-01-06 and a blocked 2026-01-31
	// WHEN: Fetching the January view
	// THEN: 31 days with duty status, the request on its day, and the
	//       blocked reason on its day

	f := newFixture(t)
	ctx := context.Background()
	f.grant(t, "m-001", 100)
	f.blocked.Add(calendar.BlockedDate{Date: date(t, "2026-01-31"), Reason: "operação"})

	_, err := f.coord.SubmitRequest(ctx, "m-001", date(t, "2026-01-06"), credit.CategoryPTS)
	require.NoError(t, err)

	view, err := f.coord.GetMonthView(ctx, "m-001", calendar.YearMonth{Year: 2026, Month: time.January})
	require.NoError(t, err)

	require.Len(t, view.Days, 31)
	assert.True(t, view.Balance.IsZero())
	assert.Equal(t, personnel.MemberID("m-001"), view.Member.ID)

	byDate := make(map[string]credit.DayView, len(view.Days))
	for _, d := range view.Days {
		byDate[d.Date.String()] = d
	}

	assert.Equal(t, roster.OnDuty, byDate["2026-01-02"].DutyStatus)
	assert.Equal(t, roster.OffDuty, byDate["2026-01-03"].DutyStatus)
	assert.Len(t, byDate["2026-01-06"].Requests, 1)
	assert.Empty(t, byDate["2026-01-05"].Requests)
	assert.Equal(t, "operação", byDate["2026-01-31"].BlockedReason)
	assert.Empty(t, byDate["2026-01-30"].BlockedReason)
}

// =============================================================================
// CONCURRENCY TESTS
// =============================================================================

func TestSubmitRequest_ConcurrentSameDay_ExactlyOneWins(t *testing.T) {
	// GIVEN: 8 goroutines racing to submit the same (member, date)
	// WHEN: They all run
	// THEN: Exactly one succeeds; exactly one charge lands on the balance

	f := newFixture(t)
	ctx := context.Background()
	f.grant(t, "m-001", 1000)

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.coord.SubmitRequest(ctx, "m-001", date(t, "2026-01-06"), credit.CategoryPTS)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, credit.ErrAlreadyRequested)
		}
	}
	assert.Equal(t, 1, successes)

	balance, err := f.coord.Balance(ctx, "m-001")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(900)), "got %s", balance)
}

func TestSubmitRequest_DifferentMembersSameDay_BothSucceed(t *testing.T) {
	// Many members may hold active requests for the same date; only the
	// (member, date) pair is exclusive.

	f := newFixture(t)
	ctx := context.Background()
	f.grant(t, "m-001", 100)
	f.grant(t, "m-002", 100)

	_, err := f.coord.SubmitRequest(ctx, "m-001", date(t, "2026-01-06"), credit.CategoryPTS)
	require.NoError(t, err)

	_, err = f.coord.SubmitRequest(ctx, "m-002", date(t, "2026-01-06"), credit.CategoryPTS)
	assert.NoError(t, err)
}

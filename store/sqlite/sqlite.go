/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements credit.Store, personnel.Directory, calendar.HolidayCalendar,
  and calendar.BlockedDateRegistry on a single SQLite database. In
  production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  members:       Personnel directory (read-mostly)
  balances:      One point balance row per member
  requests:      Leave request records; canceled_at NULL while active
  journal:       Immutable record of every balance change
  holidays:      Admin-managed holiday set
  blocked_dates: Admin-managed request vetoes

INVARIANT ENFORCEMENT:
  idx_requests_active_day is a partial unique index on (member_id, date)
  WHERE canceled_at IS NULL: the database itself refuses a second active
  request for the same member and day, backing up the coordinator's check.

CONCURRENCY:
  Uses sync.RWMutex plus WAL mode. WithTx serializes writers and wraps
  fn in a database transaction, so a failed submit leaves no partial
  state behind.

DECIMALS:
  Point amounts are stored as TEXT and parsed with shopspring/decimal -
  no float drift in a currency column.

SEE ALSO:
  - credit/store.go: Interface definitions
  - credit/store/memory.go: In-memory implementation for engine tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/escala/roster-engine/calendar"
	"github.com/escala/roster-engine/credit"
	"github.com/escala/roster-engine/personnel"
	"github.com/escala/roster-engine/roster"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite serializes writers anyway, and a pool of
	// connections to ":memory:" would each see a different database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Personnel directory
	CREATE TABLE IF NOT EXISTS members (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		team TEXT NOT NULL,
		matricula TEXT NOT NULL,
		birthday_month INTEGER NOT NULL,
		birthday_day INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_members_team ON members(team);

	-- Point balances (one row per member, mutated only via the ledger)
	CREATE TABLE IF NOT EXISTS balances (
		member_id TEXT PRIMARY KEY,
		balance TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Leave request records (soft-canceled, never deleted)
	CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL,
		date TEXT NOT NULL,
		category TEXT NOT NULL,
		cost_charged TEXT NOT NULL,
		cost_label TEXT NOT NULL,
		created_at TEXT NOT NULL,
		canceled_at TEXT
	);

	-- CRITICAL: at most one ACTIVE request per (member, date)
	CREATE UNIQUE INDEX IF NOT EXISTS idx_requests_active_day
		ON requests(member_id, date)
		WHERE canceled_at IS NULL;

	-- Quota counting (hot path on submit)
	CREATE INDEX IF NOT EXISTS idx_requests_member_category_date
		ON requests(member_id, category, date);
	CREATE INDEX IF NOT EXISTS idx_requests_member_date
		ON requests(member_id, date);

	-- Journal (append-only; no UPDATE or DELETE statements exist for it)
	CREATE TABLE IF NOT EXISTS journal (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		amount TEXT NOT NULL,
		request_id TEXT,
		reason TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_journal_member ON journal(member_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_journal_request
		ON journal(request_id) WHERE request_id IS NOT NULL AND request_id != '';

	-- Admin-managed reference date sets
	CREATE TABLE IF NOT EXISTS holidays (
		date TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS blocked_dates (
		date TEXT PRIMARY KEY,
		reason TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// querier abstracts *sql.DB and *sql.Tx so the same query code serves
// both direct calls and WithTx views.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var _ credit.Store = (*Store)(nil)
var _ personnel.Directory = (*Store)(nil)
var _ calendar.HolidayCalendar = (*Store)(nil)
var _ calendar.BlockedDateRegistry = (*Store)(nil)

// =============================================================================
// BALANCES
// =============================================================================

func (s *Store) Balance(ctx context.Context, id personnel.MemberID) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getBalance(ctx, s.db, id)
}

func getBalance(ctx context.Context, q querier, id personnel.MemberID) (decimal.Decimal, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT balance FROM balances WHERE member_id = ?`, string(id)).Scan(&raw)
	if err == sql.ErrNoRows {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("load balance: %w", err)
	}
	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse balance %q: %w", raw, err)
	}
	return balance, nil
}

func (s *Store) SetBalance(ctx context.Context, id personnel.MemberID, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return setBalance(ctx, s.db, id, balance)
}

func setBalance(ctx context.Context, q querier, id personnel.MemberID, balance decimal.Decimal) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO balances (member_id, balance, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(member_id) DO UPDATE SET balance = excluded.balance, updated_at = excluded.updated_at`,
		string(id), balance.String(), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	return nil
}

// =============================================================================
// REQUESTS
// =============================================================================

const requestColumns = `id, member_id, date, category, cost_charged, cost_label, created_at, canceled_at`

func scanRequest(row interface{ Scan(...any) error }) (credit.LeaveRequest, error) {
	var (
		id, member     string
		date, category string
		cost, label    string
		createdAt      string
		canceledAt     sql.NullString
	)
	if err := row.Scan(&id, &member, &date, &category, &cost, &label, &createdAt, &canceledAt); err != nil {
		return credit.LeaveRequest{}, err
	}

	d, err := calendar.ParseDate(date)
	if err != nil {
		return credit.LeaveRequest{}, err
	}
	amount, err := decimal.NewFromString(cost)
	if err != nil {
		return credit.LeaveRequest{}, fmt.Errorf("parse cost %q: %w", cost, err)
	}
	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return credit.LeaveRequest{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}

	req := credit.LeaveRequest{
		ID:          credit.RequestID(id),
		MemberID:    personnel.MemberID(member),
		Date:        d,
		Category:    credit.Category(category),
		CostCharged: amount,
		CostLabel:   label,
		CreatedAt:   created,
	}
	if canceledAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, canceledAt.String)
		if err != nil {
			return credit.LeaveRequest{}, fmt.Errorf("parse canceled_at %q: %w", canceledAt.String, err)
		}
		req.CanceledAt = &t
	}
	return req, nil
}

func (s *Store) ActiveRequest(ctx context.Context, id personnel.MemberID, date calendar.Date) (*credit.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return activeRequest(ctx, s.db, id, date)
}

func activeRequest(ctx context.Context, q querier, id personnel.MemberID, date calendar.Date) (*credit.LeaveRequest, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+requestColumns+` FROM requests
		WHERE member_id = ? AND date = ? AND canceled_at IS NULL`,
		string(id), date.String())
	req, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load active request: %w", err)
	}
	return &req, nil
}

func (s *Store) CountActiveInMonth(ctx context.Context, id personnel.MemberID, category credit.Category, ym calendar.YearMonth) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countActiveInMonth(ctx, s.db, id, category, ym)
}

func countActiveInMonth(ctx context.Context, q querier, id personnel.MemberID, category credit.Category, ym calendar.YearMonth) (int, error) {
	var count int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM requests
		WHERE member_id = ? AND category = ? AND canceled_at IS NULL
		  AND date >= ? AND date <= ?`,
		string(id), string(category), ym.First().String(), ym.Last().String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active requests: %w", err)
	}
	return count, nil
}

func (s *Store) ActiveRequestsInMonth(ctx context.Context, id personnel.MemberID, ym calendar.YearMonth) ([]credit.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryRequests(ctx, s.db, `
		SELECT `+requestColumns+` FROM requests
		WHERE member_id = ? AND canceled_at IS NULL AND date >= ? AND date <= ?
		ORDER BY date`,
		string(id), ym.First().String(), ym.Last().String())
}

func (s *Store) RequestsByMember(ctx context.Context, id personnel.MemberID) ([]credit.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryRequests(ctx, s.db, `
		SELECT `+requestColumns+` FROM requests
		WHERE member_id = ?
		ORDER BY created_at DESC`,
		string(id))
}

func (s *Store) ActiveRequests(ctx context.Context) ([]credit.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryRequests(ctx, s.db, `
		SELECT `+requestColumns+` FROM requests
		WHERE canceled_at IS NULL
		ORDER BY date`)
}

func queryRequests(ctx context.Context, q querier, query string, args ...any) ([]credit.LeaveRequest, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	defer rows.Close()

	var result []credit.LeaveRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}

func (s *Store) InsertRequest(ctx context.Context, req credit.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertRequest(ctx, s.db, req)
}

func insertRequest(ctx context.Context, q querier, req credit.LeaveRequest) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO requests (id, member_id, date, category, cost_charged, cost_label, created_at, canceled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL)`,
		string(req.ID), string(req.MemberID), req.Date.String(), string(req.Category),
		req.CostCharged.String(), req.CostLabel, req.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (s *Store) MarkCanceled(ctx context.Context, id credit.RequestID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return markCanceled(ctx, s.db, id, at)
}

func markCanceled(ctx context.Context, q querier, id credit.RequestID, at time.Time) error {
	res, err := q.ExecContext(ctx, `
		UPDATE requests SET canceled_at = ? WHERE id = ? AND canceled_at IS NULL`,
		at.UTC().Format(time.RFC3339Nano), string(id))
	if err != nil {
		return fmt.Errorf("mark canceled: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return credit.ErrRequestNotFound
	}
	return nil
}

// =============================================================================
// JOURNAL
// =============================================================================

func (s *Store) AppendEntry(ctx context.Context, entry credit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendEntry(ctx, s.db, entry)
}

func appendEntry(ctx context.Context, q querier, entry credit.Entry) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO journal (id, member_id, kind, amount, request_id, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, string(entry.MemberID), string(entry.Kind), entry.Amount.String(),
		string(entry.RequestID), entry.Reason, entry.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

func (s *Store) EntriesByMember(ctx context.Context, id personnel.MemberID) ([]credit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return entriesByMember(ctx, s.db, id)
}

func entriesByMember(ctx context.Context, q querier, id personnel.MemberID) ([]credit.Entry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, member_id, kind, amount, request_id, reason, created_at
		FROM journal WHERE member_id = ? ORDER BY created_at`,
		string(id))
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var result []credit.Entry
	for rows.Next() {
		var (
			e         credit.Entry
			member    string
			kind      string
			amount    string
			requestID string
			createdAt string
		)
		if err := rows.Scan(&e.ID, &member, &kind, &amount, &requestID, &e.Reason, &createdAt); err != nil {
			return nil, err
		}
		value, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse entry amount %q: %w", amount, err)
		}
		created, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse entry created_at %q: %w", createdAt, err)
		}
		e.MemberID = personnel.MemberID(member)
		e.Kind = credit.EntryKind(kind)
		e.Amount = value
		e.RequestID = credit.RequestID(requestID)
		e.CreatedAt = created
		result = append(result, e)
	}
	return result, rows.Err()
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx serializes writers and wraps fn in a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(credit.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	view := &txView{tx: tx}
	if err := fn(view); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

// txView implements credit.Store on a *sql.Tx. The store mutex is already
// held by WithTx.
type txView struct {
	tx *sql.Tx
}

var _ credit.Store = (*txView)(nil)

func (v *txView) Balance(ctx context.Context, id personnel.MemberID) (decimal.Decimal, error) {
	return getBalance(ctx, v.tx, id)
}

func (v *txView) SetBalance(ctx context.Context, id personnel.MemberID, balance decimal.Decimal) error {
	return setBalance(ctx, v.tx, id, balance)
}

func (v *txView) ActiveRequest(ctx context.Context, id personnel.MemberID, date calendar.Date) (*credit.LeaveRequest, error) {
	return activeRequest(ctx, v.tx, id, date)
}

func (v *txView) CountActiveInMonth(ctx context.Context, id personnel.MemberID, category credit.Category, ym calendar.YearMonth) (int, error) {
	return countActiveInMonth(ctx, v.tx, id, category, ym)
}

func (v *txView) ActiveRequestsInMonth(ctx context.Context, id personnel.MemberID, ym calendar.YearMonth) ([]credit.LeaveRequest, error) {
	return queryRequests(ctx, v.tx, `
		SELECT `+requestColumns+` FROM requests
		WHERE member_id = ? AND canceled_at IS NULL AND date >= ? AND date <= ?
		ORDER BY date`,
		string(id), ym.First().String(), ym.Last().String())
}

func (v *txView) RequestsByMember(ctx context.Context, id personnel.MemberID) ([]credit.LeaveRequest, error) {
	return queryRequests(ctx, v.tx, `
		SELECT `+requestColumns+` FROM requests
		WHERE member_id = ?
		ORDER BY created_at DESC`,
		string(id))
}

func (v *txView) ActiveRequests(ctx context.Context) ([]credit.LeaveRequest, error) {
	return queryRequests(ctx, v.tx, `
		SELECT `+requestColumns+` FROM requests
		WHERE canceled_at IS NULL
		ORDER BY date`)
}

func (v *txView) InsertRequest(ctx context.Context, req credit.LeaveRequest) error {
	return insertRequest(ctx, v.tx, req)
}

func (v *txView) MarkCanceled(ctx context.Context, id credit.RequestID, at time.Time) error {
	return markCanceled(ctx, v.tx, id, at)
}

func (v *txView) AppendEntry(ctx context.Context, entry credit.Entry) error {
	return appendEntry(ctx, v.tx, entry)
}

func (v *txView) EntriesByMember(ctx context.Context, id personnel.MemberID) ([]credit.Entry, error) {
	return entriesByMember(ctx, v.tx, id)
}

func (v *txView) WithTx(ctx context.Context, fn func(credit.Store) error) error {
	return fn(v)
}

// =============================================================================
// PERSONNEL DIRECTORY
// =============================================================================

// InsertMember creates or updates a member record (seeding/admin).
func (s *Store) InsertMember(ctx context.Context, m personnel.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO members (id, name, team, matricula, birthday_month, birthday_day, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, team = excluded.team, matricula = excluded.matricula,
			birthday_month = excluded.birthday_month, birthday_day = excluded.birthday_day`,
		string(m.ID), m.Name, string(m.Team), m.Matricula,
		int(m.Birthday.Month), m.Birthday.Day, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

func (s *Store) Member(ctx context.Context, id personnel.MemberID) (personnel.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		m          personnel.Member
		memberID   string
		team       string
		month, day int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, team, matricula, birthday_month, birthday_day
		FROM members WHERE id = ?`, string(id)).
		Scan(&memberID, &m.Name, &team, &m.Matricula, &month, &day)
	if err == sql.ErrNoRows {
		return personnel.Member{}, fmt.Errorf("%w: %s", personnel.ErrMemberNotFound, id)
	}
	if err != nil {
		return personnel.Member{}, fmt.Errorf("load member: %w", err)
	}
	m.ID = personnel.MemberID(memberID)
	m.Team = roster.Team(team)
	m.Birthday = calendar.MonthDay{Month: time.Month(month), Day: day}
	return m, nil
}

func (s *Store) Members(ctx context.Context) ([]personnel.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, team, matricula, birthday_month, birthday_day
		FROM members ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	var result []personnel.Member
	for rows.Next() {
		var (
			m          personnel.Member
			memberID   string
			team       string
			month, day int
		)
		if err := rows.Scan(&memberID, &m.Name, &team, &m.Matricula, &month, &day); err != nil {
			return nil, err
		}
		m.ID = personnel.MemberID(memberID)
		m.Team = roster.Team(team)
		m.Birthday = calendar.MonthDay{Month: time.Month(month), Day: day}
		result = append(result, m)
	}
	return result, rows.Err()
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Store) AddHoliday(ctx context.Context, h calendar.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (date, name) VALUES (?, ?)
		ON CONFLICT(date) DO UPDATE SET name = excluded.name`,
		h.Date.String(), h.Name)
	if err != nil {
		return fmt.Errorf("add holiday: %w", err)
	}
	return nil
}

func (s *Store) DeleteHoliday(ctx context.Context, date calendar.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM holidays WHERE date = ?`, date.String())
	if err != nil {
		return fmt.Errorf("delete holiday: %w", err)
	}
	return nil
}

func (s *Store) IsHoliday(date calendar.Date) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM holidays WHERE date = ?`, date.String()).Scan(&one)
	return err == nil
}

func (s *Store) HolidaysInMonth(ym calendar.YearMonth) []calendar.Holiday {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT date, name FROM holidays WHERE date >= ? AND date <= ? ORDER BY date`,
		ym.First().String(), ym.Last().String())
	if err != nil {
		return nil
	}
	defer rows.Close()

	var result []calendar.Holiday
	for rows.Next() {
		var date, name string
		if err := rows.Scan(&date, &name); err != nil {
			return result
		}
		d, err := calendar.ParseDate(date)
		if err != nil {
			continue
		}
		result = append(result, calendar.Holiday{Date: d, Name: name})
	}
	return result
}

// =============================================================================
// BLOCKED DATES
// =============================================================================

func (s *Store) AddBlockedDate(ctx context.Context, b calendar.BlockedDate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blocked_dates (date, reason) VALUES (?, ?)
		ON CONFLICT(date) DO UPDATE SET reason = excluded.reason`,
		b.Date.String(), b.Reason)
	if err != nil {
		return fmt.Errorf("add blocked date: %w", err)
	}
	return nil
}

func (s *Store) RemoveBlockedDate(ctx context.Context, date calendar.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM blocked_dates WHERE date = ?`, date.String())
	if err != nil {
		return fmt.Errorf("remove blocked date: %w", err)
	}
	return nil
}

func (s *Store) Blocked(date calendar.Date) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var reason string
	err := s.db.QueryRow(`SELECT reason FROM blocked_dates WHERE date = ?`, date.String()).Scan(&reason)
	if err != nil {
		return "", false
	}
	return reason, true
}

// ListBlockedDates returns all blocked dates, ordered.
func (s *Store) ListBlockedDates(ctx context.Context) ([]calendar.BlockedDate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT date, reason FROM blocked_dates ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("query blocked dates: %w", err)
	}
	defer rows.Close()

	var result []calendar.BlockedDate
	for rows.Next() {
		var date, reason string
		if err := rows.Scan(&date, &reason); err != nil {
			return nil, err
		}
		d, err := calendar.ParseDate(date)
		if err != nil {
			return nil, err
		}
		result = append(result, calendar.BlockedDate{Date: d, Reason: reason})
	}
	return result, rows.Err()
}

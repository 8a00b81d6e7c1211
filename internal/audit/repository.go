package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/nerrad567/graylogic-pinpad/internal/pinauth"
)

// Event kinds.
const (
	KindAttempt = "attempt"
	KindLockout = "lockout"
)

// timeLayout is fixed width so created_at sorts lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Page size bounds for List.
const (
	defaultLimit = 50
	maxLimit     = 200
)

// Event is one row of the authentication trail. Attempt rows fill Outcome,
// Trigger, Length, Failures and (for failures only) Digest; lockout rows fill
// Phase and Seconds.
type Event struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	DeviceID  string    `json:"device_id"`
	Outcome   string    `json:"outcome,omitempty"`
	Trigger   string    `json:"trigger,omitempty"`
	Length    int       `json:"length,omitempty"`
	Digest    *uint32   `json:"pin_hash,omitempty"`
	Failures  int       `json:"failures,omitempty"`
	Phase     string    `json:"phase,omitempty"`
	Seconds   int       `json:"seconds,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter controls which events to return.
type Filter struct {
	Kind     string    // optional: attempt or lockout
	DeviceID string    // optional
	Outcome  string    // optional: OK or FAIL
	Since    time.Time // optional: events at or after this time
	Limit    int       // default 50, max 200
	Offset   int       // pagination offset
}

// ListResult contains one page of events.
type ListResult struct {
	Events []Event `json:"events"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// dbtx is the subset of *database.DB used by the repository.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteRepository records and lists authentication events. It implements
// pinauth.Recorder.
type SQLiteRepository struct {
	db    dbtx
	clock clockwork.Clock
}

// NewSQLiteRepository creates a repository. A nil clock uses the real clock
// for events that carry no timestamp.
func NewSQLiteRepository(db dbtx, clock clockwork.Clock) *SQLiteRepository {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SQLiteRepository{db: db, clock: clock}
}

// RecordAttempt inserts an attempt row. The digest of a successful attempt
// equals the stored reference word and is not written.
func (r *SQLiteRepository) RecordAttempt(ctx context.Context, a pinauth.Attempt) error {
	var digest any
	if !a.Success {
		digest = int64(a.Digest)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_events (id, kind, device_id, outcome, trigger_by, length, pin_hash, failures, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		newID(), KindAttempt, a.DeviceID, a.Outcome(), string(a.Trigger),
		a.Length, digest, a.Failures, r.stamp(a.At),
	)
	if err != nil {
		return fmt.Errorf("inserting attempt event: %w", err)
	}
	return nil
}

// RecordLockout inserts a lockout row.
func (r *SQLiteRepository) RecordLockout(ctx context.Context, e pinauth.LockoutEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_events (id, kind, device_id, phase, seconds, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		newID(), KindLockout, e.DeviceID, string(e.Phase), e.Seconds, r.stamp(e.At),
	)
	if err != nil {
		return fmt.Errorf("inserting lockout event: %w", err)
	}
	return nil
}

// List returns events matching the filter, most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) { //nolint:gocognit // WHERE clause assembly from filter fields
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var conditions []string
	var args []any

	if filter.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, filter.Kind)
	}
	if filter.DeviceID != "" {
		conditions = append(conditions, "device_id = ?")
		args = append(args, filter.DeviceID)
	}
	if filter.Outcome != "" {
		conditions = append(conditions, "outcome = ?")
		args = append(args, filter.Outcome)
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM auth_events " + where //nolint:gosec // WHERE built from parameterised conditions, not user input
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting auth events: %w", err)
	}

	query := fmt.Sprintf( //nolint:gosec // WHERE built from parameterised conditions, not user input
		`SELECT id, kind, device_id, outcome, trigger_by, length, pin_hash, failures, phase, seconds, created_at
		 FROM auth_events %s ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		where,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying auth events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating auth events: %w", err)
	}

	return &ListResult{
		Events: events,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// Prune deletes events older than before and returns how many were removed.
func (r *SQLiteRepository) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM auth_events WHERE created_at < ?", before.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("pruning auth events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning auth events: %w", err)
	}
	return n, nil
}

func scanEvent(rows *sql.Rows) (Event, error) {
	var (
		e                       Event
		outcome, trigger, phase sql.NullString
		length, failures, secs  sql.NullInt64
		digest                  sql.NullInt64
		createdAt               string
	)

	if err := rows.Scan(&e.ID, &e.Kind, &e.DeviceID, &outcome, &trigger,
		&length, &digest, &failures, &phase, &secs, &createdAt); err != nil {
		return Event{}, fmt.Errorf("scanning auth event: %w", err)
	}

	e.Outcome = outcome.String
	e.Trigger = trigger.String
	e.Phase = phase.String
	e.Length = int(length.Int64)
	e.Failures = int(failures.Int64)
	e.Seconds = int(secs.Int64)
	if digest.Valid {
		d := uint32(digest.Int64) //nolint:gosec // written from a uint32
		e.Digest = &d
	}

	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return Event{}, fmt.Errorf("parsing auth event timestamp %q: %w", createdAt, err)
	}
	e.CreatedAt = t

	return e, nil
}

func (r *SQLiteRepository) stamp(at time.Time) string {
	if at.IsZero() {
		at = r.clock.Now()
	}
	return at.UTC().Format(timeLayout)
}

func newID() string {
	return "evt-" + uuid.NewString()
}

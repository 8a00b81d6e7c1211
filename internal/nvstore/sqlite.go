package nvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// execQuerier is the subset of *database.DB used by SQLiteStore.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore keeps one word in the nv_words table. It implements
// pinauth.WordStore.
type SQLiteStore struct {
	db      execQuerier
	address int
	clock   clockwork.Clock
}

// NewSQLiteStore returns a store for the word at address. A nil clock uses
// the real clock for updated_at.
func NewSQLiteStore(db execQuerier, address int, clock clockwork.Clock) *SQLiteStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SQLiteStore{db: db, address: address, clock: clock}
}

// LoadWord reads the word. A missing row reports ok == false.
func (s *SQLiteStore) LoadWord(ctx context.Context) (uint32, bool, error) {
	var v int64
	err := s.db.QueryRowContext(ctx, "SELECT value FROM nv_words WHERE address = ?", s.address).Scan(&v)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("reading nv word %#04x: %w", s.address, err)
	}
	return uint32(v), true, nil //nolint:gosec // CHECK constraint bounds value to 32 bits
}

// StoreWord upserts the word. An unchanged value leaves the row untouched.
func (s *SQLiteStore) StoreWord(ctx context.Context, value uint32) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO nv_words (address, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		WHERE nv_words.value <> excluded.value`,
		s.address, int64(value), s.clock.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing nv word %#04x: %w", s.address, err)
	}
	return nil
}

// UpdatedAt returns when the word was last changed. ok is false when the
// word has never been written.
func (s *SQLiteStore) UpdatedAt(ctx context.Context) (t time.Time, ok bool, err error) {
	var raw string
	err = s.db.QueryRowContext(ctx, "SELECT updated_at FROM nv_words WHERE address = ?", s.address).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return time.Time{}, false, nil
	case err != nil:
		return time.Time{}, false, fmt.Errorf("reading nv word %#04x: %w", s.address, err)
	}
	t, err = time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parsing updated_at %q: %w", raw, err)
	}
	return t, true, nil
}

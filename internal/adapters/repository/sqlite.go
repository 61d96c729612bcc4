package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure-Go sqlite driver

	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/types"
)

// Default connection settings for the sqlite backend.
const (
	defaultMaxOpenConns = 4
	defaultBusyTimeout  = 5 * time.Second
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS responses (
	assessment_id TEXT NOT NULL,
	item_id       TEXT NOT NULL,
	canonical_id  TEXT NOT NULL,
	variable_id   TEXT NOT NULL,
	value         INTEGER NOT NULL,
	answered_at   TEXT,
	PRIMARY KEY (assessment_id, item_id)
);
CREATE TABLE IF NOT EXISTS profiles (
	assessment_id TEXT PRIMARY KEY,
	payload       TEXT NOT NULL
);
`

// SQLStore implements Store on SQLite. Upserts ride on the
// (assessment_id, item_id) primary key; batches run in one transaction so a
// partial failure never leaves some items written and others missing.
type SQLStore struct {
	db *sql.DB

	maxOpenConns int
	busyTimeout  time.Duration
}

// SQLOption applies a configuration option to the SQLStore.
type SQLOption func(*SQLStore)

// WithMaxOpenConns caps the connection pool.
func WithMaxOpenConns(n int) SQLOption {
	return func(s *SQLStore) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}

// WithBusyTimeout sets how long a writer waits on a locked database.
func WithBusyTimeout(d time.Duration) SQLOption {
	return func(s *SQLStore) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// NewSQLStore opens (creating when absent) the database at dsn and
// bootstraps the schema.
func NewSQLStore(ctx context.Context, dsn string, opts ...SQLOption) (*SQLStore, error) {
	s := &SQLStore{
		maxOpenConns: defaultMaxOpenConns,
		busyTimeout:  defaultBusyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %q: %w", ErrStore, dsn, err)
	}
	db.SetMaxOpenConns(s.maxOpenConns)

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", s.busyTimeout.Milliseconds())); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: busy_timeout: %w", ErrStore, err)
	}
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: bootstrap schema: %w", ErrStore, err)
	}
	s.db = db
	return s, nil
}

const upsertResponseSQL = `
INSERT INTO responses (assessment_id, item_id, canonical_id, variable_id, value, answered_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (assessment_id, item_id) DO UPDATE SET
	canonical_id = excluded.canonical_id,
	variable_id  = excluded.variable_id,
	value        = excluded.value,
	answered_at  = excluded.answered_at
`

// UpsertResponse writes one response row.
func (s *SQLStore) UpsertResponse(ctx context.Context, assessmentID string, rec Record) error {
	_, err := s.db.ExecContext(ctx, upsertResponseSQL,
		assessmentID, rec.ItemID, rec.CanonicalID, rec.VariableID, rec.Value, timeString(rec.TS))
	if err != nil {
		return fmt.Errorf("%w: upsert response: %w", ErrStore, err)
	}
	return nil
}

// UpsertAll writes one submission's rows inside a single transaction.
func (s *SQLStore) UpsertAll(ctx context.Context, assessmentID string, recs []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrStore, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertResponseSQL)
	if err != nil {
		return fmt.Errorf("%w: prepare: %w", ErrStore, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx,
			assessmentID, rec.ItemID, rec.CanonicalID, rec.VariableID, rec.Value, timeString(rec.TS)); err != nil {
			return fmt.Errorf("%w: upsert item %s: %w", ErrStore, rec.ItemID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrStore, err)
	}
	return nil
}

// ResponsesFor returns all rows for an assessment ordered by canonical id.
func (s *SQLStore) ResponsesFor(ctx context.Context, assessmentID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, canonical_id, variable_id, value, answered_at
		 FROM responses WHERE assessment_id = ? ORDER BY canonical_id`, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("%w: query responses: %w", ErrStore, err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var rec Record
		var answeredAt string
		if err := rows.Scan(&rec.ItemID, &rec.CanonicalID, &rec.VariableID, &rec.Value, &answeredAt); err != nil {
			return nil, fmt.Errorf("%w: scan response: %w", ErrStore, err)
		}
		if answeredAt != "" {
			rec.TS, _ = time.Parse(time.RFC3339Nano, answeredAt)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate responses: %w", ErrStore, err)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// SaveProfile stores the computed profile as JSON.
func (s *SQLStore) SaveProfile(ctx context.Context, profile types.Profile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("%w: encode profile: %w", ErrStore, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (assessment_id, payload) VALUES (?, ?)
		 ON CONFLICT (assessment_id) DO UPDATE SET payload = excluded.payload`,
		profile.AssessmentID, string(payload))
	if err != nil {
		return fmt.Errorf("%w: save profile: %w", ErrStore, err)
	}
	return nil
}

// Profile returns the stored profile.
func (s *SQLStore) Profile(ctx context.Context, assessmentID string) (types.Profile, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM profiles WHERE assessment_id = ?`, assessmentID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Profile{}, ErrNotFound
	}
	if err != nil {
		return types.Profile{}, fmt.Errorf("%w: query profile: %w", ErrStore, err)
	}
	var profile types.Profile
	if err := json.Unmarshal([]byte(payload), &profile); err != nil {
		return types.Profile{}, fmt.Errorf("%w: decode profile: %w", ErrStore, err)
	}
	return profile, nil
}

// Count returns the number of distinct assessments with stored responses.
func (s *SQLStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT assessment_id) FROM responses`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// Close releases the underlying database handle.
func (s *SQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%w: close: %w", ErrStore, err)
	}
	return nil
}

func timeString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

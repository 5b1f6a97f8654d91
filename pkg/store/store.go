// Package store manages all SQLite persistence for bobball.
//
// Two tables: saves holds suspended engines by name, results holds one row
// per recorded level. WAL mode lets a running match record results while
// another process lists them.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/model"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a named save does not exist.
var ErrNotFound = errors.New("not found")

// Store manages all SQLite operations with WAL mode for concurrent access.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database and initializes the schema.
func New(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// retryOnContention wraps retryOp from retry.go with the default config.
func retryOnContention(fn func() error) error {
	return retryOp(defaultRetryConfig, fn)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS saves (
		name      TEXT PRIMARY KEY,
		origin    TEXT NOT NULL,
		game_time INTEGER NOT NULL,
		tick      INTEGER NOT NULL,
		level     INTEGER NOT NULL,
		checksum  INTEGER NOT NULL,
		data      BLOB NOT NULL,
		saved_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS results (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		origin      TEXT NOT NULL,
		seed        INTEGER NOT NULL,
		level       INTEGER NOT NULL,
		tick        INTEGER NOT NULL,
		outcome     TEXT NOT NULL,
		percent     INTEGER NOT NULL DEFAULT 0,
		scores      TEXT NOT NULL DEFAULT '[]',
		checksum    INTEGER NOT NULL,
		recorded_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_results_recorded ON results(recorded_at);
	CREATE INDEX IF NOT EXISTS idx_results_origin ON results(origin, level);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ---------------------------------------------------------------------------
// Saves
// ---------------------------------------------------------------------------

// SaveSnapshot stores sv under sv.Name, replacing any save with that name.
// SavedAt is set to now when zero.
func (s *Store) SaveSnapshot(sv *model.Save) error {
	if sv.Name == "" {
		return fmt.Errorf("save: empty name")
	}
	if len(sv.Data) == 0 {
		return fmt.Errorf("save %q: empty snapshot", sv.Name)
	}
	if sv.SavedAt.IsZero() {
		sv.SavedAt = time.Now().UTC()
	}
	sv.Size = len(sv.Data)
	return retryOnContention(func() error {
		_, err := s.db.Exec(
			`INSERT INTO saves (name, origin, game_time, tick, level, checksum, data, saved_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET
			   origin = excluded.origin,
			   game_time = excluded.game_time,
			   tick = excluded.tick,
			   level = excluded.level,
			   checksum = excluded.checksum,
			   data = excluded.data,
			   saved_at = excluded.saved_at`,
			sv.Name, sv.Origin, sv.GameTime, sv.Tick, sv.Level, int64(sv.Checksum), sv.Data,
			sv.SavedAt.UTC().Format(time.RFC3339Nano),
		)
		return err
	})
}

// LoadSnapshot returns the save named name, including its data.
func (s *Store) LoadSnapshot(name string) (*model.Save, error) {
	row := s.db.QueryRow(
		`SELECT name, origin, game_time, tick, level, checksum, length(data), saved_at, data
		 FROM saves WHERE name = ?`, name,
	)
	var sv model.Save
	var checksum int64
	var savedStr string
	err := row.Scan(&sv.Name, &sv.Origin, &sv.GameTime, &sv.Tick, &sv.Level, &checksum,
		&sv.Size, &savedStr, &sv.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("save %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	sv.Checksum = uint64(checksum)
	if sv.SavedAt, err = time.Parse(time.RFC3339Nano, savedStr); err != nil {
		return nil, fmt.Errorf("parse saved_at for save %s: %w", sv.Name, err)
	}
	return &sv, nil
}

// ListSaves returns every save without its data, newest first.
func (s *Store) ListSaves() ([]model.Save, error) {
	rows, err := s.db.Query(
		`SELECT name, origin, game_time, tick, level, checksum, length(data), saved_at
		 FROM saves ORDER BY saved_at DESC, name ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var saves []model.Save
	for rows.Next() {
		var sv model.Save
		var checksum int64
		var savedStr string
		if err := rows.Scan(&sv.Name, &sv.Origin, &sv.GameTime, &sv.Tick, &sv.Level, &checksum,
			&sv.Size, &savedStr); err != nil {
			return nil, err
		}
		sv.Checksum = uint64(checksum)
		var parseErr error
		sv.SavedAt, parseErr = time.Parse(time.RFC3339Nano, savedStr)
		if parseErr != nil {
			return nil, fmt.Errorf("parse saved_at for save %s: %w", sv.Name, parseErr)
		}
		saves = append(saves, sv)
	}
	return saves, rows.Err()
}

// DeleteSave removes the save named name.
func (s *Store) DeleteSave(name string) error {
	var n int64
	err := retryOnContention(func() error {
		res, err := s.db.Exec(`DELETE FROM saves WHERE name = ?`, name)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("save %q: %w", name, ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Results
// ---------------------------------------------------------------------------

// RecordResult appends r and returns its row ID. RecordedAt is set to now
// when zero.
func (s *Store) RecordResult(r *model.Result) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now().UTC()
	}
	scores := r.Scores
	if scores == nil {
		scores = []int{}
	}
	scoresJSON, err := json.Marshal(scores)
	if err != nil {
		return 0, fmt.Errorf("encode scores: %w", err)
	}
	var lastID int64
	err = retryOnContention(func() error {
		res, err := s.db.Exec(
			`INSERT INTO results (origin, seed, level, tick, outcome, percent, scores, checksum, recorded_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.Origin, r.Seed, r.Level, r.Tick, string(r.Outcome), r.Percent, string(scoresJSON),
			int64(r.Checksum), r.RecordedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return err
		}
		lastID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}
	r.ID = lastID
	return lastID, nil
}

// ListResults returns up to limit results, newest first.
func (s *Store) ListResults(limit int) ([]model.Result, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(
		`SELECT id, origin, seed, level, tick, outcome, percent, scores, checksum, recorded_at
		 FROM results ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanResults(rows)
}

// CountResults returns the total number of recorded results.
func (s *Store) CountResults() int64 {
	var count int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM results`).Scan(&count); err != nil {
		return 0
	}
	return count
}

func scanResults(rows *sql.Rows) ([]model.Result, error) {
	var results []model.Result
	for rows.Next() {
		var r model.Result
		var outcome, scoresStr, recordedStr string
		var checksum int64
		if err := rows.Scan(&r.ID, &r.Origin, &r.Seed, &r.Level, &r.Tick, &outcome, &r.Percent,
			&scoresStr, &checksum, &recordedStr); err != nil {
			return nil, err
		}
		r.Outcome = model.Outcome(outcome)
		r.Checksum = uint64(checksum)
		if err := json.Unmarshal([]byte(scoresStr), &r.Scores); err != nil {
			return nil, fmt.Errorf("decode scores for result %d: %w", r.ID, err)
		}
		var parseErr error
		r.RecordedAt, parseErr = time.Parse(time.RFC3339Nano, recordedStr)
		if parseErr != nil {
			return nil, fmt.Errorf("parse recorded_at for result %d: %w", r.ID, parseErr)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

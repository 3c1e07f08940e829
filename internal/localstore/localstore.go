// Package localstore is the single-binary storage backend: the same plan and
// history surface as the Postgres store, kept in a local SQLite file.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/claude/liftlog/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS plan_entries (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	phase         INTEGER NOT NULL,
	split         TEXT NOT NULL,
	day           INTEGER NOT NULL,
	exercise      TEXT NOT NULL,
	warm_up       TEXT NOT NULL DEFAULT '',
	sets          INTEGER NOT NULL,
	reps          TEXT NOT NULL DEFAULT '',
	rpe           TEXT NOT NULL DEFAULT '',
	alternative_1 TEXT NOT NULL DEFAULT '',
	alternative_2 TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS session_records (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	saved_at   TIMESTAMP NOT NULL,
	person     TEXT NOT NULL DEFAULT '',
	date       TEXT NOT NULL DEFAULT '',
	week       INTEGER NOT NULL DEFAULT 0,
	phase      INTEGER NOT NULL DEFAULT 0,
	split      TEXT NOT NULL,
	day        INTEGER NOT NULL,
	exercise   TEXT NOT NULL,
	weights    TEXT NOT NULL,
	reps       TEXT NOT NULL
);`

// DB is a SQLite-backed store.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and ensures the schema
// exists.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (s *DB) Close() error {
	return s.db.Close()
}

// LoadPlan retrieves the full exercise plan in stored order.
func (s *DB) LoadPlan(ctx context.Context) ([]models.PlanEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT phase, split, day, exercise, warm_up, sets, reps, rpe, alternative_1, alternative_2
		 FROM plan_entries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying plan: %w", err)
	}
	defer rows.Close()

	var entries []models.PlanEntry
	for rows.Next() {
		var e models.PlanEntry
		if err := rows.Scan(&e.Phase, &e.Split, &e.Day, &e.Exercise, &e.WarmUp,
			&e.Sets, &e.Reps, &e.RPE, &e.Alternative1, &e.Alternative2); err != nil {
			return nil, fmt.Errorf("scanning plan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ReplacePlan swaps the stored plan for the given entries in one transaction.
func (s *DB) ReplacePlan(ctx context.Context, entries []models.PlanEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning plan replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_entries`); err != nil {
		return fmt.Errorf("clearing plan: %w", err)
	}
	for _, e := range entries {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO plan_entries (phase, split, day, exercise, warm_up, sets, reps, rpe, alternative_1, alternative_2)
			 VALUES (?,?,?,?,?,?,?,?,?,?)`,
			e.Phase, e.Split, e.Day, e.Exercise, e.WarmUp, e.Sets, e.Reps, e.RPE,
			e.Alternative1, e.Alternative2)
		if err != nil {
			return fmt.Errorf("inserting plan entry %q: %w", e.Exercise, err)
		}
	}
	return tx.Commit()
}

// LoadHistory retrieves the historical log for one person in saved order.
// An empty person loads every row; no prior data yields an empty slice.
func (s *DB) LoadHistory(ctx context.Context, person string) ([]models.Record, error) {
	query := `SELECT session_id, saved_at, person, date, week, phase, split, day, exercise, weights, reps
	 FROM session_records`
	var args []any
	if person != "" {
		query += ` WHERE person = ?`
		args = append(args, person)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var r models.Record
		var sessionID, weights, reps string
		if err := rows.Scan(&sessionID, &r.SavedAt, &r.Person, &r.Date, &r.Week,
			&r.Phase, &r.Split, &r.Day, &r.Exercise, &weights, &reps); err != nil {
			return nil, fmt.Errorf("scanning history record: %w", err)
		}
		if err := r.SessionID.UnmarshalText([]byte(sessionID)); err != nil {
			return nil, fmt.Errorf("decoding session id %q: %w", sessionID, err)
		}
		if err := json.Unmarshal([]byte(weights), &r.Weights); err != nil {
			return nil, fmt.Errorf("decoding weights for %s: %w", r.Exercise, err)
		}
		if err := json.Unmarshal([]byte(reps), &r.Reps); err != nil {
			return nil, fmt.Errorf("decoding reps for %s: %w", r.Exercise, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ReplaceHistory overwrites one person's slice of the log with the merged
// result in one transaction. Full-table replace, last write wins.
func (s *DB) ReplaceHistory(ctx context.Context, person string, records []models.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning history replace: %w", err)
	}
	defer tx.Rollback()

	if person != "" {
		_, err = tx.ExecContext(ctx, `DELETE FROM session_records WHERE person = ?`, person)
	} else {
		_, err = tx.ExecContext(ctx, `DELETE FROM session_records`)
	}
	if err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}

	for _, r := range records {
		weights, err := json.Marshal(r.Weights)
		if err != nil {
			return fmt.Errorf("encoding weights for %s: %w", r.Exercise, err)
		}
		reps, err := json.Marshal(r.Reps)
		if err != nil {
			return fmt.Errorf("encoding reps for %s: %w", r.Exercise, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO session_records (session_id, saved_at, person, date, week, phase, split, day, exercise, weights, reps)
			 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			r.SessionID.String(), r.SavedAt, r.Person, r.Date, r.Week,
			r.Phase, r.Split, r.Day, r.Exercise, string(weights), string(reps))
		if err != nil {
			return fmt.Errorf("inserting history for %s: %w", r.Exercise, err)
		}
	}
	return tx.Commit()
}

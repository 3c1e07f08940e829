package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/claude/liftlog/internal/models"
)

const historyColumns = `session_id, saved_at, person, date, week, phase, split, day, exercise, weights, reps`

// LoadHistory retrieves the full historical log for one person in saved
// order. An empty person loads every row. A log with no prior data is an
// empty slice, not an error.
func (db *DB) LoadHistory(ctx context.Context, person string) ([]models.Record, error) {
	query := `SELECT ` + historyColumns + ` FROM session_records`
	var args []any
	if person != "" {
		query += ` WHERE person = $1`
		args = append(args, person)
	}
	query += ` ORDER BY id`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var r models.Record
		var weights, reps []byte
		if err := rows.Scan(&r.SessionID, &r.SavedAt, &r.Person, &r.Date, &r.Week,
			&r.Phase, &r.Split, &r.Day, &r.Exercise, &weights, &reps); err != nil {
			return nil, fmt.Errorf("scanning history record: %w", err)
		}
		if err := json.Unmarshal(weights, &r.Weights); err != nil {
			return nil, fmt.Errorf("decoding weights for %s: %w", r.Exercise, err)
		}
		if err := json.Unmarshal(reps, &r.Reps); err != nil {
			return nil, fmt.Errorf("decoding reps for %s: %w", r.Exercise, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ReplaceHistory overwrites one person's slice of the log with the merged
// result, in a single transaction. The merge engine owns deduplication; this
// is a dumb full-table replace, which is exactly the persistence contract:
// read-modify-write with no isolation, last write wins.
func (db *DB) ReplaceHistory(ctx context.Context, person string, records []models.Record) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning history replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if person != "" {
		_, err = tx.Exec(ctx, `DELETE FROM session_records WHERE person = $1`, person)
	} else {
		_, err = tx.Exec(ctx, `DELETE FROM session_records`)
	}
	if err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}

	if len(records) > 0 {
		query := `INSERT INTO session_records (` + historyColumns + `) VALUES `
		args := make([]any, 0, len(records)*11)
		valueStrings := make([]string, 0, len(records))

		for i, r := range records {
			weights, err := json.Marshal(r.Weights)
			if err != nil {
				return fmt.Errorf("encoding weights for %s: %w", r.Exercise, err)
			}
			reps, err := json.Marshal(r.Reps)
			if err != nil {
				return fmt.Errorf("encoding reps for %s: %w", r.Exercise, err)
			}

			base := i * 11
			valueStrings = append(valueStrings, fmt.Sprintf(
				"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10, base+11,
			))
			args = append(args, r.SessionID, r.SavedAt, r.Person, r.Date, r.Week,
				r.Phase, r.Split, r.Day, r.Exercise, weights, reps)
		}

		if _, err := tx.Exec(ctx, query+strings.Join(valueStrings, ","), args...); err != nil {
			return fmt.Errorf("inserting history: %w", err)
		}
	}

	return tx.Commit(ctx)
}

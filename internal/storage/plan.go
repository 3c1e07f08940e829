package storage

import (
	"context"
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// LoadPlan retrieves the full exercise plan in stored order. The plan is
// reference data; it is loaded whole and filtered in memory.
func (db *DB) LoadPlan(ctx context.Context) ([]models.PlanEntry, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT phase, split, day, exercise, warm_up, sets, reps, rpe,
		 COALESCE(alternative_1, ''), COALESCE(alternative_2, '')
		 FROM plan_entries
		 ORDER BY id`)
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

// ReplacePlan swaps the stored plan for the given entries in one
// transaction. Used by the importer when seeding from CSV.
func (db *DB) ReplacePlan(ctx context.Context, entries []models.PlanEntry) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning plan replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM plan_entries`); err != nil {
		return fmt.Errorf("clearing plan: %w", err)
	}
	for _, e := range entries {
		_, err := tx.Exec(ctx,
			`INSERT INTO plan_entries (phase, split, day, exercise, warm_up, sets, reps, rpe, alternative_1, alternative_2)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			e.Phase, e.Split, e.Day, e.Exercise, e.WarmUp, e.Sets, e.Reps, e.RPE,
			nullable(e.Alternative1), nullable(e.Alternative2))
		if err != nil {
			return fmt.Errorf("inserting plan entry %q: %w", e.Exercise, err)
		}
	}
	return tx.Commit(ctx)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

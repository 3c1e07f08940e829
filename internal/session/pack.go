package session

import (
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// Pack reassembles an edited grid into one Record per logged exercise. Rows
// whose exercise cell is empty were skipped by the user and are dropped.
// Each remaining row's weight and reps cells are coerced and gathered in set
// order into sequences of exactly maxSets values; the flat per-set columns
// do not survive past this point. All records of one call share a session ID
// and save timestamp.
func Pack(rows []Row, maxSets int, key Key) []models.Record {
	sessionID := uuid.New()
	savedAt := time.Now().UTC()

	var records []models.Record
	for _, row := range rows {
		exercise, ok := rawString(row[ColExercise])
		if !ok {
			continue
		}

		weights := make([]models.Value, maxSets)
		reps := make([]models.Value, maxSets)
		for n := 1; n <= maxSets; n++ {
			weights[n-1] = CoerceWeight(row[WeightCol(n)])
			reps[n-1] = CoerceReps(row[RepsCol(n)])
		}

		records = append(records, models.Record{
			SessionID: sessionID,
			SavedAt:   savedAt,
			Person:    key.Person,
			Date:      key.Date,
			Week:      key.Week,
			Phase:     key.Phase,
			Split:     key.Split,
			Day:       key.Day,
			Exercise:  exercise,
			Weights:   weights,
			Reps:      reps,
		})
	}
	return records
}

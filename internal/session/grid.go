package session

import (
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// Column names of the editable grid.
const (
	ColExercise = "exercise"
)

// WeightCol returns the column name of the weight cell for set n (1-based).
func WeightCol(n int) string { return fmt.Sprintf("weight_%d", n) }

// RepsCol returns the column name of the reps cell for set n (1-based).
func RepsCol(n int) string { return fmt.Sprintf("reps_%d", n) }

// Row is one editable grid row, keyed by column name. Cells hold raw values
// straight from the editing surface; they stay untyped until packing.
type Row map[string]any

// Grid is the wide editable matrix handed to the presentation layer: one row
// per plan entry and, per set index 1..MaxSets, one weight and one reps
// column. Columns records the display order.
type Grid struct {
	MaxSets int      `json:"max_sets"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// BuildGrid shapes an empty grid from the filtered plan. Every row — the
// first included — gets its exercise cell seeded with the plan's exercise
// name; all weight and reps cells start empty.
func BuildGrid(filtered []models.PlanEntry, maxSets int) Grid {
	columns := make([]string, 0, 1+2*maxSets)
	columns = append(columns, ColExercise)
	for n := 1; n <= maxSets; n++ {
		columns = append(columns, WeightCol(n), RepsCol(n))
	}

	rows := make([]Row, 0, len(filtered))
	for _, e := range filtered {
		row := make(Row, len(columns))
		row[ColExercise] = e.Exercise
		for n := 1; n <= maxSets; n++ {
			row[WeightCol(n)] = nil
			row[RepsCol(n)] = nil
		}
		rows = append(rows, row)
	}

	return Grid{MaxSets: maxSets, Columns: columns, Rows: rows}
}

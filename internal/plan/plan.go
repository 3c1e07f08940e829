// Package plan filters the exercise plan down to one session and derives the
// values the editable grid is shaped by: the matching rows, the set-count
// ceiling and the selectable exercise names.
package plan

import (
	"errors"
	"fmt"
	"sort"

	"github.com/claude/liftlog/internal/models"
)

// ErrPlanNotFound means no plan rows match the requested phase/split/day.
// Non-fatal: callers degrade to an empty view.
var ErrPlanNotFound = errors.New("workout plan not found")

// ErrWeekOutOfRange means the week number falls outside the programmed
// 13-week cycle, so no phase can be derived for it.
var ErrWeekOutOfRange = errors.New("week outside the 13-week program")

// PhaseForWeek maps a raw week number onto a training phase. The program
// runs 13 weeks: weeks 1-6 are phase 1, 7-10 phase 2 and 11-13 phase 3.
// Weeks outside that range are rejected rather than clamped.
func PhaseForWeek(week int) (int, error) {
	switch {
	case week < 1 || week > 13:
		return 0, fmt.Errorf("week %d: %w", week, ErrWeekOutOfRange)
	case week <= 6:
		return 1, nil
	case week <= 10:
		return 2, nil
	default:
		return 3, nil
	}
}

// Select returns the plan rows matching (phase, split, day), preserving plan
// order, together with the session's set-count ceiling: the maximum Sets
// value among the matched rows. When nothing matches it returns
// ErrPlanNotFound and a ceiling of 0.
func Select(entries []models.PlanEntry, phase int, split string, day int) ([]models.PlanEntry, int, error) {
	var filtered []models.PlanEntry
	maxSets := 0
	for _, e := range entries {
		if e.Phase != phase || e.Split != split || e.Day != day {
			continue
		}
		filtered = append(filtered, e)
		if e.Sets > maxSets {
			maxSets = e.Sets
		}
	}
	if len(filtered) == 0 {
		return nil, 0, fmt.Errorf("phase %d %s day %d: %w", phase, split, day, ErrPlanNotFound)
	}
	return filtered, maxSets, nil
}

// Catalog returns the selection domain for the exercise cell of every grid
// row: the union of primary and alternative exercise names across the
// filtered plan, deduplicated and sorted ascending.
func Catalog(filtered []models.PlanEntry) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}
	for _, e := range filtered {
		add(e.Exercise)
		add(e.Alternative1)
		add(e.Alternative2)
	}
	sort.Strings(names)
	return names
}

package session

import (
	"github.com/claude/liftlog/internal/models"
)

// Merge upserts newRecords into history under the composite key defined by
// spec: old records first, new after, then one survivor per key — the last
// occurrence, so a re-save always wins over what it replaces. Records under
// other keys are untouched. Surviving rows keep their positional order.
//
// The caller persists the result as the complete log state (full overwrite).
// There is no version check: two overlapping saves for the same person race
// and the later write wins wholesale. Accepted limitation.
func Merge(history, newRecords []models.Record, spec KeySpec) []models.Record {
	if len(history) == 0 {
		return append([]models.Record(nil), newRecords...)
	}

	combined := make([]models.Record, 0, len(history)+len(newRecords))
	combined = append(combined, history...)
	combined = append(combined, newRecords...)

	last := make(map[string]int, len(combined))
	for i, r := range combined {
		last[CompositeKey(r, spec)] = i
	}

	merged := make([]models.Record, 0, len(last))
	for i, r := range combined {
		if last[CompositeKey(r, spec)] == i {
			merged = append(merged, r)
		}
	}
	return merged
}

// LatestSession extracts the previous-workout view: the records matching
// (phase, split, day) that belong to the most recent session. Recency is the
// lexicographically greatest date (dates are ISO formatted); when the log
// variant carries no dates, the greatest week wins, and the save timestamp
// breaks remaining ties.
func LatestSession(history []models.Record, phase int, split string, day int) []models.Record {
	var matched []models.Record
	for _, r := range history {
		if r.Split != split || r.Day != day {
			continue
		}
		if phase != 0 && r.Phase != 0 && r.Phase != phase {
			continue
		}
		matched = append(matched, r)
	}
	if len(matched) == 0 {
		return nil
	}

	best := matched[0]
	for _, r := range matched[1:] {
		if moreRecent(r, best) {
			best = r
		}
	}

	var latest []models.Record
	for _, r := range matched {
		if r.Date == best.Date && r.Week == best.Week && r.SavedAt.Equal(best.SavedAt) {
			latest = append(latest, r)
		}
	}
	return latest
}

func moreRecent(a, b models.Record) bool {
	if a.Date != b.Date {
		return a.Date > b.Date
	}
	if a.Week != b.Week {
		return a.Week > b.Week
	}
	return a.SavedAt.After(b.SavedAt)
}

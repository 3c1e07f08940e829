package session

import (
	"strconv"
	"strings"

	"github.com/claude/liftlog/internal/models"
)

// KeyField is one session-identifying field that can participate in the
// composite key.
type KeyField string

const (
	FieldPerson KeyField = "person"
	FieldDate   KeyField = "date"
	FieldWeek   KeyField = "week"
	FieldPhase  KeyField = "phase"
	FieldSplit  KeyField = "split"
	FieldDay    KeyField = "day"
)

// KeySpec is the ordered set of session key fields forming the composite
// key. The exercise name is always appended; it is not listed here. The
// source data exhibits three historical schemas, so the key is a parameter
// rather than a hardcoded column list.
type KeySpec []KeyField

// The three schemas found in historical data.
var (
	// KeyDatePhaseSplitDay keys by calendar date; the person owns the table.
	KeyDatePhaseSplitDay = KeySpec{FieldDate, FieldPhase, FieldSplit, FieldDay}
	// KeyPersonWeekSplitDay keys by person and program week in a shared table.
	KeyPersonWeekSplitDay = KeySpec{FieldPerson, FieldWeek, FieldSplit, FieldDay}
	// KeyWeekSplitDay keys by program week; the person owns the table.
	KeyWeekSplitDay = KeySpec{FieldWeek, FieldSplit, FieldDay}
)

// Needs reports whether the field takes part in this schema's identity.
func (s KeySpec) Needs(field KeyField) bool {
	for _, f := range s {
		if f == field {
			return true
		}
	}
	return false
}

// KeySpecByName resolves a configured schema name. The zero name defaults to
// KeyPersonWeekSplitDay.
func KeySpecByName(name string) (KeySpec, bool) {
	switch name {
	case "", "person_week":
		return KeyPersonWeekSplitDay, true
	case "date":
		return KeyDatePhaseSplitDay, true
	case "week":
		return KeyWeekSplitDay, true
	default:
		return nil, false
	}
}

// Key carries the session-identifying values for one save. Fields outside
// the active KeySpec are still stored on the record; they just do not take
// part in upsert identity.
type Key struct {
	Person string
	Date   string
	Week   int
	Phase  int
	Split  string
	Day    int
}

// CompositeKey renders the record's identity under the given spec: the
// spec's fields plus the exercise name, unit-separator joined.
func CompositeKey(r models.Record, spec KeySpec) string {
	parts := make([]string, 0, len(spec)+1)
	for _, f := range spec {
		switch f {
		case FieldPerson:
			parts = append(parts, r.Person)
		case FieldDate:
			parts = append(parts, r.Date)
		case FieldWeek:
			parts = append(parts, strconv.Itoa(r.Week))
		case FieldPhase:
			parts = append(parts, strconv.Itoa(r.Phase))
		case FieldSplit:
			parts = append(parts, r.Split)
		case FieldDay:
			parts = append(parts, strconv.Itoa(r.Day))
		}
	}
	parts = append(parts, r.Exercise)
	return strings.Join(parts, "\x1f")
}

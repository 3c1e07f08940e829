package models

import (
	"time"

	"github.com/google/uuid"
)

// Record is one packed exercise entry of a saved session. Weights and Reps
// always have exactly the session's set-count ceiling entries; unset slots
// are Empty values, never omitted. A Record is immutable once packed — a
// re-save produces a new Record that supersedes the old one under the merge
// rule.
type Record struct {
	SessionID uuid.UUID `json:"session_id"`
	SavedAt   time.Time `json:"saved_at"`

	Person   string `json:"person,omitempty"`
	Date     string `json:"date,omitempty"`
	Week     int    `json:"week,omitempty"`
	Phase    int    `json:"phase,omitempty"`
	Split    string `json:"split"`
	Day      int    `json:"day"`
	Exercise string `json:"exercise"`

	Weights []Value `json:"weights"`
	Reps    []Value `json:"reps"`
}

// Package csvstore reads and writes the plan and history as CSV files, the
// format the workout log started life in: workoutplan.csv holds the plan and
// previous_workouts.csv the full historical log. History writes are whole-file
// overwrites of the merged log.
package csvstore

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/google/uuid"
)

const (
	planFile    = "workoutplan.csv"
	historyFile = "previous_workouts.csv"
)

var planHeader = []string{"phase", "split", "day", "exercise", "warm_up", "sets", "reps", "rpe", "alternative_1", "alternative_2"}

var historyHeader = []string{"session_id", "saved_at", "person", "date", "week", "phase", "split", "day", "exercise", "weights", "reps"}

// Store is a CSV-file-backed store rooted at a data directory.
type Store struct {
	dir string
}

// New creates a Store over the given data directory.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// LoadPlan reads workoutplan.csv. A missing plan file is an error: without a
// plan there is nothing to track against.
func (s *Store) LoadPlan(_ context.Context) ([]models.PlanEntry, error) {
	rows, err := readAll(filepath.Join(s.dir, planFile))
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("plan file %s is empty", planFile)
	}

	cols := columnIndex(rows[0])
	// The original plan file named the phase column "week".
	if _, ok := cols["phase"]; !ok {
		if i, ok := cols["week"]; ok {
			cols["phase"] = i
		}
	}
	if err := requireColumns(cols, planHeader[:8]); err != nil { // alternatives are optional columns
		return nil, fmt.Errorf("plan header: %w", err)
	}

	var entries []models.PlanEntry
	for i, row := range rows[1:] {
		e := models.PlanEntry{
			Split:        cell(row, cols, "split"),
			Exercise:     cell(row, cols, "exercise"),
			WarmUp:       cell(row, cols, "warm_up"),
			Reps:         cell(row, cols, "reps"),
			RPE:          cell(row, cols, "rpe"),
			Alternative1: cell(row, cols, "alternative_1"),
			Alternative2: cell(row, cols, "alternative_2"),
		}
		if e.Phase, err = intCell(row, cols, "phase"); err != nil {
			return nil, fmt.Errorf("plan row %d: %w", i+2, err)
		}
		if e.Day, err = intCell(row, cols, "day"); err != nil {
			return nil, fmt.Errorf("plan row %d: %w", i+2, err)
		}
		if e.Sets, err = intCell(row, cols, "sets"); err != nil {
			return nil, fmt.Errorf("plan row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ReplacePlan writes workoutplan.csv whole.
func (s *Store) ReplacePlan(_ context.Context, entries []models.PlanEntry) error {
	rows := [][]string{planHeader}
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(e.Phase), e.Split, strconv.Itoa(e.Day), e.Exercise, e.WarmUp,
			strconv.Itoa(e.Sets), e.Reps, e.RPE, e.Alternative1, e.Alternative2,
		})
	}
	return writeAll(filepath.Join(s.dir, planFile), rows)
}

// LoadHistory reads previous_workouts.csv, filtered to one person when the
// person is non-empty. Both file shapes are accepted: the packed-array form
// this store writes, and the original program's flat per-set columns. A
// missing history file means no workouts have been logged yet and yields an
// empty log, not an error.
func (s *Store) LoadHistory(_ context.Context, person string) ([]models.Record, error) {
	rows, err := readAll(filepath.Join(s.dir, historyFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	cols := columnIndex(rows[0])
	if _, ok := cols["weights"]; !ok {
		// The original program wrote flat weight_<n>/reps_<n> columns
		// instead of packed arrays.
		return loadLegacyHistory(rows, cols, person)
	}
	if err := requireColumns(cols, []string{"split", "day", "exercise", "weights", "reps"}); err != nil {
		return nil, fmt.Errorf("history header: %w", err)
	}

	var records []models.Record
	for i, row := range rows[1:] {
		r := models.Record{
			Person:   cell(row, cols, "person"),
			Date:     cell(row, cols, "date"),
			Split:    cell(row, cols, "split"),
			Exercise: cell(row, cols, "exercise"),
		}
		if person != "" && r.Person != person {
			continue
		}
		// Numeric key cells may be blank in legacy files; blank means unset.
		r.Week, _ = strconv.Atoi(cell(row, cols, "week"))
		r.Phase, _ = strconv.Atoi(cell(row, cols, "phase"))
		r.Day, _ = strconv.Atoi(cell(row, cols, "day"))
		if id := cell(row, cols, "session_id"); id != "" {
			if r.SessionID, err = uuid.Parse(id); err != nil {
				return nil, fmt.Errorf("history row %d: parsing session id: %w", i+2, err)
			}
		}
		if ts := cell(row, cols, "saved_at"); ts != "" {
			if r.SavedAt, err = time.Parse(time.RFC3339, ts); err != nil {
				return nil, fmt.Errorf("history row %d: parsing saved_at: %w", i+2, err)
			}
		}
		if err := json.Unmarshal([]byte(cell(row, cols, "weights")), &r.Weights); err != nil {
			return nil, fmt.Errorf("history row %d: decoding weights: %w", i+2, err)
		}
		if err := json.Unmarshal([]byte(cell(row, cols, "reps")), &r.Reps); err != nil {
			return nil, fmt.Errorf("history row %d: decoding reps: %w", i+2, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// ReplaceHistory overwrites the history file with the merged log. When
// scoped to a person, rows belonging to other people are carried over
// unchanged so the file stays the complete log.
func (s *Store) ReplaceHistory(ctx context.Context, person string, records []models.Record) error {
	var keep []models.Record
	if person != "" {
		all, err := s.LoadHistory(ctx, "")
		if err != nil {
			return fmt.Errorf("reloading history for rewrite: %w", err)
		}
		for _, r := range all {
			if r.Person != person {
				keep = append(keep, r)
			}
		}
	}
	keep = append(keep, records...)

	rows := [][]string{historyHeader}
	for _, r := range keep {
		weights, err := json.Marshal(r.Weights)
		if err != nil {
			return fmt.Errorf("encoding weights for %s: %w", r.Exercise, err)
		}
		reps, err := json.Marshal(r.Reps)
		if err != nil {
			return fmt.Errorf("encoding reps for %s: %w", r.Exercise, err)
		}
		var savedAt string
		if !r.SavedAt.IsZero() {
			savedAt = r.SavedAt.UTC().Format(time.RFC3339)
		}
		var sessionID string
		if r.SessionID != uuid.Nil {
			sessionID = r.SessionID.String()
		}
		rows = append(rows, []string{
			sessionID, savedAt, r.Person, r.Date,
			strconv.Itoa(r.Week), strconv.Itoa(r.Phase), r.Split, strconv.Itoa(r.Day),
			r.Exercise, string(weights), string(reps),
		})
	}
	return writeAll(filepath.Join(s.dir, historyFile), rows)
}

func readAll(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func writeAll(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// loadLegacyHistory reads the flat-column shape the original program wrote:
// one weight_<n>/reps_<n> column pair per set index and no save metadata.
// Cells go through the session coercion rules, so numbers come back typed
// and malformed text survives verbatim.
func loadLegacyHistory(rows [][]string, cols map[string]int, person string) ([]models.Record, error) {
	if err := requireColumns(cols, []string{"split", "day", "exercise"}); err != nil {
		return nil, fmt.Errorf("history header: %w", err)
	}
	indices := setIndices(rows[0])
	if len(indices) == 0 {
		return nil, fmt.Errorf("history header: no weight_<n>/reps_<n> columns")
	}

	var records []models.Record
	for _, row := range rows[1:] {
		r := models.Record{
			Person:   cell(row, cols, "person"),
			Date:     cell(row, cols, "date"),
			Split:    cell(row, cols, "split"),
			Exercise: cell(row, cols, "exercise"),
		}
		if person != "" && r.Person != person {
			continue
		}
		r.Week, _ = strconv.Atoi(cell(row, cols, "week"))
		r.Phase, _ = strconv.Atoi(cell(row, cols, "phase"))
		r.Day, _ = strconv.Atoi(cell(row, cols, "day"))
		for _, n := range indices {
			r.Weights = append(r.Weights, session.CoerceWeight(cell(row, cols, session.WeightCol(n))))
			r.Reps = append(r.Reps, session.CoerceReps(cell(row, cols, session.RepsCol(n))))
		}
		records = append(records, r)
	}
	return records, nil
}

// setIndices collects the sorted set indices named by weight_<n>/reps_<n>
// columns. The original grid numbered sets from 0 in places, so indices are
// taken as found rather than assumed 1-based.
func setIndices(header []string) []int {
	seen := make(map[int]bool)
	for _, name := range header {
		rest, ok := strings.CutPrefix(name, "weight_")
		if !ok {
			rest, ok = strings.CutPrefix(name, "reps_")
		}
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil {
			seen[n] = true
		}
	}
	indices := make([]int, 0, len(seen))
	for n := range seen {
		indices = append(indices, n)
	}
	sort.Ints(indices)
	return indices
}

// columnIndex maps column names to positions.
func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	return cols
}

func requireColumns(cols map[string]int, required []string) error {
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return fmt.Errorf("missing column %q", name)
		}
	}
	return nil
}

func cell(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func intCell(row []string, cols map[string]int, name string) (int, error) {
	s := cell(row, cols, name)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("column %s: parsing %q: %w", name, s, err)
	}
	return n, nil
}

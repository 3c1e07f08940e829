package importer

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/csvstore"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/google/uuid"
)

type fakeTarget struct {
	plan    []models.PlanEntry
	history []models.Record
}

func (f *fakeTarget) ReplacePlan(_ context.Context, entries []models.PlanEntry) error {
	f.plan = entries
	return nil
}

func (f *fakeTarget) LoadHistory(_ context.Context, person string) ([]models.Record, error) {
	if person == "" {
		return f.history, nil
	}
	var out []models.Record
	for _, r := range f.history {
		if r.Person == person {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeTarget) ReplaceHistory(_ context.Context, person string, records []models.Record) error {
	if person == "" {
		f.history = records
		return nil
	}
	var keep []models.Record
	for _, r := range f.history {
		if r.Person != person {
			keep = append(keep, r)
		}
	}
	f.history = append(keep, records...)
	return nil
}

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeFixture populates a data directory with a small plan and log.
func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	src := csvstore.New(dir)
	ctx := context.Background()

	err := src.ReplacePlan(ctx, []models.PlanEntry{
		{Phase: 1, Split: "Push", Day: 1, Exercise: "Bench Press", Sets: 3, Reps: "6-8"},
		{Phase: 1, Split: "Pull", Day: 1, Exercise: "Deadlift", Sets: 2, Reps: "5"},
	})
	if err != nil {
		t.Fatal(err)
	}

	err = src.ReplaceHistory(ctx, "", []models.Record{
		{
			SessionID: uuid.New(), SavedAt: time.Now().UTC(),
			Person: "Tomas", Week: 3, Phase: 1, Split: "Push", Day: 1, Exercise: "Bench Press",
			Weights: []models.Value{models.IntValue(100)},
			Reps:    []models.Value{models.IntValue(8)},
		},
		{
			SessionID: uuid.New(), SavedAt: time.Now().UTC(),
			Person: "Sebko", Week: 3, Phase: 1, Split: "Pull", Day: 1, Exercise: "Deadlift",
			Weights: []models.Value{models.DecimalValue(142.5)},
			Reps:    []models.Value{models.IntValue(5)},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestImport(t *testing.T) {
	dir := writeFixture(t)
	target := &fakeTarget{}

	imp := New(target, session.KeyPersonWeekSplitDay, discardLog(), false)
	stats, err := imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	if stats.PlanEntries != 2 || stats.RecordsRead != 2 || stats.RecordsWritten != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if len(stats.People) != 2 || stats.People[0] != "Sebko" || stats.People[1] != "Tomas" {
		t.Errorf("people = %v", stats.People)
	}
	if len(target.plan) != 2 || len(target.history) != 2 {
		t.Errorf("target got %d plan entries, %d records", len(target.plan), len(target.history))
	}
}

func TestImportMergesWithExisting(t *testing.T) {
	dir := writeFixture(t)
	target := &fakeTarget{
		history: []models.Record{
			// Same key as the fixture's Tomas row: the import overwrites it.
			{
				SessionID: uuid.New(), SavedAt: time.Now().UTC().Add(-time.Hour),
				Person: "Tomas", Week: 3, Phase: 1, Split: "Push", Day: 1, Exercise: "Bench Press",
				Weights: []models.Value{models.IntValue(95)},
				Reps:    []models.Value{models.IntValue(8)},
			},
			// Different week: kept alongside.
			{
				SessionID: uuid.New(), SavedAt: time.Now().UTC().Add(-time.Hour),
				Person: "Tomas", Week: 2, Phase: 1, Split: "Push", Day: 1, Exercise: "Bench Press",
				Weights: []models.Value{models.IntValue(90)},
				Reps:    []models.Value{models.IntValue(8)},
			},
		},
	}

	imp := New(target, session.KeyPersonWeekSplitDay, discardLog(), false)
	if _, err := imp.Import(context.Background(), dir); err != nil {
		t.Fatal(err)
	}

	if len(target.history) != 3 {
		t.Fatalf("history = %d records, want 3", len(target.history))
	}
	for _, r := range target.history {
		if r.Person == "Tomas" && r.Week == 3 && r.Weights[0] != models.IntValue(100) {
			t.Errorf("week 3 record not overwritten: weights = %+v", r.Weights)
		}
	}
}

func TestImportDryRun(t *testing.T) {
	dir := writeFixture(t)
	target := &fakeTarget{}

	imp := New(target, session.KeyPersonWeekSplitDay, discardLog(), true)
	stats, err := imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	if stats.PlanEntries != 2 || stats.RecordsWritten != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if target.plan != nil || target.history != nil {
		t.Error("dry run wrote to the target")
	}
}

func TestImportMissingPlan(t *testing.T) {
	imp := New(&fakeTarget{}, session.KeyPersonWeekSplitDay, discardLog(), false)
	if _, err := imp.Import(context.Background(), t.TempDir()); err == nil {
		t.Fatal("expected an error for a missing plan file")
	}
}

// Package importer migrates a CSV data directory — the workout log's original
// home — into a database-backed store. The plan is replaced wholesale; history
// is merged into whatever the target already holds, so re-running an import is
// safe.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/claude/liftlog/internal/csvstore"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
)

// Target is the destination store for an import.
type Target interface {
	ReplacePlan(ctx context.Context, entries []models.PlanEntry) error
	LoadHistory(ctx context.Context, person string) ([]models.Record, error)
	ReplaceHistory(ctx context.Context, person string, records []models.Record) error
}

// Stats tracks import progress.
type Stats struct {
	PlanEntries    int
	RecordsRead    int
	RecordsWritten int
	People         []string
}

// Importer copies a CSV data directory into a target store.
type Importer struct {
	target  Target
	keySpec session.KeySpec
	log     *slog.Logger
	dryRun  bool
	stats   Stats
}

// New creates a new Importer.
func New(target Target, keySpec session.KeySpec, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{target: target, keySpec: keySpec, log: log, dryRun: dryRun}
}

// Import reads the plan and history CSVs under dataDir and writes them into
// the target store.
func (imp *Importer) Import(ctx context.Context, dataDir string) (*Stats, error) {
	src := csvstore.New(dataDir)

	if err := imp.importPlan(ctx, src); err != nil {
		return &imp.stats, fmt.Errorf("importing plan: %w", err)
	}
	if err := imp.importHistory(ctx, src); err != nil {
		return &imp.stats, fmt.Errorf("importing history: %w", err)
	}
	return &imp.stats, nil
}

func (imp *Importer) importPlan(ctx context.Context, src *csvstore.Store) error {
	entries, err := src.LoadPlan(ctx)
	if err != nil {
		return err
	}
	imp.stats.PlanEntries = len(entries)

	if imp.dryRun {
		return nil
	}
	if err := imp.target.ReplacePlan(ctx, entries); err != nil {
		return err
	}
	imp.log.Info("plan imported", "entries", len(entries))
	return nil
}

// importHistory merges the CSV log into the target in one pass over the
// whole log, so a record already present under the same session key is
// overwritten rather than duplicated. Legacy date-keyed logs carry no person
// at all, which is why this is not split per person: an unscoped replace is
// the only write that covers both shapes.
func (imp *Importer) importHistory(ctx context.Context, src *csvstore.Store) error {
	records, err := src.LoadHistory(ctx, "")
	if err != nil {
		return err
	}
	imp.stats.RecordsRead = len(records)
	if len(records) == 0 {
		imp.log.Info("no history to import")
		return nil
	}

	seen := make(map[string]bool)
	for _, r := range records {
		if r.Person != "" && !seen[r.Person] {
			seen[r.Person] = true
			imp.stats.People = append(imp.stats.People, r.Person)
		}
	}
	sort.Strings(imp.stats.People)

	if imp.dryRun {
		imp.stats.RecordsWritten = len(records)
		return nil
	}

	existing, err := imp.target.LoadHistory(ctx, "")
	if err != nil {
		return fmt.Errorf("loading existing history: %w", err)
	}
	merged := session.Merge(existing, records, imp.keySpec)
	if err := imp.target.ReplaceHistory(ctx, "", merged); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	imp.stats.RecordsWritten = len(records)
	imp.log.Info("history imported", "records", len(records), "people", len(imp.stats.People), "log_size", len(merged))
	return nil
}

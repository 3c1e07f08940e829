package server

import (
	"context"

	"github.com/claude/liftlog/internal/models"
)

// Store is the storage collaborator the handlers run against. The Postgres,
// SQLite and CSV backends all satisfy it. The contract is deliberately
// coarse: history is read whole, merged in memory and written back whole.
type Store interface {
	LoadPlan(ctx context.Context) ([]models.PlanEntry, error)
	LoadHistory(ctx context.Context, person string) ([]models.Record, error)
	ReplaceHistory(ctx context.Context, person string, records []models.Record) error
}

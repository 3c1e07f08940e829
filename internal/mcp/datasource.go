package mcp

import (
	"context"

	"github.com/claude/liftlog/internal/models"
)

// DataSource abstracts the data layer for MCP tools. All three storage
// backends satisfy it.
type DataSource interface {
	LoadPlan(ctx context.Context) ([]models.PlanEntry, error)
	LoadHistory(ctx context.Context, person string) ([]models.Record, error)
	ReplaceHistory(ctx context.Context, person string, records []models.Record) error
}

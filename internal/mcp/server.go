// Package mcp exposes the workout log to language-model clients over the
// Model Context Protocol: plan lookups, history queries and session logging.
package mcp

import (
	"log/slog"

	"github.com/claude/liftlog/internal/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, keySpec session.KeySpec, people []string, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog strength-training tracker. Look up the exercise plan for a phase/split/day, review logged sessions, and log a completed workout. Saving the same session twice overwrites the earlier save."),
	)

	h := &handlers{ds: ds, keySpec: keySpec, people: people, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetWorkoutPlan, Handler: h.getWorkoutPlan},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetHistory, Handler: h.getHistory},
		server.ServerTool{Tool: toolGetPreviousWorkout, Handler: h.getPreviousWorkout},
		server.ServerTool{Tool: toolLogSession, Handler: h.logSession},
	)

	s.AddResources(
		server.ServerResource{Resource: resFullPlan, Handler: h.fullPlan},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds      DataSource
	keySpec session.KeySpec
	people  []string
	log     *slog.Logger
}

// --- Resource definitions ---

var resFullPlan = mcp.NewResource(
	"liftlog://plan",
	"Exercise Plan",
	mcp.WithResourceDescription("The complete exercise plan across all phases, splits and days"),
	mcp.WithMIMEType("application/json"),
)

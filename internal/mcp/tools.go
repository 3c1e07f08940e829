package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/plan"
	"github.com/claude/liftlog/internal/session"
	"github.com/mark3labs/mcp-go/mcp"
)

// resolveSelection turns tool arguments into a (phase, week) pair: a phase
// given directly wins; otherwise the week is mapped onto its phase.
func resolveSelection(req mcp.CallToolRequest) (phase, week int, err error) {
	phase = req.GetInt("phase", 0)
	week = req.GetInt("week", 0)
	if phase != 0 {
		return phase, week, nil
	}
	if week == 0 {
		return 0, 0, fmt.Errorf("either phase or week is required")
	}
	phase, err = plan.PhaseForWeek(week)
	return phase, week, err
}

// --- Tool definitions ---

var toolGetWorkoutPlan = mcp.NewTool("get_workout_plan",
	mcp.WithDescription("Look up the exercise plan for one session: the exercises with warm-up, target sets/reps/RPE and alternatives, plus the session's set-count ceiling."),
	mcp.WithNumber("phase", mcp.Description("Training phase 1-3. Give either phase or week.")),
	mcp.WithNumber("week", mcp.Description("Program week 1-13; mapped onto its phase.")),
	mcp.WithString("split", mcp.Required(), mcp.Description("Session split"), mcp.Enum("Push", "Pull", "Legs")),
	mcp.WithNumber("day", mcp.Required(), mcp.Description("Day variation, 1 or 2")),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the selectable exercise names for one session: the planned exercises and their alternatives, sorted."),
	mcp.WithNumber("phase", mcp.Description("Training phase 1-3. Give either phase or week.")),
	mcp.WithNumber("week", mcp.Description("Program week 1-13; mapped onto its phase.")),
	mcp.WithString("split", mcp.Required(), mcp.Description("Session split"), mcp.Enum("Push", "Pull", "Legs")),
	mcp.WithNumber("day", mcp.Required(), mcp.Description("Day variation, 1 or 2")),
)

var toolGetHistory = mcp.NewTool("get_history",
	mcp.WithDescription("Retrieve the full workout log, optionally for one person. Each record carries per-set weight and reps sequences; malformed cells appear as strings."),
	mcp.WithString("person", mcp.Description("Filter to one person's log")),
)

var toolGetPreviousWorkout = mcp.NewTool("get_previous_workout",
	mcp.WithDescription("Retrieve the most recent logged session matching a phase/split/day — what was lifted last time."),
	mcp.WithString("person", mcp.Description("Whose log to search")),
	mcp.WithNumber("phase", mcp.Description("Training phase 1-3. Give either phase or week.")),
	mcp.WithNumber("week", mcp.Description("Program week 1-13; mapped onto its phase.")),
	mcp.WithString("split", mcp.Required(), mcp.Description("Session split"), mcp.Enum("Push", "Pull", "Legs")),
	mcp.WithNumber("day", mcp.Required(), mcp.Description("Day variation, 1 or 2")),
)

var toolLogSession = mcp.NewTool("log_session",
	mcp.WithDescription("Log a completed workout session. Rows is a JSON array of objects with keys exercise, weight_1, reps_1, ... weight_N, reps_N; cells may be numbers or strings, blank cells may be omitted. Saving the same session again overwrites the earlier save per exercise."),
	mcp.WithString("person", mcp.Description("Who trained")),
	mcp.WithString("date", mcp.Description("Session date YYYY-MM-DD; defaults to today when the log is date-keyed")),
	mcp.WithNumber("phase", mcp.Description("Training phase 1-3. Give either phase or week.")),
	mcp.WithNumber("week", mcp.Description("Program week 1-13; mapped onto its phase.")),
	mcp.WithString("split", mcp.Required(), mcp.Description("Session split"), mcp.Enum("Push", "Pull", "Legs")),
	mcp.WithNumber("day", mcp.Required(), mcp.Description("Day variation, 1 or 2")),
	mcp.WithString("rows", mcp.Required(), mcp.Description("JSON array of edited grid rows")),
)

// --- Tool handlers ---

func (h *handlers) getWorkoutPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	split, err := req.RequireString("split")
	if err != nil {
		return mcp.NewToolResultError("split parameter is required"), nil
	}
	day := req.GetInt("day", 0)
	phase, _, err := resolveSelection(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	entries, err := h.ds.LoadPlan(ctx)
	if err != nil {
		h.log.Error("mcp get_workout_plan", "error", err)
		return mcp.NewToolResultError("loading plan failed: " + err.Error()), nil
	}
	filtered, maxSets, err := plan.Select(entries, phase, split, day)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"entries":  filtered,
		"max_sets": maxSets,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	split, err := req.RequireString("split")
	if err != nil {
		return mcp.NewToolResultError("split parameter is required"), nil
	}
	day := req.GetInt("day", 0)
	phase, _, err := resolveSelection(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	entries, err := h.ds.LoadPlan(ctx)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("loading plan failed: " + err.Error()), nil
	}
	filtered, _, err := plan.Select(entries, phase, split, day)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(plan.Catalog(filtered))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	person := req.GetString("person", "")

	records, err := h.ds.LoadHistory(ctx, person)
	if err != nil {
		h.log.Error("mcp get_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(records)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPreviousWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	split, err := req.RequireString("split")
	if err != nil {
		return mcp.NewToolResultError("split parameter is required"), nil
	}
	day := req.GetInt("day", 0)
	person := req.GetString("person", "")
	phase, _, err := resolveSelection(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	records, err := h.ds.LoadHistory(ctx, person)
	if err != nil {
		h.log.Error("mcp get_previous_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(session.LatestSession(records, phase, split, day))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) logSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	split, err := req.RequireString("split")
	if err != nil {
		return mcp.NewToolResultError("split parameter is required"), nil
	}
	day := req.GetInt("day", 0)
	if day != 1 && day != 2 {
		return mcp.NewToolResultError("day must be 1 or 2"), nil
	}
	rowsJSON, err := req.RequireString("rows")
	if err != nil {
		return mcp.NewToolResultError("rows parameter is required"), nil
	}
	var rows []session.Row
	if err := json.Unmarshal([]byte(rowsJSON), &rows); err != nil {
		return mcp.NewToolResultError("rows must be a JSON array of objects: " + err.Error()), nil
	}

	person := req.GetString("person", "")
	if person != "" && !h.knownPerson(person) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown person %q", person)), nil
	}
	if h.keySpec.Needs(session.FieldPerson) && person == "" {
		return mcp.NewToolResultError("person is required"), nil
	}

	phase, week, err := resolveSelection(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date := req.GetString("date", "")
	if h.keySpec.Needs(session.FieldDate) && date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	entries, err := h.ds.LoadPlan(ctx)
	if err != nil {
		h.log.Error("mcp log_session", "error", err)
		return mcp.NewToolResultError("loading plan failed: " + err.Error()), nil
	}
	_, maxSets, err := plan.Select(entries, phase, split, day)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	key := session.Key{Person: person, Date: date, Week: week, Phase: phase, Split: split, Day: day}
	records := session.Pack(rows, maxSets, key)
	if len(records) == 0 {
		return mcp.NewToolResultError("no rows with an exercise to save"), nil
	}

	history, err := h.ds.LoadHistory(ctx, person)
	if err != nil {
		h.log.Error("mcp log_session history", "error", err)
		return mcp.NewToolResultError("loading history failed: " + err.Error()), nil
	}
	merged := session.Merge(history, records, h.keySpec)
	if err := h.ds.ReplaceHistory(ctx, person, merged); err != nil {
		h.log.Error("mcp log_session save", "error", err)
		return mcp.NewToolResultError("saving failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"session_id": records[0].SessionID,
		"saved":      len(records),
		"log_size":   len(merged),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) knownPerson(name string) bool {
	for _, p := range h.people {
		if p == name {
			return true
		}
	}
	return false
}

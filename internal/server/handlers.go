package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/plan"
	"github.com/claude/liftlog/internal/session"
)

// selection is the (phase, split, day) triple every session view is keyed
// by, plus the raw week when phase was derived from one.
type selection struct {
	Phase int
	Week  int
	Split string
	Day   int
}

// parseSelection reads phase|week, split and day query parameters. Exactly
// one of phase and week must be given; a week is mapped onto its phase.
func parseSelection(r *http.Request) (selection, error) {
	q := r.URL.Query()
	var sel selection

	sel.Split = q.Get("split")
	if !models.ValidSplit(sel.Split) {
		return sel, fmt.Errorf("split must be one of Push, Pull, Legs, got %q", sel.Split)
	}

	day, err := strconv.Atoi(q.Get("day"))
	if err != nil || (day != 1 && day != 2) {
		return sel, fmt.Errorf("day must be 1 or 2, got %q", q.Get("day"))
	}
	sel.Day = day

	switch {
	case q.Get("week") != "":
		week, err := strconv.Atoi(q.Get("week"))
		if err != nil {
			return sel, fmt.Errorf("parsing week %q: %w", q.Get("week"), err)
		}
		phase, err := plan.PhaseForWeek(week)
		if err != nil {
			return sel, err
		}
		sel.Week = week
		sel.Phase = phase
	case q.Get("phase") != "":
		phase, err := strconv.Atoi(q.Get("phase"))
		if err != nil || phase < 1 || phase > 3 {
			return sel, fmt.Errorf("phase must be 1, 2 or 3, got %q", q.Get("phase"))
		}
		sel.Phase = phase
	default:
		return sel, fmt.Errorf("either phase or week is required")
	}

	return sel, nil
}

// selectPlan loads the plan and filters it to the request's session.
func (s *Server) selectPlan(r *http.Request) (selection, []models.PlanEntry, int, error) {
	sel, err := parseSelection(r)
	if err != nil {
		return sel, nil, 0, err
	}
	entries, err := s.store.LoadPlan(r.Context())
	if err != nil {
		return sel, nil, 0, storeError{fmt.Errorf("loading plan: %w", err)}
	}
	filtered, maxSets, err := plan.Select(entries, sel.Phase, sel.Split, sel.Day)
	return sel, filtered, maxSets, err
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	_, filtered, maxSets, err := s.selectPlan(r)
	if err != nil {
		s.writePlanError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries":  filtered,
		"max_sets": maxSets,
	})
}

// handleGetFullPlan returns the plan across all phases, splits and days,
// unfiltered. Remote MCP clients build their own selections from it.
func (s *Server) handleGetFullPlan(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.LoadPlan(r.Context())
	if err != nil {
		s.log.Error("loading plan", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []models.PlanEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetExercises(w http.ResponseWriter, r *http.Request) {
	_, filtered, _, err := s.selectPlan(r)
	if err != nil {
		s.writePlanError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan.Catalog(filtered))
}

func (s *Server) handleGetGrid(w http.ResponseWriter, r *http.Request) {
	_, filtered, maxSets, err := s.selectPlan(r)
	if err != nil {
		s.writePlanError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session.BuildGrid(filtered, maxSets))
}

// saveRequest is the body of POST /api/v1/session: the edited grid plus the
// session key fields.
type saveRequest struct {
	Person string        `json:"person"`
	Date   string        `json:"date"`
	Week   int           `json:"week"`
	Phase  int           `json:"phase"`
	Split  string        `json:"split"`
	Day    int           `json:"day"`
	Rows   []session.Row `json:"rows"`
}

func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	if req.Person != "" && !s.knownPerson(req.Person) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown person %q", req.Person)})
		return
	}
	if s.keySpec.Needs(session.FieldPerson) && req.Person == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "person is required"})
		return
	}
	if !models.ValidSplit(req.Split) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "split must be one of Push, Pull, Legs"})
		return
	}
	if req.Day != 1 && req.Day != 2 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "day must be 1 or 2"})
		return
	}

	if req.Phase == 0 {
		if req.Week == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "either phase or week is required"})
			return
		}
		phase, err := plan.PhaseForWeek(req.Week)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		req.Phase = phase
	}
	if s.keySpec.Needs(session.FieldDate) && req.Date == "" {
		req.Date = time.Now().UTC().Format("2006-01-02")
	}

	entries, err := s.store.LoadPlan(r.Context())
	if err != nil {
		s.log.Error("loading plan", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	_, maxSets, err := plan.Select(entries, req.Phase, req.Split, req.Day)
	if err != nil {
		s.writePlanError(w, err)
		return
	}

	key := session.Key{
		Person: req.Person,
		Date:   req.Date,
		Week:   req.Week,
		Phase:  req.Phase,
		Split:  req.Split,
		Day:    req.Day,
	}
	records := session.Pack(req.Rows, maxSets, key)
	if len(records) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no rows with an exercise to save"})
		return
	}

	// Read-modify-write against the full log. No isolation: a concurrent
	// save for the same person can be lost to the later writer.
	history, err := s.store.LoadHistory(r.Context(), req.Person)
	if err != nil {
		s.log.Error("loading history", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	merged := session.Merge(history, records, s.keySpec)
	if err := s.store.ReplaceHistory(r.Context(), req.Person, merged); err != nil {
		s.log.Error("replacing history", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.cache.invalidate(req.Person)

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": records[0].SessionID,
		"saved":      len(records),
		"log_size":   len(merged),
	})
}

// replaceHistoryRequest is the body of PUT /api/v1/history: a pre-merged log
// slice to store verbatim. An empty person replaces the whole log.
type replaceHistoryRequest struct {
	Person  string          `json:"person"`
	Records []models.Record `json:"records"`
}

func (s *Server) handleReplaceHistory(w http.ResponseWriter, r *http.Request) {
	var req replaceHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Person != "" && !s.knownPerson(req.Person) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown person %q", req.Person)})
		return
	}

	if err := s.store.ReplaceHistory(r.Context(), req.Person, req.Records); err != nil {
		s.log.Error("replacing history", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.cache.invalidate(req.Person)

	writeJSON(w, http.StatusOK, map[string]any{"stored": len(req.Records)})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	person := r.URL.Query().Get("person")
	records, err := s.loadHistoryCached(r, person)
	if err != nil {
		s.log.Error("loading history", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if records == nil {
		records = []models.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetLatestSession(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	person := r.URL.Query().Get("person")

	records, err := s.loadHistoryCached(r, person)
	if err != nil {
		s.log.Error("loading history", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	latest := session.LatestSession(records, sel.Phase, sel.Split, sel.Day)
	if latest == nil {
		latest = []models.Record{}
	}
	writeJSON(w, http.StatusOK, latest)
}

// loadHistoryCached serves history reads through the per-person cache;
// refresh=1 forces a refetch.
func (s *Server) loadHistoryCached(r *http.Request, person string) ([]models.Record, error) {
	if r.URL.Query().Get("refresh") == "" {
		if records, ok := s.cache.get(person); ok {
			return records, nil
		}
	}
	records, err := s.store.LoadHistory(r.Context(), person)
	if err != nil {
		return nil, err
	}
	s.cache.put(person, records)
	return records, nil
}

// storeError marks a failure of the storage collaborator, as opposed to a
// bad request.
type storeError struct{ err error }

func (e storeError) Error() string { return e.err.Error() }
func (e storeError) Unwrap() error { return e.err }

// writePlanError maps ErrPlanNotFound to 404, storage failures to 500 and
// selection errors to 400.
func (s *Server) writePlanError(w http.ResponseWriter, err error) {
	var se storeError
	switch {
	case errors.Is(err, plan.ErrPlanNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &se):
		s.log.Error("storage failure", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

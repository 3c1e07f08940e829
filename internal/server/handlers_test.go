package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
)

// fakeStore is an in-memory Store for handler tests.
type fakeStore struct {
	plan     []models.PlanEntry
	history  map[string][]models.Record
	planErr  error
	loads    int
	replaces int
}

func (f *fakeStore) LoadPlan(context.Context) ([]models.PlanEntry, error) {
	return f.plan, f.planErr
}

func (f *fakeStore) LoadHistory(_ context.Context, person string) ([]models.Record, error) {
	f.loads++
	return f.history[person], nil
}

func (f *fakeStore) ReplaceHistory(_ context.Context, person string, records []models.Record) error {
	f.replaces++
	if f.history == nil {
		f.history = make(map[string][]models.Record)
	}
	f.history[person] = records
	return nil
}

const testAPIKey = "test-key"

func newTestServer(store Store) *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, session.KeyPersonWeekSplitDay, []string{"Tomas", "Sebko"}, testAPIKey, log)
}

func testStore() *fakeStore {
	return &fakeStore{
		plan: []models.PlanEntry{
			{Phase: 1, Split: "Push", Day: 1, Exercise: "Bench Press", Sets: 4, Reps: "6-8", Alternative1: "DB Bench Press"},
			{Phase: 1, Split: "Push", Day: 1, Exercise: "Overhead Press", Sets: 3, Reps: "8-10"},
		},
		history: make(map[string][]models.Record),
	}
}

func doRequest(t *testing.T, s *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if method == http.MethodPost || method == http.MethodPut {
		req.Header.Set("X-API-Key", testAPIKey)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestGetPlan(t *testing.T) {
	s := newTestServer(testStore())
	rec := doRequest(t, s, http.MethodGet, "/api/v1/plan?phase=1&split=Push&day=1", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		Entries []models.PlanEntry `json:"entries"`
		MaxSets int                `json:"max_sets"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Entries) != 2 || resp.MaxSets != 4 {
		t.Errorf("entries = %d, max_sets = %d; want 2, 4", len(resp.Entries), resp.MaxSets)
	}
}

func TestGetPlanByWeek(t *testing.T) {
	s := newTestServer(testStore())
	rec := doRequest(t, s, http.MethodGet, "/api/v1/plan?week=5&split=Push&day=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("week 5 should map to phase 1, got %d: %s", rec.Code, rec.Body)
	}
}

func TestGetPlanNotFound(t *testing.T) {
	s := newTestServer(testStore())
	rec := doRequest(t, s, http.MethodGet, "/api/v1/plan?phase=3&split=Legs&day=2", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetPlanWeekOutOfRange(t *testing.T) {
	s := newTestServer(testStore())
	rec := doRequest(t, s, http.MethodGet, "/api/v1/plan?week=15&split=Push&day=1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for week outside the program", rec.Code)
	}
}

func TestGetExercises(t *testing.T) {
	s := newTestServer(testStore())
	rec := doRequest(t, s, http.MethodGet, "/api/v1/plan/exercises?phase=1&split=Push&day=1", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var names []string
	if err := json.NewDecoder(rec.Body).Decode(&names); err != nil {
		t.Fatal(err)
	}
	want := []string{"Bench Press", "DB Bench Press", "Overhead Press"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestGetGrid(t *testing.T) {
	s := newTestServer(testStore())
	rec := doRequest(t, s, http.MethodGet, "/api/v1/session/grid?phase=1&split=Push&day=1", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var grid session.Grid
	if err := json.NewDecoder(rec.Body).Decode(&grid); err != nil {
		t.Fatal(err)
	}
	if grid.MaxSets != 4 || len(grid.Rows) != 2 || len(grid.Columns) != 9 {
		t.Errorf("grid shape: max_sets=%d rows=%d cols=%d, want 4/2/9", grid.MaxSets, len(grid.Rows), len(grid.Columns))
	}
	if grid.Rows[0]["exercise"] != "Bench Press" {
		t.Errorf("row 0 exercise = %v, want seeded name", grid.Rows[0]["exercise"])
	}
}

func TestGetFullPlan(t *testing.T) {
	s := newTestServer(testStore())
	rec := doRequest(t, s, http.MethodGet, "/api/v1/plan/full", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var entries []models.PlanEntry
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("entries = %d, want the whole plan", len(entries))
	}
}

func TestReplaceHistory(t *testing.T) {
	store := testStore()
	s := newTestServer(store)

	// Warm the cache so the replace has something to invalidate.
	doRequest(t, s, http.MethodGet, "/api/v1/history?person=Tomas", nil)

	body := map[string]any{
		"person": "Tomas",
		"records": []models.Record{
			{Person: "Tomas", Week: 3, Phase: 1, Split: "Push", Day: 1, Exercise: "Bench Press",
				Weights: []models.Value{models.IntValue(100)},
				Reps:    []models.Value{models.IntValue(8)}},
		},
	}
	rec := doRequest(t, s, http.MethodPut, "/api/v1/history", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if len(store.history["Tomas"]) != 1 {
		t.Errorf("stored = %d rows, want 1", len(store.history["Tomas"]))
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/history?person=Tomas", nil)
	var records []models.Record
	if err := json.NewDecoder(rec.Body).Decode(&records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("history after replace = %d rows, want 1 (stale cache served?)", len(records))
	}
}

func TestReplaceHistoryUnknownPerson(t *testing.T) {
	s := newTestServer(testStore())
	body := map[string]any{"person": "Mallory", "records": []models.Record{}}
	rec := doRequest(t, s, http.MethodPut, "/api/v1/history", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for unknown person", rec.Code)
	}
}

func TestSaveSessionRequiresAPIKey(t *testing.T) {
	s := newTestServer(testStore())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session", bytes.NewReader([]byte("{}")))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without API key", rec.Code)
	}
}

func saveBody(week int, rows []session.Row) map[string]any {
	return map[string]any{
		"person": "Tomas",
		"week":   week,
		"split":  "Push",
		"day":    1,
		"rows":   rows,
	}
}

func TestSaveSession(t *testing.T) {
	store := testStore()
	s := newTestServer(store)

	rows := []session.Row{
		{"exercise": "Bench Press", "weight_1": "100", "reps_1": "8"},
		{"exercise": nil},
	}
	rec := doRequest(t, s, http.MethodPost, "/api/v1/session", saveBody(3, rows))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		Saved   int `json:"saved"`
		LogSize int `json:"log_size"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Saved != 1 || resp.LogSize != 1 {
		t.Errorf("saved=%d log_size=%d, want 1/1", resp.Saved, resp.LogSize)
	}

	saved := store.history["Tomas"]
	if len(saved) != 1 {
		t.Fatalf("persisted rows = %d, want 1", len(saved))
	}
	r := saved[0]
	if r.Exercise != "Bench Press" || r.Week != 3 || r.Phase != 1 {
		t.Errorf("persisted record = %+v", r)
	}
	if len(r.Weights) != 4 {
		t.Fatalf("weights length = %d, want the set ceiling 4", len(r.Weights))
	}
	if r.Weights[0] != models.IntValue(100) || !r.Weights[3].IsEmpty() {
		t.Errorf("weights = %+v", r.Weights)
	}
}

func TestSaveSessionUpserts(t *testing.T) {
	store := testStore()
	s := newTestServer(store)

	first := []session.Row{{"exercise": "Bench Press", "weight_1": "100"}}
	if rec := doRequest(t, s, http.MethodPost, "/api/v1/session", saveBody(3, first)); rec.Code != http.StatusOK {
		t.Fatalf("first save: %d %s", rec.Code, rec.Body)
	}

	second := []session.Row{{"exercise": "Bench Press", "weight_1": "105", "weight_2": "110"}}
	if rec := doRequest(t, s, http.MethodPost, "/api/v1/session", saveBody(3, second)); rec.Code != http.StatusOK {
		t.Fatalf("second save: %d %s", rec.Code, rec.Body)
	}

	saved := store.history["Tomas"]
	if len(saved) != 1 {
		t.Fatalf("log = %d rows, want 1: re-save must supersede, not append", len(saved))
	}
	if saved[0].Weights[0] != models.IntValue(105) || saved[0].Weights[1] != models.IntValue(110) {
		t.Errorf("weights = %+v, want the re-saved values", saved[0].Weights)
	}
}

func TestSaveSessionUnknownPerson(t *testing.T) {
	s := newTestServer(testStore())
	body := saveBody(3, []session.Row{{"exercise": "Bench Press"}})
	body["person"] = "Mallory"
	rec := doRequest(t, s, http.MethodPost, "/api/v1/session", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for unknown person", rec.Code)
	}
}

func TestSaveSessionWeekOutOfRange(t *testing.T) {
	s := newTestServer(testStore())
	rec := doRequest(t, s, http.MethodPost, "/api/v1/session", saveBody(15, []session.Row{{"exercise": "Bench Press"}}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for week 15", rec.Code)
	}
}

func TestGetHistoryUsesCache(t *testing.T) {
	store := testStore()
	s := newTestServer(store)

	for i := 0; i < 3; i++ {
		if rec := doRequest(t, s, http.MethodGet, "/api/v1/history?person=Tomas", nil); rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	}
	if store.loads != 1 {
		t.Errorf("store loads = %d, want 1 (cached reads)", store.loads)
	}

	// refresh busts the cache.
	if rec := doRequest(t, s, http.MethodGet, "/api/v1/history?person=Tomas&refresh=1", nil); rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d", rec.Code)
	}
	if store.loads != 2 {
		t.Errorf("store loads = %d after refresh, want 2", store.loads)
	}
}

func TestSaveInvalidatesHistoryCache(t *testing.T) {
	store := testStore()
	s := newTestServer(store)

	doRequest(t, s, http.MethodGet, "/api/v1/history?person=Tomas", nil)
	doRequest(t, s, http.MethodPost, "/api/v1/session", saveBody(3, []session.Row{{"exercise": "Bench Press"}}))

	rec := doRequest(t, s, http.MethodGet, "/api/v1/history?person=Tomas", nil)
	var records []models.Record
	if err := json.NewDecoder(rec.Body).Decode(&records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("history after save = %d rows, want 1 (stale cache served?)", len(records))
	}
}

func TestGetLatestSession(t *testing.T) {
	store := testStore()
	s := newTestServer(store)

	doRequest(t, s, http.MethodPost, "/api/v1/session", saveBody(3, []session.Row{{"exercise": "Bench Press", "weight_1": "100"}}))
	doRequest(t, s, http.MethodPost, "/api/v1/session", saveBody(5, []session.Row{{"exercise": "Bench Press", "weight_1": "105"}}))

	rec := doRequest(t, s, http.MethodGet, "/api/v1/history/latest?person=Tomas&phase=1&split=Push&day=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var records []models.Record
	if err := json.NewDecoder(rec.Body).Decode(&records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("latest = %d rows, want 1", len(records))
	}
	if records[0].Week != 5 || records[0].Weights[0] != models.IntValue(105) {
		t.Errorf("latest = %+v, want the week 5 session", records[0])
	}
}

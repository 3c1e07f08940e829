package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/claude/liftlog/internal/models"
)

func TestHTTPClientLoadPlan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/plan/full" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]models.PlanEntry{
			{Phase: 1, Split: "Push", Day: 1, Exercise: "Bench Press", Sets: 3},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "k")
	entries, err := c.LoadPlan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Exercise != "Bench Press" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestHTTPClientLoadHistoryBypassesCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("refresh") != "1" {
			t.Error("expected refresh=1")
		}
		if q.Get("person") != "Tomas" {
			t.Errorf("person = %q", q.Get("person"))
		}
		json.NewEncoder(w).Encode([]models.Record{{Person: "Tomas", Exercise: "Bench Press"}})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "k")
	records, err := c.LoadHistory(context.Background(), "Tomas")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %+v", records)
	}
}

func TestHTTPClientReplaceHistory(t *testing.T) {
	var gotKey string
	var gotBody replaceBody

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s", r.Method)
		}
		gotKey = r.Header.Get("X-API-Key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Error(err)
		}
		json.NewEncoder(w).Encode(map[string]int{"stored": len(gotBody.Records)})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "secret")
	err := c.ReplaceHistory(context.Background(), "Tomas", []models.Record{
		{Person: "Tomas", Exercise: "Bench Press"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if gotKey != "secret" {
		t.Errorf("api key = %q", gotKey)
	}
	if gotBody.Person != "Tomas" || len(gotBody.Records) != 1 {
		t.Errorf("body = %+v", gotBody)
	}
}

type replaceBody struct {
	Person  string          `json:"person"`
	Records []models.Record `json:"records"`
}

func TestHTTPClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "k")
	if _, err := c.LoadPlan(context.Background()); err == nil {
		t.Fatal("expected an error for a 500 response")
	}
}

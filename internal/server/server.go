package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/liftlog/internal/session"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store   Store
	keySpec session.KeySpec
	people  []string
	log     *slog.Logger
	apiKey  string
	cache   *historyCache
	router  chi.Router
}

// New creates a new Server with all routes configured.
func New(store Store, keySpec session.KeySpec, people []string, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:   store,
		keySpec: keySpec,
		people:  people,
		log:     log,
		apiKey:  apiKey,
		cache:   newHistoryCache(),
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Read-only session views
		r.Get("/plan", s.handleGetPlan)
		r.Get("/plan/full", s.handleGetFullPlan)
		r.Get("/plan/exercises", s.handleGetExercises)
		r.Get("/session/grid", s.handleGetGrid)
		r.Get("/history", s.handleGetHistory)
		r.Get("/history/latest", s.handleGetLatestSession)

		// Write paths (API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/session", s.handleSaveSession)
			r.Put("/history", s.handleReplaceHistory)
		})
	})
}

func (s *Server) knownPerson(name string) bool {
	for _, p := range s.people {
		if p == name {
			return true
		}
	}
	return false
}

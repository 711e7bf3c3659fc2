package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/docrank/internal/config"
	"github.com/dgallion1/docrank/internal/embed"
	"github.com/dgallion1/docrank/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for docrank.
type Server struct {
	router   chi.Router
	pipeline *pipeline.Pipeline
	runs     *pipeline.RunStore
	stats    *embed.Stats
	model    string
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server. stats may be nil.
func NewServer(p *pipeline.Pipeline, runs *pipeline.RunStore, stats *embed.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		pipeline: p,
		runs:     runs,
		stats:    stats,
		model:    cfg.Embedding.Provider + ":" + cfg.Embedding.Model,
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/outline", s.handleOutline)
		r.Post("/api/rank", s.handleRank)
		r.Get("/api/runs/{runID}", s.handleRunStatus)
		r.Get("/api/stats/embed", s.handleEmbedStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

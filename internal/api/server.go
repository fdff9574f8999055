package api

import (
	"log/slog"
	"net/http"

	"docorganizer/internal/classify"
	"docorganizer/internal/config"
	"docorganizer/internal/pipeline"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// StatsGateway is a classification gateway that also exposes call metrics.
// Both backends satisfy it.
type StatsGateway interface {
	classify.Gateway
	Model() string
	Stats() classify.StatsSnapshot
}

// Server is the HTTP API server for docorganizer.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	gateway      StatsGateway
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, gw StatsGateway, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		gateway:      gw,
		log:          log,
		cfg:          cfg,
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

		r.Post("/api/organize", s.handleOrganize)
		r.Get("/api/organize/{jobID}/status", s.handleOrganizeStatus)
		r.Get("/api/documents", s.handleListDocuments)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

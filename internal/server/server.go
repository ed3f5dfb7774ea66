// Package server provides the HTTP API for Kotae.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/corpus"
	"github.com/hyperjump/kotae/internal/dataset"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/runstore"
)

// EvalOverrides are per-request evaluation knobs. Zero values mean "use the
// configured setting".
type EvalOverrides struct {
	Name         string `json:"name,omitempty"`
	TopK         int    `json:"top_k,omitempty"`
	Concurrency  int    `json:"concurrency,omitempty"`
	MaxQuestions int    `json:"max_questions,omitempty"`
}

// Pipeline runs one evaluation over the currently loaded gold dataset. The
// request context is the run context: a client disconnect cancels the run
// and yields a partial report.
type Pipeline interface {
	Evaluate(ctx context.Context, overrides EvalOverrides) (*models.MetricsReport, error)
}

// IndexCounter reports how many documents the search backend holds.
type IndexCounter interface {
	DocCount() (uint64, error)
}

// Server is the HTTP server for the Kotae API.
type Server struct {
	pipeline Pipeline
	corpus   *corpus.Store
	gold     *dataset.GoldStore
	index    IndexCounter
	runs     *runstore.Store
	config   *config.Config
	// configYAML is the resolved config snapshot persisted with each run.
	configYAML string
	logger     *zap.Logger
	server     *http.Server
}

// NewServer creates a server with the given dependencies. index and runs may
// be nil; the endpoints that need them degrade instead of failing.
func NewServer(
	pipeline Pipeline,
	corpusStore *corpus.Store,
	gold *dataset.GoldStore,
	index IndexCounter,
	runs *runstore.Store,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	snapshot, err := yaml.Marshal(cfg)
	if err != nil {
		logger.Warn("failed to snapshot config", zap.Error(err))
	}
	return &Server{
		pipeline:   pipeline,
		corpus:     corpusStore,
		gold:       gold,
		index:      index,
		runs:       runs,
		config:     cfg,
		configYAML: string(snapshot),
		logger:     logger,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Evaluation runs as long as the run takes; only the read side gets a
	// request timeout.
	r.Post("/api/v1/evaluate", s.handleEvaluate)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Get("/api/v1/runs", s.handleListRuns)
		r.Get("/api/v1/runs/{id}", s.handleGetRun)
		r.Get("/api/v1/status", s.handleStatus)
		r.Get("/health", s.handleHealth)
	})

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

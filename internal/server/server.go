// Package server exposes the grading engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/warroom/scoring-service/internal/config"
	"github.com/warroom/scoring-service/internal/engine"
	"github.com/warroom/scoring-service/internal/evidence"
	"github.com/warroom/scoring-service/internal/reference"
	"github.com/warroom/scoring-service/internal/store"
	"github.com/warroom/scoring-service/internal/template"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Server wires the engine, store, and evidence subsystem behind a chi router.
type Server struct {
	engine    *engine.Engine
	store     store.Store
	registry  *template.Registry
	dataset   reference.Dataset
	cfg       *config.Config
	extractor *evidence.Extractor
	cache     *evidence.Cache
	validator *evidence.Validator
	startedAt time.Time

	httpServer *http.Server
}

// New assembles a Server from its collaborators.
func New(cfg *config.Config, eng *engine.Engine, st store.Store, reg *template.Registry, dataset reference.Dataset) *Server {
	s := &Server{
		engine:    eng,
		store:     st,
		registry:  reg,
		dataset:   dataset,
		cfg:       cfg,
		extractor: evidence.NewExtractor(cfg.Evidence),
		cache:     evidence.NewCache(time.Duration(cfg.Evidence.CacheTTLSecs) * time.Second),
		validator: evidence.NewValidator(cfg.Evidence.TrustedDomains),
		startedAt: time.Now(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Admin-Key"},
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/grade_submission", s.handleGradeSubmission)
	r.Get("/battle_templates", s.handleBattleTemplates)
	r.Get("/reference_data", s.handleReferenceData)
	r.Get("/scoring_config", s.handleScoringConfig)
	r.Post("/admin/override_score", s.handleOverrideScore)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("server shutdown", zap.Error(err))
		}
	}()

	zap.L().Info("starting server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}

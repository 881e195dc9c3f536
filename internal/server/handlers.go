package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warroom/scoring-service/internal/engine"
	"github.com/warroom/scoring-service/internal/model"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"version":        Version,
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
	})
}

func (s *Server) handleGradeSubmission(w http.ResponseWriter, r *http.Request) {
	var sub model.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !sub.Team.Valid() {
		writeError(w, http.StatusBadRequest, "team must be Alpha or Delta")
		return
	}
	if sub.SubmissionID == "" {
		sub.SubmissionID = uuid.New().String()
	}

	result, err := s.engine.Grade(&sub)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidTemplate) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		correlationID := uuid.New().String()
		zap.L().Error("grading failed",
			zap.String("correlation_id", correlationID),
			zap.String("submission_id", sub.SubmissionID),
			zap.String("team", string(sub.Team)),
			zap.Int("battle_no", sub.BattleNo),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "grading failed: "+correlationID)
		return
	}

	if s.store != nil {
		if _, err := s.store.SaveGrade(r.Context(), result); err != nil {
			zap.L().Error("persist grade failed",
				zap.String("submission_id", sub.SubmissionID),
				zap.Error(err),
			)
		}
	}

	if sub.SourceLink != "" {
		go s.collectEvidence(&sub)
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleBattleTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"templates": s.registry.All()})
}

func (s *Server) handleReferenceData(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dataset)
}

func (s *Server) handleScoringConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Scoring)
}

type overrideRequest struct {
	SubmissionID string  `json:"submission_id"`
	NewScore     float64 `json:"new_score"`
	Reason       string  `json:"reason"`
}

func (s *Server) handleOverrideScore(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Admin.Key == "" || r.Header.Get("X-Admin-Key") != s.cfg.Admin.Key {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SubmissionID == "" {
		writeError(w, http.StatusBadRequest, "submission_id is required")
		return
	}
	if req.Reason == "" {
		writeError(w, http.StatusBadRequest, "reason is required")
		return
	}

	override, err := s.store.SaveOverride(r.Context(), req.SubmissionID, req.NewScore, req.Reason)
	if err != nil {
		zap.L().Error("persist override failed",
			zap.String("submission_id", req.SubmissionID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to save override")
		return
	}

	zap.L().Info("score overridden",
		zap.String("submission_id", req.SubmissionID),
		zap.Float64("new_score", req.NewScore),
		zap.String("reason", req.Reason),
	)
	writeJSON(w, http.StatusOK, override)
}

// collectEvidence harvests snippets for a submission's cited source in the
// background. Results are cached and logged; failures never surface to the
// client.
func (s *Server) collectEvidence(sub *model.Submission) {
	timeout := time.Duration(s.cfg.Evidence.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var terms []string
	for name := range sub.Fields {
		if v := sub.FieldText(name); v != "" {
			terms = append(terms, v)
		}
	}
	if len(terms) == 0 {
		return
	}

	snippets, cached := s.cache.Get(sub.SourceLink, terms)
	if !cached {
		snippets = s.extractor.Extract(ctx, sub.SourceLink, terms)
		s.cache.Put(sub.SourceLink, terms, snippets)
	}

	zap.L().Info("evidence collected",
		zap.String("submission_id", sub.SubmissionID),
		zap.String("source", sub.SourceLink),
		zap.Int("snippets", len(snippets)),
		zap.Bool("cached", cached),
		zap.Bool("trusted_source", s.validator.Trusted(sub.SourceLink)),
		zap.Float64("quality", s.validator.Quality(sub.SourceLink, snippets)),
	)
}

// helpers

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

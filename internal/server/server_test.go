package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warroom/scoring-service/internal/config"
	"github.com/warroom/scoring-service/internal/engine"
	"github.com/warroom/scoring-service/internal/model"
	"github.com/warroom/scoring-service/internal/reference"
	"github.com/warroom/scoring-service/internal/store"
	"github.com/warroom/scoring-service/internal/template"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		Server:  config.ServerConfig{Port: 0},
		Scoring: config.DefaultScoring(),
		Admin:   config.AdminConfig{Key: "test-admin-key"},
		Evidence: config.EvidenceConfig{
			TimeoutSecs:        1,
			CacheTTLSecs:       60,
			MaxSnippetsPerTerm: 3,
			RequestsPerSecond:  100,
			MaxConcurrent:      2,
		},
	}

	reg, err := template.NewRegistry(engine.ThresholdsFrom(cfg.Scoring))
	require.NoError(t, err)

	dataset := reference.Dataset{
		"leadership_and_ownership": map[string]any{
			"founders": map[string]any{"company": "Ezz Steel Company S.A.E."},
			"key_executives": []any{
				map[string]any{"name": "Hassan Ahmed Nouh", "title": "CEO"},
			},
		},
		"market": map[string]any{
			"competitive_position": map[string]any{
				"market_share": map[string]any{"overall": "50-60%"},
			},
			"geographic_footprint": []any{"Egypt"},
		},
	}

	st, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	eng := engine.New(reg, reference.NewResolver(dataset), cfg.Scoring)
	return New(cfg, eng, st, reg, dataset)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "version")
	assert.Contains(t, body, "uptime_seconds")
}

func TestGradeSubmission(t *testing.T) {
	s := testServer(t)

	sub := map[string]any{
		"team":               "Alpha",
		"battle_no":          1,
		"submission_id":      "sub-http-1",
		"time_taken_seconds": 300,
		"total_time_seconds": 3600,
		"source_link":        "https://www.linkedin.com/company/ezzsteel",
		"fields": map[string]any{
			"founders":       "Ezz Steel Company S.A.E.",
			"key_executives": "Hassan Ahmed Nouh",
			"market_share":   "60%",
		},
	}

	rec := doJSON(t, s.Handler(), http.MethodPost, "/grade_submission", sub, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result model.GradeResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "sub-http-1", result.SubmissionID)
	assert.Equal(t, model.TeamAlpha, result.Team)
	assert.Greater(t, result.RawAIPercent, 0.0)
	assert.NotEmpty(t, result.ExplainText)

	// Grade was persisted.
	grade, err := s.store.GetGrade(context.Background(), "sub-http-1")
	require.NoError(t, err)
	assert.Equal(t, 1, grade.Result.BattleNo)
}

func TestGradeSubmissionAssignsID(t *testing.T) {
	s := testServer(t)

	sub := map[string]any{
		"team":               "Delta",
		"battle_no":          1,
		"time_taken_seconds": 300,
		"total_time_seconds": 3600,
		"fields":             map[string]any{},
	}

	rec := doJSON(t, s.Handler(), http.MethodPost, "/grade_submission", sub, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result model.GradeResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.SubmissionID)
}

func TestGradeSubmissionRejects(t *testing.T) {
	s := testServer(t)

	tests := []struct {
		name    string
		body    any
		raw     string
		wantMsg string
	}{
		{
			name:    "invalid json",
			raw:     "{not json",
			wantMsg: "invalid request body",
		},
		{
			name:    "bad team",
			body:    map[string]any{"team": "Omega", "battle_no": 1},
			wantMsg: "team must be Alpha or Delta",
		},
		{
			name:    "unknown battle",
			body:    map[string]any{"team": "Alpha", "battle_no": 42},
			wantMsg: "unknown battle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec *httptest.ResponseRecorder
			if tt.raw != "" {
				req := httptest.NewRequest(http.MethodPost, "/grade_submission", bytes.NewBufferString(tt.raw))
				rec = httptest.NewRecorder()
				s.Handler().ServeHTTP(rec, req)
			} else {
				rec = doJSON(t, s.Handler(), http.MethodPost, "/grade_submission", tt.body, nil)
			}
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantMsg)
		})
	}
}

func TestBattleTemplates(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/battle_templates", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Templates []struct {
			BattleNumber int    `json:"battle_number"`
			Name         string `json:"name"`
		} `json:"templates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Templates, 5)
	assert.Equal(t, "Leadership Recon", body.Templates[0].Name)
}

func TestReferenceData(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/reference_data", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ezz Steel Company S.A.E.")
}

func TestScoringConfig(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/scoring_config", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body config.ScoringConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(t, 0.90, body.NameSimilarityThreshold, 0.001)
	assert.Len(t, body.SpeedTiers, 6)
}

func TestOverrideScore(t *testing.T) {
	s := testServer(t)
	adminHeaders := map[string]string{"X-Admin-Key": "test-admin-key"}

	t.Run("unauthorized without key", func(t *testing.T) {
		rec := doJSON(t, s.Handler(), http.MethodPost, "/admin/override_score",
			map[string]any{"submission_id": "sub-1", "new_score": 15.0, "reason": "r"}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unauthorized with wrong key", func(t *testing.T) {
		rec := doJSON(t, s.Handler(), http.MethodPost, "/admin/override_score",
			map[string]any{"submission_id": "sub-1", "new_score": 15.0, "reason": "r"},
			map[string]string{"X-Admin-Key": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing submission id", func(t *testing.T) {
		rec := doJSON(t, s.Handler(), http.MethodPost, "/admin/override_score",
			map[string]any{"new_score": 15.0, "reason": "r"}, adminHeaders)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing reason", func(t *testing.T) {
		rec := doJSON(t, s.Handler(), http.MethodPost, "/admin/override_score",
			map[string]any{"submission_id": "sub-1", "new_score": 15.0}, adminHeaders)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("accepted", func(t *testing.T) {
		rec := doJSON(t, s.Handler(), http.MethodPost, "/admin/override_score",
			map[string]any{"submission_id": "sub-1", "new_score": 15.0, "reason": "judge decision"},
			adminHeaders)
		require.Equal(t, http.StatusOK, rec.Code)

		var o model.Override
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
		assert.Equal(t, "sub-1", o.SubmissionID)

		overrides, err := s.store.ListOverrides(context.Background(), "sub-1")
		require.NoError(t, err)
		assert.Len(t, overrides, 1)
	})
}

func TestOverrideDisabledWithoutConfiguredKey(t *testing.T) {
	s := testServer(t)
	s.cfg.Admin.Key = ""

	rec := doJSON(t, s.Handler(), http.MethodPost, "/admin/override_score",
		map[string]any{"submission_id": "sub-1", "new_score": 15.0, "reason": "r"},
		map[string]string{"X-Admin-Key": ""})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warroom/scoring-service/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleResult(submissionID string, team model.Team, battleNo int) *model.GradeResult {
	return &model.GradeResult{
		SubmissionID:        submissionID,
		Team:                team,
		BattleNo:            battleNo,
		RawAIPercent:        72.5,
		ScaledBattlePercent: 85.3,
		BattlePointsOutOf20: 17.06,
		Breakdown: model.Breakdown{
			DataAccuracyRaw:   52.0,
			SpeedRaw:          8.0,
			SourceRaw:         12.5,
			SourceCredibility: 0.83,
			SourceVerified:    true,
		},
		Confidence:  0.88,
		ExplainText: "Strong data accuracy (52.0/60 points). Fast submission (8.0/10 points). High-quality sources (12.5/15 points). High confidence in scoring accuracy.",
	}
}

func TestSQLiteSaveAndGetGrade(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	saved, err := s.SaveGrade(ctx, sampleResult("sub-001", model.TeamAlpha, 1))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	got, err := s.GetGrade(ctx, "sub-001")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, model.TeamAlpha, got.Result.Team)
	assert.InDelta(t, 72.5, got.Result.RawAIPercent, 0.001)
	assert.True(t, got.Result.Breakdown.SourceVerified)
}

func TestSQLiteGetGradeNotFound(t *testing.T) {
	s := newTestSQLiteStore(t)

	_, err := s.GetGrade(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteGetGradeReturnsLatest(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	first := sampleResult("sub-002", model.TeamDelta, 2)
	first.RawAIPercent = 40
	_, err := s.SaveGrade(ctx, first)
	require.NoError(t, err)

	second := sampleResult("sub-002", model.TeamDelta, 2)
	second.RawAIPercent = 60
	regraded, err := s.SaveGrade(ctx, second)
	require.NoError(t, err)

	got, err := s.GetGrade(ctx, "sub-002")
	require.NoError(t, err)
	assert.Equal(t, regraded.ID, got.ID)
	assert.InDelta(t, 60.0, got.Result.RawAIPercent, 0.001)
}

func TestSQLiteListGrades(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, g := range []struct {
		id     string
		team   model.Team
		battle int
	}{
		{"sub-a1", model.TeamAlpha, 1},
		{"sub-a2", model.TeamAlpha, 2},
		{"sub-d1", model.TeamDelta, 1},
	} {
		_, err := s.SaveGrade(ctx, sampleResult(g.id, g.team, g.battle))
		require.NoError(t, err)
	}

	all, err := s.ListGrades(ctx, GradeFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	alpha, err := s.ListGrades(ctx, GradeFilter{Team: model.TeamAlpha})
	require.NoError(t, err)
	assert.Len(t, alpha, 2)

	battle1, err := s.ListGrades(ctx, GradeFilter{BattleNo: 1})
	require.NoError(t, err)
	assert.Len(t, battle1, 2)

	limited, err := s.ListGrades(ctx, GradeFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteOverrides(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	o, err := s.SaveOverride(ctx, "sub-003", 14.5, "judge ruled the source credible")
	require.NoError(t, err)
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, "sub-003", o.SubmissionID)

	list, err := s.ListOverrides(ctx, "sub-003")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.InDelta(t, 14.5, list[0].NewScore, 0.001)
	assert.Equal(t, "judge ruled the source credible", list[0].Reason)

	empty, err := s.ListOverrides(ctx, "sub-never")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/warroom/scoring-service/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = eris.New("store: not found")

// GradeFilter specifies criteria for listing grades.
type GradeFilter struct {
	Team     model.Team `json:"team,omitempty"`
	BattleNo int        `json:"battle_no,omitempty"`
	Limit    int        `json:"limit,omitempty"`
	Offset   int        `json:"offset,omitempty"`
}

// Store defines the persistence interface for grades and score overrides.
type Store interface {
	// Grades
	SaveGrade(ctx context.Context, result *model.GradeResult) (*model.Grade, error)
	GetGrade(ctx context.Context, submissionID string) (*model.Grade, error)
	ListGrades(ctx context.Context, filter GradeFilter) ([]model.Grade, error)

	// Overrides
	SaveOverride(ctx context.Context, submissionID string, newScore float64, reason string) (*model.Override, error)
	ListOverrides(ctx context.Context, submissionID string) ([]model.Override, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

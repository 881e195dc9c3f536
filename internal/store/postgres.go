package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/warroom/scoring-service/internal/model"
)

// Pool is the subset of pgxpool.Pool used by the store. pgxmock satisfies
// it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS grades (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	submission_id TEXT NOT NULL,
	team          TEXT NOT NULL,
	battle_no     INTEGER NOT NULL,
	result        JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS score_overrides (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	submission_id TEXT NOT NULL,
	new_score     DOUBLE PRECISION NOT NULL,
	reason        TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_grades_submission_id ON grades(submission_id);
CREATE INDEX IF NOT EXISTS idx_grades_team ON grades(team);
CREATE INDEX IF NOT EXISTS idx_grades_battle_no ON grades(battle_no);
CREATE INDEX IF NOT EXISTS idx_score_overrides_submission_id ON score_overrides(submission_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveGrade(ctx context.Context, result *model.GradeResult) (*model.Grade, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal grade result")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO grades (id, submission_id, team, battle_no, result, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, result.SubmissionID, string(result.Team), result.BattleNo, resultJSON, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert grade %s", result.SubmissionID)
	}

	return &model.Grade{ID: id, Result: *result, CreatedAt: now}, nil
}

func (s *PostgresStore) GetGrade(ctx context.Context, submissionID string) (*model.Grade, error) {
	var g model.Grade
	var resultJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, result, created_at FROM grades
		 WHERE submission_id = $1 ORDER BY created_at DESC LIMIT 1`,
		submissionID,
	).Scan(&g.ID, &resultJSON, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "postgres: get grade %s", submissionID)
	}
	if err := json.Unmarshal(resultJSON, &g.Result); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal grade result")
	}
	return &g, nil
}

func (s *PostgresStore) ListGrades(ctx context.Context, filter GradeFilter) ([]model.Grade, error) {
	query := `SELECT id, result, created_at FROM grades WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Team != "" {
		query += fmt.Sprintf(` AND team = $%d`, argIdx)
		args = append(args, string(filter.Team))
		argIdx++
	}
	if filter.BattleNo > 0 {
		query += fmt.Sprintf(` AND battle_no = $%d`, argIdx)
		args = append(args, filter.BattleNo)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list grades")
	}
	defer rows.Close()

	var grades []model.Grade
	for rows.Next() {
		var g model.Grade
		var resultJSON []byte
		if err := rows.Scan(&g.ID, &resultJSON, &g.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan grade")
		}
		if err := json.Unmarshal(resultJSON, &g.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal grade result")
		}
		grades = append(grades, g)
	}
	return grades, eris.Wrap(rows.Err(), "postgres: list grades iterate")
}

func (s *PostgresStore) SaveOverride(ctx context.Context, submissionID string, newScore float64, reason string) (*model.Override, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO score_overrides (id, submission_id, new_score, reason, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id, submissionID, newScore, reason, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert override for %s", submissionID)
	}

	return &model.Override{
		ID:           id,
		SubmissionID: submissionID,
		NewScore:     newScore,
		Reason:       reason,
		CreatedAt:    now,
	}, nil
}

func (s *PostgresStore) ListOverrides(ctx context.Context, submissionID string) ([]model.Override, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, submission_id, new_score, reason, created_at FROM score_overrides
		 WHERE submission_id = $1 ORDER BY created_at DESC`,
		submissionID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list overrides")
	}
	defer rows.Close()

	var overrides []model.Override
	for rows.Next() {
		var o model.Override
		if err := rows.Scan(&o.ID, &o.SubmissionID, &o.NewScore, &o.Reason, &o.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan override")
		}
		overrides = append(overrides, o)
	}
	return overrides, eris.Wrap(rows.Err(), "postgres: list overrides iterate")
}

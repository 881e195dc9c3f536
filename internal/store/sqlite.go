package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/warroom/scoring-service/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS grades (
	id            TEXT PRIMARY KEY,
	submission_id TEXT NOT NULL,
	team          TEXT NOT NULL,
	battle_no     INTEGER NOT NULL,
	result        TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS score_overrides (
	id            TEXT PRIMARY KEY,
	submission_id TEXT NOT NULL,
	new_score     REAL NOT NULL,
	reason        TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_grades_submission_id ON grades(submission_id);
CREATE INDEX IF NOT EXISTS idx_grades_team ON grades(team);
CREATE INDEX IF NOT EXISTS idx_grades_battle_no ON grades(battle_no);
CREATE INDEX IF NOT EXISTS idx_score_overrides_submission_id ON score_overrides(submission_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveGrade(ctx context.Context, result *model.GradeResult) (*model.Grade, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal grade result")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO grades (id, submission_id, team, battle_no, result, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, result.SubmissionID, string(result.Team), result.BattleNo, string(resultJSON), now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert grade %s", result.SubmissionID)
	}

	return &model.Grade{ID: id, Result: *result, CreatedAt: now}, nil
}

func (s *SQLiteStore) GetGrade(ctx context.Context, submissionID string) (*model.Grade, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, result, created_at FROM grades
		 WHERE submission_id = ? ORDER BY created_at DESC LIMIT 1`,
		submissionID,
	)
	return scanGrade(row)
}

func (s *SQLiteStore) ListGrades(ctx context.Context, filter GradeFilter) ([]model.Grade, error) {
	query := `SELECT id, result, created_at FROM grades WHERE 1=1`
	var args []any

	if filter.Team != "" {
		query += ` AND team = ?`
		args = append(args, string(filter.Team))
	}
	if filter.BattleNo > 0 {
		query += ` AND battle_no = ?`
		args = append(args, filter.BattleNo)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list grades")
	}
	defer rows.Close()

	var grades []model.Grade
	for rows.Next() {
		g, err := scanGrade(rows)
		if err != nil {
			return nil, err
		}
		grades = append(grades, *g)
	}
	return grades, eris.Wrap(rows.Err(), "sqlite: list grades iterate")
}

func (s *SQLiteStore) SaveOverride(ctx context.Context, submissionID string, newScore float64, reason string) (*model.Override, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO score_overrides (id, submission_id, new_score, reason, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, submissionID, newScore, reason, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert override for %s", submissionID)
	}

	return &model.Override{
		ID:           id,
		SubmissionID: submissionID,
		NewScore:     newScore,
		Reason:       reason,
		CreatedAt:    now,
	}, nil
}

func (s *SQLiteStore) ListOverrides(ctx context.Context, submissionID string) ([]model.Override, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, submission_id, new_score, reason, created_at FROM score_overrides
		 WHERE submission_id = ? ORDER BY created_at DESC`,
		submissionID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list overrides")
	}
	defer rows.Close()

	var overrides []model.Override
	for rows.Next() {
		var o model.Override
		if err := rows.Scan(&o.ID, &o.SubmissionID, &o.NewScore, &o.Reason, &o.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan override")
		}
		overrides = append(overrides, o)
	}
	return overrides, eris.Wrap(rows.Err(), "sqlite: list overrides iterate")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanGrade(row scannable) (*model.Grade, error) {
	var g model.Grade
	var resultJSON string

	err := row.Scan(&g.ID, &resultJSON, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan grade")
	}
	if err := json.Unmarshal([]byte(resultJSON), &g.Result); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal grade result")
	}
	return &g, nil
}

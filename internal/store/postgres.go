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

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. Tests substitute a
// pgxmock pool.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
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
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS grades (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	assignment      TEXT NOT NULL,
	student_id      TEXT,
	submission_path TEXT NOT NULL,
	final_score     DOUBLE PRECISION NOT NULL DEFAULT 0,
	errored         BOOLEAN NOT NULL DEFAULT false,
	record          JSONB NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_grades_assignment ON grades(assignment);
CREATE INDEX IF NOT EXISTS idx_grades_student ON grades(student_id);
CREATE INDEX IF NOT EXISTS idx_grades_submission ON grades(assignment, submission_path, created_at DESC);

CREATE TABLE IF NOT EXISTS grading_runs (
	id         TEXT PRIMARY KEY,
	assignment TEXT NOT NULL,
	dir        TEXT NOT NULL,
	total      INTEGER NOT NULL,
	succeeded  INTEGER NOT NULL,
	failed     INTEGER NOT NULL,
	mean_score DOUBLE PRECISION NOT NULL,
	elapsed_ms BIGINT NOT NULL,
	started_at TIMESTAMPTZ NOT NULL
);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveGrade(ctx context.Context, rec *model.GradeRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.GradingTimestamp.IsZero() {
		rec.GradingTimestamp = time.Now().UTC()
	}

	recordJSON, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal grade record")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO grades (id, assignment, student_id, submission_path, final_score, errored, record, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.AssignmentName, rec.StudentID, rec.SubmissionPath,
		rec.FinalScore, rec.Error != "", recordJSON, rec.GradingTimestamp,
	)
	return eris.Wrap(err, "postgres: insert grade")
}

func (s *PostgresStore) GetGrade(ctx context.Context, id string) (*model.GradeRecord, error) {
	var recordJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT record FROM grades WHERE id = $1`, id,
	).Scan(&recordJSON)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get grade %s", id)
	}

	var rec model.GradeRecord
	if err := json.Unmarshal(recordJSON, &rec); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal grade record")
	}
	return &rec, nil
}

func (s *PostgresStore) LatestGrade(ctx context.Context, assignment, submissionPath string) (*model.GradeRecord, error) {
	var recordJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT record FROM grades
		 WHERE assignment = $1 AND submission_path = $2
		 ORDER BY created_at DESC LIMIT 1`,
		assignment, submissionPath,
	).Scan(&recordJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: latest grade")
	}

	var rec model.GradeRecord
	if err := json.Unmarshal(recordJSON, &rec); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal grade record")
	}
	return &rec, nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *model.RunRecord) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO grading_runs (id, assignment, dir, total, succeeded, failed, mean_score, elapsed_ms, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		run.ID, run.AssignmentName, run.Dir, run.Total, run.Succeeded, run.Failed,
		run.MeanScore, run.Elapsed.Milliseconds(), run.StartedAt,
	)
	return eris.Wrap(err, "postgres: insert run")
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, assignment, dir, total, succeeded, failed, mean_score, elapsed_ms, started_at
		 FROM grading_runs ORDER BY started_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.RunRecord
	for rows.Next() {
		var run model.RunRecord
		var elapsedMS int64
		if err := rows.Scan(&run.ID, &run.AssignmentName, &run.Dir, &run.Total, &run.Succeeded,
			&run.Failed, &run.MeanScore, &elapsedMS, &run.StartedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) ListGrades(ctx context.Context, filter GradeFilter) ([]model.GradeRecord, error) {
	query := `SELECT record FROM grades WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Assignment != "" {
		query += fmt.Sprintf(` AND assignment = $%d`, argIdx)
		args = append(args, filter.Assignment)
		argIdx++
	}
	if filter.StudentID != "" {
		query += fmt.Sprintf(` AND student_id = $%d`, argIdx)
		args = append(args, filter.StudentID)
		argIdx++
	}
	if filter.Errored {
		query += ` AND errored`
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
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list grades")
	}
	defer rows.Close()

	var recs []model.GradeRecord
	for rows.Next() {
		var recordJSON []byte
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan grade")
		}
		var rec model.GradeRecord
		if err := json.Unmarshal(recordJSON, &rec); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal grade record")
		}
		recs = append(recs, rec)
	}
	return recs, eris.Wrap(rows.Err(), "postgres: list grades iterate")
}

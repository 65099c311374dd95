package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
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
	id              TEXT PRIMARY KEY,
	assignment      TEXT NOT NULL,
	student_id      TEXT,
	submission_path TEXT NOT NULL,
	final_score     REAL NOT NULL DEFAULT 0,
	errored         INTEGER NOT NULL DEFAULT 0,
	record          TEXT NOT NULL,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
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
	mean_score REAL NOT NULL,
	elapsed_ms INTEGER NOT NULL,
	started_at DATETIME NOT NULL
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveGrade(ctx context.Context, rec *model.GradeRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.GradingTimestamp.IsZero() {
		rec.GradingTimestamp = time.Now().UTC()
	}

	recordJSON, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal grade record")
	}

	errored := 0
	if rec.Error != "" {
		errored = 1
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO grades (id, assignment, student_id, submission_path, final_score, errored, record, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.AssignmentName, rec.StudentID, rec.SubmissionPath,
		rec.FinalScore, errored, string(recordJSON), rec.GradingTimestamp,
	)
	return eris.Wrap(err, "sqlite: insert grade")
}

func (s *SQLiteStore) GetGrade(ctx context.Context, id string) (*model.GradeRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT record FROM grades WHERE id = ?`, id,
	)
	return scanRecord(row, "grade not found: "+id)
}

func (s *SQLiteStore) LatestGrade(ctx context.Context, assignment, submissionPath string) (*model.GradeRecord, error) {
	var recordJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM grades
		 WHERE assignment = ? AND submission_path = ?
		 ORDER BY created_at DESC LIMIT 1`,
		assignment, submissionPath,
	).Scan(&recordJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: latest grade")
	}

	var rec model.GradeRecord
	if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal grade record")
	}
	return &rec, nil
}

func (s *SQLiteStore) ListGrades(ctx context.Context, filter GradeFilter) ([]model.GradeRecord, error) {
	query := `SELECT record FROM grades WHERE 1=1`
	var args []any

	if filter.Assignment != "" {
		query += ` AND assignment = ?`
		args = append(args, filter.Assignment)
	}
	if filter.StudentID != "" {
		query += ` AND student_id = ?`
		args = append(args, filter.StudentID)
	}
	if filter.Errored {
		query += ` AND errored = 1`
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

	var recs []model.GradeRecord
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan grade")
		}
		var rec model.GradeRecord
		if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal grade record")
		}
		recs = append(recs, rec)
	}
	return recs, eris.Wrap(rows.Err(), "sqlite: list grades iterate")
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *model.RunRecord) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO grading_runs (id, assignment, dir, total, succeeded, failed, mean_score, elapsed_ms, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.AssignmentName, run.Dir, run.Total, run.Succeeded, run.Failed,
		run.MeanScore, run.Elapsed.Milliseconds(), run.StartedAt,
	)
	return eris.Wrap(err, "sqlite: insert run")
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, assignment, dir, total, succeeded, failed, mean_score, elapsed_ms, started_at
		 FROM grading_runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.RunRecord
	for rows.Next() {
		var run model.RunRecord
		var elapsedMS int64
		if err := rows.Scan(&run.ID, &run.AssignmentName, &run.Dir, &run.Total, &run.Succeeded,
			&run.Failed, &run.MeanScore, &elapsedMS, &run.StartedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable, notFoundMsg string) (*model.GradeRecord, error) {
	var recordJSON string
	err := row.Scan(&recordJSON)
	if err == sql.ErrNoRows {
		return nil, eris.New(notFoundMsg)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan grade")
	}

	var rec model.GradeRecord
	if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal grade record")
	}
	return &rec, nil
}

// Package store persists grade records. Records are append-only: a regrade
// inserts a new row and the latest row wins.
package store

import (
	"context"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
)

// GradeFilter specifies criteria for listing grade records.
type GradeFilter struct {
	Assignment string `json:"assignment,omitempty"`
	StudentID  string `json:"student_id,omitempty"`
	Errored    bool   `json:"errored,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for grading results.
type Store interface {
	SaveGrade(ctx context.Context, rec *model.GradeRecord) error
	GetGrade(ctx context.Context, id string) (*model.GradeRecord, error)
	// LatestGrade returns the most recent record for a submission within
	// an assignment, or nil when the submission has never been graded.
	LatestGrade(ctx context.Context, assignment, submissionPath string) (*model.GradeRecord, error)
	ListGrades(ctx context.Context, filter GradeFilter) ([]model.GradeRecord, error)

	SaveRun(ctx context.Context, run *model.RunRecord) error
	ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error)

	Migrate(ctx context.Context) error
	Close() error
}

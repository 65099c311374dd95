package grader

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/feedback"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/reconcile"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/reflection"
)

type stubClient struct {
	resp string
	err  error
}

func (s *stubClient) Generate(_ context.Context, _ string, _ int) (string, error) {
	return s.resp, s.err
}

const studentNotebook = `{
  "cells": [
    {
      "cell_type": "code",
      "source": "sales <- read_csv('data.csv')",
      "outputs": [{"output_type": "stream", "name": "stdout", "text": "310 rows"}],
      "execution_count": 1
    },
    {
      "cell_type": "markdown",
      "source": "### Question 1\nBecause the raw data had duplicate order rows."
    }
  ],
  "nbformat": 4
}`

const solutionNotebook = `{
  "cells": [
    {
      "cell_type": "code",
      "source": "sales <- read_csv('data.csv')",
      "outputs": [{"output_type": "stream", "name": "stdout", "text": "310 rows"}],
      "execution_count": 1
    }
  ],
  "nbformat": 4
}`

func testRubric() *model.Rubric {
	return &model.Rubric{
		AssignmentInfo: model.AssignmentInfo{Name: "hw1", TotalPoints: 40},
		AutograderChecks: model.AutograderChecks{
			RequiredVariables: []string{"sales"},
			Sections: map[string]model.Section{
				"1_import": {Name: "Data Import", Points: 40, Variables: []string{"sales"}},
			},
		},
	}
}

func writeNotebook(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadNotebookJSON(t *testing.T, content string) *model.Notebook {
	t.Helper()
	var nb model.Notebook
	require.NoError(t, json.Unmarshal([]byte(content), &nb))
	return &nb
}

func newTestSession(t *testing.T, opts Options) *Session {
	t.Helper()
	gen := feedback.NewGenerator(
		&stubClient{resp: `{"technical_score": 90, "logic_score": 90, "completeness_score": 90}`},
		&stubClient{resp: `{"overall_score": 88, "instructor_comments": "well organized"}`},
		1024, 5*time.Second,
	)
	refl := reflection.NewGrader(&stubClient{resp: `{"score": 80, "rationale": "sound reasoning"}`}, 512, 5*time.Second)

	s, err := NewSession(opts, gen, refl)
	require.NoError(t, err)
	return s
}

func TestGrade_FullPipeline(t *testing.T) {
	path := writeNotebook(t, "alice_smith.ipynb", studentNotebook)
	s := newTestSession(t, Options{
		Rubric:   testRubric(),
		Solution: loadNotebookJSON(t, solutionNotebook),
	})

	rec := s.Grade(context.Background(), path)
	require.Empty(t, rec.Error)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "hw1", rec.AssignmentName)
	assert.Equal(t, "alice_smith", rec.StudentID)
	assert.Equal(t, StateValid, rec.ValidationState)
	assert.Equal(t, 40.0, rec.MaxPoints)

	// All checks pass and outputs match, so the base and adjusted scores
	// are 100 and the technical component blends evenly with the model's 90.
	require.NotNil(t, rec.Validation)
	assert.Equal(t, 100.0, rec.Validation.BaseScore)
	require.NotNil(t, rec.Validation.OutputMatch)
	assert.Equal(t, 100.0, *rec.Validation.OutputMatch)
	assert.InDelta(t, 95.0, rec.ComponentPercentages.Technical, 0.01)
	assert.InDelta(t, 88.0, rec.ComponentPercentages.Analysis, 0.01)
	assert.InDelta(t, 80.0, rec.ComponentPercentages.Communication, 0.01)
	assert.InDelta(t, 100.0, rec.ComponentPercentages.Bonus, 0.01)
	assert.InDelta(t, 35.76, rec.FinalScore, 0.01)
	assert.InDelta(t, 89.4, rec.FinalScorePercentage, 0.01)

	v := reconcile.ValidateGradingResult(rec, model.DefaultComponentWeights())
	assert.True(t, v.Valid, "issues: %v", v.Issues)

	// The reflection grade shows up in the narrative feedback.
	require.NotNil(t, rec.ComprehensiveFeedback)
	require.Len(t, rec.ComprehensiveFeedback.DetailedFeedback.ReflectionAssessment, 1)
	assert.Contains(t, rec.ComprehensiveFeedback.DetailedFeedback.ReflectionAssessment[0], "80/100")
}

func TestGrade_UnreadableNotebook(t *testing.T) {
	s := newTestSession(t, Options{Rubric: testRubric()})

	rec := s.Grade(context.Background(), filepath.Join(t.TempDir(), "missing.ipynb"))
	assert.NotEmpty(t, rec.Error)
	assert.Equal(t, 0.0, rec.FinalScore)
	assert.Equal(t, "hw1", rec.AssignmentName)
}

func TestGrade_NoModelBackend(t *testing.T) {
	path := writeNotebook(t, "bob.ipynb", studentNotebook)
	s, err := NewSession(Options{Rubric: testRubric()}, nil, nil)
	require.NoError(t, err)

	rec := s.Grade(context.Background(), path)
	require.Empty(t, rec.Error)
	assert.Equal(t, StateValid, rec.ValidationState)

	// Model-derived scores fall back to the call-failure default and the
	// record carries the manual-review note.
	require.NotNil(t, rec.TechnicalAnalysis)
	assert.Equal(t, model.DefaultCallFailureScore, rec.TechnicalAnalysis.TechnicalScore)
	assert.Contains(t, rec.TechnicalAnalysis.CodeStrengths, model.ManualReviewNote)
	assert.InDelta(t, 92.5, rec.ComponentPercentages.Technical, 0.01)
	assert.Equal(t, model.DefaultCallFailureScore, rec.ComponentPercentages.Communication)
	assert.Equal(t, 0.0, rec.ComponentPercentages.Bonus)
}

func TestNewSession_Validation(t *testing.T) {
	_, err := NewSession(Options{}, nil, nil)
	assert.Error(t, err)

	_, err = NewSession(Options{Rubric: &model.Rubric{}}, nil, nil)
	assert.Error(t, err, "no max points anywhere")
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alice.ipynb"), []byte(studentNotebook), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mallory.ipynb"), []byte("{broken"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alice-checkpoint.ipynb"), []byte(studentNotebook), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644))

	s := newTestSession(t, Options{Rubric: testRubric()})
	records, sum, err := s.Batch(context.Background(), dir, 2, nil)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 1, sum.Succeeded)
	assert.Equal(t, 1, sum.Failed)
	assert.Greater(t, sum.MeanScore, 0.0)

	// Results keep the sorted path order regardless of concurrency.
	assert.Equal(t, "alice", records[0].StudentID)
	assert.NotEmpty(t, records[1].Error)
}

func TestBatch_EmptyDir(t *testing.T) {
	s := newTestSession(t, Options{Rubric: testRubric()})
	_, _, err := s.Batch(context.Background(), t.TempDir(), 1, nil)
	assert.Error(t, err)
}

func TestStudentID(t *testing.T) {
	assert.Equal(t, "jane_doe_hw1", StudentID("/submissions/jane_doe_hw1.ipynb"))
}

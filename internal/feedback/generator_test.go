package feedback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
)

type fakeClient struct {
	resp string
	err  error
}

func (f *fakeClient) Generate(_ context.Context, _ string, _ int) (string, error) {
	return f.resp, f.err
}

func generatorRubric() *model.Rubric {
	return &model.Rubric{AssignmentInfo: model.AssignmentInfo{Name: "hw1", TotalPoints: 37.5}}
}

func TestGenerate_StructuredResponses(t *testing.T) {
	gen := NewGenerator(
		&fakeClient{resp: `{"technical_score": 82, "logic_score": 80, "completeness_score": 85}`},
		&fakeClient{resp: `{"overall_score": 88, "instructor_comments": "nice work"}`},
		1024, time.Second,
	)

	analysis, report, _ := gen.Generate(context.Background(), generatorRubric(), "sales <- read_csv('x')", "", "")
	require.NotNil(t, analysis)
	require.NotNil(t, report)
	assert.Equal(t, 82.0, analysis.TechnicalScore)
	assert.Equal(t, 88.0, report.OverallScore)
	assert.Equal(t, "nice work", report.InstructorComments)
}

func TestGenerate_CallFailureUsesDefaults(t *testing.T) {
	gen := NewGenerator(
		&fakeClient{err: errors.New("connection refused")},
		&fakeClient{resp: `{"overall_score": 88}`},
		1024, time.Second,
	)

	analysis, report, _ := gen.Generate(context.Background(), generatorRubric(), "", "", "")
	assert.Equal(t, model.DefaultCallFailureScore, analysis.TechnicalScore)
	assert.Contains(t, analysis.TechnicalObservations[1], "call failed")
	// The other side still parses normally.
	assert.Equal(t, 88.0, report.OverallScore)
}

func TestGenerate_UnparseableResponseUsesMidpoint(t *testing.T) {
	gen := NewGenerator(
		&fakeClient{resp: `{"technical_score": 82}`},
		&fakeClient{resp: "no JSON today"},
		1024, time.Second,
	)

	_, report, _ := gen.Generate(context.Background(), generatorRubric(), "", "", "")
	assert.Equal(t, model.DefaultParseFailureScore, report.OverallScore)
	assert.Equal(t, model.ManualReviewNote, report.InstructorComments)
}

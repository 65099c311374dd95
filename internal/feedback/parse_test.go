package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
)

func TestParseCodeAnalysis_Fenced(t *testing.T) {
	text := "Here is my analysis:\n```json\n{\"technical_score\": 82, \"logic_score\": 78, \"completeness_score\": 90, \"code_strengths\": [\"clean pipeline\"]}\n```"

	result := ParseCodeAnalysis(text)
	require.True(t, result.Parsed)
	assert.Equal(t, 82.0, result.Analysis.TechnicalScore)
	assert.Equal(t, 78.0, result.Analysis.LogicScore)
	assert.Equal(t, 90.0, result.Analysis.CompletenessScore)
	assert.Equal(t, []string{"clean pipeline"}, result.Analysis.CodeStrengths)
	assert.Equal(t, text, result.Raw)
}

func TestParseCodeAnalysis_ClampsScores(t *testing.T) {
	result := ParseCodeAnalysis(`{"technical_score": 999, "logic_score": -12, "completeness_score": 55}`)
	require.True(t, result.Parsed)
	assert.Equal(t, 100.0, result.Analysis.TechnicalScore)
	// Clamped-to-zero logic score backfills from the technical score.
	assert.Equal(t, 100.0, result.Analysis.LogicScore)
	assert.Equal(t, 55.0, result.Analysis.CompletenessScore)
}

func TestParseCodeAnalysis_BackfillsMissingScores(t *testing.T) {
	result := ParseCodeAnalysis(`{"technical_score": 72}`)
	require.True(t, result.Parsed)
	assert.Equal(t, 72.0, result.Analysis.LogicScore)
	assert.Equal(t, 72.0, result.Analysis.CompletenessScore)
}

func TestParseCodeAnalysis_Malformed(t *testing.T) {
	raw := "I could not produce JSON, sorry."
	result := ParseCodeAnalysis(raw)
	assert.False(t, result.Parsed)
	assert.Equal(t, raw, result.Raw)
	require.NotNil(t, result.Analysis)
	assert.Equal(t, model.DefaultParseFailureScore, result.Analysis.TechnicalScore)
	assert.Contains(t, result.Analysis.CodeStrengths, model.ManualReviewNote)
}

func TestParseCodeAnalysis_Empty(t *testing.T) {
	result := ParseCodeAnalysis("")
	assert.False(t, result.Parsed)
	assert.Equal(t, model.DefaultParseFailureScore, result.Analysis.TechnicalScore)
}

func TestParseFeedback_PlainJSON(t *testing.T) {
	result := ParseFeedback(`{"overall_score": 87.5, "instructor_comments": "solid work", "detailed_feedback": {"recommendations": ["read ch. 4"]}}`)
	require.True(t, result.Parsed)
	assert.Equal(t, 87.5, result.Report.OverallScore)
	assert.Equal(t, "solid work", result.Report.InstructorComments)
	assert.Equal(t, []string{"read ch. 4"}, result.Report.DetailedFeedback.Recommendations)
}

func TestParseFeedback_LeadingProse(t *testing.T) {
	result := ParseFeedback("The student did well overall.\n\n{\"overall_score\": 91}")
	require.True(t, result.Parsed)
	assert.Equal(t, 91.0, result.Report.OverallScore)
}

func TestParseFeedback_Malformed(t *testing.T) {
	result := ParseFeedback("{not json")
	assert.False(t, result.Parsed)
	require.NotNil(t, result.Report)
	assert.Equal(t, model.DefaultParseFailureScore, result.Report.OverallScore)
	assert.Equal(t, model.ManualReviewNote, result.Report.InstructorComments)
}

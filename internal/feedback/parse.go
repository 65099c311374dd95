package feedback

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
)

// CodeAnalysisResult is a tagged parse outcome: either a structured analysis
// or the raw text that could not be parsed. Consumers must handle both.
type CodeAnalysisResult struct {
	Analysis *model.CodeAnalysis
	Parsed   bool
	Raw      string
}

// FeedbackResult is the tagged parse outcome for the narrative feedback call.
type FeedbackResult struct {
	Report *model.FeedbackReport
	Parsed bool
	Raw    string
}

// cleanJSON extracts a JSON object from model output that may be wrapped in
// markdown code fences or preceded by free-text reasoning.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// clampScore bounds a model-reported score to [0,100]. Models occasionally
// return out-of-range values; the bounds invariant holds regardless.
func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// ParseCodeAnalysis parses the code-analysis response text. Malformed text
// yields the documented default object, never an error.
func ParseCodeAnalysis(text string) CodeAnalysisResult {
	cleaned := cleanJSON(text)

	var analysis model.CodeAnalysis
	if cleaned == "" || json.Unmarshal([]byte(cleaned), &analysis) != nil {
		zap.L().Warn("feedback: code analysis response unparseable, using default")
		return CodeAnalysisResult{
			Analysis: model.DefaultCodeAnalysis(model.DefaultParseFailureScore, "code analysis response could not be parsed"),
			Parsed:   false,
			Raw:      text,
		}
	}

	analysis.TechnicalScore = clampScore(analysis.TechnicalScore)
	analysis.LogicScore = clampScore(analysis.LogicScore)
	analysis.CompletenessScore = clampScore(analysis.CompletenessScore)
	if analysis.LogicScore == 0 {
		analysis.LogicScore = analysis.TechnicalScore
	}
	if analysis.CompletenessScore == 0 {
		analysis.CompletenessScore = analysis.TechnicalScore
	}
	return CodeAnalysisResult{Analysis: &analysis, Parsed: true, Raw: text}
}

// ParseFeedback parses the narrative feedback response text. Malformed text
// yields the documented default object with the midpoint score and a
// manual-review note.
func ParseFeedback(text string) FeedbackResult {
	cleaned := cleanJSON(text)

	var report model.FeedbackReport
	if cleaned == "" || json.Unmarshal([]byte(cleaned), &report) != nil {
		zap.L().Warn("feedback: feedback response unparseable, using default")
		return FeedbackResult{
			Report: model.DefaultFeedbackReport(model.DefaultParseFailureScore, "feedback response could not be parsed"),
			Parsed: false,
			Raw:    text,
		}
	}

	report.OverallScore = clampScore(report.OverallScore)
	return FeedbackResult{Report: &report, Parsed: true, Raw: text}
}

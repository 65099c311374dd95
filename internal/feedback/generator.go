// Package feedback runs the two independent AI grading calls and converts
// their raw text into structured objects, degrading to documented defaults
// when a call fails or returns unparseable text.
package feedback

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/pkg/llm"
)

// Generator issues the parallel code-analysis and feedback calls.
type Generator struct {
	codeClient     llm.Client
	feedbackClient llm.Client
	maxTokens      int
	timeout        time.Duration
}

// Timings reports per-call wall time for the audit trail.
type Timings struct {
	CodeAnalysis time.Duration `json:"code_analysis"`
	Feedback     time.Duration `json:"feedback"`
}

// NewGenerator wires the two model backends. The clients may be the same
// backend or two independent models.
func NewGenerator(codeClient, feedbackClient llm.Client, maxTokens int, timeout time.Duration) *Generator {
	return &Generator{
		codeClient:     codeClient,
		feedbackClient: feedbackClient,
		maxTokens:      maxTokens,
		timeout:        timeout,
	}
}

// Generate runs both calls concurrently and returns structured results.
// A failed call substitutes its default object (neutral-high score plus a
// manual-review note); a call that returned malformed text substitutes the
// midpoint default. Neither failure mode propagates as an error.
func (g *Generator) Generate(ctx context.Context, rubric *model.Rubric, code, templateCode, markdown string) (*model.CodeAnalysis, *model.FeedbackReport, Timings) {
	codePrompt := BuildCodeAnalysisPrompt(rubric, code, templateCode)
	feedbackPrompt := BuildFeedbackPrompt(rubric, markdown, code)

	result := llm.GenerateParallel(ctx, g.codeClient, g.feedbackClient, codePrompt, feedbackPrompt, g.maxTokens, g.timeout)
	timings := Timings{CodeAnalysis: result.CodeDuration, Feedback: result.FeedbackDuration}

	var analysis *model.CodeAnalysis
	if result.CodeAnalysisErr != nil {
		zap.L().Warn("feedback: code analysis call failed, using default",
			zap.Error(result.CodeAnalysisErr),
			zap.Duration("duration", result.CodeDuration),
		)
		analysis = model.DefaultCodeAnalysis(model.DefaultCallFailureScore, "code analysis call failed: "+result.CodeAnalysisErr.Error())
	} else {
		analysis = ParseCodeAnalysis(result.CodeAnalysis).Analysis
	}

	var report *model.FeedbackReport
	if result.FeedbackErr != nil {
		zap.L().Warn("feedback: feedback call failed, using default",
			zap.Error(result.FeedbackErr),
			zap.Duration("duration", result.FeedbackDuration),
		)
		report = model.DefaultFeedbackReport(model.DefaultCallFailureScore, "feedback call failed: "+result.FeedbackErr.Error())
	} else {
		report = ParseFeedback(result.Feedback).Report
	}

	return analysis, report, timings
}

// Package llm wraps the language-model backends used for grading behind a
// small generation interface. The grading pipeline never talks to an SDK
// directly.
package llm

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Client defines the generation operations used by the grader.
type Client interface {
	// Generate sends a single prompt and returns the raw response text.
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// ParallelResult carries the outcome of the two independent grading calls.
// A failed side records its error; the other side is still usable.
type ParallelResult struct {
	CodeAnalysis     string
	Feedback         string
	CodeAnalysisErr  error
	FeedbackErr      error
	CodeDuration     time.Duration
	FeedbackDuration time.Duration
}

// GenerateParallel issues the code-analysis and feedback calls concurrently
// against their respective backends and waits for both. Each call gets its
// own timeout; a timed-out or failed call is recorded in the result rather
// than aborting the pair.
func GenerateParallel(ctx context.Context, codeClient, feedbackClient Client, codePrompt, feedbackPrompt string, maxTokens int, timeout time.Duration) *ParallelResult {
	result := &ParallelResult{}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		start := time.Now()
		callCtx, cancel := context.WithTimeout(gCtx, timeout)
		defer cancel()
		result.CodeAnalysis, result.CodeAnalysisErr = codeClient.Generate(callCtx, codePrompt, maxTokens)
		result.CodeDuration = time.Since(start)
		return nil // failures degrade, never abort the join
	})

	g.Go(func() error {
		start := time.Now()
		callCtx, cancel := context.WithTimeout(gCtx, timeout)
		defer cancel()
		result.Feedback, result.FeedbackErr = feedbackClient.Generate(callCtx, feedbackPrompt, maxTokens)
		result.FeedbackDuration = time.Since(start)
		return nil
	})

	_ = g.Wait()
	return result
}

// newLimiter builds a per-client request limiter. Zero or negative
// requests-per-minute disables limiting.
func newLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1)
}

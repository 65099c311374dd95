// Package grader orchestrates a full grading pass: notebook checks, output
// comparison, partial-credit rules, model feedback, reflection grading,
// evidence reconciliation, and final score assembly.
package grader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/checker"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/compare"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/feedback"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/notebook"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/reconcile"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/reflection"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/rules"
)

// Terminal validation states.
const (
	StateValid     = "valid"
	StateAutoFixed = "auto_fixed"
	StateInvalid   = "invalid"
)

// Options configures a grading session.
type Options struct {
	Rubric       *model.Rubric
	Solution     *model.Notebook // nil disables output comparison
	TemplateCode string
	MaxPoints    float64
	Weights      model.ComponentWeights
	Compare      compare.Config
}

// Session grades submissions against one assignment's rubric and solution.
type Session struct {
	opts Options
	gen  *feedback.Generator
	refl *reflection.Grader
}

// NewSession builds a session. The generator and reflection grader may be
// nil, in which case every model-derived score falls back to its documented
// default and the record is flagged for manual review.
func NewSession(opts Options, gen *feedback.Generator, refl *reflection.Grader) (*Session, error) {
	if opts.Rubric == nil {
		return nil, eris.New("grader: rubric is required")
	}
	if opts.MaxPoints <= 0 {
		opts.MaxPoints = opts.Rubric.AssignmentInfo.TotalPoints
	}
	if opts.MaxPoints <= 0 {
		return nil, eris.New("grader: max points must be positive")
	}
	if opts.Weights == (model.ComponentWeights{}) {
		opts.Weights = model.DefaultComponentWeights()
	}
	if opts.Compare == (compare.Config{}) {
		opts.Compare = compare.DefaultConfig()
	}
	return &Session{opts: opts, gen: gen, refl: refl}, nil
}

// Grade runs the full pipeline on one notebook. Submission-level failures
// (unreadable file, empty notebook) come back as an error record rather
// than an error, so batch callers keep going.
func (s *Session) Grade(ctx context.Context, path string) *model.GradeRecord {
	assignment := s.opts.Rubric.AssignmentInfo.Name
	start := time.Now()

	nb, err := notebook.Load(path)
	if err != nil {
		zap.L().Error("grader: load failed", zap.String("path", path), zap.Error(err))
		return model.ErrorGradeRecord(assignment, path, s.opts.MaxPoints, err)
	}

	code := nb.Source()
	markdown := nb.MarkdownText()

	// Mechanical checks plus partial-credit adjustment.
	vars, sections := checker.Check(code, markdown, s.opts.Rubric)
	sections, applied := rules.AdjustAll(sections, code, s.opts.Rubric)
	if len(applied) > 0 {
		zap.L().Debug("grader: partial-credit rules applied",
			zap.String("path", path), zap.Int("count", len(applied)))
	}

	validation := &model.ValidationResult{
		VariableCheck:    vars,
		SectionBreakdown: sections,
		CellStats:        nb.Stats(),
		BaseScore:        checker.BaseScore(vars, sections),
	}

	// Output comparison against the reference solution, when one exists.
	var matchRate *float64
	if s.opts.Solution != nil {
		cells := compare.CompareCells(nb, s.opts.Solution, s.opts.Compare)
		validation.OutputMatch = &cells.MatchRate
		matchRate = &cells.MatchRate
	}
	validation.AdjustedScore = adjustedScore(validation)

	// Two model calls in parallel, then per-question reflection grading.
	analysis, report, timings := s.generate(ctx, code, markdown)
	reflGrades := s.gradeReflections(ctx, nb)

	recon := reconcile.Reconcile(reconcile.Inputs{
		Analysis:          analysis,
		Feedback:          report,
		StudentCode:       code,
		TemplateCode:      s.opts.TemplateCode,
		RequiredVariables: s.opts.Rubric.AutograderChecks.RequiredVariables,
		MatchRate:         matchRate,
		OutputsPresent:    validation.CellStats.ExecutedCells > 0,
	})
	analysis.TechnicalScore = recon.TechnicalScore
	analysis.LogicScore = recon.LogicScore
	analysis.CompletenessScore = recon.CompletenessScore
	report.OverallScore = recon.OverallScore
	attachReflections(report, reflGrades)

	rec := s.assemble(path, validation, analysis, report, reflGrades, recon.Notes)
	s.validate(rec)

	zap.L().Info("grader: graded submission",
		zap.String("path", path),
		zap.Float64("final_score", rec.FinalScore),
		zap.String("state", rec.ValidationState),
		zap.Duration("total", time.Since(start)),
		zap.Duration("code_call", timings.CodeAnalysis),
		zap.Duration("feedback_call", timings.Feedback),
	)
	return rec
}

// adjustedScore blends the rubric-based score with output fidelity when a
// comparison ran, half and half; otherwise it is the base score unchanged.
// Both inputs and the result are on the 0-100 scale.
func adjustedScore(v *model.ValidationResult) float64 {
	if v.OutputMatch == nil {
		return v.BaseScore
	}
	return 0.5*v.BaseScore + 0.5*(*v.OutputMatch)
}

func (s *Session) generate(ctx context.Context, code, markdown string) (*model.CodeAnalysis, *model.FeedbackReport, feedback.Timings) {
	if s.gen == nil {
		return model.DefaultCodeAnalysis(model.DefaultCallFailureScore, "no model backend configured"),
			model.DefaultFeedbackReport(model.DefaultCallFailureScore, "no model backend configured"),
			feedback.Timings{}
	}
	return s.gen.Generate(ctx, s.opts.Rubric, code, s.opts.TemplateCode, markdown)
}

func (s *Session) gradeReflections(ctx context.Context, nb *model.Notebook) []reflection.Grade {
	answers := reflection.ExtractAnswers(nb)
	if len(answers) == 0 || s.refl == nil {
		return nil
	}
	return s.refl.GradeAnswers(ctx, answers, nil)
}

// attachReflections folds per-question reflection grades into the report's
// reflection assessment bullets so instructors see them in one place.
func attachReflections(report *model.FeedbackReport, grades []reflection.Grade) {
	for _, g := range grades {
		line := fmt.Sprintf("%s: %.0f/100", g.Question, g.Score)
		if g.Rationale != "" {
			line += " - " + g.Rationale
		}
		report.DetailedFeedback.ReflectionAssessment = append(report.DetailedFeedback.ReflectionAssessment, line)
	}
}

func (s *Session) assemble(path string, validation *model.ValidationResult, analysis *model.CodeAnalysis, report *model.FeedbackReport, reflGrades []reflection.Grade, notes []string) *model.GradeRecord {
	techAvg := (analysis.TechnicalScore + analysis.LogicScore + analysis.CompletenessScore) / 3

	pct := model.ComponentPercentages{
		// The technical component is half mechanical evidence, half model
		// assessment, so neither side can carry a broken submission alone.
		Technical: 0.5*validation.AdjustedScore + 0.5*techAvg,
		Analysis:  report.OverallScore,
	}

	if avg := reflection.Average(reflGrades); avg >= 0 {
		pct.Communication = avg
	} else {
		pct.Communication = report.OverallScore
	}
	if validation.OutputMatch != nil && *validation.OutputMatch >= 90 {
		pct.Bonus = *validation.OutputMatch
	}

	w := s.opts.Weights
	scores := model.ComponentScores{
		Technical:     pct.Technical / 100 * w.Technical * s.opts.MaxPoints,
		Analysis:      pct.Analysis / 100 * w.Analysis * s.opts.MaxPoints,
		Communication: pct.Communication / 100 * w.Communication * s.opts.MaxPoints,
		Bonus:         pct.Bonus / 100 * w.Bonus * s.opts.MaxPoints,
	}
	final := scores.Sum()

	return &model.GradeRecord{
		ID:                    uuid.New().String(),
		AssignmentName:        s.opts.Rubric.AssignmentInfo.Name,
		StudentID:             StudentID(path),
		SubmissionPath:        path,
		FinalScore:            final,
		FinalScorePercentage:  final / s.opts.MaxPoints * 100,
		MaxPoints:             s.opts.MaxPoints,
		ComponentScores:       scores,
		ComponentPercentages:  pct,
		TechnicalAnalysis:     analysis,
		ComprehensiveFeedback: report,
		Validation:            validation,
		AdjustmentNotes:       notes,
		GradingTimestamp:      time.Now().UTC(),
	}
}

// validate cross-checks the assembled record and repairs it at most once.
func (s *Session) validate(rec *model.GradeRecord) {
	v := reconcile.ValidateGradingResult(rec, s.opts.Weights)
	if v.Valid {
		rec.ValidationState = StateValid
		return
	}

	zap.L().Warn("grader: arithmetic check failed, repairing",
		zap.String("id", rec.ID),
		zap.Strings("issues", v.Issues),
	)
	reconcile.FixCalculationErrors(rec, s.opts.Weights)
	if reconcile.ValidateGradingResult(rec, s.opts.Weights).Valid {
		rec.ValidationState = StateAutoFixed
		return
	}
	rec.ValidationState = StateInvalid
	rec.AdjustmentNotes = append(rec.AdjustmentNotes, "arithmetic check failed after repair: "+strings.Join(v.Issues, "; "))
}

// StudentID derives a student identifier from a submission filename.
func StudentID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

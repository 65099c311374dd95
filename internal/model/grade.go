package model

import "time"

// ComponentWeights defines what fraction of the assignment's max points each
// grade component carries. Weights should sum to 1.0.
type ComponentWeights struct {
	Technical     float64 `json:"technical" yaml:"technical" mapstructure:"technical"`
	Analysis      float64 `json:"analysis" yaml:"analysis" mapstructure:"analysis"`
	Communication float64 `json:"communication" yaml:"communication" mapstructure:"communication"`
	Bonus         float64 `json:"bonus" yaml:"bonus" mapstructure:"bonus"`
}

// DefaultComponentWeights mirrors the standard course weighting: technical
// correctness dominates, narrative analysis and communication follow, and a
// small bonus share rewards output fidelity.
func DefaultComponentWeights() ComponentWeights {
	return ComponentWeights{
		Technical:     0.40,
		Analysis:      0.30,
		Communication: 0.25,
		Bonus:         0.05,
	}
}

// ComponentScores holds per-component earned points.
type ComponentScores struct {
	Technical     float64 `json:"technical"`
	Analysis      float64 `json:"analysis"`
	Communication float64 `json:"communication"`
	Bonus         float64 `json:"bonus"`
}

// Sum totals the component points.
func (c ComponentScores) Sum() float64 {
	return c.Technical + c.Analysis + c.Communication + c.Bonus
}

// ComponentPercentages holds per-component percentages in [0,100].
type ComponentPercentages struct {
	Technical     float64 `json:"technical"`
	Analysis      float64 `json:"analysis"`
	Communication float64 `json:"communication"`
	Bonus         float64 `json:"bonus"`
}

// GradeRecord is the final, persisted output of a grading pass. A regrade
// produces a new record; records are never mutated after creation.
type GradeRecord struct {
	ID             string `json:"id"`
	AssignmentName string `json:"assignment_name"`
	StudentID      string `json:"student_id,omitempty"`
	SubmissionPath string `json:"submission_path"`

	FinalScore           float64              `json:"final_score"`
	FinalScorePercentage float64              `json:"final_score_percentage"`
	MaxPoints            float64              `json:"max_points"`
	ComponentScores      ComponentScores      `json:"component_scores"`
	ComponentPercentages ComponentPercentages `json:"component_percentages"`

	TechnicalAnalysis     *CodeAnalysis     `json:"technical_analysis,omitempty"`
	ComprehensiveFeedback *FeedbackReport   `json:"comprehensive_feedback,omitempty"`
	Validation            *ValidationResult `json:"validation,omitempty"`
	AdjustmentNotes       []string          `json:"adjustment_notes,omitempty"`

	// ValidationState is the terminal arithmetic-check state: "valid",
	// "auto_fixed" after a successful single repair, or "invalid".
	ValidationState string `json:"validation_state,omitempty"`

	GradingTimestamp time.Time `json:"grading_timestamp"`
	Error            string    `json:"error,omitempty"`
}

// ErrorGradeRecord builds the zero-score record used when a submission
// cannot be graded at all (unreadable notebook, broken rubric). The batch
// keeps going; the error travels with the record.
func ErrorGradeRecord(assignment, path string, maxPoints float64, err error) *GradeRecord {
	return &GradeRecord{
		AssignmentName:   assignment,
		SubmissionPath:   path,
		MaxPoints:        maxPoints,
		GradingTimestamp: time.Now().UTC(),
		Error:            err.Error(),
	}
}

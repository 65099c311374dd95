package model

// SectionStatus classifies how completely a section was done.
type SectionStatus string

const (
	SectionComplete   SectionStatus = "complete"
	SectionPartial    SectionStatus = "partial"
	SectionIncomplete SectionStatus = "incomplete"
)

// VariableCheck records which rubric-required variables were found in the
// student's source.
type VariableCheck struct {
	Found          []string `json:"found"`
	Missing        []string `json:"missing"`
	TotalRequired  int      `json:"total_required"`
	CompletionRate float64  `json:"completion_rate"`
}

// SectionResult is the per-section outcome of the checker (possibly adjusted
// by a partial-credit rule).
type SectionResult struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	PointsPossible float64       `json:"points_possible"`
	PointsEarned   float64       `json:"points_earned"`
	Status         SectionStatus `json:"status"`
	CompletionRate float64       `json:"completion_rate"`
	FoundItems     []string      `json:"found_items,omitempty"`
	MissingItems   []string      `json:"missing_items,omitempty"`
	RuleApplied    string        `json:"rule_applied,omitempty"`
	RuleRationale  string        `json:"rule_rationale,omitempty"`
}

// CellStats summarizes code-cell execution evidence.
type CellStats struct {
	TotalCells    int     `json:"total_cells"`
	ExecutedCells int     `json:"executed_cells"`
	ExecutionRate float64 `json:"execution_rate"`
}

// ValidationResult is the central record produced by one validation pass
// over a submission. Immutable after construction.
type ValidationResult struct {
	VariableCheck    VariableCheck   `json:"variable_check"`
	SectionBreakdown []SectionResult `json:"section_breakdown"`
	CellStats        CellStats       `json:"cell_stats"`
	BaseScore        float64         `json:"base_score"`
	OutputMatch      *float64        `json:"output_match,omitempty"`
	AdjustedScore    float64         `json:"adjusted_score"`
}

// PointsEarned sums earned points across the section breakdown.
func (v *ValidationResult) PointsEarned() float64 {
	var sum float64
	for _, s := range v.SectionBreakdown {
		sum += s.PointsEarned
	}
	return sum
}

// PointsPossible sums possible points across the section breakdown.
func (v *ValidationResult) PointsPossible() float64 {
	var sum float64
	for _, s := range v.SectionBreakdown {
		sum += s.PointsPossible
	}
	return sum
}

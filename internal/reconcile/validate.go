package reconcile

import (
	"fmt"
	"math"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
)

// scoreTolerance absorbs float rounding when cross-checking stored scores.
const scoreTolerance = 0.2

// Validation is the outcome of checking a grade record's arithmetic.
type Validation struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues,omitempty"`
}

// ValidateGradingResult cross-checks every derivable number in a grade
// record: each component's points against its percentage and weight, the
// component sum against the final score, the final percentage against the
// final score, and all bounds. It reports issues without modifying the
// record.
func ValidateGradingResult(rec *model.GradeRecord, weights model.ComponentWeights) Validation {
	var issues []string
	check := func(name string, stored, want float64) {
		if math.Abs(stored-want) > scoreTolerance {
			issues = append(issues, fmt.Sprintf("%s is %.2f, expected %.2f", name, stored, want))
		}
	}

	if rec.MaxPoints <= 0 {
		issues = append(issues, fmt.Sprintf("max_points is %.2f, must be positive", rec.MaxPoints))
		return Validation{Valid: false, Issues: issues}
	}

	pct := rec.ComponentPercentages
	check("technical points", rec.ComponentScores.Technical, pct.Technical/100*weights.Technical*rec.MaxPoints)
	check("analysis points", rec.ComponentScores.Analysis, pct.Analysis/100*weights.Analysis*rec.MaxPoints)
	check("communication points", rec.ComponentScores.Communication, pct.Communication/100*weights.Communication*rec.MaxPoints)
	check("bonus points", rec.ComponentScores.Bonus, pct.Bonus/100*weights.Bonus*rec.MaxPoints)

	check("final score (component sum)", rec.FinalScore, rec.ComponentScores.Sum())
	check("final percentage", rec.FinalScorePercentage, rec.FinalScore/rec.MaxPoints*100)

	bounds := []struct {
		name string
		v    float64
	}{
		{"technical percentage", pct.Technical},
		{"analysis percentage", pct.Analysis},
		{"communication percentage", pct.Communication},
		{"bonus percentage", pct.Bonus},
	}
	for _, b := range bounds {
		if b.v < 0 || b.v > 100 {
			issues = append(issues, fmt.Sprintf("%s %.2f out of [0,100]", b.name, b.v))
		}
	}
	if rec.FinalScore < 0 || rec.FinalScore > rec.MaxPoints {
		issues = append(issues, fmt.Sprintf("final score %.2f out of [0,%.2f]", rec.FinalScore, rec.MaxPoints))
	}

	return Validation{Valid: len(issues) == 0, Issues: issues}
}

// FixCalculationErrors recomputes every derived number in the record from
// the stored component percentages, which are treated as the source of
// truth. Returns true when any value changed.
func FixCalculationErrors(rec *model.GradeRecord, weights model.ComponentWeights) bool {
	pct := rec.ComponentPercentages
	fixed := model.ComponentScores{
		Technical:     pct.Technical / 100 * weights.Technical * rec.MaxPoints,
		Analysis:      pct.Analysis / 100 * weights.Analysis * rec.MaxPoints,
		Communication: pct.Communication / 100 * weights.Communication * rec.MaxPoints,
		Bonus:         pct.Bonus / 100 * weights.Bonus * rec.MaxPoints,
	}
	total := fixed.Sum()
	pctTotal := 0.0
	if rec.MaxPoints > 0 {
		pctTotal = total / rec.MaxPoints * 100
	}

	changed := math.Abs(rec.FinalScore-total) > scoreTolerance ||
		math.Abs(rec.FinalScorePercentage-pctTotal) > scoreTolerance ||
		math.Abs(rec.ComponentScores.Technical-fixed.Technical) > scoreTolerance ||
		math.Abs(rec.ComponentScores.Analysis-fixed.Analysis) > scoreTolerance ||
		math.Abs(rec.ComponentScores.Communication-fixed.Communication) > scoreTolerance ||
		math.Abs(rec.ComponentScores.Bonus-fixed.Bonus) > scoreTolerance

	rec.ComponentScores = fixed
	rec.FinalScore = total
	rec.FinalScorePercentage = pctTotal
	if changed {
		rec.AdjustmentNotes = append(rec.AdjustmentNotes, "recomputed component points and totals from stored percentages")
	}
	return changed
}

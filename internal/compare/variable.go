package compare

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/checker"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
)

// outputLookahead is how many cells past the assignment cell are harvested
// for output. Warnings or benign errors often land in the assignment cell
// itself, with the real output printed a cell or two later.
const outputLookahead = 2

// VariableComparison is the outcome for one tracked variable.
type VariableComparison struct {
	Variable   string    `json:"variable"`
	Status     string    `json:"status"`
	Expected   Extracted `json:"expected"`
	Found      Extracted `json:"found"`
	MatchedOn  string    `json:"matched_on,omitempty"`
	Similarity float64   `json:"similarity"`
}

// VariableReport aggregates a variable-targeted comparison run.
type VariableReport struct {
	Variables        []VariableComparison `json:"variables"`
	TotalComparisons int                  `json:"total_comparisons"`
	Matches          int                  `json:"matches"`
	MatchRate        float64              `json:"match_rate"`
}

// harvestOutput collects output text from the cell where the variable is
// first assigned plus the following cells within the lookahead window.
func harvestOutput(nb *model.Notebook, variable string) string {
	cells := nb.CodeCells()
	idx := -1
	for i, c := range cells {
		if checker.VariableAssigned(c.Source.String(), variable) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ""
	}

	var parts []string
	for i := idx; i <= idx+outputLookahead && i < len(cells); i++ {
		if t := cells[i].OutputText(); strings.TrimSpace(t) != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

// CompareVariables compares outputs for each required variable between the
// student notebook and the solution reference. Matching is lenient union
// matching: an expected value is correct if it appears anywhere among the
// student's extracted row counts, numbers, or counts, within tolerance.
func CompareVariables(student, solution *model.Notebook, required []string, cfg Config) *VariableReport {
	report := &VariableReport{}

	for _, variable := range required {
		solText := harvestOutput(solution, variable)
		expected := ExtractValues(solText)
		if strings.TrimSpace(solText) == "" || expected.Empty() {
			continue // solution shows nothing comparable for this variable
		}

		cmp := VariableComparison{Variable: variable, Expected: expected}
		stuText := harvestOutput(student, variable)
		cmp.Found = ExtractValues(stuText)

		switch {
		case !checker.VariableAssigned(student.Source(), variable):
			cmp.Status = StatusMissing
		case strings.TrimSpace(stuText) == "":
			cmp.Status = StatusNoOutput
		default:
			cmp.Similarity = Similarity(stuText, solText)
			if matchedOn, ok := lenientMatch(expected, cmp.Found, cfg); ok {
				cmp.Status = StatusMatch
				cmp.MatchedOn = matchedOn
			} else {
				cmp.Status = StatusMismatch
			}
		}

		report.Variables = append(report.Variables, cmp)
		report.TotalComparisons++
		if cmp.Status == StatusMatch {
			report.Matches++
		}
	}

	if report.TotalComparisons > 0 {
		report.MatchRate = float64(report.Matches) / float64(report.TotalComparisons) * 100
	}

	zap.L().Debug("compare: variable pass complete",
		zap.Int("comparisons", report.TotalComparisons),
		zap.Int("matches", report.Matches),
		zap.Float64("match_rate", report.MatchRate),
	)
	return report
}

// lenientMatch checks whether the expected primary values appear anywhere in
// the student's extracted values. Format and labeling differences must not
// fail a numerically correct answer, so each expected value is checked
// against the union of all student value pools.
func lenientMatch(expected, found Extracted, cfg Config) (string, bool) {
	if rc := expected.FirstRowCount(); rc >= 0 {
		if intWithin(rc, found.RowCounts, cfg.RowCountTolerance) ||
			intWithin(rc, found.Counts, cfg.RowCountTolerance) ||
			floatNear(float64(rc), found.Numbers, float64(cfg.RowCountTolerance)) {
			return "row_count", true
		}
		return "", false
	}

	if len(expected.Numbers) > 0 {
		want := expected.Numbers[0]
		tol := math.Abs(want) * cfg.NumericTolerancePct
		if floatNear(want, found.Numbers, tol) {
			return "number", true
		}
		return "", false
	}

	if len(expected.Counts) > 0 {
		want := expected.Counts[0]
		if intWithin(want, found.Counts, cfg.CountTolerance) ||
			intWithin(want, found.RowCounts, cfg.CountTolerance) {
			return "count", true
		}
		return "", false
	}

	return "", false
}

func intWithin(want int, pool []int, tolerance int) bool {
	for _, got := range pool {
		if abs(want-got) <= tolerance {
			return true
		}
	}
	return false
}

func floatNear(want float64, pool []float64, tolerance float64) bool {
	for _, got := range pool {
		if math.Abs(want-got) <= tolerance {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

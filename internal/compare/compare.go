package compare

import (
	"strings"

	"github.com/agext/levenshtein"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
)

// Comparison statuses, worst first. no_output means an expected output was
// entirely absent; it is a discrepancy category, never an error.
const (
	StatusMatch    = "match"
	StatusMismatch = "mismatch"
	StatusMissing  = "missing"
	StatusExtra    = "extra"
	StatusNoOutput = "no_output"
)

// Config holds the comparison tolerances.
type Config struct {
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	RowCountTolerance   int     `mapstructure:"row_count_tolerance"`
	NumericTolerancePct float64 `mapstructure:"numeric_tolerance_pct"`
	CountTolerance      int     `mapstructure:"count_tolerance"`
}

// DefaultConfig returns the documented default tolerances.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.80,
		RowCountTolerance:   5,
		NumericTolerancePct: 0.05,
		CountTolerance:      2,
	}
}

// CellComparison is the per-cell outcome of positional comparison.
type CellComparison struct {
	Index      int     `json:"index"`
	Status     string  `json:"status"`
	Similarity float64 `json:"similarity"`
}

// CellReport aggregates a cell-by-cell comparison run.
type CellReport struct {
	Cells            []CellComparison `json:"cells"`
	TotalComparisons int              `json:"total_comparisons"`
	Matches          int              `json:"matches"`
	MatchRate        float64          `json:"match_rate"`
	AccuracyScore    float64          `json:"accuracy_score"`
}

// normalizeOutput prepares output text for fuzzy comparison: NFKC
// normalization (notebooks emit typographic variants like × and −),
// whitespace collapsed, case folded.
func normalizeOutput(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// Similarity computes a normalized similarity ratio in [0,1] between two
// output texts.
func Similarity(a, b string) float64 {
	na, nb := normalizeOutput(a), normalizeOutput(b)
	if na == nb {
		return 1.0
	}
	if na == "" || nb == "" {
		return 0.0
	}
	return levenshtein.Similarity(na, nb, nil)
}

// CompareCells aligns student code cell i with solution code cell i by
// position and scores each pair. A solution cell without a student
// counterpart is missing (similarity 0); extra student cells beyond the
// solution's count are never penalized (similarity 1.0).
func CompareCells(student, solution *model.Notebook, cfg Config) *CellReport {
	report := &CellReport{}
	stuCells := student.CodeCells()
	solCells := solution.CodeCells()

	var simSum float64
	for i, solCell := range solCells {
		expected := solCell.OutputText()
		if strings.TrimSpace(expected) == "" {
			continue // nothing to compare against
		}

		cmp := CellComparison{Index: i}
		switch {
		case i >= len(stuCells):
			cmp.Status = StatusMissing
			cmp.Similarity = 0
		case strings.TrimSpace(stuCells[i].OutputText()) == "":
			cmp.Status = StatusNoOutput
			cmp.Similarity = 0
		default:
			cmp.Similarity = Similarity(stuCells[i].OutputText(), expected)
			if cmp.Similarity >= cfg.SimilarityThreshold {
				cmp.Status = StatusMatch
			} else {
				cmp.Status = StatusMismatch
			}
		}

		report.Cells = append(report.Cells, cmp)
		report.TotalComparisons++
		simSum += cmp.Similarity
		if cmp.Status == StatusMatch {
			report.Matches++
		}
	}

	// Extra student work beyond the solution's cell count counts in the
	// student's favor, never against.
	for i := len(solCells); i < len(stuCells); i++ {
		if strings.TrimSpace(stuCells[i].OutputText()) == "" {
			continue
		}
		report.Cells = append(report.Cells, CellComparison{
			Index:      i,
			Status:     StatusExtra,
			Similarity: 1.0,
		})
		report.TotalComparisons++
		report.Matches++
		simSum += 1.0
	}

	if report.TotalComparisons > 0 {
		report.MatchRate = float64(report.Matches) / float64(report.TotalComparisons) * 100
		report.AccuracyScore = simSum / float64(report.TotalComparisons) * 100
	}

	zap.L().Debug("compare: cell pass complete",
		zap.Int("comparisons", report.TotalComparisons),
		zap.Int("matches", report.Matches),
		zap.Float64("match_rate", report.MatchRate),
	)
	return report
}

package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareVariables_WithinRowTolerance(t *testing.T) {
	sol := nb(codeCell("sales <- read_csv('x.csv')", "310 rows"))
	stu := nb(codeCell("sales <- read_csv('x.csv')", "308 rows"))

	rep := CompareVariables(stu, sol, []string{"sales"}, DefaultConfig())
	require.Len(t, rep.Variables, 1)
	assert.Equal(t, StatusMatch, rep.Variables[0].Status)
	assert.Equal(t, "row_count", rep.Variables[0].MatchedOn)
	assert.Equal(t, 100.0, rep.MatchRate)
}

func TestCompareVariables_BeyondRowTolerance(t *testing.T) {
	sol := nb(codeCell("sales <- read_csv('x.csv')", "310 rows"))
	stu := nb(codeCell("sales <- read_csv('x.csv')", "250 rows"))

	rep := CompareVariables(stu, sol, []string{"sales"}, DefaultConfig())
	require.Len(t, rep.Variables, 1)
	assert.Equal(t, StatusMismatch, rep.Variables[0].Status)
	assert.Zero(t, rep.Matches)
}

func TestCompareVariables_NumericTolerance(t *testing.T) {
	sol := nb(codeCell("avg <- mean(x)", "mean value 100.00 computed"))
	// 4% off is inside the 5% band.
	stu := nb(codeCell("avg <- mean(x)", "mean value 104.00 computed"))

	rep := CompareVariables(stu, sol, []string{"avg"}, DefaultConfig())
	require.Len(t, rep.Variables, 1)
	assert.Equal(t, StatusMatch, rep.Variables[0].Status)
	assert.Equal(t, "number", rep.Variables[0].MatchedOn)
}

func TestCompareVariables_DifferentFormatting(t *testing.T) {
	// Same row count printed two different ways still matches.
	sol := nb(codeCell("clean <- drop_na(raw)", "# A tibble: 295 × 9"))
	stu := nb(codeCell("clean <- drop_na(raw)", "Rows: 295"))

	rep := CompareVariables(stu, sol, []string{"clean"}, DefaultConfig())
	require.Len(t, rep.Variables, 1)
	assert.Equal(t, StatusMatch, rep.Variables[0].Status)
}

func TestCompareVariables_NotAssigned(t *testing.T) {
	sol := nb(codeCell("sales <- read_csv('x.csv')", "310 rows"))
	stu := nb(codeCell("other <- 1", "310 rows"))

	rep := CompareVariables(stu, sol, []string{"sales"}, DefaultConfig())
	require.Len(t, rep.Variables, 1)
	assert.Equal(t, StatusMissing, rep.Variables[0].Status)
}

func TestCompareVariables_NoOutput(t *testing.T) {
	sol := nb(codeCell("sales <- read_csv('x.csv')", "310 rows"))
	stu := nb(codeCell("sales <- read_csv('x.csv')", ""))

	rep := CompareVariables(stu, sol, []string{"sales"}, DefaultConfig())
	require.Len(t, rep.Variables, 1)
	assert.Equal(t, StatusNoOutput, rep.Variables[0].Status)
}

func TestCompareVariables_SolutionWithoutValuesSkipped(t *testing.T) {
	sol := nb(codeCell("sales <- read_csv('x.csv')", ""))
	stu := nb(codeCell("sales <- read_csv('x.csv')", "310 rows"))

	rep := CompareVariables(stu, sol, []string{"sales"}, DefaultConfig())
	assert.Empty(t, rep.Variables)
	assert.Zero(t, rep.TotalComparisons)
}

func TestCompareVariables_OutputInFollowingCell(t *testing.T) {
	sol := nb(
		codeCell("sales <- read_csv('x.csv')", ""),
		codeCell("print(sales)", "310 rows"),
	)
	stu := nb(
		codeCell("sales <- read_csv('x.csv')", ""),
		codeCell("sales", "309 rows"),
	)

	rep := CompareVariables(stu, sol, []string{"sales"}, DefaultConfig())
	require.Len(t, rep.Variables, 1)
	assert.Equal(t, StatusMatch, rep.Variables[0].Status)
}

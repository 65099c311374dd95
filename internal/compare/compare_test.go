package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
)

// codeCell builds an executed code cell with one stream output.
func codeCell(source, output string) model.Cell {
	c := model.Cell{
		CellType: model.CellTypeCode,
		Source:   model.MultilineText(source),
	}
	if output != "" {
		c.Outputs = []model.Output{{
			OutputType: model.OutputTypeStream,
			Text:       model.MultilineText(output),
		}}
	}
	return c
}

func nb(cells ...model.Cell) *model.Notebook {
	return &model.Notebook{Cells: cells}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("310 rows", "310  ROWS"))
	assert.Equal(t, 0.0, Similarity("", "something"))
	assert.Greater(t, Similarity("total: 310 rows", "total: 308 rows"), 0.8)
	assert.Less(t, Similarity("error in read_csv", "310 rows"), 0.5)
}

func TestSimilarity_UnicodeNormalization(t *testing.T) {
	// NFKC folds compatibility characters like the "fi" ligature.
	assert.Equal(t, 1.0, Similarity("ﬁle loaded", "file loaded"))
}

func TestCompareCells_AllMatch(t *testing.T) {
	sol := nb(codeCell("a <- 1", "310 rows"), codeCell("b <- 2", "total: 42"))
	stu := nb(codeCell("a <- 1", "310 rows"), codeCell("b <- 2", "total: 42"))

	rep := CompareCells(stu, sol, DefaultConfig())
	assert.Equal(t, 2, rep.TotalComparisons)
	assert.Equal(t, 2, rep.Matches)
	assert.Equal(t, 100.0, rep.MatchRate)
}

func TestCompareCells_Mismatch(t *testing.T) {
	sol := nb(codeCell("a <- 1", "the answer is 310 rows exactly"))
	stu := nb(codeCell("a <- 1", "Error in read_csv: file not found"))

	rep := CompareCells(stu, sol, DefaultConfig())
	require.Len(t, rep.Cells, 1)
	assert.Equal(t, StatusMismatch, rep.Cells[0].Status)
	assert.Zero(t, rep.Matches)
}

func TestCompareCells_NoOutput(t *testing.T) {
	sol := nb(codeCell("a <- 1", "310 rows"))
	stu := nb(codeCell("a <- 1", ""))

	rep := CompareCells(stu, sol, DefaultConfig())
	require.Len(t, rep.Cells, 1)
	assert.Equal(t, StatusNoOutput, rep.Cells[0].Status)
}

func TestCompareCells_MissingCell(t *testing.T) {
	sol := nb(codeCell("a <- 1", "310 rows"), codeCell("b <- 2", "42"))
	stu := nb(codeCell("a <- 1", "310 rows"))

	rep := CompareCells(stu, sol, DefaultConfig())
	require.Len(t, rep.Cells, 2)
	assert.Equal(t, StatusMissing, rep.Cells[1].Status)
	assert.Equal(t, 50.0, rep.MatchRate)
}

func TestCompareCells_SolutionCellWithoutOutputSkipped(t *testing.T) {
	sol := nb(codeCell("library(dplyr)", ""), codeCell("a <- 1", "310 rows"))
	stu := nb(codeCell("library(dplyr)", ""), codeCell("a <- 1", "310 rows"))

	rep := CompareCells(stu, sol, DefaultConfig())
	assert.Equal(t, 1, rep.TotalComparisons)
}

func TestCompareCells_ExtraStudentWorkNeverPenalized(t *testing.T) {
	sol := nb(codeCell("a <- 1", "310 rows"))
	stu := nb(codeCell("a <- 1", "310 rows"), codeCell("bonus <- 2", "extra exploration"))

	rep := CompareCells(stu, sol, DefaultConfig())
	assert.Equal(t, 2, rep.TotalComparisons)
	assert.Equal(t, 2, rep.Matches)
	assert.Equal(t, 100.0, rep.MatchRate)
	assert.Equal(t, StatusExtra, rep.Cells[1].Status)
	assert.Equal(t, 1.0, rep.Cells[1].Similarity)
}

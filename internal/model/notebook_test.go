package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultilineTextUnmarshal(t *testing.T) {
	var single MultilineText
	require.NoError(t, json.Unmarshal([]byte(`"x <- 1\n"`), &single))
	assert.Equal(t, "x <- 1\n", single.String())

	var lines MultilineText
	require.NoError(t, json.Unmarshal([]byte(`["x <- 1\n", "y <- 2\n"]`), &lines))
	assert.Equal(t, "x <- 1\ny <- 2\n", lines.String())

	var bad MultilineText
	assert.Error(t, json.Unmarshal([]byte(`42`), &bad))
}

func TestOutputPlainText(t *testing.T) {
	stream := Output{OutputType: OutputTypeStream, Text: "310 rows"}
	assert.Equal(t, "310 rows", stream.PlainText())

	result := Output{
		OutputType: OutputTypeExecuteResult,
		Data:       map[string]MultilineText{"text/plain": "# A tibble: 150 × 5"},
	}
	assert.Equal(t, "# A tibble: 150 × 5", result.PlainText())

	errOut := Output{OutputType: OutputTypeError, EName: "NameError", EValue: "object 'x' not found"}
	assert.Equal(t, "NameError: object 'x' not found", errOut.PlainText())

	assert.Equal(t, "", Output{OutputType: OutputTypeError}.PlainText())
	assert.Equal(t, "", Output{OutputType: "unknown"}.PlainText())
}

func TestCellExecuted(t *testing.T) {
	n := 3
	assert.True(t, Cell{CellType: CellTypeCode, ExecutionCount: &n}.Executed())
	assert.True(t, Cell{CellType: CellTypeCode, Outputs: []Output{{OutputType: OutputTypeStream}}}.Executed())
	assert.False(t, Cell{CellType: CellTypeCode}.Executed())

	zero := 0
	assert.False(t, Cell{CellType: CellTypeCode, ExecutionCount: &zero}.Executed())
}

func TestNotebookAccessors(t *testing.T) {
	one := 1
	nb := &Notebook{Cells: []Cell{
		{CellType: CellTypeMarkdown, Source: "# Homework 1"},
		{CellType: CellTypeCode, Source: "sales <- read_csv('x')", ExecutionCount: &one},
		{CellType: CellTypeCode, Source: "summary(sales)"},
	}}

	assert.Len(t, nb.CodeCells(), 2)
	assert.Len(t, nb.MarkdownCells(), 1)
	assert.Equal(t, "sales <- read_csv('x')\nsummary(sales)\n", nb.Source())
	assert.Equal(t, "# Homework 1\n", nb.MarkdownText())

	stats := nb.Stats()
	assert.Equal(t, 2, stats.TotalCells)
	assert.Equal(t, 1, stats.ExecutedCells)
	assert.InDelta(t, 0.5, stats.ExecutionRate, 1e-9)
}

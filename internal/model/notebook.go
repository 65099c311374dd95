package model

import (
	"encoding/json"
	"strings"
)

// Cell types and output types in the ipynb format.
const (
	CellTypeCode     = "code"
	CellTypeMarkdown = "markdown"

	OutputTypeStream        = "stream"
	OutputTypeExecuteResult = "execute_result"
	OutputTypeDisplayData   = "display_data"
	OutputTypeError         = "error"
)

// MultilineText is a notebook text field that may be encoded as either a
// single string or an array of line strings.
type MultilineText string

func (m *MultilineText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = MultilineText(s)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	*m = MultilineText(strings.Join(lines, ""))
	return nil
}

func (m MultilineText) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(m))
}

func (m MultilineText) String() string { return string(m) }

// Output is a single output attached to a code cell.
type Output struct {
	OutputType string                   `json:"output_type"`
	Name       string                   `json:"name,omitempty"`
	Text       MultilineText            `json:"text,omitempty"`
	Data       map[string]MultilineText `json:"data,omitempty"`
	EName      string                   `json:"ename,omitempty"`
	EValue     string                   `json:"evalue,omitempty"`
}

// PlainText returns the textual content of the output: stream text,
// text/plain data for execute results and display data, or the error
// name/value for error outputs.
func (o Output) PlainText() string {
	switch o.OutputType {
	case OutputTypeStream:
		return o.Text.String()
	case OutputTypeExecuteResult, OutputTypeDisplayData:
		if txt, ok := o.Data["text/plain"]; ok {
			return txt.String()
		}
		return o.Text.String()
	case OutputTypeError:
		if o.EName == "" && o.EValue == "" {
			return ""
		}
		return strings.TrimSpace(o.EName + ": " + o.EValue)
	}
	return ""
}

// Cell is a single notebook cell.
type Cell struct {
	CellType       string        `json:"cell_type"`
	Source         MultilineText `json:"source"`
	Outputs        []Output      `json:"outputs,omitempty"`
	ExecutionCount *int          `json:"execution_count,omitempty"`
}

// OutputText concatenates the textual content of all outputs on the cell.
func (c Cell) OutputText() string {
	var parts []string
	for _, o := range c.Outputs {
		if t := o.PlainText(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

// Executed reports whether the cell carries evidence of execution: a
// non-nil execution count or at least one output.
func (c Cell) Executed() bool {
	return (c.ExecutionCount != nil && *c.ExecutionCount > 0) || len(c.Outputs) > 0
}

// Notebook is an immutable, loaded notebook document. The grading pipeline
// only ever reads it.
type Notebook struct {
	Cells    []Cell `json:"cells"`
	NBFormat int    `json:"nbformat,omitempty"`
}

// CodeCells returns the code cells in document order.
func (n *Notebook) CodeCells() []Cell {
	var cells []Cell
	for _, c := range n.Cells {
		if c.CellType == CellTypeCode {
			cells = append(cells, c)
		}
	}
	return cells
}

// Source concatenates the source of all code cells, newline-separated.
func (n *Notebook) Source() string {
	var b strings.Builder
	for _, c := range n.Cells {
		if c.CellType != CellTypeCode {
			continue
		}
		b.WriteString(c.Source.String())
		b.WriteString("\n")
	}
	return b.String()
}

// MarkdownText concatenates the source of all markdown cells.
func (n *Notebook) MarkdownText() string {
	var b strings.Builder
	for _, c := range n.Cells {
		if c.CellType != CellTypeMarkdown {
			continue
		}
		b.WriteString(c.Source.String())
		b.WriteString("\n")
	}
	return b.String()
}

// MarkdownCells returns the markdown cells in document order.
func (n *Notebook) MarkdownCells() []Cell {
	var cells []Cell
	for _, c := range n.Cells {
		if c.CellType == CellTypeMarkdown {
			cells = append(cells, c)
		}
	}
	return cells
}

// Stats computes cell execution statistics over the notebook's code cells.
func (n *Notebook) Stats() CellStats {
	stats := CellStats{}
	for _, c := range n.Cells {
		if c.CellType != CellTypeCode {
			continue
		}
		stats.TotalCells++
		if c.Executed() {
			stats.ExecutedCells++
		}
	}
	if stats.TotalCells > 0 {
		stats.ExecutionRate = float64(stats.ExecutedCells) / float64(stats.TotalCells)
	}
	return stats
}

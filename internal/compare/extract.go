package compare

import (
	"regexp"
	"strconv"
	"strings"
)

// ExtractionRule is a named, individually testable pattern that pulls one
// kind of structured value out of free-form notebook output. Rules in a
// family are tried in declaration order; the first match fills the primary
// slot, and all matches feed the lenient union pool.
type ExtractionRule struct {
	Name string
	re   *regexp.Regexp
}

// RowCountRules extract table row counts from printed data frame output.
var RowCountRules = []ExtractionRule{
	{Name: "rows_suffix", re: regexp.MustCompile(`(\d[\d,]*)\s+rows\b`)},
	{Name: "rows_label", re: regexp.MustCompile(`[Rr]ows:\s*(\d[\d,]*)`)},
	{Name: "dims", re: regexp.MustCompile(`(\d[\d,]*)\s*[x×]\s*\d[\d,]*\b`)},
	{Name: "tibble_dims", re: regexp.MustCompile(`tibble:?\s*(\d[\d,]*)\s*[x×]`)},
}

// NumberRules extract decimal and currency values.
var NumberRules = []ExtractionRule{
	{Name: "currency", re: regexp.MustCompile(`\$\s*(\d[\d,]*\.?\d*)`)},
	{Name: "decimal", re: regexp.MustCompile(`(-?\d[\d,]*\.\d+)`)},
}

// CountRules extract small standalone integer counts.
var CountRules = []ExtractionRule{
	{Name: "count_label", re: regexp.MustCompile(`(?i)\b(?:count|total|n)\s*[:=]\s*(\d+)\b`)},
	{Name: "bare_int", re: regexp.MustCompile(`\b(\d{1,6})\b`)},
}

// Extracted holds every structured value pulled from one output capture.
type Extracted struct {
	RowCounts []int     `json:"row_counts,omitempty"`
	Numbers   []float64 `json:"numbers,omitempty"`
	Counts    []int     `json:"counts,omitempty"`
}

// Empty reports whether nothing was extracted.
func (e Extracted) Empty() bool {
	return len(e.RowCounts) == 0 && len(e.Numbers) == 0 && len(e.Counts) == 0
}

// FirstRowCount returns the primary row count, taken from the first rule
// that matched, or -1 when no row count was found.
func (e Extracted) FirstRowCount() int {
	if len(e.RowCounts) == 0 {
		return -1
	}
	return e.RowCounts[0]
}

// ExtractValues applies every rule family to the text.
func ExtractValues(text string) Extracted {
	var out Extracted

	for _, rule := range RowCountRules {
		for _, m := range rule.re.FindAllStringSubmatch(text, -1) {
			if n, ok := parseInt(m[1]); ok {
				out.RowCounts = appendUniqueInt(out.RowCounts, n)
			}
		}
	}
	for _, rule := range NumberRules {
		for _, m := range rule.re.FindAllStringSubmatch(text, -1) {
			if f, ok := parseFloat(m[1]); ok {
				out.Numbers = appendUniqueFloat(out.Numbers, f)
			}
		}
	}
	for _, rule := range CountRules {
		for _, m := range rule.re.FindAllStringSubmatch(text, -1) {
			if n, ok := parseInt(m[1]); ok {
				out.Counts = appendUniqueInt(out.Counts, n)
			}
		}
	}
	return out
}

func parseInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func appendUniqueInt(xs []int, n int) []int {
	for _, x := range xs {
		if x == n {
			return xs
		}
	}
	return append(xs, n)
}

func appendUniqueFloat(xs []float64, f float64) []float64 {
	for _, x := range xs {
		if x == f {
			return xs
		}
	}
	return append(xs, f)
}

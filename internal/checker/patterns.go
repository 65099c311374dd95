package checker

import (
	"regexp"
	"strings"
)

// NamedPattern is a centrally declared, individually testable source
// pattern. Every heuristic the checker applies lives here rather than as an
// inline literal.
type NamedPattern struct {
	Name string
	re   *regexp.Regexp
}

// Matches reports whether the pattern matches anywhere in the source.
func (p NamedPattern) Matches(src string) bool { return p.re.MatchString(src) }

// Count returns the number of matches in the source.
func (p NamedPattern) Count(src string) int { return len(p.re.FindAllStringIndex(src, -1)) }

// AssignmentPatterns returns the patterns that count as evidence that a
// variable was created: arrow assignment, arrow assignment feeding a pipe
// chain, and equals assignment. This is a conservative presence check with
// no notion of scope or overwrite order.
func AssignmentPatterns(name string) []NamedPattern {
	q := regexp.QuoteMeta(name)
	return []NamedPattern{
		{Name: name + "_arrow", re: regexp.MustCompile(`(?m)(^|[^\w.])` + q + `\s*<-`)},
		{Name: name + "_arrow_pipe", re: regexp.MustCompile(`(?m)(^|[^\w.])` + q + `\s*<-[^\n]*(%>%|\|>)`)},
		{Name: name + "_equals", re: regexp.MustCompile(`(?m)(^|[^\w.])` + q + `\s*=[^=]`)},
	}
}

// FunctionCallPattern matches a call of the named function.
func FunctionCallPattern(name string) NamedPattern {
	q := regexp.QuoteMeta(name)
	return NamedPattern{Name: name + "_call", re: regexp.MustCompile(`(^|[^\w.])` + q + `\s*\(`)}
}

// IdentifierPattern matches any standalone occurrence of the identifier,
// used for the lenient existence heuristic (3+ occurrences anywhere count as
// presumptive evidence of use).
func IdentifierPattern(name string) NamedPattern {
	q := regexp.QuoteMeta(name)
	return NamedPattern{Name: name + "_ident", re: regexp.MustCompile(`(^|[^\w.])` + q + `($|[^\w.])`)}
}

// PlaceholderStrings are the literal markers left by unanswered reflection
// questions in the assignment templates. Bracketed variants precede their
// bare substrings; CountPlaceholders depends on that order.
var PlaceholderStrings = []string{
	"[YOUR ANSWER HERE]",
	"[Your answer here]",
	"[your answer here]",
	"YOUR ANSWER HERE",
	"[INSERT YOUR ANSWER]",
	"[ANSWER HERE]",
}

// CountPlaceholders counts non-overlapping placeholder occurrences in text.
// Matched spans are consumed so a bracketed placeholder is not counted a
// second time as its bare substring.
func CountPlaceholders(text string) int {
	count := 0
	for _, p := range PlaceholderStrings {
		if n := strings.Count(text, p); n > 0 {
			count += n
			text = strings.ReplaceAll(text, p, "")
		}
	}
	return count
}

// VariableAssigned reports whether any assignment pattern for the variable
// matches the source.
func VariableAssigned(src, name string) bool {
	for _, p := range AssignmentPatterns(name) {
		if p.Matches(src) {
			return true
		}
	}
	return false
}

// ColumnMentioned reports whether a required output column name appears in
// the source, quoted or bare.
func ColumnMentioned(src, column string) bool {
	return strings.Contains(src, column)
}

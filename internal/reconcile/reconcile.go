// Package reconcile cross-checks model-reported scores against observable
// evidence in the submission and caps scores that the evidence cannot
// support. Rules apply in a fixed order and only ever lower a cap, so the
// pass is monotonic and a second run over its own output changes nothing.
package reconcile

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/checker"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
)

// Inputs is the evidence a reconciliation pass works from.
type Inputs struct {
	Analysis          *model.CodeAnalysis
	Feedback          *model.FeedbackReport
	StudentCode       string
	TemplateCode      string
	RequiredVariables []string
	// MatchRate is the output comparison match rate in percent, nil when
	// no solution notebook was available.
	MatchRate *float64
	// OutputsPresent reports whether the notebook's code cells carry any
	// execution output at all.
	OutputsPresent bool
}

// Result carries the adjusted scores and the audit trail of applied rules.
type Result struct {
	TechnicalScore    float64
	LogicScore        float64
	CompletenessScore float64
	OverallScore      float64
	Notes             []string
	Adjusted          bool
}

// markerPhrases are the literal signs of unfinished work, matched
// case-insensitively per line. Lines of working code never contain these.
var markerPhrases = []string{
	"your code here",
	"your answer here",
	"fill in",
	"replace this",
	"delete this",
	"not implemented",
	"xxxxx",
}

// markerWord matches todo/fixme as whole words; checked only on comment
// lines so identifiers are never mistaken for markers.
var markerWord = regexp.MustCompile(`\b(todo|fixme)\b`)

var errorLine = regexp.MustCompile(`(?im)^.*(\berror in\b|\berror:|\bexception\b|\btraceback\b).*$`)

// benignErrorPhrases are error-shaped strings that do not indicate a failed
// execution, such as a column literally named "error" or handled warnings.
var benignErrorPhrases = []string{
	"no error",
	"without error",
	"error rate",
	"error bars",
	"standard error",
	"errors = 0",
	"0 errors",
}

// Reconcile applies the evidence rules in order and returns the capped
// scores together with notes explaining every adjustment. The inputs are
// not modified.
func Reconcile(in Inputs) Result {
	res := Result{
		TechnicalScore:    in.Analysis.TechnicalScore,
		LogicScore:        in.Analysis.LogicScore,
		CompletenessScore: in.Analysis.CompletenessScore,
		OverallScore:      in.Feedback.OverallScore,
	}

	minCap := 100.0
	lower := func(cap float64, note string) {
		if cap < minCap {
			minCap = cap
		}
		res.Notes = append(res.Notes, note)
	}

	// Rule 1: incompleteness markers.
	markers := countMarkers(in.StudentCode)
	if delta, ok := templateDelta(in.StudentCode, in.TemplateCode); ok && delta < 0.10 && markers < 8 {
		markers = 8
		res.Notes = append(res.Notes, "submission is barely longer than the starter template, treating as largely unmodified")
	}
	switch {
	case markers >= 10:
		lower(20, fmt.Sprintf("found %d incompleteness markers, capping technical scores at 20", markers))
	case markers >= 5:
		lower(50, fmt.Sprintf("found %d incompleteness markers, capping technical scores at 50", markers))
	case markers >= 3:
		lower(70, fmt.Sprintf("found %d incompleteness markers, capping technical scores at 70", markers))
	}

	// Rule 2: visible execution errors.
	errCount := countErrors(in.StudentCode)
	switch {
	case errCount >= 3:
		lower(70, fmt.Sprintf("%d execution errors visible in the submission, capping technical scores at 70", errCount))
	case errCount >= 1:
		lower(80, fmt.Sprintf("%d execution error visible in the submission, capping technical scores at 80", errCount))
	}

	// Rule 3: missing required variables.
	missing := missingVariables(in.StudentCode, in.RequiredVariables)
	if len(missing) >= 5 {
		lower(80, fmt.Sprintf("%d required variables never assigned (%s), capping technical scores at 80",
			len(missing), strings.Join(missing, ", ")))
	}

	// Rule 5: output agreement with the reference solution.
	if in.MatchRate != nil {
		mr := *in.MatchRate
		switch {
		case mr < 40:
			lower(50, fmt.Sprintf("only %.0f%% of outputs match the reference solution, capping technical scores at 50", mr))
		case mr < 60:
			lower(70, fmt.Sprintf("only %.0f%% of outputs match the reference solution, capping technical scores at 70", mr))
		case mr < 75:
			lower(80, fmt.Sprintf("%.0f%% of outputs match the reference solution, capping technical scores at 80", mr))
		case mr >= 90:
			res.Notes = append(res.Notes, fmt.Sprintf("%.0f%% of outputs match the reference solution", mr))
		}
	}

	// Rule 4: floor for substantial work the model underrated. The floor
	// never overrides a cap below it, so it only fires when every earlier
	// rule left room at 70 or above.
	if minCap >= 70 && in.Analysis.TechnicalScore < 50 && substantialWork(in, errCount, missing) {
		raised := false
		if res.TechnicalScore < 70 {
			res.TechnicalScore = 70
			raised = true
		}
		if res.LogicScore < 70 {
			res.LogicScore = 70
			raised = true
		}
		if res.CompletenessScore < 70 {
			res.CompletenessScore = 70
			raised = true
		}
		if raised {
			res.Notes = append(res.Notes, "substantial complete work present, raising technical scores to the 70 floor")
		}
	}

	if minCap < 100 {
		res.TechnicalScore = min(res.TechnicalScore, minCap)
		res.LogicScore = min(res.LogicScore, minCap)
		res.CompletenessScore = min(res.CompletenessScore, minCap)
		res.OverallScore = min(res.OverallScore, minCap)
	}
	res.TechnicalScore = clamp(res.TechnicalScore)
	res.LogicScore = clamp(res.LogicScore)
	res.CompletenessScore = clamp(res.CompletenessScore)
	res.OverallScore = clamp(res.OverallScore)

	res.Adjusted = res.TechnicalScore != in.Analysis.TechnicalScore ||
		res.LogicScore != in.Analysis.LogicScore ||
		res.CompletenessScore != in.Analysis.CompletenessScore ||
		res.OverallScore != in.Feedback.OverallScore
	if res.Adjusted {
		zap.L().Info("reconcile: adjusted model scores",
			zap.Float64("technical", res.TechnicalScore),
			zap.Float64("overall", res.OverallScore),
			zap.Strings("notes", res.Notes),
		)
	}
	return res
}

// countMarkers counts lines that are placeholder markers rather than code:
// marker phrases anywhere on the line, todo/fixme words on comment lines,
// and bare ellipsis lines. R's `...` varargs inside a call never count.
func countMarkers(code string) int {
	n := 0
	for _, line := range strings.Split(code, "\n") {
		t := strings.ToLower(strings.TrimSpace(line))
		if t == "" {
			continue
		}
		if markerLine(t) {
			n++
		}
	}
	return n
}

func markerLine(t string) bool {
	for _, m := range markerPhrases {
		if strings.Contains(t, m) {
			return true
		}
	}
	comment := strings.HasPrefix(t, "#")
	if comment && markerWord.MatchString(t) {
		return true
	}
	if t == "..." || (comment && strings.Contains(t, "...")) {
		return true
	}
	return false
}

// templateDelta returns how much the student's code differs in length from
// the template, as a signed fraction of the template length. The second
// return is false when no template is available.
func templateDelta(student, template string) (float64, bool) {
	ts := len(strings.TrimSpace(template))
	if ts == 0 {
		return 0, false
	}
	ss := len(strings.TrimSpace(student))
	return float64(ss-ts) / float64(ts), true
}

func countErrors(code string) int {
	n := 0
	for _, line := range errorLine.FindAllString(code, -1) {
		lower := strings.ToLower(line)
		benign := false
		for _, p := range benignErrorPhrases {
			if strings.Contains(lower, p) {
				benign = true
				break
			}
		}
		if !benign {
			n++
		}
	}
	return n
}

// missingVariables reports required variables that are neither assigned nor
// used repeatedly in the student's code. A variable mentioned three or more
// times counts as present even without an assignment pattern, which keeps
// piped or functional styles from being penalized.
func missingVariables(code string, required []string) []string {
	var missing []string
	for _, name := range required {
		if checker.VariableAssigned(code, name) {
			continue
		}
		if checker.IdentifierPattern(name).Count(code) >= 3 {
			continue
		}
		missing = append(missing, name)
	}
	return missing
}

// substantialWork is the gate for the rule 4 floor: a long submission with
// outputs, no visible errors, and at most one missing required variable.
func substantialWork(in Inputs, errCount int, missing []string) bool {
	if errCount > 0 || len(missing) > 1 || !in.OutputsPresent {
		return false
	}
	return nonCommentLines(in.StudentCode) > 150
}

func nonCommentLines(code string) int {
	n := 0
	for _, line := range strings.Split(code, "\n") {
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		n++
	}
	return n
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

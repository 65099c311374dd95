package checker

import (
	"go.uber.org/zap"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
)

// Completion thresholds for item-membership sections. These are design
// constants, not rubric keys; partial-credit rules are the configurable
// path for policy changes.
const (
	completeThreshold = 0.8
	partialThreshold  = 0.5
	partialMultiplier = 0.5
)

// CheckVariables searches the concatenated source for each required
// variable's assignment patterns. A rubric with no required variables
// degrades to 100% completion (vacuously true).
func CheckVariables(code string, required []string) model.VariableCheck {
	check := model.VariableCheck{
		TotalRequired: len(required),
		Found:         []string{},
		Missing:       []string{},
	}
	if len(required) == 0 {
		check.CompletionRate = 1.0
		return check
	}

	for _, name := range required {
		if VariableAssigned(code, name) {
			check.Found = append(check.Found, name)
		} else {
			check.Missing = append(check.Missing, name)
		}
	}
	check.CompletionRate = float64(len(check.Found)) / float64(check.TotalRequired)
	return check
}

// CheckSections evaluates every rubric section against the student's code
// and markdown text. Zero sections means "nothing to validate", never a
// grading failure.
func CheckSections(code, markdown string, rubric *model.Rubric) []model.SectionResult {
	var results []model.SectionResult
	for _, id := range rubric.SectionIDs() {
		sec := rubric.AutograderChecks.Sections[id]
		if sec.IsMarkdown() {
			results = append(results, checkMarkdownSection(id, sec, markdown))
		} else {
			results = append(results, checkCodeSection(id, sec, code))
		}
	}
	return results
}

// Check runs the variable and section checks in one pass.
func Check(code, markdown string, rubric *model.Rubric) (model.VariableCheck, []model.SectionResult) {
	vars := CheckVariables(code, rubric.AutograderChecks.RequiredVariables)
	sections := CheckSections(code, markdown, rubric)
	zap.L().Debug("checker: pass complete",
		zap.Int("variables_found", len(vars.Found)),
		zap.Int("variables_missing", len(vars.Missing)),
		zap.Int("sections", len(sections)),
	)
	return vars, sections
}

// BaseScore derives the 0-100 heuristic score. With sections present it is
// the earned/possible point ratio; with no sections it falls back to the
// variable completion rate.
func BaseScore(vars model.VariableCheck, sections []model.SectionResult) float64 {
	var possible, earned float64
	for _, s := range sections {
		possible += s.PointsPossible
		earned += s.PointsEarned
	}
	if possible > 0 {
		return earned / possible * 100
	}
	return vars.CompletionRate * 100
}

func checkCodeSection(id string, sec model.Section, code string) model.SectionResult {
	result := model.SectionResult{
		ID:             id,
		Name:           sec.Name,
		PointsPossible: sec.Points,
	}

	var found, missing []string
	for _, v := range sec.Variables {
		if VariableAssigned(code, v) {
			found = append(found, v)
		} else {
			missing = append(missing, v)
		}
	}
	for _, fn := range sec.Functions {
		if FunctionCallPattern(fn).Matches(code) {
			found = append(found, fn+"()")
		} else {
			missing = append(missing, fn+"()")
		}
	}
	for _, col := range sec.RequiredColumns {
		if ColumnMentioned(code, col) {
			found = append(found, col)
		} else {
			missing = append(missing, col)
		}
	}

	total := len(found) + len(missing)
	ratio := 1.0 // no required items: vacuously complete
	if total > 0 {
		ratio = float64(len(found)) / float64(total)
	}
	result.FoundItems = found
	result.MissingItems = missing
	finishSection(&result, ratio)
	return result
}

func checkMarkdownSection(id string, sec model.Section, markdown string) model.SectionResult {
	result := model.SectionResult{
		ID:             id,
		Name:           sec.Name,
		PointsPossible: sec.Points,
	}

	expected := sec.ReflectionQuestions
	if expected <= 0 {
		finishSection(&result, 1.0)
		return result
	}
	placeholders := CountPlaceholders(markdown)
	if placeholders > expected {
		placeholders = expected
	}
	ratio := float64(expected-placeholders) / float64(expected)
	finishSection(&result, ratio)
	return result
}

func finishSection(result *model.SectionResult, ratio float64) {
	result.CompletionRate = ratio
	switch {
	case ratio >= completeThreshold:
		result.Status = model.SectionComplete
		result.PointsEarned = result.PointsPossible
	case ratio >= partialThreshold:
		result.Status = model.SectionPartial
		result.PointsEarned = result.PointsPossible * partialMultiplier
	default:
		result.Status = model.SectionIncomplete
		result.PointsEarned = 0
	}
}

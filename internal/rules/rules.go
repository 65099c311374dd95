// Package rules applies configuration-driven partial-credit adjustments to
// section scores, so grading policy stays auditable and changeable without
// code edits.
package rules

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
)

// Applied records which rule fired for a section.
type Applied struct {
	Section    string  `json:"section"`
	Rule       string  `json:"rule"`
	Multiplier float64 `json:"multiplier"`
	Rationale  string  `json:"rationale"`
}

// Adjust evaluates the rubric's partial-credit rules for one section
// against the student's source. Rules are tried in ascending priority; the
// first rule whose condition matches, and none of whose not_patterns match,
// replaces the checker-computed score with multiplier × points_possible.
// No match keeps the section unchanged.
func Adjust(sectionID string, section model.SectionResult, code string, rubric *model.Rubric) (model.SectionResult, *Applied) {
	for _, rule := range rubric.RulesForSection(sectionID) {
		matched, err := evaluate(rule.PartialCreditRule, code)
		if err != nil {
			zap.L().Warn("rules: skipping malformed rule",
				zap.String("section", sectionID),
				zap.String("rule", rule.Name),
				zap.Error(err),
			)
			continue
		}
		if !matched {
			continue
		}
		if vetoed, err := anyMatches(rule.NotPatterns, code); err != nil {
			zap.L().Warn("rules: skipping rule with malformed not_patterns",
				zap.String("section", sectionID),
				zap.String("rule", rule.Name),
				zap.Error(err),
			)
			continue
		} else if vetoed {
			continue
		}

		adjusted := section
		adjusted.PointsEarned = section.PointsPossible * rule.Multiplier
		adjusted.CompletionRate = rule.Multiplier
		adjusted.Status = statusForMultiplier(rule.Multiplier)
		adjusted.RuleApplied = rule.Name
		adjusted.RuleRationale = rule.Explanation
		if adjusted.RuleRationale == "" {
			adjusted.RuleRationale = fmt.Sprintf("rule %s awarded %.0f%% of section credit", rule.Name, rule.Multiplier*100)
		}

		zap.L().Info("rules: partial credit applied",
			zap.String("section", sectionID),
			zap.String("rule", rule.Name),
			zap.Float64("multiplier", rule.Multiplier),
		)
		return adjusted, &Applied{
			Section:    sectionID,
			Rule:       rule.Name,
			Multiplier: rule.Multiplier,
			Rationale:  adjusted.RuleRationale,
		}
	}
	return section, nil
}

// AdjustAll runs Adjust over every section result in order.
func AdjustAll(sections []model.SectionResult, code string, rubric *model.Rubric) ([]model.SectionResult, []Applied) {
	adjusted := make([]model.SectionResult, len(sections))
	var applied []Applied
	for i, sec := range sections {
		result, a := Adjust(sec.ID, sec, code, rubric)
		adjusted[i] = result
		if a != nil {
			applied = append(applied, *a)
		}
	}
	return adjusted, applied
}

func evaluate(rule model.PartialCreditRule, code string) (bool, error) {
	switch rule.ConditionType {
	case model.ConditionRegexPresent:
		return matches(rule.Pattern, code)
	case model.ConditionRegexAbsent:
		ok, err := matches(rule.Pattern, code)
		return !ok, err
	case model.ConditionAllOf:
		for _, p := range rule.Patterns {
			ok, err := matches(p, code)
			if err != nil || !ok {
				return false, err
			}
		}
		return len(rule.Patterns) > 0, nil
	case model.ConditionAnyOf:
		return anyMatches(rule.Patterns, code)
	case model.ConditionCountBetween:
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return false, err
		}
		n := len(re.FindAllStringIndex(code, -1))
		if rule.MaxCount > 0 && n > rule.MaxCount {
			return false, nil
		}
		return n >= rule.MinCount, nil
	default:
		return false, fmt.Errorf("unknown condition_type %q", rule.ConditionType)
	}
}

func matches(pattern, code string) (bool, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(code), nil
}

func anyMatches(patterns []string, code string) (bool, error) {
	for _, p := range patterns {
		ok, err := matches(p, code)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func statusForMultiplier(m float64) model.SectionStatus {
	switch {
	case m >= 0.8:
		return model.SectionComplete
	case m > 0:
		return model.SectionPartial
	default:
		return model.SectionIncomplete
	}
}

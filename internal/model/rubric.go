package model

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Rule condition types understood by the partial-credit engine.
const (
	ConditionRegexPresent = "regex_present"
	ConditionRegexAbsent  = "regex_absent"
	ConditionAllOf        = "all_of"
	ConditionAnyOf        = "any_of"
	ConditionCountBetween = "count_between"
)

// AssignmentInfo identifies the assignment a rubric grades.
type AssignmentInfo struct {
	Name        string  `json:"name" yaml:"name"`
	Title       string  `json:"title" yaml:"title"`
	TotalPoints float64 `json:"total_points" yaml:"total_points"`
}

// Section describes one graded section of the assignment.
type Section struct {
	Name                string   `json:"name" yaml:"name"`
	Points              float64  `json:"points" yaml:"points"`
	Variables           []string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Functions           []string `json:"functions,omitempty" yaml:"functions,omitempty"`
	RequiredColumns     []string `json:"required_columns,omitempty" yaml:"required_columns,omitempty"`
	CheckType           string   `json:"check_type,omitempty" yaml:"check_type,omitempty"`
	ReflectionQuestions int      `json:"reflection_questions,omitempty" yaml:"reflection_questions,omitempty"`
}

// IsMarkdown reports whether the section is graded as a markdown/reflection
// section rather than by code-item membership.
func (s Section) IsMarkdown() bool { return s.CheckType == "markdown" }

// AutograderChecks holds the mechanically checkable rubric requirements.
type AutograderChecks struct {
	RequiredVariables []string           `json:"required_variables" yaml:"required_variables"`
	Sections          map[string]Section `json:"sections" yaml:"sections"`
}

// PartialCreditRule is a declarative conditional score adjustment for one
// section. Rules are evaluated in ascending Priority order; the first rule
// whose condition matches (and none of whose NotPatterns match) wins.
type PartialCreditRule struct {
	ConditionType string   `json:"condition_type" yaml:"condition_type"`
	Pattern       string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Patterns      []string `json:"patterns,omitempty" yaml:"patterns,omitempty"`
	NotPatterns   []string `json:"not_patterns,omitempty" yaml:"not_patterns,omitempty"`
	MinCount      int      `json:"min_count,omitempty" yaml:"min_count,omitempty"`
	MaxCount      int      `json:"max_count,omitempty" yaml:"max_count,omitempty"`
	Multiplier    float64  `json:"multiplier" yaml:"multiplier"`
	Priority      int      `json:"priority" yaml:"priority"`
	Explanation   string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// Rubric is the declarative grading configuration for one assignment.
// Loaded once per grading session and never mutated.
type Rubric struct {
	AssignmentInfo     AssignmentInfo                          `json:"assignment_info" yaml:"assignment_info"`
	AutograderChecks   AutograderChecks                        `json:"autograder_checks" yaml:"autograder_checks"`
	PartialCreditRules map[string]map[string]PartialCreditRule `json:"partial_credit_rules,omitempty" yaml:"partial_credit_rules,omitempty"`
}

// SectionIDs returns the rubric's section ids in stable sorted order.
// The ipynb-era JSON rubrics key sections by ids like "1_import", "2_clean",
// so lexical order matches assignment order.
func (r *Rubric) SectionIDs() []string {
	ids := make([]string, 0, len(r.AutograderChecks.Sections))
	for id := range r.AutograderChecks.Sections {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SectionPointsSum totals the point values of all sections.
func (r *Rubric) SectionPointsSum() float64 {
	var sum float64
	for _, s := range r.AutograderChecks.Sections {
		sum += s.Points
	}
	return sum
}

// RulesForSection returns the section's partial-credit rules sorted by
// ascending priority, name as tiebreak. Returns nil when the rubric carries
// no rules for the section.
func (r *Rubric) RulesForSection(sectionID string) []NamedRule {
	byName, ok := r.PartialCreditRules[sectionID]
	if !ok || len(byName) == 0 {
		return nil
	}
	rules := make([]NamedRule, 0, len(byName))
	for name, rule := range byName {
		rules = append(rules, NamedRule{Name: name, PartialCreditRule: rule})
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority < rules[j].Priority
		}
		return rules[i].Name < rules[j].Name
	})
	return rules
}

// NamedRule pairs a partial-credit rule with its rubric key.
type NamedRule struct {
	Name string
	PartialCreditRule
}

// Validate checks the rubric's internal invariants.
func (r *Rubric) Validate() []string {
	var problems []string
	if r.AssignmentInfo.TotalPoints <= 0 {
		problems = append(problems, "assignment_info.total_points must be positive")
	}
	if sum := r.SectionPointsSum(); r.AssignmentInfo.TotalPoints > 0 && sum > r.AssignmentInfo.TotalPoints+1e-9 {
		problems = append(problems, eris.Errorf(
			"section points sum %.2f exceeds total_points %.2f", sum, r.AssignmentInfo.TotalPoints).Error())
	}
	for id, sec := range r.AutograderChecks.Sections {
		if sec.Points < 0 {
			problems = append(problems, "section "+id+": negative point value")
		}
		if sec.IsMarkdown() && sec.ReflectionQuestions <= 0 {
			problems = append(problems, "section "+id+": markdown section without reflection_questions")
		}
	}
	for sectionID, byName := range r.PartialCreditRules {
		if _, ok := r.AutograderChecks.Sections[sectionID]; !ok {
			problems = append(problems, "partial_credit_rules reference unknown section "+sectionID)
		}
		seen := map[int]string{}
		for name, rule := range byName {
			switch rule.ConditionType {
			case ConditionRegexPresent, ConditionRegexAbsent, ConditionAllOf, ConditionAnyOf, ConditionCountBetween:
			default:
				problems = append(problems, "rule "+sectionID+"/"+name+": unknown condition_type "+rule.ConditionType)
			}
			if rule.Multiplier < 0 || rule.Multiplier > 1 {
				problems = append(problems, "rule "+sectionID+"/"+name+": multiplier outside [0,1]")
			}
			if prev, dup := seen[rule.Priority]; dup {
				problems = append(problems, "rules "+sectionID+"/"+prev+" and "+sectionID+"/"+name+" share priority")
			}
			seen[rule.Priority] = name
		}
	}
	return problems
}

// LoadRubric reads a rubric document from disk. YAML and JSON are both
// accepted, selected by file extension.
func LoadRubric(path string) (*Rubric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "rubric: read file")
	}

	var rubric Rubric
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &rubric); err != nil {
			return nil, eris.Wrap(err, "rubric: parse yaml")
		}
	default:
		if err := json.Unmarshal(data, &rubric); err != nil {
			return nil, eris.Wrap(err, "rubric: parse json")
		}
	}
	return &rubric, nil
}

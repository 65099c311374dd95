package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
)

func testRubric() *model.Rubric {
	return &model.Rubric{
		AssignmentInfo: model.AssignmentInfo{Name: "hw1", TotalPoints: 20},
		AutograderChecks: model.AutograderChecks{
			RequiredVariables: []string{"sales", "clean", "summary_stats"},
			Sections: map[string]model.Section{
				"1_import": {
					Name:      "Data Import",
					Points:    10,
					Variables: []string{"sales"},
					Functions: []string{"read_csv"},
				},
				"2_reflect": {
					Name:                "Reflections",
					Points:              10,
					CheckType:           "markdown",
					ReflectionQuestions: 4,
				},
			},
		},
	}
}

func TestCheckVariables(t *testing.T) {
	code := "sales <- read_csv('x.csv')\nclean <- sales %>% filter(!is.na(amount))"
	check := CheckVariables(code, []string{"sales", "clean", "summary_stats"})

	assert.Equal(t, []string{"sales", "clean"}, check.Found)
	assert.Equal(t, []string{"summary_stats"}, check.Missing)
	assert.InDelta(t, 2.0/3.0, check.CompletionRate, 0.001)
}

func TestCheckVariables_NoneRequired(t *testing.T) {
	check := CheckVariables("whatever", nil)
	assert.Equal(t, 1.0, check.CompletionRate)
	assert.Empty(t, check.Missing)
}

func TestCheckSections_CodeComplete(t *testing.T) {
	rubric := testRubric()
	code := "sales <- read_csv('x.csv')"
	results := CheckSections(code, "", rubric)
	require.Len(t, results, 2)

	imp := results[0]
	assert.Equal(t, "1_import", imp.ID)
	assert.Equal(t, model.SectionComplete, imp.Status)
	assert.Equal(t, 10.0, imp.PointsEarned)
	assert.ElementsMatch(t, []string{"sales", "read_csv()"}, imp.FoundItems)
}

func TestCheckSections_CodePartial(t *testing.T) {
	rubric := testRubric()
	// Variable present, function missing: 1/2 = 0.5 lands on partial.
	code := "sales <- data.frame()"
	results := CheckSections(code, "", rubric)

	imp := results[0]
	assert.Equal(t, model.SectionPartial, imp.Status)
	assert.Equal(t, 5.0, imp.PointsEarned)
	assert.Contains(t, imp.MissingItems, "read_csv()")
}

func TestCheckSections_CodeIncomplete(t *testing.T) {
	rubric := testRubric()
	results := CheckSections("x <- 1", "", rubric)

	imp := results[0]
	assert.Equal(t, model.SectionIncomplete, imp.Status)
	assert.Zero(t, imp.PointsEarned)
}

func TestCheckSections_MarkdownPlaceholders(t *testing.T) {
	rubric := testRubric()
	md := "Q1: real answer\nQ2: [YOUR ANSWER HERE]\nQ3: another answer\nQ4: more"
	results := CheckSections("", md, rubric)
	require.Len(t, results, 2)

	refl := results[1]
	assert.Equal(t, "2_reflect", refl.ID)
	// 3 of 4 answered lands on partial (0.75 < 0.8).
	assert.InDelta(t, 0.75, refl.CompletionRate, 0.001)
	assert.Equal(t, model.SectionPartial, refl.Status)
}

func TestCheckSections_MarkdownAllAnswered(t *testing.T) {
	rubric := testRubric()
	results := CheckSections("", "four real answers, no markers", rubric)

	refl := results[1]
	assert.Equal(t, model.SectionComplete, refl.Status)
	assert.Equal(t, 10.0, refl.PointsEarned)
}

func TestBaseScore_FromSections(t *testing.T) {
	sections := []model.SectionResult{
		{PointsPossible: 10, PointsEarned: 10},
		{PointsPossible: 10, PointsEarned: 5},
	}
	score := BaseScore(model.VariableCheck{}, sections)
	assert.InDelta(t, 75.0, score, 0.001)
}

func TestBaseScore_FallbackToVariables(t *testing.T) {
	vars := model.VariableCheck{CompletionRate: 0.6}
	assert.InDelta(t, 60.0, BaseScore(vars, nil), 0.001)
}

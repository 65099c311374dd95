package feedback

import (
	"fmt"
	"strings"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
)

// maxPromptChars bounds the notebook text injected into a prompt.
const maxPromptChars = 24000

const codeAnalysisPrompt = `You are grading the code in a student data-analysis notebook for the assignment "%s".

Student code:
%s
%s
Assess the code's technical quality. Return a valid JSON object:
{"technical_score": <0-100>, "logic_score": <0-100>, "completeness_score": <0-100>, "code_strengths": ["..."], "code_suggestions": ["..."], "technical_observations": ["..."]}`

const feedbackPrompt = `You are writing instructor feedback for a student data-analysis notebook for the assignment "%s".

Student narrative (markdown cells):
%s

Student code:
%s

Assess the analysis quality and communication. Return a valid JSON object:
{"overall_score": <0-100>, "business_understanding": "...", "communication_clarity": "...", "data_interpretation": "...", "methodology_appropriateness": "...", "reflection_quality": "...", "detailed_feedback": {"reflection_assessment": ["..."], "analytical_strengths": ["..."], "business_application": ["..."], "learning_demonstration": ["..."], "areas_for_development": ["..."], "recommendations": ["..."]}, "instructor_comments": "..."}`

// BuildCodeAnalysisPrompt renders the code-analysis prompt. A template is
// included when available so the model can judge what the student added.
func BuildCodeAnalysisPrompt(rubric *model.Rubric, code, templateCode string) string {
	templateBlock := ""
	if templateCode != "" {
		templateBlock = "\nAssignment template (pre-provided scaffolding, not student work):\n" + truncate(templateCode, maxPromptChars/4) + "\n"
	}
	return fmt.Sprintf(codeAnalysisPrompt,
		rubric.AssignmentInfo.Title,
		truncate(code, maxPromptChars),
		templateBlock,
	)
}

// BuildFeedbackPrompt renders the narrative feedback prompt.
func BuildFeedbackPrompt(rubric *model.Rubric, markdown, code string) string {
	return fmt.Sprintf(feedbackPrompt,
		rubric.AssignmentInfo.Title,
		truncate(markdown, maxPromptChars/2),
		truncate(code, maxPromptChars/2),
	)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return strings.TrimSpace(s[:limit]) + "\n... [truncated]"
}

// Package reflection grades free-text reflection answers with a language
// model, one question at a time.
package reflection

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/checker"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/pkg/llm"
)

// questionHeading matches reflection question headings in assignment
// markdown, e.g. "### Question 3" or "**Question 3:**". Leading
// whitespace stays within the heading's own line.
var questionHeading = regexp.MustCompile(`(?im)^[ \t]*(?:#+[ \t]*|\*\*)?question[ \t]*(\d+)`)

// Answer is one extracted question/answer pair.
type Answer struct {
	Question string `json:"question"`
	Response string `json:"response"`
}

// Grade is the scored outcome for one answer.
type Grade struct {
	Question     string  `json:"question"`
	Score        float64 `json:"score"`
	Rationale    string  `json:"rationale"`
	ManualReview bool    `json:"manual_review,omitempty"`
}

const gradePrompt = `Grade this student reflection answer on a 0-100 quality scale.

Question:
%s

Student answer:
%s
%s
Return a valid JSON object: {"score": <0-100>, "rationale": "<one or two sentences>"}`

// ExtractAnswers scans the notebook's markdown cells for question headings
// and pairs each with the text that follows it within the cell.
func ExtractAnswers(nb *model.Notebook) []Answer {
	var answers []Answer
	for _, cell := range nb.MarkdownCells() {
		text := cell.Source.String()
		locs := questionHeading.FindAllStringIndex(text, -1)
		for i, loc := range locs {
			end := len(text)
			if i+1 < len(locs) {
				end = locs[i+1][0]
			}
			block := text[loc[0]:end]
			lines := strings.SplitN(block, "\n", 2)
			question := strings.TrimSpace(lines[0])
			response := ""
			if len(lines) > 1 {
				response = strings.TrimSpace(lines[1])
			}
			answers = append(answers, Answer{Question: question, Response: response})
		}
	}
	return answers
}

// Grader scores reflection answers against a language model.
type Grader struct {
	client    llm.Client
	maxTokens int
	timeout   time.Duration
}

// NewGrader creates a reflection grader backed by the given client.
func NewGrader(client llm.Client, maxTokens int, timeout time.Duration) *Grader {
	return &Grader{client: client, maxTokens: maxTokens, timeout: timeout}
}

// GradeAnswers scores each answer. Reference answers, when provided, are
// matched to questions by position. Placeholder or empty answers score 0
// without a model call; model failures degrade to the midpoint score with a
// manual-review flag.
func (g *Grader) GradeAnswers(ctx context.Context, answers []Answer, reference []string) []Grade {
	grades := make([]Grade, 0, len(answers))
	for i, ans := range answers {
		grade := Grade{Question: ans.Question}

		if strings.TrimSpace(ans.Response) == "" || checker.CountPlaceholders(ans.Response) > 0 {
			grade.Rationale = "answer is empty or still contains the placeholder text"
			grades = append(grades, grade)
			continue
		}

		refBlock := ""
		if i < len(reference) && reference[i] != "" {
			refBlock = "\nReference answer (for calibration):\n" + reference[i] + "\n"
		}
		prompt := fmt.Sprintf(gradePrompt, ans.Question, ans.Response, refBlock)

		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		text, err := g.client.Generate(callCtx, prompt, g.maxTokens)
		cancel()
		if err != nil {
			zap.L().Warn("reflection: grading call failed",
				zap.String("question", ans.Question),
				zap.Error(err),
			)
			grade.Score = model.DefaultParseFailureScore
			grade.Rationale = model.ManualReviewNote
			grade.ManualReview = true
			grades = append(grades, grade)
			continue
		}

		score, rationale, ok := parseGrade(text)
		if !ok {
			grade.Score = model.DefaultParseFailureScore
			grade.Rationale = model.ManualReviewNote
			grade.ManualReview = true
		} else {
			grade.Score = score
			grade.Rationale = rationale
		}
		grades = append(grades, grade)
	}
	return grades
}

// Average returns the mean score across grades, or -1 when there are none.
func Average(grades []Grade) float64 {
	if len(grades) == 0 {
		return -1
	}
	var sum float64
	for _, g := range grades {
		sum += g.Score
	}
	return sum / float64(len(grades))
}

func parseGrade(text string) (float64, string, bool) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(strings.TrimPrefix(text, "```json"), "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return 0, "", false
	}

	var parsed struct {
		Score     float64 `json:"score"`
		Rationale string  `json:"rationale"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return 0, "", false
	}
	if parsed.Score < 0 {
		parsed.Score = 0
	}
	if parsed.Score > 100 {
		parsed.Score = 100
	}
	return parsed.Score, parsed.Rationale, true
}

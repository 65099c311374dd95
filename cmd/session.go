package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/config"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/feedback"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/grader"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/notebook"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/reflection"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/pkg/llm"
)

// Flags shared by grade and batch.
var (
	rubricPath   string
	solutionPath string
	templatePath string
)

func addGradingFlags(flags *pflag.FlagSet) {
	flags.StringVar(&rubricPath, "rubric", "", "rubric file (json or yaml, required)")
	flags.StringVar(&solutionPath, "solution", "", "reference solution notebook (optional)")
	flags.StringVar(&templatePath, "template", "", "assignment starter notebook (optional)")
}

func newClient(c config.LLMConfig) (llm.Client, error) {
	switch c.Provider {
	case "anthropic":
		return llm.NewAnthropic(c.Key, c.Model, c.RequestsPerMinute), nil
	case "openai":
		return llm.NewOpenAI(c.BaseURL, c.Key, c.Model, c.RequestsPerMinute), nil
	case "":
		return nil, nil
	default:
		return nil, eris.Errorf("unsupported llm provider: %s", c.Provider)
	}
}

// initSession assembles a grading session from config and flags.
func initSession() (*grader.Session, error) {
	if rubricPath == "" {
		return nil, eris.New("--rubric is required")
	}
	rubric, err := model.LoadRubric(rubricPath)
	if err != nil {
		return nil, err
	}
	if problems := rubric.Validate(); len(problems) > 0 {
		for _, p := range problems {
			zap.L().Warn("rubric lint", zap.String("problem", p))
		}
	}

	opts := grader.Options{
		Rubric:    rubric,
		MaxPoints: cfg.Grading.MaxPoints,
		Weights:   cfg.Grading.Weights,
		Compare:   cfg.Compare.ToCompare(),
	}
	if solutionPath != "" {
		sol, err := notebook.Load(solutionPath)
		if err != nil {
			return nil, eris.Wrap(err, "load solution")
		}
		opts.Solution = sol
	}
	if templatePath != "" {
		tpl, err := notebook.Load(templatePath)
		if err != nil {
			return nil, eris.Wrap(err, "load template")
		}
		opts.TemplateCode = tpl.Source()
	}

	codeClient, err := newClient(cfg.CodeLLM)
	if err != nil {
		return nil, err
	}
	textClient, err := newClient(cfg.TextLLM)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.Grading.TimeoutSecs) * time.Second
	var gen *feedback.Generator
	if codeClient != nil && textClient != nil {
		gen = feedback.NewGenerator(codeClient, textClient, cfg.Grading.MaxTokens, timeout)
	} else {
		zap.L().Warn("model backends not fully configured, grading without AI feedback")
	}
	var refl *reflection.Grader
	if textClient != nil {
		refl = reflection.NewGrader(textClient, cfg.Grading.MaxTokens, timeout)
	}

	return grader.NewSession(opts, gen, refl)
}

func printRecordJSON(rec any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

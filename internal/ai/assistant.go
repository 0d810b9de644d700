// Package ai turns resume text into model prompts and interprets the replies.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/resume-assistant/internal/utils"
)

const (
	defaultMaxLogLength = 200

	summaryTemperature  = 0.4
	scoreTemperature    = 0.4
	questionTemperature = 0.5
	defaultTopP         = 0.9

	resumePlaceholder = "{{RESUME}}"
	jobPlaceholder    = "{{JOB}}"
)

// ErrEmptyResume is returned when an action is requested without resume text.
var ErrEmptyResume = errors.New("resume text is empty")

var (
	//go:embed prompts/summary.md
	summaryPrompt string
	//go:embed prompts/score.md
	scorePrompt string
	//go:embed prompts/score_job.md
	scoreJobPrompt string
	//go:embed prompts/questions.md
	questionsPrompt string
	//go:embed prompts/questions_job.md
	questionsJobPrompt string
)

// Options tunes a single generation request.
type Options struct {
	Temperature float32
	TopP        float32
}

// Generator is implemented by model providers.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, opts Options) (string, error)
	Model() string
}

// Assessment is a model score together with the raw reply it was parsed from.
type Assessment struct {
	ModelScoreReply
	Raw string `json:"-"`
}

// Assistant asks a Generator for resume summaries, fit scores and interview questions.
type Assistant struct {
	generator Generator
	logger    *zap.Logger
	maxLogLen int
}

func NewAssistant(generator Generator, logger *zap.Logger, maxLogLength int) *Assistant {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Assistant{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Summarize returns a short summary of the candidate.
func (a *Assistant) Summarize(ctx context.Context, resume string) (string, error) {
	prompt, err := buildPrompt(summaryPrompt, resume, "")
	if err != nil {
		return "", err
	}

	out, err := a.generate(ctx, "summary", prompt, Options{Temperature: summaryTemperature, TopP: defaultTopP})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Score asks the model for a 0..1 fit score. job may be empty.
func (a *Assistant) Score(ctx context.Context, resume, job string) (*Assessment, error) {
	template := scorePrompt
	if strings.TrimSpace(job) != "" {
		template = scoreJobPrompt
	}

	prompt, err := buildPrompt(template, resume, job)
	if err != nil {
		return nil, err
	}

	raw, err := a.generate(ctx, "score", prompt, Options{Temperature: scoreTemperature, TopP: defaultTopP})
	if err != nil {
		return nil, err
	}

	reply := ParseAssessment(raw)
	if !reply.HasScore {
		a.logger.Debug("model reply has no score line",
			zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
		)
	}

	return &Assessment{ModelScoreReply: reply, Raw: raw}, nil
}

// Questions returns interview questions for the candidate. job may be empty.
func (a *Assistant) Questions(ctx context.Context, resume, job string) (string, error) {
	template := questionsPrompt
	if strings.TrimSpace(job) != "" {
		template = questionsJobPrompt
	}

	prompt, err := buildPrompt(template, resume, job)
	if err != nil {
		return "", err
	}

	out, err := a.generate(ctx, "questions", prompt, Options{Temperature: questionTemperature, TopP: defaultTopP})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (a *Assistant) generate(ctx context.Context, action, prompt string, opts Options) (string, error) {
	if a == nil || a.generator == nil {
		return "", errors.New("assistant is not configured")
	}

	a.logger.Debug("generate content request",
		zap.String("action", action),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt, opts)
	if err != nil {
		return "", fmt.Errorf("%s: %w", action, err)
	}

	a.logger.Debug("generate content response",
		zap.String("action", action),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	return raw, nil
}

func buildPrompt(template, resume, job string) (string, error) {
	resume = strings.TrimSpace(resume)
	if resume == "" {
		return "", ErrEmptyResume
	}

	replacer := strings.NewReplacer(resumePlaceholder, resume, jobPlaceholder, strings.TrimSpace(job))
	return strings.TrimSpace(replacer.Replace(template)), nil
}

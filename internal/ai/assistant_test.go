package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
	lastOpts   Options
	calls      int
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string, opts Options) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	s.lastOpts = opts
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

func TestAssistantScoreWithJob(t *testing.T) {
	stub := &stubGenerator{response: "score=0.842\n候选人经验丰富，技术匹配度高"}
	assistant := NewAssistant(stub, zap.NewNop(), 0)

	assessment, err := assistant.Score(context.Background(), "  Python 工程师 6年  ", "招聘 Python 工程师")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !assessment.HasScore || assessment.ScoreValue != "0.842" {
		t.Fatalf("unexpected score: %+v", assessment.ModelScoreReply)
	}
	if assessment.Explanation != "候选人经验丰富，技术匹配度高" {
		t.Fatalf("unexpected explanation: %q", assessment.Explanation)
	}
	if assessment.Raw != stub.response {
		t.Fatalf("expected raw response to be kept")
	}

	if !strings.Contains(stub.lastPrompt, "候选人简历：Python 工程师 6年") {
		t.Fatalf("expected trimmed resume in prompt: %s", stub.lastPrompt)
	}
	if !strings.Contains(stub.lastPrompt, "岗位描述：招聘 Python 工程师") {
		t.Fatalf("expected job in prompt: %s", stub.lastPrompt)
	}
	if strings.Contains(stub.lastPrompt, "{{") {
		t.Fatalf("placeholders left in prompt: %s", stub.lastPrompt)
	}
	if stub.lastOpts.Temperature != scoreTemperature || stub.lastOpts.TopP != defaultTopP {
		t.Fatalf("unexpected options: %+v", stub.lastOpts)
	}
}

func TestAssistantScoreWithoutJob(t *testing.T) {
	stub := &stubGenerator{response: `{"score": 0.5, "explanation": "一般"}`}
	assistant := NewAssistant(stub, nil, 0)

	assessment, err := assistant.Score(context.Background(), "resume", "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(stub.lastPrompt, "岗位描述") {
		t.Fatalf("did not expect job section: %s", stub.lastPrompt)
	}
	if assessment.ScoreValue != "0.5" || assessment.Explanation != "一般" {
		t.Fatalf("unexpected assessment: %+v", assessment.ModelScoreReply)
	}
}

func TestAssistantRejectsEmptyResume(t *testing.T) {
	stub := &stubGenerator{response: "ignored"}
	assistant := NewAssistant(stub, zap.NewNop(), 0)
	ctx := context.Background()

	if _, err := assistant.Summarize(ctx, " \n "); !errors.Is(err, ErrEmptyResume) {
		t.Fatalf("expected ErrEmptyResume from Summarize, got %v", err)
	}
	if _, err := assistant.Score(ctx, "", "job"); !errors.Is(err, ErrEmptyResume) {
		t.Fatalf("expected ErrEmptyResume from Score, got %v", err)
	}
	if _, err := assistant.Questions(ctx, "", ""); !errors.Is(err, ErrEmptyResume) {
		t.Fatalf("expected ErrEmptyResume from Questions, got %v", err)
	}
	if stub.calls != 0 {
		t.Fatalf("generator must not be called, got %d calls", stub.calls)
	}
}

func TestAssistantSummarizeAndQuestions(t *testing.T) {
	stub := &stubGenerator{response: "  1. 问题一\n2. 问题二  "}
	assistant := NewAssistant(stub, zap.NewNop(), 10)
	ctx := context.Background()

	questions, err := assistant.Questions(ctx, "resume", "job")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if questions != "1. 问题一\n2. 问题二" {
		t.Fatalf("unexpected questions: %q", questions)
	}
	if stub.lastOpts.Temperature != questionTemperature {
		t.Fatalf("unexpected temperature: %v", stub.lastOpts.Temperature)
	}
	if !strings.Contains(stub.lastPrompt, "5 个") {
		t.Fatalf("unexpected questions prompt: %s", stub.lastPrompt)
	}

	summary, err := assistant.Summarize(ctx, "resume")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != "1. 问题一\n2. 问题二" {
		t.Fatalf("unexpected summary: %q", summary)
	}
	if !strings.HasPrefix(stub.lastPrompt, "请用中文 30 到 60 字") {
		t.Fatalf("unexpected summary prompt: %s", stub.lastPrompt)
	}
}

func TestAssistantWrapsGeneratorError(t *testing.T) {
	cause := errors.New("boom")
	assistant := NewAssistant(&stubGenerator{err: cause}, zap.NewNop(), 0)

	_, err := assistant.Score(context.Background(), "resume", "")
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "score: ") {
		t.Fatalf("expected action prefix, got %q", err.Error())
	}
}

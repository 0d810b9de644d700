// Package panel holds the state of one interactive assistant session.
package panel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-assistant/internal/ai"
	"github.com/spigell/resume-assistant/internal/document"
	"github.com/spigell/resume-assistant/internal/prefs"
	"github.com/spigell/resume-assistant/internal/scoring"
)

var (
	// ErrNoResume is returned by actions that need resume text when none is set.
	ErrNoResume = errors.New("please provide the candidate resume first")
	// ErrNotConfigured is returned by model actions when no API is configured.
	ErrNotConfigured = errors.New("configure the model API key and URL first")
)

// Assistant is the model-backed part of the panel.
type Assistant interface {
	Summarize(ctx context.Context, resume string) (string, error)
	Score(ctx context.Context, resume, job string) (*ai.Assessment, error)
	Questions(ctx context.Context, resume, job string) (string, error)
}

// PageExtractor reads resume text from a web page.
type PageExtractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// Store persists panel preferences between sessions.
type Store interface {
	Get() prefs.Preferences
	RememberInputs(resume, job string)
	ToggleTheme() string
	SetPinned(pinned bool)
	Save() error
}

// Deps are the collaborators of a Controller. Assistant and Pages may be nil.
type Deps struct {
	Store     Store
	Assistant Assistant
	Pages     PageExtractor
	Logger    *zap.Logger
}

// Controller owns all state of a single panel. Controllers do not share state,
// several may run side by side.
type Controller struct {
	store     Store
	assistant Assistant
	pages     PageExtractor
	logger    *zap.Logger

	resume string
	job    string
	theme  string
	pinned bool
}

// New creates a controller restoring the last inputs and UI settings from the store.
func New(deps Deps) (*Controller, error) {
	if deps.Store == nil {
		return nil, errors.New("preferences store is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	p := deps.Store.Get()

	return &Controller{
		store:     deps.Store,
		assistant: deps.Assistant,
		pages:     deps.Pages,
		logger:    logger,
		resume:    p.LastResume,
		job:       p.LastJob,
		theme:     p.Theme,
		pinned:    p.Pinned,
	}, nil
}

func (c *Controller) Resume() string { return c.resume }

func (c *Controller) Job() string { return c.job }

func (c *Controller) Theme() string { return c.theme }

func (c *Controller) Pinned() bool { return c.pinned }

// HasAssistant reports whether model actions are available.
func (c *Controller) HasAssistant() bool { return c.assistant != nil }

// SetResume replaces the resume text.
func (c *Controller) SetResume(text string) {
	c.resume = strings.TrimSpace(text)
	c.remember()
}

// SetJob replaces the job description.
func (c *Controller) SetJob(text string) {
	c.job = strings.TrimSpace(text)
	c.remember()
}

// LoadResumeFile reads the resume from a text or docx file.
func (c *Controller) LoadResumeFile(path string) error {
	text, err := document.Load(path)
	if err != nil {
		return err
	}
	if text == "" {
		return fmt.Errorf("file %q has no text", path)
	}

	c.logger.Info("resume loaded from file", zap.String("path", path), zap.Int("length", len([]rune(text))))
	c.SetResume(text)
	return nil
}

// LoadResumeURL extracts the resume from a web page.
func (c *Controller) LoadResumeURL(ctx context.Context, url string) error {
	if c.pages == nil {
		return errors.New("page extraction is not available")
	}

	text, err := c.pages.Extract(ctx, url)
	if err != nil {
		return err
	}

	c.logger.Info("resume loaded from page", zap.String("url", url), zap.Int("length", len([]rune(text))))
	c.SetResume(text)
	return nil
}

// LocalScore computes the heuristic score without any network access.
func (c *Controller) LocalScore() (*scoring.Result, error) {
	if c.resume == "" {
		return nil, ErrNoResume
	}
	c.remember()
	return scoring.ComputeScoreDetails(c.resume, c.job), nil
}

// ModelScore asks the configured model for a fit score.
func (c *Controller) ModelScore(ctx context.Context) (*ai.Assessment, error) {
	if err := c.readyForModel(); err != nil {
		return nil, err
	}
	return c.assistant.Score(ctx, c.resume, c.job)
}

// Summary asks the configured model for a short candidate summary.
func (c *Controller) Summary(ctx context.Context) (string, error) {
	if err := c.readyForModel(); err != nil {
		return "", err
	}
	return c.assistant.Summarize(ctx, c.resume)
}

// Questions asks the configured model for interview questions.
func (c *Controller) Questions(ctx context.Context) (string, error) {
	if err := c.readyForModel(); err != nil {
		return "", err
	}
	return c.assistant.Questions(ctx, c.resume, c.job)
}

// ToggleTheme switches between dark and light themes.
func (c *Controller) ToggleTheme() string {
	c.theme = c.store.ToggleTheme()
	c.save()
	return c.theme
}

// TogglePin flips the pinned flag and returns the new value.
func (c *Controller) TogglePin() bool {
	c.pinned = !c.pinned
	c.store.SetPinned(c.pinned)
	c.save()
	return c.pinned
}

func (c *Controller) readyForModel() error {
	if c.resume == "" {
		return ErrNoResume
	}
	if c.assistant == nil {
		return ErrNotConfigured
	}
	c.remember()
	return nil
}

func (c *Controller) remember() {
	c.store.RememberInputs(c.resume, c.job)
	c.save()
}

func (c *Controller) save() {
	if err := c.store.Save(); err != nil {
		c.logger.Warn("saving preferences failed", zap.Error(err))
	}
}

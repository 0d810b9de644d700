package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-assistant/internal/ai"
	"github.com/spigell/resume-assistant/internal/panel"
	"github.com/spigell/resume-assistant/internal/prefs"
	"github.com/spigell/resume-assistant/internal/scoring"
)

const (
	PromptLoadFile    = "Load resume from file"
	PromptLoadURL     = "Load resume from web page"
	PromptEnterResume = "Enter resume text"
	PromptEnterJob    = "Enter job description"
	PromptLocalScore  = "Local score"
	PromptModelScore  = "Model score"
	PromptSummary     = "Summary"
	PromptQuestions   = "Interview questions"
	PromptTheme       = "Toggle theme"
	PromptPin         = "Pin / unpin panel"
	PromptExit        = "Exit"
)

var errExit = errors.New("exit requested")

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Interactive assistant session with remembered inputs",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		logger := newLogger()

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		store, err := openPrefs(logger)
		if err != nil {
			logger.Fatal("opening preferences", zap.Error(err))
		}

		deps := panel.Deps{
			Store:  store,
			Pages:  newPageFetcher(config, logger),
			Logger: logger,
		}

		assistant, err := newAssistant(ctx, config.AI, store.Get(), logger)
		switch {
		case err == nil:
			deps.Assistant = assistant
		case errors.Is(err, errNotConfigured):
			logger.Info("model actions are disabled", zap.String("reason", err.Error()))
		default:
			logger.Fatal("creating the assistant", zap.Error(err))
		}

		controller, err := panel.New(deps)
		if err != nil {
			logger.Fatal("creating the panel", zap.Error(err))
		}

		for {
			_, action, err := menu(controller).Run()
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return
			}
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}

			output, err := handlePanelAction(ctx, controller, action)
			if errors.Is(err, errExit) {
				return
			}
			if err != nil {
				logger.Warn("action failed", zap.String("action", action), zap.Error(err))
				continue
			}

			if output == "" {
				continue
			}
			printPanelOutput(cmd.OutOrStdout(), controller.Theme(), output)

			if !controller.Pinned() && isResultAction(action) {
				logger.Info("exiting", zap.String("reason", "panel is not pinned"))
				return
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(panelCmd)
}

func menu(c *panel.Controller) *promptui.Select {
	items := []string{PromptLoadFile, PromptLoadURL, PromptEnterResume, PromptEnterJob, PromptLocalScore}
	if c.HasAssistant() {
		items = append(items, PromptModelScore, PromptSummary, PromptQuestions)
	}
	items = append(items, PromptTheme, PromptPin, PromptExit)

	pin := "unpinned"
	if c.Pinned() {
		pin = "pinned"
	}

	return &promptui.Select{
		Label:     fmt.Sprintf("resume: %d chars, job: %d chars, %s", len([]rune(c.Resume())), len([]rune(c.Job())), pin),
		Items:     items,
		Size:      len(items),
		Templates: themeTemplates(c.Theme()),
	}
}

func themeTemplates(theme string) *promptui.SelectTemplates {
	color := "cyan"
	if theme == prefs.ThemeLight {
		color = "blue"
	}
	return &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   fmt.Sprintf("▸ {{ . | %s | bold }}", color),
		Inactive: "  {{ . }}",
		Selected: fmt.Sprintf("{{ . | %s }}", color),
	}
}

func handlePanelAction(ctx context.Context, c *panel.Controller, action string) (string, error) {
	switch action {
	case PromptLoadFile:
		path, err := ask("Resume file path", nil)
		if err != nil {
			return "", err
		}
		return "", c.LoadResumeFile(path)
	case PromptLoadURL:
		url, err := ask("Resume page url", nil)
		if err != nil {
			return "", err
		}
		return "", c.LoadResumeURL(ctx, url)
	case PromptEnterResume:
		text, err := ask("Resume text", nil)
		if err != nil {
			return "", err
		}
		c.SetResume(text)
		return "", nil
	case PromptEnterJob:
		text, err := ask("Job description", nil)
		if err != nil {
			return "", err
		}
		c.SetJob(text)
		return "", nil
	case PromptLocalScore:
		result, err := c.LocalScore()
		if err != nil {
			return "", err
		}
		return scoring.Explain(result), nil
	case PromptModelScore:
		assessment, err := c.ModelScore(ctx)
		if err != nil {
			return "", err
		}
		return ai.Render(assessment.ModelScoreReply), nil
	case PromptSummary:
		return c.Summary(ctx)
	case PromptQuestions:
		return c.Questions(ctx)
	case PromptTheme:
		c.ToggleTheme()
		return "", nil
	case PromptPin:
		c.TogglePin()
		return "", nil
	case PromptExit:
		return "", errExit
	default:
		return "", fmt.Errorf("invalid action: %s", action)
	}
}

func isResultAction(action string) bool {
	switch action {
	case PromptLocalScore, PromptModelScore, PromptSummary, PromptQuestions:
		return true
	}
	return false
}

func ask(label string, validate promptui.ValidateFunc) (string, error) {
	p := promptui.Prompt{Label: label, Validate: validate}
	value, err := p.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return "", errExit
	}
	return strings.TrimSpace(value), err
}

func printPanelOutput(w io.Writer, theme, output string) {
	color := promptui.Styler(promptui.FGCyan)
	if theme == prefs.ThemeLight {
		color = promptui.Styler(promptui.FGBlue)
	}

	fmt.Fprintln(w, color(strings.Repeat("─", 40)))
	fmt.Fprintln(w, output)
	fmt.Fprintln(w, color(strings.Repeat("─", 40)))
}

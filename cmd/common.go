package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-assistant/internal/ai"
	"github.com/spigell/resume-assistant/internal/ai/gemini"
	"github.com/spigell/resume-assistant/internal/ai/openai"
	"github.com/spigell/resume-assistant/internal/document"
	"github.com/spigell/resume-assistant/internal/logger"
	"github.com/spigell/resume-assistant/internal/page"
	"github.com/spigell/resume-assistant/internal/prefs"
	"github.com/spigell/resume-assistant/internal/secrets"
)

const (
	providerOpenAI = "openai"
	providerGemini = "gemini"

	flagFile    = "file"
	flagURL     = "url"
	flagJob     = "job"
	flagJobFile = "job-file"
	flagOutput  = "output"
)

var errNotConfigured = errors.New("model api is not configured")

// newLogger builds the logger from the global flags. A broken logger is fatal.
func newLogger() *zap.Logger {
	l, err := logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

// addInputFlags registers the flags shared by commands reading a resume and a job description.
func addInputFlags(cmd *cobra.Command, withJob bool) {
	cmd.Flags().StringP(flagFile, "f", "", "resume file (text or docx)")
	cmd.Flags().StringP(flagURL, "u", "", "web page with the resume")
	if withJob {
		cmd.Flags().String(flagJob, "", "job description text")
		cmd.Flags().String(flagJobFile, "", "file with the job description (text or docx)")
	}
}

// readResume returns the resume text and a description of where it came from.
// Sources in order: --file, --url, positional arguments, piped stdin.
func readResume(ctx context.Context, cmd *cobra.Command, args []string, config *Config, logger *zap.Logger) (string, string, error) {
	if path, _ := cmd.Flags().GetString(flagFile); strings.TrimSpace(path) != "" {
		text, err := document.Load(path)
		return text, path, err
	}

	if url, _ := cmd.Flags().GetString(flagURL); strings.TrimSpace(url) != "" {
		text, err := newPageFetcher(config, logger).Extract(ctx, url)
		return text, url, err
	}

	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " ")), "args", nil
	}

	if piped(os.Stdin) {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "stdin", fmt.Errorf("reading stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), "stdin", nil
	}

	return "", "", ai.ErrEmptyResume
}

// readJob returns the job description from --job or --job-file. Both empty is not an error.
func readJob(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString(flagJobFile); strings.TrimSpace(path) != "" {
		return document.Load(path)
	}
	job, _ := cmd.Flags().GetString(flagJob)
	return strings.TrimSpace(job), nil
}

func piped(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice == 0
}

func newPageFetcher(config *Config, logger *zap.Logger) *page.Fetcher {
	return page.New(page.Options{
		Timeout:   config.Page.Timeout,
		UserAgent: config.Page.UserAgent,
		Headers:   config.Page.Headers,
		Selector:  config.Page.Selector,
	}, logger)
}

func openPrefs(logger *zap.Logger) (*prefs.Store, error) {
	path := strings.TrimSpace(viper.GetString("prefs"))
	if path == "" {
		var err error
		if path, err = prefs.DefaultPath(); err != nil {
			return nil, fmt.Errorf("resolving preferences path: %w", err)
		}
	}
	store, err := prefs.Open(path)
	if err != nil {
		return nil, err
	}
	store.Logger = logger
	return store, nil
}

// newAssistant builds the model assistant from the config, falling back to stored preferences
// for the endpoint, key and model. It returns errNotConfigured when nothing is set.
func newAssistant(ctx context.Context, cfg *AIConfig, stored prefs.Preferences, base *zap.Logger) (*ai.Assistant, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider == "" {
		provider = providerOpenAI
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "model api key",
		File:  cfg.APIKeyFile,
		Value: firstNonEmpty(cfg.APIKey, stored.APIKey),
		Env:   apiKeyEnv,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w (set ai.api-key-file, %s or run `%s config set`)", errNotConfigured, err, apiKeyFileEnv, app)
	}

	var generator ai.Generator
	switch provider {
	case providerOpenAI:
		url := firstNonEmpty(cfg.URL, stored.APIURL)
		if url == "" {
			return nil, fmt.Errorf("%w: api url is empty", errNotConfigured)
		}

		model := firstNonEmpty(cfg.Model, stored.ModelID)
		client, err := openai.New(openai.Config{
			URL:        url,
			APIKey:     apiKey,
			Model:      model,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
		}, logger.WithCommonFields(base, provider, model))
		if err != nil {
			return nil, err
		}
		generator = client
	case providerGemini:
		g, err := gemini.NewGenerator(ctx, apiKey, cfg.Model, cfg.MaxRetries, logger.WithCommonFields(base, provider, cfg.Model))
		if err != nil {
			return nil, err
		}
		generator = g
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	return ai.NewAssistant(generator, logger.WithCommonFields(base, provider, generator.Model()), cfg.MaxLogLength), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// storedPrefs returns saved preferences or defaults when the file cannot be read.
func storedPrefs(logger *zap.Logger) (p prefs.Preferences) {
	store, err := openPrefs(logger)
	if err != nil {
		logger.Warn("preferences are not available", zap.Error(err))
		return p
	}
	return store.Get()
}

// mustAssistant opens preferences and builds the assistant, exiting when the model API is not usable.
func mustAssistant(ctx context.Context, config *Config, logger *zap.Logger) *ai.Assistant {
	assistant, err := newAssistant(ctx, config.AI, storedPrefs(logger), logger)
	if err != nil {
		logger.Fatal("creating the assistant", zap.Error(err))
	}
	return assistant
}

// mustInputs reads the resume and the optional job description, exiting on failure.
func mustInputs(ctx context.Context, cmd *cobra.Command, args []string, config *Config, l *zap.Logger) (string, string) {
	resume, source, err := readResume(ctx, cmd, args, config, l)
	if err != nil {
		l.Fatal("reading the resume", append(logger.SourceFields(source), zap.Error(err))...)
	}
	if resume == "" {
		l.Fatal("reading the resume", append(logger.SourceFields(source), zap.Error(ai.ErrEmptyResume))...)
	}

	l.Debug("resume loaded", append(logger.SourceFields(source), zap.Int("length", len([]rune(resume))))...)

	job := ""
	if cmd.Flags().Lookup(flagJob) != nil {
		if job, err = readJob(cmd); err != nil {
			l.Fatal("reading the job description", zap.Error(err))
		}
	}

	return resume, job
}

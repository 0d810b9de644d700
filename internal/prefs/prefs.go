// Package prefs persists user preferences between runs.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	KeyAPIKey     = "model-api-key"
	KeyAPIURL     = "model-api-url"
	KeyModelID    = "model-id"
	KeyTheme      = "theme"
	KeyPinned     = "pinned"
	KeyLastResume = "last-resume"
	KeyLastJob    = "last-job"

	DefaultModelID = "general"

	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Preferences is a snapshot of the stored values.
type Preferences struct {
	APIKey     string `mapstructure:"model-api-key"`
	APIURL     string `mapstructure:"model-api-url"`
	ModelID    string `mapstructure:"model-id"`
	Theme      string `mapstructure:"theme"`
	Pinned     bool   `mapstructure:"pinned"`
	LastResume string `mapstructure:"last-resume"`
	LastJob    string `mapstructure:"last-job"`
}

// HasAPI reports whether enough is configured to call a model.
func (p Preferences) HasAPI() bool {
	return strings.TrimSpace(p.APIKey) != "" && strings.TrimSpace(p.APIURL) != ""
}

// Store reads and writes preferences in a YAML file through its own viper instance.
type Store struct {
	mu   sync.Mutex
	path string
	v    *viper.Viper

	// Logger receives warnings about unreadable values. Nil disables them.
	Logger *zap.Logger
}

// DefaultPath returns $HOME/.config/resume-assistant/prefs.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "resume-assistant", "prefs.yaml"), nil
}

// Open loads preferences from path. A missing file yields defaults; a file
// whose values do not decode into Preferences is an error.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("preferences path is required")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault(KeyModelID, DefaultModelID)
	v.SetDefault(KeyTheme, ThemeDark)
	v.SetDefault(KeyPinned, false)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading preferences %q: %w", path, err)
		}
	}

	var p Preferences
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("decoding preferences %q: %w", path, err)
	}

	return &Store{path: path, v: v}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// Get returns the current preferences.
func (s *Store) Get() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	var p Preferences
	if err := s.v.Unmarshal(&p); err != nil {
		s.logger().Warn("decoding preferences failed, using defaults for invalid values",
			zap.String("path", s.path),
			zap.Error(err),
		)
	}

	if strings.TrimSpace(p.ModelID) == "" {
		p.ModelID = DefaultModelID
	}
	if p.Theme != ThemeLight {
		p.Theme = ThemeDark
	}
	return p
}

// SetAPI stores the model endpoint settings. A blank model falls back to DefaultModelID.
func (s *Store) SetAPI(apiKey, apiURL, model string) {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModelID
	}

	s.set(map[string]any{
		KeyAPIKey:  strings.TrimSpace(apiKey),
		KeyAPIURL:  strings.TrimSpace(apiURL),
		KeyModelID: model,
	})
}

// SetTheme stores theme; anything other than light is stored as dark.
func (s *Store) SetTheme(theme string) {
	if theme != ThemeLight {
		theme = ThemeDark
	}
	s.set(map[string]any{KeyTheme: theme})
}

// ToggleTheme flips between dark and light and returns the new theme.
func (s *Store) ToggleTheme() string {
	next := ThemeLight
	if s.Get().Theme == ThemeLight {
		next = ThemeDark
	}
	s.SetTheme(next)
	return next
}

func (s *Store) SetPinned(pinned bool) {
	s.set(map[string]any{KeyPinned: pinned})
}

// RememberInputs keeps the last resume and job description for the next session.
func (s *Store) RememberInputs(resume, job string) {
	s.set(map[string]any{
		KeyLastResume: resume,
		KeyLastJob:    job,
	})
}

// Save writes preferences to disk, creating the parent directory when needed.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating preferences directory: %w", err)
	}

	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("writing preferences %q: %w", s.path, err)
	}

	return os.Chmod(s.path, 0o600)
}

func (s *Store) set(values map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range values {
		s.v.Set(key, value)
	}
}

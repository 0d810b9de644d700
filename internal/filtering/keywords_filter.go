package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

type keywordsFilter struct {
	toggle
	keywords []string
}

// NewKeywords creates a filter that drops candidates missing any required keyword.
func NewKeywords() Filter {
	return &keywordsFilter{}
}

func (f *keywordsFilter) Name() string { return "keywords" }

func (f *keywordsFilter) Validate(cfg *Config) error {
	f.keywords = nil
	if cfg == nil {
		return nil
	}
	for _, keyword := range cfg.RequiredKeywords {
		if keyword = strings.ToLower(strings.TrimSpace(keyword)); keyword != "" {
			f.keywords = append(f.keywords, keyword)
		}
	}
	return nil
}

func (f *keywordsFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	if len(f.keywords) == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	dropped := c.Retain(func(candidate *Candidate) bool {
		text := strings.ToLower(candidate.Text)
		for _, keyword := range f.keywords {
			if !strings.Contains(text, keyword) {
				return false
			}
		}
		return true
	})
	if len(dropped) > 0 {
		deps.Logger.Info("excluding candidates missing required keywords",
			zap.Strings("required_keywords", f.keywords),
			zap.Strings("excluded_candidates", dropped),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *keywordsFilter) Status() Status {
	details := map[string]string{}
	if len(f.keywords) > 0 {
		details["required_keywords"] = strings.Join(f.keywords, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

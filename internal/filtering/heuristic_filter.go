package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/resume-assistant/internal/scoring"
)

type heuristicFilter struct {
	toggle
	minimum float64
}

// NewHeuristic creates a filter that scores every candidate locally and drops
// those below the configured minimum score.
func NewHeuristic() Filter {
	return &heuristicFilter{}
}

func (f *heuristicFilter) Name() string { return "heuristic" }

func (f *heuristicFilter) Validate(cfg *Config) error {
	f.minimum = 0
	if cfg != nil {
		f.minimum = cfg.MinimumScore
	}
	if f.minimum < 0 || f.minimum > 1 {
		return fmt.Errorf("minimum score must be between 0 and 1, got %v", f.minimum)
	}
	return nil
}

func (f *heuristicFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()

	for _, candidate := range c.Items {
		candidate.Heuristic = scoring.ComputeScoreDetails(candidate.Text, deps.Job)
	}

	dropped := c.Retain(func(candidate *Candidate) bool {
		return candidate.Heuristic.Score >= f.minimum
	})
	if len(dropped) > 0 {
		deps.Logger.Info("excluding candidates below minimum heuristic score",
			zap.Float64("minimum_score", f.minimum),
			zap.Strings("excluded_candidates", dropped),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *heuristicFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum_score": strconv.FormatFloat(f.minimum, 'f', -1, 64)},
	}
}

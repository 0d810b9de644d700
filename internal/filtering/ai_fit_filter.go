package filtering

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNoModelScore is recorded on candidates whose model reply carried no usable score.
var ErrNoModelScore = errors.New("model reply has no score")

type aiFitFilter struct {
	toggle
	minimum     float64
	excludeFile string
	concurrency int
}

// NewAIFit creates the model-based screening step.
func NewAIFit() Filter {
	return &aiFitFilter{}
}

func (f *aiFitFilter) Name() string { return "ai_fit" }

func (f *aiFitFilter) Validate(cfg *Config) error {
	f.minimum, f.excludeFile, f.concurrency = 0, "", 1
	if cfg != nil {
		f.minimum = cfg.MinimumFitScore
		f.excludeFile = strings.TrimSpace(cfg.ExcludeFile)
		if cfg.Concurrency > 0 {
			f.concurrency = cfg.Concurrency
		}
	}
	if f.minimum < 0 || f.minimum > 1 {
		return fmt.Errorf("minimum fit score must be between 0 and 1, got %v", f.minimum)
	}
	return nil
}

func (f *aiFitFilter) Apply(ctx context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	if deps.Scorer == nil {
		deps.Logger.Info("ai assistant is not configured; skipping ai_fit filter")
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	verdicts := make([]bool, c.Len())
	for i, candidate := range c.Items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			verdicts[i] = f.evaluate(gctx, deps, candidate)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return c, Step{}, err
	}

	rejected := &Candidates{}
	for i, candidate := range c.Items {
		if !verdicts[i] {
			rejected.Items = append(rejected.Items, candidate)
		}
	}

	dropped := c.Exclude(rejected.Names())

	if err := f.appendToExcludeFile(deps.Logger, rejected); err != nil {
		deps.Logger.Warn("failed to append candidates to exclude file", zap.Error(err))
	}

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

// evaluate scores one candidate and reports whether it stays.
// Model errors and replies without a score keep the candidate with the error recorded.
func (f *aiFitFilter) evaluate(ctx context.Context, deps Deps, candidate *Candidate) bool {
	assessment, err := deps.Scorer.Score(ctx, candidate.Text, deps.Job)
	if err != nil {
		deps.Logger.Warn("AI evaluation failed",
			zap.String("candidate", candidate.Name),
			zap.Error(err),
		)
		candidate.Error = err.Error()
		return true
	}

	candidate.Assessment = assessment

	var (
		score float64
		ok    bool
	)
	if assessment != nil {
		score, ok = assessment.Float()
	}
	if !ok {
		deps.Logger.Warn("AI reply has no usable score. Candidate is kept.",
			zap.String("candidate", candidate.Name),
		)
		candidate.Error = ErrNoModelScore.Error()
		return true
	}

	if score < f.minimum {
		deps.Logger.Info("candidate rejected by AI",
			zap.String("candidate", candidate.Name),
			zap.Float64("ai_score", score),
			zap.String("reason", assessment.Explanation),
		)
		return false
	}

	deps.Logger.Info("candidate approved by AI",
		zap.String("candidate", candidate.Name),
		zap.Float64("ai_score", score),
	)
	return true
}

func (f *aiFitFilter) appendToExcludeFile(logger *zap.Logger, rejected *Candidates) error {
	if f.excludeFile == "" || rejected.Len() == 0 {
		return nil
	}

	excluded, err := GetExcludedFromFile(f.excludeFile)
	if err != nil {
		return fmt.Errorf("load excluded candidates: %w", err)
	}

	for _, candidate := range rejected.Items {
		entry := (&Candidates{Items: []*Candidate{candidate}}).ToExcluded(ExcludeActorAI, candidate.Assessment.Explanation)
		excluded.Append(entry)
	}

	if err := excluded.ToFile(f.excludeFile); err != nil {
		return fmt.Errorf("write excluded candidates: %w", err)
	}

	logger.Info("candidates appended to exclude file",
		zap.Strings("candidates", rejected.Names()),
		zap.String("exclude_file", f.excludeFile),
	)
	return nil
}

func (f *aiFitFilter) Status() Status {
	details := map[string]string{
		"minimum_fit_score": strconv.FormatFloat(f.minimum, 'f', -1, 64),
		"concurrency":       strconv.Itoa(f.concurrency),
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

package filtering

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-assistant/internal/ai"
	"github.com/spigell/resume-assistant/internal/document"
	"github.com/spigell/resume-assistant/internal/scoring"
)

type Candidates struct {
	Items []*Candidate
}

// Candidate is a single resume going through the screening steps.
type Candidate struct {
	Name       string          `json:"name"`
	Path       string          `json:"path,omitempty"`
	Text       string          `json:"-"`
	Heuristic  *scoring.Result `json:"heuristic,omitempty"`
	Assessment *ai.Assessment  `json:"assessment,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// ReportEntry is one line of the screening report.
type ReportEntry struct {
	Name            string   `json:"name"`
	HeuristicScore  float64  `json:"heuristic_score"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
	Years           int      `json:"years,omitempty"`
	JobMatched      []string `json:"job_matched,omitempty"`
	ModelScore      string   `json:"model_score,omitempty"`
	Explanation     string   `json:"explanation,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// LoadDir reads every supported resume file in dir. Files that cannot be decoded
// are logged and skipped.
func LoadDir(dir string, logger *zap.Logger) (*Candidates, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading resume directory: %w", err)
	}

	candidates := &Candidates{}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		text, err := document.Load(path)
		if err != nil {
			if errors.Is(err, document.ErrPDFUnsupported) || errors.Is(err, document.ErrLegacyDocUnsupported) {
				logger.Warn("unsupported resume format. It will be skipped.", zap.String("path", path))
				continue
			}
			logger.Warn("reading resume failed. It will be skipped.", zap.String("path", path), zap.Error(err))
			continue
		}
		if text == "" {
			logger.Warn("resume is empty. It will be skipped.", zap.String("path", path))
			continue
		}

		candidates.Items = append(candidates.Items, &Candidate{
			Name: entry.Name(),
			Path: path,
			Text: text,
		})
	}

	return candidates, nil
}

func (c *Candidates) Len() int {
	return len(c.Items)
}

func (c *Candidates) Names() []string {
	names := make([]string, 0, len(c.Items))
	for _, candidate := range c.Items {
		names = append(names, candidate.Name)
	}
	return names
}

func (c *Candidates) FindByName(name string) *Candidate {
	for _, candidate := range c.Items {
		if candidate.Name == name {
			return candidate
		}
	}
	return nil
}

// Retain keeps candidates for which keep returns true and returns the names of the dropped ones.
// Order of the kept candidates is preserved.
func (c *Candidates) Retain(keep func(*Candidate) bool) []string {
	var dropped []string
	kept := c.Items[:0]
	for _, candidate := range c.Items {
		if keep(candidate) {
			kept = append(kept, candidate)
			continue
		}
		dropped = append(dropped, candidate.Name)
	}

	for i := len(kept); i < len(c.Items); i++ {
		c.Items[i] = nil
	}
	c.Items = kept
	return dropped
}

// Exclude removes candidates with the given names.
func (c *Candidates) Exclude(names []string) []string {
	targets := make(map[string]struct{}, len(names))
	for _, name := range names {
		targets[name] = struct{}{}
	}

	return c.Retain(func(candidate *Candidate) bool {
		_, found := targets[candidate.Name]
		return !found
	})
}

// SortByScore orders candidates by model score, then heuristic score, then name.
// Candidates without a model score go after those with one.
func (c *Candidates) SortByScore() {
	sort.SliceStable(c.Items, func(i, j int) bool {
		a, b := c.Items[i], c.Items[j]

		as, aok := a.ModelScore()
		bs, bok := b.ModelScore()
		if aok != bok {
			return aok
		}
		if aok && as != bs {
			return as > bs
		}

		ah, bh := a.HeuristicScore(), b.HeuristicScore()
		if ah != bh {
			return ah > bh
		}
		return a.Name < b.Name
	})
}

// Report returns one entry per candidate in the current order.
func (c *Candidates) Report() []ReportEntry {
	report := make([]ReportEntry, 0, len(c.Items))
	for _, candidate := range c.Items {
		entry := ReportEntry{
			Name:  candidate.Name,
			Error: candidate.Error,
		}
		if h := candidate.Heuristic; h != nil {
			entry.HeuristicScore = h.Score
			entry.MatchedKeywords = h.MatchedKeywords
			entry.Years = h.Years
			entry.JobMatched = h.JobMatched
		}
		if a := candidate.Assessment; a != nil {
			entry.ModelScore = a.ScoreValue
			entry.Explanation = a.Explanation
		}
		report = append(report, entry)
	}
	return report
}

// DumpToFile writes the report as indented JSON. An empty path creates a temporary file.
// It returns the path written.
func (c *Candidates) DumpToFile(path string) (string, error) {
	var (
		file *os.File
		err  error
	)

	if strings.TrimSpace(path) == "" {
		file, err = os.CreateTemp("", "candidates_*.json")
	} else {
		file, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.Report()); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func (c *Candidate) HeuristicScore() float64 {
	if c.Heuristic == nil {
		return 0
	}
	return c.Heuristic.Score
}

// ModelScore returns the parsed model score when the model returned a numeric one.
func (c *Candidate) ModelScore() (float64, bool) {
	if c.Assessment == nil {
		return 0, false
	}
	return c.Assessment.Float()
}

func (e ReportEntry) String() string {
	var b strings.Builder
	b.WriteString(e.Name)
	b.WriteString("\theuristic=")
	b.WriteString(strconv.FormatFloat(e.HeuristicScore, 'f', 3, 64))
	if e.ModelScore != "" {
		b.WriteString("\tmodel=")
		b.WriteString(e.ModelScore)
	}
	if len(e.MatchedKeywords) > 0 {
		b.WriteString("\tkeywords=")
		b.WriteString(strings.Join(e.MatchedKeywords, ","))
	}
	if e.Error != "" {
		b.WriteString("\terror=")
		b.WriteString(e.Error)
	}
	return b.String()
}

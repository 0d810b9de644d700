// Package scoring implements the local, network-free resume match score.
package scoring

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	// maxYears caps the years-of-experience contribution.
	maxYears = 10
	// yearsOverflow is used when the matched digit run does not fit an int.
	yearsOverflow = math.MaxInt32
)

var (
	// \p{Zs} covers the full-width space U+3000 common in Chinese text.
	yearsCN = regexp.MustCompile(`(\d+)[\s\p{Zs}]*年`)
	yearsEN = regexp.MustCompile(`(?i)(\d+)[\s\p{Zs}]*years?`)
)

// Result is the outcome of a heuristic scoring call.
type Result struct {
	// Score is within [0, 1], rounded to 3 decimals.
	Score float64 `json:"score"`
	// MatchedKeywords lists keywords found in the resume, in keyword-set order.
	MatchedKeywords []string `json:"matched_keywords"`
	// Years is the first years-of-experience figure found, 0 if none.
	Years int `json:"years"`
	// JobMatched lists keywords found in both the resume and the job description.
	JobMatched []string `json:"job_matched"`
}

// ComputeScoreDetails scores resume against the fixed keyword set and, when job is
// not empty, reports which keywords the resume shares with the job description.
// Keyword matching is case-insensitive substring containment.
func ComputeScoreDetails(resume, job string) *Result {
	lower := strings.ToLower(resume)

	result := &Result{
		MatchedKeywords: make([]string, 0),
		JobMatched:      make([]string, 0),
	}

	var running float64
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			running++
			result.MatchedKeywords = append(result.MatchedKeywords, kw)
		}
	}

	result.Years = ExtractYears(resume)
	running += float64(min(result.Years, maxYears)) / maxYears

	maxPossible := float64(len(keywords) + 1)
	result.Score = round3(math.Min(running/maxPossible, 1))

	if job != "" {
		jobLower := strings.ToLower(job)
		for _, kw := range keywords {
			if strings.Contains(jobLower, kw) && strings.Contains(lower, kw) {
				result.JobMatched = append(result.JobMatched, kw)
			}
		}
	}

	return result
}

// ExtractYears returns the first years-of-experience figure in text.
// The "N年" form is tried before "N year(s)". Returns 0 when neither is present.
func ExtractYears(text string) int {
	for _, re := range []*regexp.Regexp{yearsCN, yearsEN} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		years, err := strconv.Atoi(m[1])
		if err != nil {
			return yearsOverflow
		}
		return years
	}
	return 0
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

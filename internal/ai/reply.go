package ai

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var (
	// Model output may contain either real newlines or escaped "\n" sequences.
	lineSeparator = regexp.MustCompile(`\n|\\n`)
	scoreLine     = regexp.MustCompile(`(?i)score\s*=\s*([0-9]*\.?[0-9]+)`)
)

// ModelScoreReply is the lenient interpretation of a model score response.
type ModelScoreReply struct {
	// ScoreValue is the matched numeric text, kept verbatim. Only meaningful when HasScore is set.
	ScoreValue  string `json:"score,omitempty"`
	HasScore    bool   `json:"has_score"`
	Explanation string `json:"explanation"`
}

// Float returns the score as a number. ok is false when no score was found
// or the value cannot be parsed.
func (r ModelScoreReply) Float() (float64, bool) {
	if !r.HasScore {
		return 0, false
	}
	v, err := strconv.ParseFloat(r.ScoreValue, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseModelReply extracts a "score=<number>" line and the explanation text
// from a free-form model response. It never fails: lines it does not
// understand become part of the explanation.
func ParseModelReply(content string) ModelScoreReply {
	var reply ModelScoreReply
	explanation := make([]string, 0)

	for _, line := range lineSeparator.Split(content, -1) {
		if m := scoreLine.FindStringSubmatch(line); m != nil {
			if !reply.HasScore {
				reply.ScoreValue = m[1]
				reply.HasScore = true
			}
			continue
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			explanation = append(explanation, trimmed)
		}
	}

	reply.Explanation = strings.Join(explanation, "\n")
	return reply
}

// ParseAssessment understands the structured JSON reply requested by the score
// prompt and falls back to ParseModelReply for anything else.
func ParseAssessment(content string) ModelScoreReply {
	if reply, ok := parseStructured(content); ok {
		return reply
	}
	return ParseModelReply(content)
}

func parseStructured(content string) (ModelScoreReply, bool) {
	cleaned := extractJSON(content)
	if !strings.HasPrefix(cleaned, "{") {
		return ModelScoreReply{}, false
	}

	var data struct {
		Score       json.RawMessage `json:"score"`
		Explanation string          `json:"explanation"`
		Reason      string          `json:"reason"`
	}
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return ModelScoreReply{}, false
	}

	reply := ModelScoreReply{
		Explanation: strings.TrimSpace(data.Explanation),
	}
	if reply.Explanation == "" {
		reply.Explanation = strings.TrimSpace(data.Reason)
	}

	if score := coerceScore(data.Score); score != "" {
		reply.ScoreValue = score
		reply.HasScore = true
	}

	if !reply.HasScore && reply.Explanation == "" {
		return ModelScoreReply{}, false
	}

	return reply, true
}

func coerceScore(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var number json.Number
	if err := json.Unmarshal(raw, &number); err == nil {
		return number.String()
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}

	return ""
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

// Render formats a reply for display: the score line (when present) followed by the explanation.
func Render(reply ModelScoreReply) string {
	var b strings.Builder
	if reply.HasScore {
		b.WriteString("模型评分：")
		b.WriteString(reply.ScoreValue)
		b.WriteString("\n")
	}
	b.WriteString(reply.Explanation)
	return strings.TrimSpace(b.String())
}

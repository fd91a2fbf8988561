package client

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/menta2k/carbon-analyzer/pkg/types"
)

var (
	reBlock    = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLine     = regexp.MustCompile(`(?m)^\s*//.*$`)
	reInline   = regexp.MustCompile(`(?m)//.*$`)
	reTrailing = regexp.MustCompile(`,(\s*[}\]])`)
)

// ParseMaterialScores parses a model response into material scores. Responses
// that are not usable JSON return a result marked Fallback instead of an error.
func ParseMaterialScores(raw string) *types.MaterialScores {
	raw = SanitizeModelJSON(raw)

	if !strings.HasPrefix(raw, "{") {
		return &types.MaterialScores{
			Description: "Model returned non-JSON response",
			Fallback:    true,
		}
	}

	var result types.MaterialScores
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return &types.MaterialScores{
			Description: "Failed to parse model response",
			Fallback:    true,
		}
	}

	return &result
}

// SanitizeModelJSON removes code fences, comments and trailing commas and
// keeps the outermost JSON object.
func SanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	// Strip triple-backtick fences if present
	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "`")

	raw = reBlock.ReplaceAllString(raw, "")
	raw = reLine.ReplaceAllString(raw, "")
	raw = reInline.ReplaceAllString(raw, "")
	raw = reTrailing.ReplaceAllString(raw, "$1")

	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}

package cleaner

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseAssessment reads a quality assessment out of a chat-completion answer.
// Models routinely wrap the JSON in markdown fences or surround it with
// prose, so the parser isolates the outermost object before unmarshaling.
func parseAssessment(answer string) (qualityAssessment, error) {
	var a qualityAssessment

	body := isolateObject(stripFences(answer))
	if body == "" {
		return a, fmt.Errorf("no JSON object in assessment answer")
	}
	if err := json.Unmarshal([]byte(body), &a); err != nil {
		return a, fmt.Errorf("malformed assessment: %w", err)
	}
	if a.QualityScore < 0 || a.QualityScore > 1 {
		return a, fmt.Errorf("quality score %g out of range", a.QualityScore)
	}
	return a, nil
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag, leaving other text untouched.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{}") {
		s = s[nl+1:] // drop the language tag line
	}
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

// isolateObject returns the substring from the first '{' to the last '}', or
// "" when no object is present.
func isolateObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

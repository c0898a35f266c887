package ollama

import (
	"fmt"
	"strings"
)

// ExtractJSON pulls the first JSON object out of a model response. Handles
// markdown code fences and prose before or after the object. Returns an
// error when no object boundaries can be found.
func ExtractJSON(text string) (string, error) {
	text = stripFences(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}

	return text[start : end+1], nil
}

// stripFences removes markdown code fences, keeping only the fenced content
// when fences are present.
func stripFences(text string) string {
	if !strings.Contains(text, "```") {
		return strings.TrimSpace(text)
	}

	var kept []string
	inFence := false
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "```") {
			inFence = !inFence
			continue
		}
		if inFence || strings.HasPrefix(strings.TrimSpace(line), "{") || len(kept) > 0 {
			kept = append(kept, line)
		}
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}

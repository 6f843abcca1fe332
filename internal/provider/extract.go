package provider

import "strings"

// extractContent returns the part of a model reply enclosed in "---"
// delimiter lines, which the prompts ask models to use around the rewritten
// text. Replies without a delimited section are returned trimmed.
func extractContent(reply string) string {
	parts := strings.Split(reply, "---")
	if len(parts) >= 3 {
		return strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(reply)
}

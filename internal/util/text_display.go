package util

import (
	"strings"
	"unicode"
)

// DisplaySnippet produces a single-line, length-capped preview of extracted
// text, safe for log output.
func DisplaySnippet(s string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = 120
	}
	s = SanitizeText(s)
	s = strings.Join(strings.Fields(s), " ")

	out := make([]rune, 0, len(s))
	for _, r := range s {
		if !unicode.IsPrint(r) {
			continue
		}
		out = append(out, r)
	}
	trimmed := strings.TrimSpace(string(out))
	runes := []rune(trimmed)
	if len(runes) > maxRunes {
		return strings.TrimSpace(string(runes[:maxRunes])) + "..."
	}
	return trimmed
}

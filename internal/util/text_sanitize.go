package util

import "strings"

// SanitizeText removes NUL bytes and non-printing control characters that
// document converters occasionally emit (and Postgres text columns reject),
// keeping newline, carriage return and tab.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\x00", "")

	r := make([]rune, 0, len(s))
	for _, ch := range s {
		if ch == '\n' || ch == '\r' || ch == '\t' {
			r = append(r, ch)
			continue
		}
		if ch < 0x20 || ch == 0x7f {
			continue
		}
		r = append(r, ch)
	}
	return strings.TrimSpace(string(r))
}

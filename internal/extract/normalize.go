package extract

import (
	"strconv"
	"strings"

	"examflow/internal/util"
)

// Normalize turns raw converter output into the canonical line stream the
// segmenter consumes: control characters stripped, full-width ASCII variants
// folded, ordinal glyph prefixes rewritten to "N.", whitespace runs collapsed
// within lines, and blank-line runs collapsed to single separators.
// It always returns a (possibly empty) slice.
func Normalize(raw string) []string {
	raw = util.SanitizeText(raw)
	if raw == "" {
		return nil
	}
	raw = foldWidth(raw)

	out := make([]string, 0, strings.Count(raw, "\n")+1)
	blank := false
	for _, line := range strings.Split(raw, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
				blank = true
			}
			continue
		}
		blank = false
		out = append(out, canonicalOrdinalPrefix(line))
	}
	// Drop a trailing separator left by blank lines at the end.
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

// foldWidth maps full-width ASCII variants (ＦＦ０１-ＦＦ５Ｅ) and the
// ideographic space to their ASCII counterparts, so that "１．"、"（３）" and
// "答案：" all reach the segmenter in a single spelling.
func foldWidth(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 0xFF01 && r <= 0xFF5E:
			b.WriteRune(r - 0xFEE0)
		case r == 0x3000:
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// canonicalOrdinalPrefix rewrites circled-number and Chinese-numeral ordinal
// prefixes at the start of a line into the canonical "N." token. Glyphs in
// the middle of a line are left alone.
func canonicalOrdinalPrefix(line string) string {
	runes := []rune(line)
	if len(runes) == 0 {
		return line
	}

	// Circled digits: ① .. ⑳ and parenthesized ⑴ .. ⒇.
	r := runes[0]
	var n int
	switch {
	case r >= 0x2460 && r <= 0x2473:
		n = int(r-0x2460) + 1
	case r >= 0x2474 && r <= 0x2487:
		n = int(r-0x2474) + 1
	}
	if n > 0 {
		return strconv.Itoa(n) + ". " + strings.TrimSpace(string(runes[1:]))
	}

	// Chinese numerals used as ordinals: "一、"、"十二."、"二十一、".
	for i := 1; i < len(runes) && i <= 4; i++ {
		sep := runes[i]
		if sep != '、' && sep != '.' {
			continue
		}
		if v, ok := parseChineseNumeral(string(runes[:i])); ok {
			return strconv.Itoa(v) + ". " + strings.TrimSpace(string(runes[i+1:]))
		}
		break
	}
	return line
}

var cnDigits = map[rune]int{
	'零': 0, '一': 1, '二': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

// parseChineseNumeral reads 一..九十九 written with 十 as the tens marker.
func parseChineseNumeral(s string) (int, bool) {
	runes := []rune(s)
	if len(runes) == 0 {
		return 0, false
	}
	tens, units := 0, 0
	seenTen := false
	for i, r := range runes {
		if r == '十' {
			if seenTen {
				return 0, false
			}
			seenTen = true
			if i == 0 {
				tens = 1
			}
			continue
		}
		d, ok := cnDigits[r]
		if !ok {
			return 0, false
		}
		if seenTen {
			if units != 0 {
				return 0, false
			}
			units = d
		} else {
			if tens != 0 {
				return 0, false
			}
			tens = d
		}
	}
	if seenTen {
		v := tens*10 + units
		if v == 0 {
			return 0, false
		}
		return v, true
	}
	if len(runes) != 1 || tens == 0 {
		return 0, false
	}
	return tens, true
}

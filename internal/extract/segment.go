package extract

import (
	"regexp"
	"strings"
)

// ordinalStartRe matches the line prefixes that open a new question block in
// canonical text: "1." / "12、" and "(3)". Letter prefixes ("A.") are option
// lines, not ordinals, and never match here.
var ordinalStartRe = regexp.MustCompile(`^(\d{1,3}[.、]|\(\d{1,3}\))\s*(.*)$`)

// Segment partitions canonical lines into ordered blocks. A block opens at
// every ordinal-start line and runs until the next one. Lines before the
// first ordinal are front matter and are dropped; a document with no ordinal
// markers yields zero blocks rather than one oversized block.
func Segment(lines []string) []Block {
	blocks := make([]Block, 0)
	var cur *Block
	var body []string

	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = strings.TrimSpace(strings.Join(body, "\n"))
		blocks = append(blocks, *cur)
		cur, body = nil, nil
	}

	for _, line := range lines {
		if m := ordinalStartRe.FindStringSubmatch(line); m != nil {
			flush()
			cur = &Block{Index: len(blocks), Label: m[1]}
			body = body[:0]
			if rest := strings.TrimSpace(m[2]); rest != "" {
				body = append(body, rest)
			}
			continue
		}
		if cur == nil {
			continue
		}
		body = append(body, line)
	}
	flush()
	return blocks
}

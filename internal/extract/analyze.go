package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Token vocabularies enumerated from representative source documents. The
// answer and explanation labels reach this package with half-width colons:
// the normalizer folds "：" to ":" before segmentation.
var (
	answerMarkerRe      = regexp.MustCompile(`答案\s*[:：]`)
	explanationMarkerRe = regexp.MustCompile(`(?:解析|解答)\s*[:：]`)
	optionTokenRe       = regexp.MustCompile(`(^|[\s(])([A-H])\s*[.、]`)
	blankIndicatorRe    = regexp.MustCompile(`_{2,}|\(\s*\)|（\s*）|\[\s*\]`)
	answerLettersRe     = regexp.MustCompile(`^[A-H]+$`)

	difficultyRe = regexp.MustCompile(`【?难度\s*[:：]\s*(简单|中等|困难|易|中|难)】?`)
	gradeRe      = regexp.MustCompile(`【?年级\s*[:：]\s*(\d{1,2})】?`)
	subjectRe    = regexp.MustCompile(`【?科目\s*[:：]\s*([^\s【】，。;；:：]+)】?`)
)

var trueTokens = map[string]bool{
	"对": true, "正确": true, "√": true, "t": true, "true": true, "yes": true,
}

var falseTokens = map[string]bool{
	"错": true, "错误": true, "×": true, "x": true, "f": true, "false": true, "no": true,
}

type option struct {
	letter string
	body   string
}

// analysis is the one-pass decomposition of a block that both the classifier
// and the field extractor read. The block itself is never mutated.
type analysis struct {
	stem           string
	options        []option
	answerRaw      string
	hasAnswer      bool
	answerMarkers  int
	explanation    string
	hasExplanation bool
	hasBlank       bool
	difficulty     string
	grade          int
	subject        string
}

func analyze(b Block) analysis {
	text := b.Text
	var a analysis

	text = a.takeMetadata(text)

	ansLoc := answerMarkerRe.FindStringIndex(text)
	a.answerMarkers = len(answerMarkerRe.FindAllString(text, -1))
	expLoc := explanationMarkerRe.FindStringIndex(text)

	body := text
	if ansLoc != nil {
		a.hasAnswer = true
		body = text[:ansLoc[0]]
		tail := text[ansLoc[1]:]
		if expLoc != nil && expLoc[0] > ansLoc[1] {
			tail = text[ansLoc[1]:expLoc[0]]
		}
		a.answerRaw = strings.TrimSpace(tail)
	} else if expLoc != nil {
		body = text[:expLoc[0]]
	}
	if expLoc != nil {
		a.hasExplanation = true
		a.explanation = strings.TrimSpace(text[expLoc[1]:])
	}

	a.splitOptions(body)
	a.hasBlank = blankIndicatorRe.MatchString(a.stem)
	return a
}

// takeMetadata lifts inline difficulty/grade/subject annotations out of the
// block text so they never leak into the stem.
func (a *analysis) takeMetadata(text string) string {
	if m := difficultyRe.FindStringSubmatch(text); m != nil {
		a.difficulty = canonicalDifficulty(m[1])
		text = difficultyRe.ReplaceAllString(text, " ")
	}
	if m := gradeRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			a.grade = n
		}
		text = gradeRe.ReplaceAllString(text, " ")
	}
	if m := subjectRe.FindStringSubmatch(text); m != nil {
		a.subject = m[1]
		text = subjectRe.ReplaceAllString(text, " ")
	}
	return text
}

// splitOptions cuts the pre-answer body into stem and option list. Options
// may sit one per line or inline ("A. 3 B. 4 C. 5 D. 6"); both reach here as
// letter tokens preceded by start-of-text, whitespace or an open paren.
func (a *analysis) splitOptions(body string) {
	locs := optionTokenRe.FindAllStringSubmatchIndex(body, -1)
	if len(locs) == 0 {
		a.stem = strings.TrimSpace(body)
		return
	}
	a.stem = strings.TrimSpace(body[:locs[0][0]])
	for i, loc := range locs {
		letter := body[loc[4]:loc[5]]
		end := len(body)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		optBody := strings.TrimSpace(body[loc[1]:end])
		a.options = append(a.options, option{letter: letter, body: optBody})
	}
}

func canonicalDifficulty(s string) string {
	switch s {
	case "易", "简单":
		return "easy"
	case "难", "困难":
		return "hard"
	default:
		return "medium"
	}
}

// answerLetters parses the answer-marker value as option letters ("B", "ACD",
// also tolerating separators like "A、C"). ok is false when the value is not
// letter-shaped at all.
func answerLetters(raw string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.NewReplacer("、", "", ",", "", " ", "", "．", "", ".", "", "。", "").Replace(s)
	if s == "" || !answerLettersRe.MatchString(s) {
		return "", false
	}
	return s, true
}

// normalizeBool folds the accepted true/false surface forms to canonical
// "true"/"false" tokens.
func normalizeBool(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimRight(s, "。.!？?")
	if trueTokens[s] {
		return "true", true
	}
	if falseTokens[s] {
		return "false", true
	}
	return "", false
}

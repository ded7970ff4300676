package extract

import "strings"

// Field extraction refuses to guess: a block that fails required-field
// validation for its classified type is discarded with insufficient-fields,
// never emitted as a partially populated record.

func extractChoice(b Block, a *analysis) (*Question, DiscardReason) {
	stem := a.stem
	if stem == "" {
		return nil, DiscardInsufficientFields
	}
	if len(a.options) < 2 {
		return nil, DiscardInsufficientFields
	}
	letters, ok := answerLetters(a.answerRaw)
	if !ok {
		return nil, DiscardInsufficientFields
	}
	present := make(map[byte]bool, len(a.options))
	opts := make([]string, 0, len(a.options))
	for _, o := range a.options {
		present[o.letter[0]] = true
		opts = append(opts, o.body)
	}
	for i := 0; i < len(letters); i++ {
		if !present[letters[i]] {
			return nil, DiscardInsufficientFields
		}
	}
	typ := SingleChoice
	if len(letters) >= 2 {
		typ = MultipleChoice
	}
	return a.question(b, typ, stem, opts, letters), ""
}

func extractTrueFalse(b Block, a *analysis) (*Question, DiscardReason) {
	if a.stem == "" {
		return nil, DiscardInsufficientFields
	}
	v, ok := normalizeBool(a.answerRaw)
	if !ok {
		return nil, DiscardInsufficientFields
	}
	return a.question(b, TrueFalse, a.stem, nil, v), ""
}

func extractFillInBlank(b Block, a *analysis) (*Question, DiscardReason) {
	// The blank-indicator span stays in the stem so callers can render it.
	if a.stem == "" || strings.TrimSpace(a.answerRaw) == "" {
		return nil, DiscardInsufficientFields
	}
	return a.question(b, FillInBlank, a.stem, nil, strings.TrimSpace(a.answerRaw)), ""
}

func extractOpenResponse(b Block, a *analysis) (*Question, DiscardReason) {
	if a.stem == "" || a.explanation == "" {
		return nil, DiscardInsufficientFields
	}
	return a.question(b, OpenResponse, a.stem, nil, ""), ""
}

// question assembles the output record, carrying the explanation and any
// opportunistic metadata regardless of type.
func (a *analysis) question(b Block, typ QuestionType, stem string, opts []string, answer string) *Question {
	return &Question{
		Type:        typ,
		Content:     stem,
		Options:     opts,
		Answer:      answer,
		Explanation: a.explanation,
		Difficulty:  a.difficulty,
		Grade:       a.grade,
		Subject:     a.subject,
		Ordinal:     b.Index,
	}
}

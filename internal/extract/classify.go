package extract

// rule pairs a type predicate with its field extractor. The table is ordered
// and the first match wins: option-line presence is the strongest signal, so
// the choice types sit above the weaker blank / explanation cues. New
// question types slot in without touching existing entries.
type rule struct {
	typ     QuestionType
	match   func(a *analysis) bool
	extract func(b Block, a *analysis) (*Question, DiscardReason)
}

var rules = []rule{
	{MultipleChoice, matchMultipleChoice, extractChoice},
	{SingleChoice, matchSingleChoice, extractChoice},
	{TrueFalse, matchTrueFalse, extractTrueFalse},
	{FillInBlank, matchFillInBlank, extractFillInBlank},
	{OpenResponse, matchOpenResponse, extractOpenResponse},
}

// Classify assigns one of the five question types to a block, or
// unclassified when no heuristic matches.
func Classify(b Block) QuestionType {
	a := analyze(b)
	for _, r := range rules {
		if r.match(&a) {
			return r.typ
		}
	}
	return unclassified
}

func matchMultipleChoice(a *analysis) bool {
	if !a.hasAnswer || len(a.options) < 2 {
		return false
	}
	letters, ok := answerLetters(a.answerRaw)
	return ok && len(letters) >= 2
}

func matchSingleChoice(a *analysis) bool {
	if !a.hasAnswer || len(a.options) < 2 {
		return false
	}
	letters, ok := answerLetters(a.answerRaw)
	return ok && len(letters) == 1
}

func matchTrueFalse(a *analysis) bool {
	if !a.hasAnswer || len(a.options) != 0 {
		return false
	}
	_, ok := normalizeBool(a.answerRaw)
	return ok
}

func matchFillInBlank(a *analysis) bool {
	return a.hasBlank && a.hasAnswer && len(a.options) == 0
}

func matchOpenResponse(a *analysis) bool {
	if !a.hasExplanation || len(a.options) != 0 {
		return false
	}
	_, lettersLike := answerLetters(a.answerRaw)
	return !lettersLike
}

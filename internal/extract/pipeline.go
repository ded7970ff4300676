package extract

// Extract runs the whole pipeline on one document's raw text: normalize,
// segment, classify and extract each block, then assemble the ordered result.
// It is a pure function of its input; documents share no state, so callers
// may run extractions concurrently without locking. Zero extracted questions
// is still a succeeded result: only upstream fetch/convert errors, handled by
// the caller, fail a document.
func Extract(raw string) Result {
	lines := Normalize(raw)
	blocks := Segment(lines)
	outcomes := make([]Outcome, 0, len(blocks))
	for _, b := range blocks {
		outcomes = append(outcomes, extractBlock(b))
	}
	return Assemble(outcomes)
}

// extractBlock applies the ordered rule table to one block. Two or more
// answer markers in a single block mean the segmenter missed a boundary;
// rather than guess where the split belongs, the block is discarded.
func extractBlock(b Block) Outcome {
	if b.Text == "" {
		return Outcome{Block: b, Discard: DiscardInsufficientFields}
	}
	a := analyze(b)
	if a.answerMarkers >= 2 {
		return Outcome{Block: b, Discard: DiscardAmbiguousBoundary}
	}
	for _, r := range rules {
		if !r.match(&a) {
			continue
		}
		q, discard := r.extract(b, &a)
		if discard != "" {
			return Outcome{Block: b, Discard: discard}
		}
		return Outcome{Block: b, Question: q}
	}
	// An answer or explanation marker without the fields its type needs is a
	// malformed question, not background prose.
	if a.hasAnswer || a.hasExplanation {
		return Outcome{Block: b, Discard: DiscardInsufficientFields}
	}
	return Outcome{Block: b, Discard: DiscardNoPattern}
}

// Assemble keeps the question outcomes in block order and tallies discards
// for diagnostics. Discarded blocks never appear in the question list.
func Assemble(outcomes []Outcome) Result {
	res := Result{
		Status:    StatusSucceeded,
		Questions: make([]Question, 0, len(outcomes)),
	}
	for _, o := range outcomes {
		if o.Question != nil {
			res.Questions = append(res.Questions, *o.Question)
			continue
		}
		if res.Discards == nil {
			res.Discards = make(map[DiscardReason]int)
		}
		res.Discards[o.Discard]++
	}
	return res
}

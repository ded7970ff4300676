package extract

// QuestionType is the closed set of exam question kinds the pipeline emits.
type QuestionType string

const (
	SingleChoice   QuestionType = "single-choice"
	MultipleChoice QuestionType = "multiple-choice"
	FillInBlank    QuestionType = "fill-in-blank"
	TrueFalse      QuestionType = "true-false"
	OpenResponse   QuestionType = "open-response"

	// unclassified marks a block no rule matched; it never reaches output.
	unclassified QuestionType = ""
)

// Block is a contiguous span of canonical text believed to hold one question.
// Blocks are immutable once produced by the segmenter.
type Block struct {
	Index int    `json:"index"`
	Label string `json:"label,omitempty"`
	Text  string `json:"text"`
}

type Question struct {
	Type        QuestionType `json:"type"`
	Content     string       `json:"content"`
	Options     []string     `json:"options,omitempty"`
	Answer      string       `json:"answer,omitempty"`
	Explanation string       `json:"explanation,omitempty"`
	Difficulty  string       `json:"difficulty,omitempty"`
	Grade       int          `json:"grade,omitempty"`
	Subject     string       `json:"subject,omitempty"`
	Ordinal     int          `json:"ordinal"`
}

type DiscardReason string

const (
	DiscardNoPattern          DiscardReason = "no-question-pattern-matched"
	DiscardAmbiguousBoundary  DiscardReason = "ambiguous-boundary"
	DiscardInsufficientFields DiscardReason = "insufficient-fields"
)

// Outcome is the per-block result: either a question or a discard reason.
type Outcome struct {
	Block    Block         `json:"block"`
	Question *Question     `json:"question,omitempty"`
	Discard  DiscardReason `json:"discard,omitempty"`
}

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Result is the document-level output. Zero questions is still a success;
// only upstream fetch/convert failures mark a document failed, and those are
// decided by the caller, not here.
type Result struct {
	Status    string                `json:"status"`
	Questions []Question            `json:"questions"`
	Discards  map[DiscardReason]int `json:"discards,omitempty"`
}

package extract

import "testing"

func TestExtractChoiceFields(t *testing.T) {
	o := extractBlock(Block{Index: 0, Text: "2+2=? A. 3 B. 4 C. 5 D. 6 答案:B"})
	if o.Question == nil {
		t.Fatalf("expected question, got discard %q", o.Discard)
	}
	q := o.Question
	if q.Type != SingleChoice || q.Content != "2+2=?" || q.Answer != "B" {
		t.Fatalf("unexpected question: %+v", q)
	}
	if len(q.Options) != 4 || q.Options[0] != "3" || q.Options[3] != "6" {
		t.Fatalf("unexpected options: %v", q.Options)
	}
}

func TestExtractMultipleChoiceValidatesLetters(t *testing.T) {
	o := extractBlock(Block{Text: "选出质数 A.2 B.4 C.3 D.9 答案:AC"})
	if o.Question == nil || o.Question.Type != MultipleChoice || o.Question.Answer != "AC" {
		t.Fatalf("unexpected outcome: %+v", o)
	}
}

func TestExtractChoiceAnswerOutsideOptions(t *testing.T) {
	o := extractBlock(Block{Text: "题干 A. 甲 B. 乙 答案:E"})
	if o.Question != nil || o.Discard != DiscardInsufficientFields {
		t.Fatalf("answer outside option letters must discard: %+v", o)
	}
}

func TestExtractTrueFalseNormalizesSurfaceForms(t *testing.T) {
	cases := map[string]string{
		"地球是方的 答案:错":  "false",
		"水往低处流 答案:对":  "true",
		"1+1=3 答案:×":   "false",
		"太阳从东边升起 答案:√": "true",
		"英文判断 答案:T":    "true",
	}
	for text, want := range cases {
		o := extractBlock(Block{Text: text})
		if o.Question == nil || o.Question.Type != TrueFalse {
			t.Fatalf("extract %q: %+v", text, o)
		}
		if o.Question.Answer != want {
			t.Fatalf("extract %q: answer %q want %q", text, o.Question.Answer, want)
		}
	}
}

func TestExtractFillInBlankKeepsIndicator(t *testing.T) {
	o := extractBlock(Block{Text: "中国的首都是___ 答案:北京"})
	if o.Question == nil {
		t.Fatalf("expected question, got %+v", o)
	}
	if o.Question.Content != "中国的首都是___" || o.Question.Answer != "北京" {
		t.Fatalf("unexpected question: %+v", o.Question)
	}
}

func TestExtractOpenResponse(t *testing.T) {
	o := extractBlock(Block{Text: "简述光合作用的过程 解析:光合作用分为光反应和暗反应两个阶段"})
	if o.Question == nil || o.Question.Type != OpenResponse {
		t.Fatalf("unexpected outcome: %+v", o)
	}
	if o.Question.Explanation == "" || o.Question.Answer != "" {
		t.Fatalf("unexpected fields: %+v", o.Question)
	}
}

func TestExtractExplanationCapturedForAnyType(t *testing.T) {
	o := extractBlock(Block{Text: "2+2=? A. 3 B. 4 答案:B 解析:二加二等于四"})
	if o.Question == nil || o.Question.Explanation != "二加二等于四" {
		t.Fatalf("explanation not captured: %+v", o)
	}
}

func TestExtractMetadataAnnotations(t *testing.T) {
	o := extractBlock(Block{Text: "【难度:难】【年级:7】【科目:数学】 2+2=? A. 3 B. 4 答案:B"})
	if o.Question == nil {
		t.Fatalf("expected question: %+v", o)
	}
	q := o.Question
	if q.Difficulty != "hard" || q.Grade != 7 || q.Subject != "数学" {
		t.Fatalf("unexpected metadata: %+v", q)
	}
	if q.Content != "2+2=?" {
		t.Fatalf("metadata leaked into stem: %q", q.Content)
	}
}

func TestExtractEmptyBodyDiscarded(t *testing.T) {
	o := extractBlock(Block{Text: ""})
	if o.Discard != DiscardInsufficientFields {
		t.Fatalf("empty body must discard insufficient-fields, got %+v", o)
	}
}

func TestExtractEmptyStemDiscarded(t *testing.T) {
	o := extractBlock(Block{Text: "答案:对"})
	if o.Question != nil || o.Discard != DiscardInsufficientFields {
		t.Fatalf("empty stem must not be emitted: %+v", o)
	}
}

func TestExtractAmbiguousBoundaryDiscarded(t *testing.T) {
	o := extractBlock(Block{Text: "甲题 答案:对 乙题 答案:错"})
	if o.Discard != DiscardAmbiguousBoundary {
		t.Fatalf("double answer marker must discard ambiguous-boundary: %+v", o)
	}
}

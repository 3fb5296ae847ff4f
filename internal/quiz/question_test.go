package quiz

import (
	"reflect"
	"testing"
)

func mustOption(t *testing.T, id, text, explanation string) Option {
	t.Helper()
	o, err := NewOption(id, text, explanation)
	if err != nil {
		t.Fatalf("NewOption(%q, %q): %v", id, text, err)
	}
	return o
}

func fourOptions(t *testing.T) []Option {
	t.Helper()
	return []Option{
		mustOption(t, "a", "A", ""),
		mustOption(t, "b", "B", ""),
		mustOption(t, "c", "C", ""),
		mustOption(t, "d", "D", ""),
	}
}

func mustQuestion(t *testing.T, correct []int) Question {
	t.Helper()
	q, err := NewQuestion(QuestionData{
		ID:             "q-0001",
		Text:           "Which option is correct?",
		Options:        fourOptions(t),
		CorrectAnswers: correct,
		Explanation:    "Because it is.",
		Category:       "basics",
		Difficulty:     "easy",
	})
	if err != nil {
		t.Fatalf("NewQuestion: %v", err)
	}
	return q
}

func TestNewOptionRejectsBlankFields(t *testing.T) {
	tests := []struct {
		name     string
		id, text string
	}{
		{name: "empty id", id: "", text: "A"},
		{name: "blank id", id: "   ", text: "A"},
		{name: "empty text", id: "a", text: ""},
		{name: "blank text", id: "a", text: " \t "},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewOption(tc.id, tc.text, ""); err == nil {
				t.Fatalf("expected error for id=%q text=%q", tc.id, tc.text)
			}
		})
	}
}

func TestNewCodeExample(t *testing.T) {
	if _, err := NewCodeExample("", "csharp", ""); err == nil {
		t.Fatal("expected error for empty code")
	}
	if _, err := NewCodeExample("Console.WriteLine(1);", "  ", ""); err == nil {
		t.Fatal("expected error for blank language")
	}

	e, err := NewCodeExample("Console.WriteLine(1);", "  CSharp ", "")
	if err != nil {
		t.Fatalf("NewCodeExample: %v", err)
	}
	if e.Language() != "csharp" {
		t.Fatalf("language not lowercased: %q", e.Language())
	}
	if e.HasOutput() {
		t.Fatal("HasOutput true for empty output")
	}

	e2, err := NewCodeExample("x", "go", "  \n")
	if err != nil {
		t.Fatalf("NewCodeExample: %v", err)
	}
	if e2.HasOutput() {
		t.Fatal("HasOutput true for blank output")
	}

	e3, err := NewCodeExample("x", "go", "1")
	if err != nil {
		t.Fatalf("NewCodeExample: %v", err)
	}
	if !e3.HasOutput() {
		t.Fatal("HasOutput false for real output")
	}
}

func TestNewQuestionInvariants(t *testing.T) {
	opts := fourOptions(t)
	base := QuestionData{
		ID:             "q-0001",
		Text:           "Which option is correct?",
		Options:        opts,
		CorrectAnswers: []int{1},
		Explanation:    "Because it is.",
		Category:       "basics",
	}

	tests := []struct {
		name   string
		mutate func(d *QuestionData)
	}{
		{name: "blank id", mutate: func(d *QuestionData) { d.ID = "  " }},
		{name: "blank text", mutate: func(d *QuestionData) { d.Text = "" }},
		{name: "no options", mutate: func(d *QuestionData) { d.Options = nil }},
		{name: "no correct answers", mutate: func(d *QuestionData) { d.CorrectAnswers = nil }},
		{name: "negative correct index", mutate: func(d *QuestionData) { d.CorrectAnswers = []int{-1} }},
		{name: "correct index past end", mutate: func(d *QuestionData) { d.CorrectAnswers = []int{4} }},
		{name: "blank explanation", mutate: func(d *QuestionData) { d.Explanation = " " }},
		{name: "blank category", mutate: func(d *QuestionData) { d.Category = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := base
			tc.mutate(&d)
			if _, err := NewQuestion(d); err == nil {
				t.Fatal("expected construction error")
			}
		})
	}

	if _, err := NewQuestion(base); err != nil {
		t.Fatalf("valid data rejected: %v", err)
	}
}

func TestNewQuestionDeduplicatesCorrectAnswers(t *testing.T) {
	q, err := NewQuestion(QuestionData{
		ID:             "q-0002",
		Text:           "Pick two",
		Options:        fourOptions(t),
		CorrectAnswers: []int{2, 0, 2, 0},
		Explanation:    "e",
		Category:       "basics",
	})
	if err != nil {
		t.Fatalf("NewQuestion: %v", err)
	}
	if got := q.CorrectAnswers(); !reflect.DeepEqual(got, []int{2, 0}) {
		t.Fatalf("correct answers not de-duplicated in input order: %v", got)
	}
	if !q.HasMultipleAnswers() {
		t.Fatal("two distinct correct answers should report multiple")
	}
}

func TestQuestionAccessorsReturnCopies(t *testing.T) {
	q := mustQuestion(t, []int{1})

	opts := q.Options()
	opts[0] = mustOption(t, "z", "Z", "")
	if got, _ := q.Option(0); got.ID() != "a" {
		t.Fatalf("mutating Options() result leaked into question: %q", got.ID())
	}

	correct := q.CorrectAnswers()
	correct[0] = 3
	if got := q.CorrectAnswers(); got[0] != 1 {
		t.Fatalf("mutating CorrectAnswers() result leaked into question: %v", got)
	}
}

func TestQuestionConstructionIsValueIdempotent(t *testing.T) {
	example, err := NewCodeExample("Console.WriteLine(\"hi\");", "csharp", "hi")
	if err != nil {
		t.Fatalf("NewCodeExample: %v", err)
	}
	data := QuestionData{
		ID:             "q-0003",
		Text:           "t",
		Options:        fourOptions(t),
		CorrectAnswers: []int{0, 2},
		Explanation:    "e",
		Category:       "console",
		Difficulty:     "medium",
		CodeExample:    &example,
	}

	q1, err := NewQuestion(data)
	if err != nil {
		t.Fatalf("NewQuestion: %v", err)
	}
	q2, err := NewQuestion(data)
	if err != nil {
		t.Fatalf("NewQuestion: %v", err)
	}

	if q1.ID() != q2.ID() || q1.Text() != q2.Text() || q1.Category() != q2.Category() ||
		q1.Difficulty() != q2.Difficulty() || q1.Explanation() != q2.Explanation() {
		t.Fatal("identical input produced different scalar fields")
	}
	if !reflect.DeepEqual(q1.Options(), q2.Options()) {
		t.Fatal("identical input produced different options")
	}
	if !reflect.DeepEqual(q1.CorrectAnswers(), q2.CorrectAnswers()) {
		t.Fatal("identical input produced different correct answers")
	}
	e1, ok1 := q1.CodeExample()
	e2, ok2 := q2.CodeExample()
	if !ok1 || !ok2 || e1 != e2 {
		t.Fatal("identical input produced different code examples")
	}
}

func TestQuestionOptionOutOfRange(t *testing.T) {
	q := mustQuestion(t, []int{1})
	if _, ok := q.Option(-1); ok {
		t.Fatal("Option(-1) reported ok")
	}
	if _, ok := q.Option(4); ok {
		t.Fatal("Option(4) reported ok")
	}
}

package quiz

import (
	"errors"
	"fmt"
	"strings"
)

// QuestionData is the plain record a loader hands to NewQuestion. It mirrors
// the shape of imported question content; NewQuestion is the single place
// where that content is admitted or refused.
type QuestionData struct {
	ID             string
	Text           string
	Options        []Option
	CorrectAnswers []int
	Explanation    string
	Category       string
	Difficulty     string
	CodeExample    *CodeExample
}

// Question is an immutable multiple-choice question. Accessors hand out
// copies, so holders of a Question never observe mutation; shuffling
// produces derived instances instead of modifying this one.
type Question struct {
	id             string
	text           string
	options        []Option
	correctAnswers []int
	explanation    string
	category       string
	difficulty     string
	codeExample    *CodeExample
}

// NewQuestion validates the record and builds a Question. Every violated
// invariant gets its own error; malformed content must be refused upstream,
// not repaired.
func NewQuestion(d QuestionData) (Question, error) {
	if strings.TrimSpace(d.ID) == "" {
		return Question{}, errors.New("question id cannot be empty")
	}
	if strings.TrimSpace(d.Text) == "" {
		return Question{}, errors.New("question text cannot be empty")
	}
	if len(d.Options) == 0 {
		return Question{}, errors.New("question must have at least one option")
	}
	if len(d.CorrectAnswers) == 0 {
		return Question{}, errors.New("question must have at least one correct answer")
	}
	if strings.TrimSpace(d.Explanation) == "" {
		return Question{}, errors.New("question explanation cannot be empty")
	}
	if strings.TrimSpace(d.Category) == "" {
		return Question{}, errors.New("question category cannot be empty")
	}

	// De-duplicate correct answers with set semantics, keeping first-seen
	// order, and bounds-check each index against the option list.
	seen := make(map[int]bool, len(d.CorrectAnswers))
	correct := make([]int, 0, len(d.CorrectAnswers))
	for _, idx := range d.CorrectAnswers {
		if idx < 0 || idx >= len(d.Options) {
			return Question{}, fmt.Errorf("correct answer index %d is out of bounds for %d options", idx, len(d.Options))
		}
		if seen[idx] {
			continue
		}
		seen[idx] = true
		correct = append(correct, idx)
	}

	options := make([]Option, len(d.Options))
	copy(options, d.Options)

	var example *CodeExample
	if d.CodeExample != nil {
		e := *d.CodeExample
		example = &e
	}

	return Question{
		id:             strings.TrimSpace(d.ID),
		text:           d.Text,
		options:        options,
		correctAnswers: correct,
		explanation:    d.Explanation,
		category:       strings.TrimSpace(d.Category),
		difficulty:     d.Difficulty,
		codeExample:    example,
	}, nil
}

func (q Question) ID() string          { return q.id }
func (q Question) Text() string        { return q.text }
func (q Question) Explanation() string { return q.explanation }
func (q Question) Category() string    { return q.category }
func (q Question) Difficulty() string  { return q.difficulty }

func (q Question) OptionCount() int { return len(q.options) }

// Options returns a copy of the option list in presentation order.
func (q Question) Options() []Option {
	out := make([]Option, len(q.options))
	copy(out, q.options)
	return out
}

// Option returns the option at idx; ok is false when idx is out of range.
func (q Question) Option(idx int) (Option, bool) {
	if idx < 0 || idx >= len(q.options) {
		return Option{}, false
	}
	return q.options[idx], true
}

// CorrectAnswers returns a copy of the de-duplicated correct index set.
func (q Question) CorrectAnswers() []int {
	out := make([]int, len(q.correctAnswers))
	copy(out, q.correctAnswers)
	return out
}

// HasMultipleAnswers reports whether more than one option is correct. The
// single/multi cardinality rule for submissions derives from this alone;
// there is no separate multi-select flag.
func (q Question) HasMultipleAnswers() bool {
	return len(q.correctAnswers) > 1
}

// CodeExample returns the attached snippet, if any.
func (q Question) CodeExample() (CodeExample, bool) {
	if q.codeExample == nil {
		return CodeExample{}, false
	}
	return *q.codeExample, true
}

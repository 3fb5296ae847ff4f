package quiz

import "fmt"

// ValidationResult is the structured outcome of checking a submission.
// Bad user input is always reported here, never as an error value, so a
// client can show every problem with a submission at once.
type ValidationResult struct {
	Valid           bool     `json:"isValid"`
	Errors          []string `json:"errors,omitempty"`
	Correct         bool     `json:"isCorrect"`
	SelectedAnswers []int    `json:"selectedAnswers,omitempty"`
	CorrectAnswers  []int    `json:"correctAnswers,omitempty"`
}

// AnswerValidator decides whether a set of submitted option indices is
// well-formed and correct for a question. Stateless; safe to share.
type AnswerValidator struct{}

func NewAnswerValidator() *AnswerValidator {
	return &AnswerValidator{}
}

// ValidateAnswerIndices checks every submitted index against the question's
// option bounds, accumulating one message per bad index rather than
// stopping at the first.
func (v *AnswerValidator) ValidateAnswerIndices(q Question, selected []int) ValidationResult {
	var errs []string
	max := q.OptionCount() - 1
	for _, idx := range selected {
		switch {
		case idx < 0:
			errs = append(errs, fmt.Sprintf("Answer index cannot be negative, got: %d", idx))
		case idx > max:
			errs = append(errs, fmt.Sprintf("Answer index %d is out of bounds. Maximum valid index is %d", idx, max))
		}
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// ValidateSelectionCount enforces the selection-count policy: at least one
// answer, exactly one for single-answer questions, no duplicates. It is
// deliberately independent of index bounds: selecting more options than
// exist is only caught by ValidateAnswerIndices.
func (v *AnswerValidator) ValidateSelectionCount(q Question, selected []int) ValidationResult {
	var errs []string
	if len(selected) == 0 {
		errs = append(errs, "At least one answer must be selected")
	}
	if !q.HasMultipleAnswers() && len(selected) > 1 {
		errs = append(errs, fmt.Sprintf("This question expects a single answer, but %d answers were selected", len(selected)))
	}
	if hasDuplicates(selected) {
		errs = append(errs, "Duplicate answer selections are not allowed")
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// IsCorrectAnswer reports whether the submitted indices, taken as a set,
// equal the question's correct-answer set exactly. Order and duplicates in
// the submission do not matter.
func (v *AnswerValidator) IsCorrectAnswer(q Question, selected []int) bool {
	correct := make(map[int]bool, len(q.correctAnswers))
	for _, idx := range q.correctAnswers {
		correct[idx] = true
	}
	chosen := make(map[int]bool, len(selected))
	for _, idx := range selected {
		chosen[idx] = true
	}
	if len(chosen) != len(correct) {
		return false
	}
	for idx := range chosen {
		if !correct[idx] {
			return false
		}
	}
	return true
}

// Validate composes the bounds and count checks. If either fails, the
// combined messages come back and correctness is not evaluated. If both
// pass, the result carries the grading outcome and copies of both index
// sets for the caller to persist or display.
func (v *AnswerValidator) Validate(q Question, selected []int) ValidationResult {
	bounds := v.ValidateAnswerIndices(q, selected)
	count := v.ValidateSelectionCount(q, selected)

	if !bounds.Valid || !count.Valid {
		errs := make([]string, 0, len(bounds.Errors)+len(count.Errors))
		errs = append(errs, bounds.Errors...)
		errs = append(errs, count.Errors...)
		return ValidationResult{Valid: false, Errors: errs}
	}

	selectedCopy := make([]int, len(selected))
	copy(selectedCopy, selected)

	return ValidationResult{
		Valid:           true,
		Correct:         v.IsCorrectAnswer(q, selected),
		SelectedAnswers: selectedCopy,
		CorrectAnswers:  q.CorrectAnswers(),
	}
}

func hasDuplicates(indices []int) bool {
	seen := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if seen[idx] {
			return true
		}
		seen[idx] = true
	}
	return false
}

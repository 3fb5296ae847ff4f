package quiz

import (
	"errors"
	"strings"
)

// Option is one selectable answer choice of a question. Immutable after
// construction; compare with ==.
type Option struct {
	id          string
	text        string
	explanation string
}

// NewOption validates and builds an answer option. The explanation is
// optional and may be empty.
func NewOption(id, text, explanation string) (Option, error) {
	if strings.TrimSpace(id) == "" {
		return Option{}, errors.New("option id cannot be empty")
	}
	if strings.TrimSpace(text) == "" {
		return Option{}, errors.New("option text cannot be empty")
	}
	return Option{
		id:          strings.TrimSpace(id),
		text:        text,
		explanation: explanation,
	}, nil
}

func (o Option) ID() string          { return o.id }
func (o Option) Text() string        { return o.text }
func (o Option) Explanation() string { return o.explanation }

func (o Option) HasExplanation() bool {
	return strings.TrimSpace(o.explanation) != ""
}

package quiz

import (
	"errors"
	"strings"
)

// CodeExample is an immutable code snippet attached to a question,
// optionally carrying the output the snippet would print. Snippets are
// display material only; they are never executed.
type CodeExample struct {
	code     string
	language string
	output   string
}

func NewCodeExample(code, language, output string) (CodeExample, error) {
	if strings.TrimSpace(code) == "" {
		return CodeExample{}, errors.New("code example code cannot be empty")
	}
	if strings.TrimSpace(language) == "" {
		return CodeExample{}, errors.New("code example language cannot be empty")
	}
	return CodeExample{
		code:     code,
		language: strings.ToLower(strings.TrimSpace(language)),
		output:   output,
	}, nil
}

func (e CodeExample) Code() string     { return e.code }
func (e CodeExample) Language() string { return e.language }
func (e CodeExample) Output() string   { return e.output }

// HasOutput reports whether the example carries a non-blank expected output.
func (e CodeExample) HasOutput() bool {
	return strings.TrimSpace(e.output) != ""
}

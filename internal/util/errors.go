package util

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailRegistered     = errors.New("email already registered")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrBankNotFound        = errors.New("question bank not found")
	ErrBankNotPublished    = errors.New("question bank not published")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrNoQuestions         = errors.New("no questions available for this category")
	ErrSessionNotFound     = errors.New("study session not found")
	ErrSessionNotActive    = errors.New("study session is not active")
	ErrSessionExhausted    = errors.New("all questions in this session have been answered")
	ErrWrongSessionMode    = errors.New("operation not allowed in this session mode")
	ErrMalformedQuestion   = errors.New("question content is malformed")
	ErrDuplicateQuestionID = errors.New("question id already exists")
)

package service

import "errors"

// Sentinel errors handlers translate into API error codes.
var (
	ErrNoSession         = errors.New("no active exam session")
	ErrNoResult          = errors.New("no exam result available")
	ErrNoQuestions       = errors.New("no questions available")
	ErrExamNotAvailable  = errors.New("exam is not available")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrNotFound          = errors.New("not found")
)

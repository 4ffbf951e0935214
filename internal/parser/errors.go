package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax marks source that does not parse cleanly.
	ErrSyntax = errors.New("syntax error")

	// ErrUnsupportedLanguage is returned when no parser handles a file extension.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// ParseError locates the first syntax error in a file. It matches ErrSyntax
// with errors.Is.
type ParseError struct {
	File    string
	Line    int // 1-indexed, 0 when unknown
	Column  int // 1-indexed, 0 when unknown
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return ErrSyntax
}

// Is reports ErrSyntax even when a different cause is wrapped.
func (e *ParseError) Is(target error) bool {
	return target == ErrSyntax
}

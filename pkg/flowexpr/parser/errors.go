package parser

import (
	"errors"
	"fmt"
)

// ErrSyntax is wrapped by every error the lexer and parser report.
var ErrSyntax = errors.New("syntax error")

// SyntaxError describes malformed source text.
type SyntaxError struct {
	Position int    // Byte offset in the source
	Token    string // Offending token text, if any
	Message  string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("syntax error at position %d near %q: %s", e.Position, e.Token, e.Message)
	}
	return fmt.Sprintf("syntax error at position %d: %s", e.Position, e.Message)
}

// Unwrap returns ErrSyntax for errors.Is checks.
func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

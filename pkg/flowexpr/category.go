package flowexpr

import (
	"context"
	"errors"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/memory"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/parser"
)

// ErrorCategory classifies a parse or evaluation failure.
type ErrorCategory int

const (
	// CategoryRuntime is a failure inside a function, such as a division by
	// zero or a type mismatch only visible at evaluation time.
	CategoryRuntime ErrorCategory = iota

	// CategorySyntax is malformed source text.
	CategorySyntax

	// CategoryUnknownFunction is a name the function table cannot resolve.
	CategoryUnknownFunction

	// CategoryValidation is an arity, type or literal check that failed at
	// construction.
	CategoryValidation

	// CategoryMemory is a failure of the variable memory.
	CategoryMemory

	// CategoryPanic is a recovered panic in an evaluator.
	CategoryPanic

	// CategoryCanceled is a canceled or expired context.
	CategoryCanceled
)

// String returns the category name.
func (c ErrorCategory) String() string {
	switch c {
	case CategoryRuntime:
		return "runtime"
	case CategorySyntax:
		return "syntax"
	case CategoryUnknownFunction:
		return "unknown_function"
	case CategoryValidation:
		return "validation"
	case CategoryMemory:
		return "memory"
	case CategoryPanic:
		return "panic"
	case CategoryCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Categorize determines which category err belongs to. Errors that match
// nothing more specific, including nil, are runtime errors.
func Categorize(err error) ErrorCategory {
	if err == nil {
		return CategoryRuntime
	}

	var panicErr *PanicError
	switch {
	case errors.As(err, &panicErr):
		return CategoryPanic
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CategoryCanceled
	case errors.Is(err, parser.ErrSyntax):
		return CategorySyntax
	case errors.Is(err, ErrUnknownFunction):
		return CategoryUnknownFunction
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidNumber), errors.Is(err, ErrNilEvaluator):
		return CategoryValidation
	case errors.Is(err, memory.ErrInvalidPath), errors.Is(err, memory.ErrMemoryClosed), errors.Is(err, memory.ErrEmptyStack):
		return CategoryMemory
	}
	return CategoryRuntime
}

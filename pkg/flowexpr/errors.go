package flowexpr

import (
	"errors"
	"fmt"
)

// Sentinel errors for expression construction.
var (
	// ErrNilEvaluator indicates NewExpression was called without an evaluator.
	ErrNilEvaluator = errors.New("evaluator cannot be nil")

	// ErrNilExpression indicates Evaluate was called with a nil expression.
	ErrNilExpression = errors.New("expression cannot be nil")

	// ErrUnknownFunction indicates a function or operator name the lookup could not resolve.
	ErrUnknownFunction = errors.New("unknown function")

	// ErrValidation indicates an expression failed its evaluator's arity or type checks.
	ErrValidation = errors.New("invalid expression")

	// ErrInvalidNumber indicates a numeric literal that parses as neither an integer nor a float.
	ErrInvalidNumber = errors.New("invalid number literal")
)

// UnknownFunctionError reports a name that is not in the function table.
type UnknownFunctionError struct {
	// Name is the function or operator name as written, including any '!' suffix.
	Name string
	// Position is the byte offset of the reference in the source.
	Position int
}

// Error implements the error interface.
func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("%s does not have an evaluator, it's not a built-in function or a custom function (position %d)", e.Name, e.Position)
}

// Unwrap returns ErrUnknownFunction for errors.Is support.
func (e *UnknownFunctionError) Unwrap() error {
	return ErrUnknownFunction
}

// ValidationError reports an expression rejected at construction time.
type ValidationError struct {
	// Function is the evaluator type of the rejected node.
	Function string
	// Expression is the rendered source of the rejected node.
	Expression string
	// Reason describes which check failed.
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Expression, e.Reason)
}

// Unwrap returns ErrValidation for errors.Is support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// InvalidNumberError reports a numeric literal outside the representable range.
type InvalidNumberError struct {
	// Literal is the source text of the number.
	Literal string
	// Position is the byte offset of the literal in the source.
	Position int
}

// Error implements the error interface.
func (e *InvalidNumberError) Error() string {
	return fmt.Sprintf("%s is not a valid number (position %d)", e.Literal, e.Position)
}

// Unwrap returns ErrInvalidNumber for errors.Is support.
func (e *InvalidNumberError) Unwrap() error {
	return ErrInvalidNumber
}

// PanicError captures a panic raised inside an evaluator.
// It includes the stack trace for debugging.
type PanicError struct {
	// Function is the evaluator type of the node that panicked.
	Function string
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("%s panicked: %v", e.Function, e.Value)
}

package flowexpr

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

// Result is the outcome of evaluating an expression: exactly one of a value
// or an error. Evaluation failures travel only through Result, never through
// panics.
type Result struct {
	Value value.Value
	Err   error
}

// Ok returns a successful result. A nil value is stored as Missing.
func Ok(v value.Value) Result {
	return Result{Value: value.OrMissing(v)}
}

// Fail returns a failed result with a formatted message.
func Fail(format string, args ...any) Result {
	return FailErr(fmt.Errorf(format, args...))
}

// FailErr returns a failed result carrying err.
func FailErr(err error) Result {
	if err == nil {
		err = errors.New("evaluation failed")
	}
	return Result{Err: err}
}

// Failed reports whether the result holds an error.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Unwrap returns the value and error as a Go pair.
func (r Result) Unwrap() (value.Value, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return value.OrMissing(r.Value), nil
}

// String renders the value, or the error prefixed with "error: ".
func (r Result) String() string {
	if r.Err != nil {
		return "error: " + r.Err.Error()
	}
	return value.Text(r.Value)
}

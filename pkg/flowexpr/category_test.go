package flowexpr

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/memory"
)

func TestCategorize(t *testing.T) {
	parseErr := func(src string) error {
		_, err := Parse(src, nil)
		return err
	}
	evalErr := func(src string) error {
		return Evaluate(MustParse(src), nil, nil).Err
	}

	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{name: "nil", err: nil, want: CategoryRuntime},
		{name: "syntax", err: parseErr("1 +"), want: CategorySyntax},
		{name: "unknown function", err: parseErr("nope()"), want: CategoryUnknownFunction},
		{name: "validation", err: parseErr("length(1, 2)"), want: CategoryValidation},
		{name: "invalid number", err: parseErr("1e999"), want: CategoryValidation},
		{name: "runtime", err: evalErr("1 / 0"), want: CategoryRuntime},
		{name: "memory", err: evalErr("getProperty('a[')"), want: CategoryMemory},
		{name: "closed memory", err: fmt.Errorf("read: %w", memory.ErrMemoryClosed), want: CategoryMemory},
		{name: "panic", err: &PanicError{Function: "boom", Value: "x"}, want: CategoryPanic},
		{name: "canceled", err: context.Canceled, want: CategoryCanceled},
		{name: "deadline", err: fmt.Errorf("eval: %w", context.DeadlineExceeded), want: CategoryCanceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.err))
		})
	}
}

func TestErrorCategory_String(t *testing.T) {
	assert.Equal(t, "runtime", CategoryRuntime.String())
	assert.Equal(t, "syntax", CategorySyntax.String())
	assert.Equal(t, "unknown_function", CategoryUnknownFunction.String())
	assert.Equal(t, "validation", CategoryValidation.String())
	assert.Equal(t, "memory", CategoryMemory.String())
	assert.Equal(t, "panic", CategoryPanic.String())
	assert.Equal(t, "canceled", CategoryCanceled.String())
	assert.Equal(t, "unknown", ErrorCategory(42).String())
}

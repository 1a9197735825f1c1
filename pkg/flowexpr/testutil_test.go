package flowexpr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/memory"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

// evalCase is one row of a table-driven evaluation test.
type evalCase struct {
	name    string
	expr    string
	want    value.Value
	errMsg  string
	invalid bool
}

// testData is the memory most evaluation tests run against.
func testData() map[string]any {
	return map[string]any{
		"user": map[string]any{
			"name":  "ada",
			"age":   36,
			"tags":  []any{"admin", "dev"},
			"email": nil,
		},
		"items": []any{
			map[string]any{"name": "pen", "price": 2},
			map[string]any{"name": "book", "price": 12},
		},
		"offset": 10,
		"i":      1,
		"ratio":  0.5,
	}
}

// mustEval parses src with the standard table and evaluates it.
func mustEval(t *testing.T, src string, data map[string]any, opts *Options) Result {
	t.Helper()
	expr, err := Parse(src, nil)
	require.NoError(t, err, "parse %q", src)
	return Evaluate(expr, memory.New(data), opts)
}

// runEvalCases runs a table of evaluation cases against testData.
func runEvalCases(t *testing.T, tests []evalCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Parse(tt.expr, nil)
			if tt.invalid {
				require.Error(t, err)
				require.ErrorIs(t, err, ErrValidation)
				if tt.errMsg != "" {
					require.Contains(t, err.Error(), tt.errMsg)
				}
				return
			}
			require.NoError(t, err, "parse %q", tt.expr)

			res := Evaluate(expr, memory.New(testData()), nil)
			if tt.errMsg != "" {
				require.Error(t, res.Err, "expected error for %q, got %v", tt.expr, res.Value)
				require.Contains(t, res.Err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, res.Err)
			require.Equal(t, tt.want, res.Value)
		})
	}
}

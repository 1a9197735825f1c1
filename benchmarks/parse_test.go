package benchmarks

import (
	"strings"
	"testing"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr"
)

const (
	simpleExpr  = "1 + 2 * 3"
	pathExpr    = "user.age >= 18 && user.tags[0] == 'admin'"
	lambdaExpr  = "join(foreach(where(items, x => x.price > 5), x => toUpper(x.name)), ', ')"
	templateExp = "`${user.name} has ${count(items)} items`"
)

// BenchmarkParse_Simple parses a small arithmetic expression.
func BenchmarkParse_Simple(b *testing.B) {
	benchmarkParse(b, simpleExpr)
}

// BenchmarkParse_Paths parses memory paths and boolean operators.
func BenchmarkParse_Paths(b *testing.B) {
	benchmarkParse(b, pathExpr)
}

// BenchmarkParse_Lambda parses nested lambda calls.
func BenchmarkParse_Lambda(b *testing.B) {
	benchmarkParse(b, lambdaExpr)
}

// BenchmarkParse_Template parses a string template.
func BenchmarkParse_Template(b *testing.B) {
	benchmarkParse(b, templateExp)
}

// BenchmarkParse_Sum_100 parses a flat 100-term sum.
func BenchmarkParse_Sum_100(b *testing.B) {
	benchmarkParse(b, sumOf(100))
}

// BenchmarkParse_Nested_50 parses 50 levels of parentheses.
func BenchmarkParse_Nested_50(b *testing.B) {
	benchmarkParse(b, strings.Repeat("(", 50)+"1"+strings.Repeat(")", 50))
}

// BenchmarkParser_Reuse parses through one shared Parser.
func BenchmarkParser_Reuse(b *testing.B) {
	p := flowexpr.NewParser(nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Parse(pathExpr)
	}
}

// BenchmarkExpression_String renders a parsed expression.
func BenchmarkExpression_String(b *testing.B) {
	expr := flowexpr.MustParse(lambdaExpr)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = expr.String()
	}
}

func benchmarkParse(b *testing.B, src string) {
	b.Helper()
	if _, err := flowexpr.Parse(src, nil); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = flowexpr.Parse(src, nil)
	}
}

func sumOf(n int) string {
	terms := make([]string, n)
	for i := range terms {
		terms[i] = "x"
	}
	return strings.Join(terms, " + ")
}

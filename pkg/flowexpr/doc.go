/*
Package flowexpr provides an embeddable expression language.

# Overview

flowexpr compiles expression text into an immutable, validated tree and
evaluates that tree against caller-supplied memory. Evaluation never panics
and never returns a Go error: every outcome is a Result holding either a
value or an error.

	expr, err := flowexpr.Parse("user.age >= 18 && contains(user.roles, 'admin')", nil)
	if err != nil {
	    log.Fatal(err) // unknown function, arity or type violation, syntax error
	}

	mem := memory.New(map[string]any{
	    "user": map[string]any{"age": 30, "roles": []any{"admin"}},
	})
	res := flowexpr.Evaluate(expr, mem, nil)
	if res.Failed() {
	    log.Printf("evaluation failed: %v", res.Err)
	}
	fmt.Println(res.Value) // true

# Syntax

Operators, tightest binding first:

	+ - !            unary
	^                power (right associative)
	* / %            multiplicative
	+ -              additive (falls back to string concatenation)
	== != <>         equality
	&                string concatenation
	< > <= >=        comparison
	&&               logical and
	||               logical or

Primaries are numbers, 'single' or "double" quoted strings, `template
${strings}`, identifiers, (groups), [arrays] and {key: value} objects.
Postfix forms are member access (a.b), indexing (a[0]) and calls (f(x)).
A call may be negated with a trailing '!' when the function table defines
the negated name, e.g. isMatch!(x). Lambdas (x => body) are allowed only as
call arguments:

	where(orders, o => o.total > 100)

# Construction vs. Evaluation Errors

Parse reports construction errors: *parser.SyntaxError, *UnknownFunctionError,
*ValidationError and *InvalidNumberError. A failed construction returns no
expression. Evaluation errors (division by zero, bad index, type mismatch)
are carried in Result.Err. The boolean family (&&, ||, !) swallows child
errors and treats them as false.

# Function Tables

Every function and operator resolves through a Lookup, normally a
*FunctionTable. Tables are immutable; With, Without and Alias return new
tables:

	double := flowexpr.NewEvaluator("double", flowexpr.ReturnNumber,
	    flowexpr.Apply(func(args []value.Value) value.Value {
	        n, _ := value.AsFloat(args[0])
	        return value.Float(2 * n)
	    }, flowexpr.VerifyNumber),
	    flowexpr.ValidateUnaryNumber)

	table := flowexpr.StandardFunctions().With("double", double)
	expr, err := flowexpr.Parse("double(3)", table.Lookup)

# Engine

Engine wraps Parse and Evaluate with slog logging, OpenTelemetry metrics and
spans, a default locale and null substitution. It is configured with
functional options or a config.Config.
*/
package flowexpr

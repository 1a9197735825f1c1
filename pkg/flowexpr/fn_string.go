package flowexpr

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/memory"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/registry"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

func stringBuiltins() []builtin {
	return []builtin{
		fn(NewEvaluator("concat", ReturnString, evalConcat, ValidateAtLeastOne)),
		fn(NewEvaluator("&", ReturnString, evalConcat, ValidateArityAndAnyType(2, MaxArity))),
		fn(NewEvaluator("length", ReturnNumber, Apply(func(args []value.Value) value.Value {
			n, _ := value.Length(args[0])
			return value.Int(n)
		}, VerifyStringOrNull), ValidateUnaryString)),
		fn(NewEvaluator("toUpper", ReturnString, ApplyWithOptions(func(args []value.Value, opts *Options) (value.Value, error) {
			return value.String(cases.Upper(localeTag(opts.locale())).String(value.Text(args[0]))), nil
		}, VerifyStringOrNull), ValidateUnaryString)),
		fn(NewEvaluator("toLower", ReturnString, ApplyWithOptions(func(args []value.Value, opts *Options) (value.Value, error) {
			return value.String(cases.Lower(localeTag(opts.locale())).String(value.Text(args[0]))), nil
		}, VerifyStringOrNull), ValidateUnaryString)),
		fn(NewEvaluator("trim", ReturnString, Apply(func(args []value.Value) value.Value {
			return value.String(strings.TrimSpace(value.Text(args[0])))
		}, VerifyStringOrNull), ValidateUnaryString)),
		fn(NewEvaluator("replace", ReturnString, ApplyWithError(replace, VerifyStringOrNull),
			ValidateArityAndAnyType(3, 3, ReturnString))),
		fn(NewEvaluator("replaceIgnoreCase", ReturnString, ApplyWithError(replaceIgnoreCase, VerifyStringOrNull),
			ValidateArityAndAnyType(3, 3, ReturnString))),
		fn(NewEvaluator("split", ReturnArray, Apply(split, VerifyStringOrNull),
			ValidateArityAndAnyType(1, 2, ReturnString))),
		fn(NewEvaluator("substring", ReturnString, ApplyWithError(substring, nil),
			ValidateOrder([]ReturnType{ReturnNumber}, ReturnString, ReturnNumber))),
		fn(NewEvaluator("startsWith", ReturnBoolean, Apply(func(args []value.Value) value.Value {
			return value.Bool(strings.HasPrefix(value.Text(args[0]), value.Text(args[1])))
		}, VerifyStringOrNull), ValidateBinaryString)),
		fn(NewEvaluator("endsWith", ReturnBoolean, Apply(func(args []value.Value) value.Value {
			return value.Bool(strings.HasSuffix(value.Text(args[0]), value.Text(args[1])))
		}, VerifyStringOrNull), ValidateBinaryString)),
		fn(NewEvaluator("indexOf", ReturnNumber, ApplyWithError(func(args []value.Value) (value.Value, error) {
			return indexOf(args, false)
		}, nil), ValidateOrder(nil, ReturnString|ReturnArray, ReturnAny))),
		fn(NewEvaluator("lastIndexOf", ReturnNumber, ApplyWithError(func(args []value.Value) (value.Value, error) {
			return indexOf(args, true)
		}, nil), ValidateOrder(nil, ReturnString|ReturnArray, ReturnAny))),
	}
}

// localeTags memoizes parsed locale tags. Unparsable locales map to Und.
var localeTags = registry.New[string, language.Tag]()

func localeTag(locale string) language.Tag {
	if locale == "" {
		return language.Und
	}
	return localeTags.GetOrCreate(locale, func() language.Tag {
		tag, err := language.Parse(locale)
		if err != nil {
			return language.Und
		}
		return tag
	})
}

// evalConcat joins the textual form of every child.
func evalConcat(e *Expression, mem memory.Memory, opts *Options) Result {
	var b strings.Builder
	for _, c := range e.children {
		v, err := c.TryEvaluate(mem, opts).Unwrap()
		if err != nil {
			return FailErr(err)
		}
		b.WriteString(value.Text(v))
	}
	return Ok(value.String(b.String()))
}

func replace(args []value.Value) (value.Value, error) {
	old := value.Text(args[1])
	if old == "" {
		return nil, errors.New("the string to replace cannot be empty")
	}
	return value.String(strings.ReplaceAll(value.Text(args[0]), old, value.Text(args[2]))), nil
}

func replaceIgnoreCase(args []value.Value) (value.Value, error) {
	old := value.Text(args[1])
	if old == "" {
		return nil, errors.New("the string to replace cannot be empty")
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(old))
	if err != nil {
		return nil, err
	}
	return value.String(re.ReplaceAllLiteralString(value.Text(args[0]), value.Text(args[2]))), nil
}

// split with an empty or absent separator splits into characters.
func split(args []value.Value) value.Value {
	s := value.Text(args[0])
	sep := ""
	if len(args) == 2 {
		sep = value.Text(args[1])
	}
	if s == "" {
		return value.Array{}
	}
	parts := strings.Split(s, sep)
	out := make(value.Array, len(parts))
	for i, p := range parts {
		out[i] = value.String(p)
	}
	return out
}

// substring works on characters, not bytes.
func substring(args []value.Value) (value.Value, error) {
	if value.IsMissing(args[0]) {
		return value.String(""), nil
	}
	s, ok := args[0].(value.String)
	if !ok {
		return nil, fmt.Errorf("%s is not a string", value.Literal(args[0]))
	}
	runes := []rune(string(s))

	start, ok := value.AsInt(args[1])
	if !ok || start < 0 || start > int64(len(runes)) {
		return nil, fmt.Errorf("%s is not a valid start index for %s", value.Literal(args[1]), value.Literal(s))
	}
	end := int64(len(runes))
	if len(args) == 3 {
		n, ok := value.AsInt(args[2])
		if !ok || n < 0 || start+n > int64(len(runes)) {
			return nil, fmt.Errorf("%s is not a valid length for %s starting at %d", value.Literal(args[2]), value.Literal(s), start)
		}
		end = start + n
	}
	return value.String(string(runes[start:end])), nil
}

// indexOf finds a substring in a string (by character position) or an
// element in an array. Not found is -1.
func indexOf(args []value.Value, last bool) (value.Value, error) {
	switch coll := args[0].(type) {
	case value.Missing:
		return value.Int(-1), nil
	case value.String:
		needle, ok := args[1].(value.String)
		if !ok {
			return nil, fmt.Errorf("%s is not a string", value.Literal(args[1]))
		}
		s := string(coll)
		i := strings.Index(s, string(needle))
		if last {
			i = strings.LastIndex(s, string(needle))
		}
		if i < 0 {
			return value.Int(-1), nil
		}
		return value.Int(utf8.RuneCountInString(s[:i])), nil
	case value.Array:
		found := -1
		for i, v := range coll {
			if value.Equal(v, args[1]) {
				found = i
				if !last {
					break
				}
			}
		}
		return value.Int(found), nil
	}
	return nil, fmt.Errorf("%s is not a string or list", value.Literal(args[0]))
}

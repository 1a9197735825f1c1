// Package value defines the closed set of runtime values produced and
// consumed by expression evaluation.
//
// Every value is one of Missing, Bool, Int, Float, String, Array or Object.
// The Value interface is sealed, so a type switch over these seven variants
// is exhaustive.
package value

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the variant of a Value.
type Kind uint8

const (
	// KindMissing is an absent value (null, undefined path, empty slot).
	KindMissing Kind = iota
	// KindBool is a boolean.
	KindBool
	// KindInt is an integral number.
	KindInt
	// KindFloat is a floating-point number.
	KindFloat
	// KindString is a text value.
	KindString
	// KindArray is an ordered list of values.
	KindArray
	// KindObject is a string-keyed map of values.
	KindObject
)

// String returns the kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "null"
	case KindBool:
		return "boolean"
	case KindInt, KindFloat:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a runtime value. Implementations are limited to this package.
type Value interface {
	Kind() Kind
	value() // sealed marker
}

// Missing is the absent value.
type Missing struct{}

// Bool is a boolean value.
type Bool bool

// Int is an integral number.
type Int int64

// Float is a floating-point number.
type Float float64

// String is a text value.
type String string

// Array is an ordered list of values.
type Array []Value

// Object is a map from property name to value.
type Object map[string]Value

func (Missing) Kind() Kind { return KindMissing }
func (Bool) Kind() Kind    { return KindBool }
func (Int) Kind() Kind     { return KindInt }
func (Float) Kind() Kind   { return KindFloat }
func (String) Kind() Kind  { return KindString }
func (Array) Kind() Kind   { return KindArray }
func (Object) Kind() Kind  { return KindObject }

func (Missing) value() {}
func (Bool) value()    {}
func (Int) value()     {}
func (Float) value()   {}
func (String) value()  {}
func (Array) value()   {}
func (Object) value()  {}

// Null is the shared Missing instance.
var Null Value = Missing{}

// OrMissing returns v, or Missing if v is nil.
func OrMissing(v Value) Value {
	if v == nil {
		return Null
	}
	return v
}

// IsMissing reports whether v is absent. A nil interface counts as missing.
func IsMissing(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Missing)
	return ok
}

// Text returns the textual form of v used by string concatenation.
// Missing renders as the empty string; arrays and objects render as JSON.
func Text(v Value) string {
	switch val := OrMissing(v).(type) {
	case Missing:
		return ""
	case Bool:
		return strconv.FormatBool(bool(val))
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return formatFloat(float64(val))
	case String:
		return string(val)
	case Array, Object:
		data, err := json.Marshal(textAny(val))
		if err != nil {
			return ""
		}
		return string(data)
	}
	return ""
}

// textAny is ToAny for Text: non-finite floats, which JSON cannot hold,
// become the same strings Text gives them on their own.
func textAny(v Value) any {
	switch val := v.(type) {
	case Float:
		if f := float64(val); math.IsNaN(f) || math.IsInf(f, 0) {
			return formatFloat(f)
		}
	case Array:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = textAny(OrMissing(item))
		}
		return out
	case Object:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = textAny(OrMissing(item))
		}
		return out
	}
	return ToAny(v)
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, "'", `\'`)

// Literal renders v as expression source text. Strings are single-quoted.
func Literal(v Value) string {
	switch val := OrMissing(v).(type) {
	case Missing:
		return "null"
	case String:
		return "'" + literalEscaper.Replace(string(val)) + "'"
	case Float:
		// Keep the fraction so the literal parses back as a float.
		s := formatFloat(float64(val))
		if !strings.ContainsAny(s, ".IN") {
			s += ".0"
		}
		return s
	default:
		return Text(val)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Keys returns the property names of o in sorted order.
func (o Object) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy of o.
func (o Object) Clone() Object {
	out := make(Object, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

package flowexpr

import (
	"strings"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

// ReturnType is a bit set over the value kinds a node may produce.
// It is used for construction-time validation only; evaluation always
// dispatches on the actual value.
type ReturnType uint8

const (
	ReturnBoolean ReturnType = 1 << iota
	ReturnNumber
	ReturnObject
	ReturnString
	ReturnArray

	// ReturnAny accepts every kind.
	ReturnAny = ReturnBoolean | ReturnNumber | ReturnObject | ReturnString | ReturnArray
)

var returnTypeNames = []struct {
	rt   ReturnType
	name string
}{
	{ReturnBoolean, "boolean"},
	{ReturnNumber, "number"},
	{ReturnObject, "object"},
	{ReturnString, "string"},
	{ReturnArray, "array"},
}

// Overlaps reports whether r and other share at least one kind.
func (r ReturnType) Overlaps(other ReturnType) bool {
	return r&other != 0
}

// String renders the set as "boolean|number" style text.
func (r ReturnType) String() string {
	if r == 0 {
		return "none"
	}
	var parts []string
	for _, n := range returnTypeNames {
		if r&n.rt != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ReturnTypeOf infers the declared type of a literal value.
// Booleans declare Boolean|String, matching Add's textual fallback; missing
// values declare Object so they pass every type check.
func ReturnTypeOf(v value.Value) ReturnType {
	switch value.OrMissing(v).Kind() {
	case value.KindBool:
		return ReturnBoolean | ReturnString
	case value.KindInt, value.KindFloat:
		return ReturnNumber
	case value.KindString:
		return ReturnString
	case value.KindArray:
		return ReturnArray
	default:
		return ReturnObject
	}
}

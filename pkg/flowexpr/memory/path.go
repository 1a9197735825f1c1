package memory

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

// Segment is one step of a memory path: either a property key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// String renders the segment the way ParsePath accepts it.
func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Key
}

// JoinPath renders segments back into a path string. Keys that cannot be
// written bare are bracketed and quoted; a backslash escapes the quote
// character and itself inside the quotes.
func JoinPath(segs []Segment) string {
	var b strings.Builder
	for i, s := range segs {
		switch {
		case s.IsIndex:
			b.WriteString(s.String())
		case needsQuote(s.Key):
			b.WriteByte('[')
			writeQuoted(&b, s.Key)
			b.WriteByte(']')
		case i > 0:
			b.WriteByte('.')
			b.WriteString(s.Key)
		default:
			b.WriteString(s.Key)
		}
	}
	return b.String()
}

func writeQuoted(b *strings.Builder, key string) {
	q := byte('\'')
	if strings.IndexByte(key, '\'') >= 0 && strings.IndexByte(key, '"') < 0 {
		q = '"'
	}
	b.WriteByte(q)
	for i := 0; i < len(key); i++ {
		if key[i] == q || key[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(key[i])
	}
	b.WriteByte(q)
}

// needsQuote reports whether a key must be written in bracket form.
func needsQuote(key string) bool {
	return key == "" || key != strings.TrimSpace(key) || strings.ContainsAny(key, ".[] \\'\"")
}

// ParsePath splits a path such as `user.names[0]['first']` into segments.
// Quoted keys inside brackets may contain dots, brackets and escaped quotes.
func ParsePath(path string) ([]Segment, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	var segs []Segment
	i := 0
	for i < len(path) {
		switch path[i] {
		case '.':
			i++
		case '[':
			end := bracketEnd(path, i+1)
			if end < 0 {
				return nil, fmt.Errorf("%w: unclosed bracket in %q", ErrInvalidPath, path)
			}
			inner := strings.TrimSpace(path[i+1 : end])
			seg, err := bracketSegment(inner)
			if err != nil {
				return nil, fmt.Errorf("%w: %s in %q", ErrInvalidPath, err.Error(), path)
			}
			segs = append(segs, seg)
			i = end + 1
		default:
			j := i
			for j < len(path) && path[j] != '.' && path[j] != '[' {
				j++
			}
			segs = append(segs, Segment{Key: path[i:j]})
			i = j
		}
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("%w: no segments in %q", ErrInvalidPath, path)
	}
	return segs, nil
}

// bracketEnd returns the index of the ] closing a bracket whose body starts
// at j, or -1. Brackets inside quoted keys do not count.
func bracketEnd(path string, j int) int {
	var quote byte
	for ; j < len(path); j++ {
		c := path[j]
		if quote != 0 {
			switch c {
			case '\\':
				j++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case ']':
			return j
		}
	}
	return -1
}

func bracketSegment(inner string) (Segment, error) {
	if len(inner) >= 2 {
		q := inner[0]
		if q == '\'' || q == '"' {
			key, ok := unquoteKey(inner[1:], q)
			if !ok {
				return Segment{}, fmt.Errorf("invalid key %s", inner)
			}
			return Segment{Key: key}, nil
		}
	}
	n, err := strconv.Atoi(inner)
	if err != nil {
		return Segment{}, fmt.Errorf("invalid index %q", inner)
	}
	return Segment{Index: n, IsIndex: true}, nil
}

// unquoteKey decodes the body of a quoted key. s must end with the closing
// quote q and contain nothing after it.
func unquoteKey(s string, q byte) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
			if i >= len(s) {
				return "", false
			}
			b.WriteByte(s[i])
		case q:
			return b.String(), i == len(s)-1
		default:
			b.WriteByte(s[i])
		}
	}
	return "", false
}

// Walk follows segs from v. Any step that cannot be taken yields Missing.
func Walk(v value.Value, segs []Segment) value.Value {
	cur := value.OrMissing(v)
	for _, s := range segs {
		cur = step(cur, s)
		if value.IsMissing(cur) {
			return value.Null
		}
	}
	return cur
}

func step(v value.Value, s Segment) value.Value {
	switch val := v.(type) {
	case value.Object:
		if s.IsIndex {
			return value.OrMissing(val[strconv.Itoa(s.Index)])
		}
		return value.OrMissing(val[s.Key])
	case value.Array:
		idx := s.Index
		if !s.IsIndex {
			n, err := strconv.Atoi(s.Key)
			if err != nil {
				return value.Null
			}
			idx = n
		}
		if idx < 0 || idx >= len(val) {
			return value.Null
		}
		return value.OrMissing(val[idx])
	}
	return value.Null
}

// SetPath returns a copy of root with the value at segs replaced by v.
// Containers along the path are copied, never mutated; missing objects are created.
func SetPath(root value.Value, segs []Segment, v value.Value) (value.Value, error) {
	if len(segs) == 0 {
		return v, nil
	}
	s := segs[0]
	switch cur := value.OrMissing(root).(type) {
	case value.Missing:
		if s.IsIndex {
			return nil, fmt.Errorf("%w: cannot index missing value with [%d]", ErrInvalidPath, s.Index)
		}
		child, err := SetPath(value.Null, segs[1:], v)
		if err != nil {
			return nil, err
		}
		return value.Object{s.Key: child}, nil
	case value.Object:
		key := s.Key
		if s.IsIndex {
			key = strconv.Itoa(s.Index)
		}
		child, err := SetPath(cur[key], segs[1:], v)
		if err != nil {
			return nil, err
		}
		out := cur.Clone()
		out[key] = child
		return out, nil
	case value.Array:
		if !s.IsIndex || s.Index < 0 || s.Index >= len(cur) {
			return nil, fmt.Errorf("%w: index %s out of range for array of length %d", ErrInvalidPath, s.String(), len(cur))
		}
		child, err := SetPath(cur[s.Index], segs[1:], v)
		if err != nil {
			return nil, err
		}
		out := make(value.Array, len(cur))
		copy(out, cur)
		out[s.Index] = child
		return out, nil
	default:
		return nil, fmt.Errorf("%w: cannot set %q on %s", ErrInvalidPath, s.String(), cur.Kind())
	}
}

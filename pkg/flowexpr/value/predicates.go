package value

import "math"

// IsTruthy reports whether v is logically true.
// Missing, false, numeric zero and the empty string are false;
// everything else (including empty arrays and objects) is true.
func IsTruthy(v Value) bool {
	switch val := OrMissing(v).(type) {
	case Missing:
		return false
	case Bool:
		return bool(val)
	case Int:
		return val != 0
	case Float:
		return val != 0
	case String:
		return val != ""
	case Array, Object:
		return true
	}
	return true
}

// IsNumber reports whether v is an Int or a Float.
func IsNumber(v Value) bool {
	switch v.(type) {
	case Int, Float:
		return true
	}
	return false
}

// IsInteger reports whether v is an Int, or a Float with no fractional part.
func IsInteger(v Value) bool {
	switch val := v.(type) {
	case Int:
		return true
	case Float:
		f := float64(val)
		return !math.IsInf(f, 0) && f == math.Trunc(f)
	}
	return false
}

// AsFloat returns the numeric value of v as float64.
func AsFloat(v Value) (float64, bool) {
	switch val := v.(type) {
	case Int:
		return float64(val), true
	case Float:
		return float64(val), true
	}
	return 0, false
}

// AsInt returns the numeric value of v as int64. Floats must be integral.
func AsInt(v Value) (int64, bool) {
	switch val := v.(type) {
	case Int:
		return int64(val), true
	case Float:
		f := float64(val)
		if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

// Equal reports structural equality. Int and Float compare by numeric value.
func Equal(a, b Value) bool {
	a, b = OrMissing(a), OrMissing(b)
	if IsNumber(a) && IsNumber(b) {
		if ai, ok := a.(Int); ok {
			if bi, ok := b.(Int); ok {
				return ai == bi
			}
		}
		af, _ := AsFloat(a)
		bf, _ := AsFloat(b)
		return af == bf
	}
	switch av := a.(type) {
	case Missing:
		return IsMissing(b)
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, item := range av {
			other, ok := bv[k]
			if !ok || !Equal(item, other) {
				return false
			}
		}
		return true
	}
	return false
}

// Length returns the element count of an Array or Object, or the rune count
// of a String.
func Length(v Value) (int, bool) {
	switch val := v.(type) {
	case String:
		return len([]rune(string(val))), true
	case Array:
		return len(val), true
	case Object:
		return len(val), true
	}
	return 0, false
}

package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

// FromAny converts a plain Go value into a Value.
//
// Handles nil, bool, every integer width, float32/float64, json.Number,
// string, []any, []string, map[string]any and nested combinations of those.
// Other slices and string-keyed maps are converted through reflection.
// Anything else is rendered with %v into a String.
func FromAny(v any) Value {
	switch val := v.(type) {
	case nil:
		return Null
	case Value:
		return val
	case bool:
		return Bool(val)
	case int:
		return Int(val)
	case int8:
		return Int(val)
	case int16:
		return Int(val)
	case int32:
		return Int(val)
	case int64:
		return Int(val)
	case uint:
		return uintValue(uint64(val))
	case uint8:
		return Int(val)
	case uint16:
		return Int(val)
	case uint32:
		return Int(val)
	case uint64:
		return uintValue(val)
	case float32:
		return Float(val)
	case float64:
		return Float(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return Int(i)
		}
		if f, err := val.Float64(); err == nil {
			return Float(f)
		}
		return String(val.String())
	case string:
		return String(val)
	case []any:
		arr := make(Array, len(val))
		for i, item := range val {
			arr[i] = FromAny(item)
		}
		return arr
	case []string:
		arr := make(Array, len(val))
		for i, item := range val {
			arr[i] = String(item)
		}
		return arr
	case map[string]any:
		obj := make(Object, len(val))
		for k, item := range val {
			obj[k] = FromAny(item)
		}
		return obj
	}
	return fromReflect(reflect.ValueOf(v))
}

func uintValue(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(u)
	}
	return Int(u)
}

func fromReflect(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null
		}
		return FromAny(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		arr := make(Array, rv.Len())
		for i := range arr {
			arr[i] = FromAny(rv.Index(i).Interface())
		}
		return arr
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		obj := make(Object, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			obj[iter.Key().String()] = FromAny(iter.Value().Interface())
		}
		return obj
	}
	return String(fmt.Sprintf("%v", rv.Interface()))
}

// ToAny converts v back into plain Go values: nil, bool, int64, float64,
// string, []any and map[string]any.
func ToAny(v Value) any {
	switch val := OrMissing(v).(type) {
	case Missing:
		return nil
	case Bool:
		return bool(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case String:
		return string(val)
	case Array:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = ToAny(item)
		}
		return out
	case Object:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = ToAny(item)
		}
		return out
	}
	return nil
}

// FromJSON parses a JSON document into a Value. Integral numbers become Int.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return FromAny(raw), nil
}

// ToJSON renders v as a JSON document.
func ToJSON(v Value) ([]byte, error) {
	return json.Marshal(ToAny(v))
}

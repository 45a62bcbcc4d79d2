package base

import (
	"maps"
	"reflect"
)

// Compound returns v as an NBT compound.
func Compound(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// List returns the elements of an NBT list or array value. The decoder may
// produce typed slices ([]int32, []map[string]any), []any or fixed size
// arrays depending on the tag, so all of them are accepted.
func List(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if l, ok := v.([]any); ok {
		return l, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array, reflect.Slice:
		out := make([]any, rv.Len())
		for i := range rv.Len() {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	default:
		return nil, false
	}
}

// Int returns v as an integer if it holds any integer tag.
func Int(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case uint8:
		return int64(n), true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

// Ints returns v as a list of integers.
func Ints(v any) ([]int64, bool) {
	list, ok := List(v)
	if !ok {
		return nil, false
	}
	out := make([]int64, len(list))
	for i, e := range list {
		n, ok := Int(e)
		if !ok {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

// Float returns v as a float64 if it holds a numeric tag.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		i, ok := Int(v)
		return float64(i), ok
	}
}

// Without returns a shallow copy of m without the given keys.
func Without(m map[string]any, keys ...string) map[string]any {
	out := maps.Clone(m)
	if out == nil {
		out = make(map[string]any)
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

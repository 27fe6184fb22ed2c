// Package attr normalizes item attributes read from the stores.
//
// Some items carry values wrapped under a single type key, e.g.
// {"S": "alex@x.com"}, {"N": "7"}, {"BOOL": false}, {"L": [...]}, {"M": {...}}.
// Normalize unwraps these recursively so downstream code only sees plain
// strings, float64s, bools, []any and map[string]any.
package attr

import (
	"strconv"
	"strings"
)

// wrapperKeys are the single-letter (or short) type tags that wrap a value.
var wrapperKeys = map[string]struct{}{
	"S": {}, "N": {}, "BOOL": {}, "NULL": {}, "L": {}, "M": {}, "SS": {}, "NS": {},
}

// Normalize returns v with every typed wrapper removed. Plain values pass through.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 1 {
			for k, inner := range t {
				if _, ok := wrapperKeys[k]; ok {
					return unwrap(k, inner)
				}
			}
		}
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = Normalize(inner)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = Normalize(inner)
		}
		return out
	default:
		return v
	}
}

// NormalizeItem normalizes a whole item. A nil item yields an empty map.
func NormalizeItem(item map[string]any) map[string]any {
	if item == nil {
		return map[string]any{}
	}
	if m, ok := Normalize(item).(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func unwrap(tag string, inner any) any {
	switch tag {
	case "S":
		return Normalize(inner)
	case "N":
		if s, ok := inner.(string); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return f
			}
		}
		return Normalize(inner)
	case "BOOL":
		if b, ok := Bool(inner); ok {
			return b
		}
		return inner
	case "NULL":
		return nil
	case "NS":
		list, _ := inner.([]any)
		out := make([]any, 0, len(list))
		for _, item := range list {
			if f, ok := Float(item); ok {
				out = append(out, f)
			}
		}
		return out
	default: // L, M, SS
		return Normalize(inner)
	}
}

// --------------------------------------------------------------------------
// Typed accessors (operate on normalized values)
// --------------------------------------------------------------------------

// String returns item[key] as a trimmed string. Numbers are formatted without
// a trailing ".0".
func String(item map[string]any, key string) string {
	switch v := item[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

// BoolOr returns item[key] as a bool, or fallback when absent or unparseable.
func BoolOr(item map[string]any, key string, fallback bool) bool {
	v, exists := item[key]
	if !exists || v == nil {
		return fallback
	}
	if b, ok := Bool(v); ok {
		return b
	}
	return fallback
}

// Bool interprets bools, "true"/"false"-like strings and 0/1 numbers.
func Bool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return false, false
		}
		return b, true
	case float64:
		return t != 0, true
	case int:
		return t != 0, true
	default:
		return false, false
	}
}

// Float extracts a scalar number from float, int or numeric string values.
func Float(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// List returns item[key] as a list of values. A single map is treated as a
// one-element list.
func List(item map[string]any, key string) []any {
	switch v := item[key].(type) {
	case []any:
		return v
	case map[string]any:
		return []any{v}
	default:
		return nil
	}
}

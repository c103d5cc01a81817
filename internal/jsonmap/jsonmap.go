// Package jsonmap provides defensive accessors over generic decoded JSON
// objects. The archive format omits fields freely and changes value shapes
// across format generations, so every accessor returns a usable default
// instead of an error: extraction code must never fail on a missing or
// mistyped field.
package jsonmap

import (
	"fmt"
	"strconv"
)

// Str returns the string at key, or "" when absent or not a string.
func Str(m map[string]interface{}, key string) string {
	return StrOr(m, key, "")
}

// StrOr returns the string at key, or def when absent or not a string.
func StrOr(m map[string]interface{}, key, def string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return def
}

// Bool returns the bool at key, or false when absent or not a bool.
func Bool(m map[string]interface{}, key string) bool {
	b, _ := m[key].(bool)
	return b
}

// Int returns the numeric value at key truncated to int, or 0 when absent
// or non-numeric. JSON numbers decode as float64.
func Int(m map[string]interface{}, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// Map returns the object at key, or nil when absent or not an object.
func Map(m map[string]interface{}, key string) map[string]interface{} {
	v, _ := m[key].(map[string]interface{})
	return v
}

// Slice returns the array at key, or nil when absent or not an array.
func Slice(m map[string]interface{}, key string) []interface{} {
	v, _ := m[key].([]interface{})
	return v
}

// Maps returns the array at key filtered to its object elements. Non-object
// elements are dropped silently.
func Maps(m map[string]interface{}, key string) []map[string]interface{} {
	raw := Slice(m, key)
	if raw == nil {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(raw))
	for _, v := range raw {
		if obj, ok := v.(map[string]interface{}); ok {
			out = append(out, obj)
		}
	}
	return out
}

// Stringify renders a decoded JSON scalar as a string. Composite values
// fall back to their fmt rendering; nil renders as "".
func Stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Stringified returns the stringified value at key, or nil when the key is
// absent or null. Used for optional fields such as column default values,
// where "absent" and "empty string" must stay distinguishable.
func Stringified(m map[string]interface{}, key string) *string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	s := Stringify(v)
	return &s
}

package getopt

import (
	"fmt"
	"maps"
	"slices"
)

// Result maps destination keys to bound values.
//
// A value is a string, true for flags, nil for an optional value that was
// not given, or a []any holding the accumulated values of an array option.
type Result map[string]any

// Has reports whether key was bound.
func (r Result) Has(key string) bool {
	_, ok := r[key]

	return ok
}

// Get returns the value bound to key.
func (r Result) Get(key string) (any, bool) {
	v, ok := r[key]

	return v, ok
}

// String returns the string bound to key. For a sequence it returns the
// last element.
func (r Result) String(key string) (string, bool) {
	v := r[key]
	if seq, ok := v.([]any); ok {
		if len(seq) == 0 {
			return "", false
		}

		v = seq[len(seq)-1]
	}

	s, ok := v.(string)

	return s, ok
}

// Strings returns the values bound to key as strings. A scalar yields a
// single element; an unbound key or nil yields nil.
func (r Result) Strings(key string) []string {
	switch v := r[key].(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			out = append(out, scalar(e))
		}

		return out
	default:
		return []string{scalar(v)}
	}
}

// Bool reports whether key holds a truthy value: true, a non-empty string,
// or a non-empty sequence.
func (r Result) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	default:
		return false
	}
}

// Keys returns the bound keys in sorted order.
func (r Result) Keys() []string {
	return slices.Sorted(maps.Keys(r))
}

// Clone returns a copy of r whose sequences are not shared with r.
func (r Result) Clone() Result {
	out := make(Result, len(r))

	for k, v := range r {
		if seq, ok := v.([]any); ok {
			v = slices.Clone(seq)
		}

		out[k] = v
	}

	return out
}

func scalar(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

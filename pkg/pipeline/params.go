package pipeline

import "fmt"

// Params holds the raw, step- or method-specific parameters from the
// settings files. Values arrive as whatever the YAML/JSON decoder produced;
// the typed accessors perform the loose numeric coercions the configuration
// surface requires (YAML integers decode as int, JSON numbers as float64).
type Params map[string]any

// Float returns the named parameter as a float64, or def if absent or not
// numeric.
func (p Params) Float(key string, def float64) float64 {
	v, ok := p[key]
	if !ok {
		return def
	}
	f, ok := toFloat(v)
	if !ok {
		return def
	}
	return f
}

// Int returns the named parameter as an int, or def if absent or not numeric.
func (p Params) Int(key string, def int) int {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case uint64:
		return int(n)
	}
	return def
}

// String returns the named parameter as a string, or def if absent or not a
// string.
func (p Params) String(key, def string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return def
}

// Bool returns the named parameter as a bool, or def if absent or not a bool.
func (p Params) Bool(key string, def bool) bool {
	if b, ok := p[key].(bool); ok {
		return b
	}
	return def
}

// Strings returns the named parameter as a string slice. Both []string and
// []any of strings are accepted; anything else yields nil.
func (p Params) Strings(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Has reports whether the parameter is present, regardless of its type.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Get returns the raw parameter value and whether it is present.
func (p Params) Get(key string) (any, bool) {
	v, ok := p[key]
	return v, ok
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// FloatErr returns the named parameter as a float64 or an error naming the
// offending key, for steps that require the parameter to be present.
func (p Params) FloatErr(key string) (float64, error) {
	v, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("required parameter %q is missing", key)
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("parameter %q is not numeric (got %T)", key, v)
	}
	return f, nil
}

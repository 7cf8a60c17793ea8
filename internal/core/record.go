package core

import (
	"fmt"
	"sort"
)

// Record is a structured configuration record as decoded from YAML or JSON.
type Record map[string]any

// Has reports whether key is present.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Float returns the numeric value stored under key.
func (r Record) Float(key string) (float64, error) {
	v, ok := r[key]
	if !ok {
		return 0, &ParseError{Key: key, Wrapped: ErrMissingField}
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, Errorf(key, ErrInvalidValue, "expected number, got %T", v)
	}
	return f, nil
}

// FloatOr returns the numeric value under key, or def when absent.
func (r Record) FloatOr(key string, def float64) (float64, error) {
	if !r.Has(key) {
		return def, nil
	}
	return r.Float(key)
}

// Int returns the integer value stored under key.
func (r Record) Int(key string) (int, error) {
	f, err := r.Float(key)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, Errorf(key, ErrInvalidValue, "expected integer, got %g", f)
	}
	return int(f), nil
}

// IntOr returns the integer value under key, or def when absent.
func (r Record) IntOr(key string, def int) (int, error) {
	if !r.Has(key) {
		return def, nil
	}
	return r.Int(key)
}

// String returns the string stored under key.
func (r Record) String(key string) (string, error) {
	v, ok := r[key]
	if !ok {
		return "", &ParseError{Key: key, Wrapped: ErrMissingField}
	}
	s, ok := v.(string)
	if !ok {
		return "", Errorf(key, ErrInvalidValue, "expected string, got %T", v)
	}
	return s, nil
}

// StringOr returns the string under key, or def when absent.
func (r Record) StringOr(key, def string) (string, error) {
	if !r.Has(key) {
		return def, nil
	}
	return r.String(key)
}

// Ints returns the integer list stored under key.
func (r Record) Ints(key string) ([]int, error) {
	v, ok := r[key]
	if !ok {
		return nil, &ParseError{Key: key, Wrapped: ErrMissingField}
	}
	switch list := v.(type) {
	case []int:
		out := make([]int, len(list))
		copy(out, list)
		return out, nil
	case []any:
		out := make([]int, len(list))
		for i, e := range list {
			f, ok := toFloat(e)
			if !ok || f != float64(int(f)) {
				return nil, Errorf(key, ErrInvalidValue, "element %d is not an integer", i)
			}
			out[i] = int(f)
		}
		return out, nil
	}
	return nil, Errorf(key, ErrInvalidValue, "expected integer list, got %T", v)
}

// Floats returns the numeric list stored under key. A scalar is returned as
// a single element list.
func (r Record) Floats(key string) ([]float64, error) {
	v, ok := r[key]
	if !ok {
		return nil, &ParseError{Key: key, Wrapped: ErrMissingField}
	}
	if f, ok := toFloat(v); ok {
		return []float64{f}, nil
	}
	switch list := v.(type) {
	case []float64:
		out := make([]float64, len(list))
		copy(out, list)
		return out, nil
	case []any:
		out := make([]float64, len(list))
		for i, e := range list {
			f, ok := toFloat(e)
			if !ok {
				return nil, Errorf(key, ErrInvalidValue, "element %d is not a number", i)
			}
			out[i] = f
		}
		return out, nil
	}
	return nil, Errorf(key, ErrInvalidValue, "expected number list, got %T", v)
}

// Strings returns the string list stored under key.
func (r Record) Strings(key string) ([]string, error) {
	v, ok := r[key]
	if !ok {
		return nil, &ParseError{Key: key, Wrapped: ErrMissingField}
	}
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out, nil
	case []any:
		out := make([]string, len(list))
		for i, e := range list {
			s, ok := e.(string)
			if !ok {
				return nil, Errorf(key, ErrInvalidValue, "element %d is not a string", i)
			}
			out[i] = s
		}
		return out, nil
	case string:
		return []string{list}, nil
	}
	return nil, Errorf(key, ErrInvalidValue, "expected string list, got %T", v)
}

// Sub returns the nested record under key.
func (r Record) Sub(key string) (Record, error) {
	v, ok := r[key]
	if !ok {
		return nil, &ParseError{Key: key, Wrapped: ErrMissingField}
	}
	sub, ok := AsRecord(v)
	if !ok {
		return nil, Errorf(key, ErrInvalidValue, "expected mapping, got %T", v)
	}
	return sub, nil
}

// Keys returns the record keys in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AsRecord converts the decoded mapping types produced by yaml.v3 and
// encoding/json into a Record.
func AsRecord(v any) (Record, bool) {
	switch m := v.(type) {
	case Record:
		return m, true
	case map[string]any:
		return Record(m), true
	case map[any]any:
		out := make(Record, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
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
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

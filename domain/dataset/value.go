package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind defines the storage type for cell values
type Kind string

const (
	KindNull     Kind = "null"
	KindBool     Kind = "boolean"
	KindInt      Kind = "integer"
	KindFloat    Kind = "float"
	KindString   Kind = "string"
	KindDate     Kind = "date"
	KindDateTime Kind = "datetime"
)

// DateLayout is the canonical rendering for date cells
const DateLayout = "2006-01-02"

// Value represents a typed cell with deterministic coercion
type Value struct {
	Kind      Kind       `json:"kind"`
	BoolVal   *bool      `json:"bool_val,omitempty"`
	IntVal    *int64     `json:"int_val,omitempty"`
	FloatVal  *float64   `json:"float_val,omitempty"`
	StringVal *string    `json:"string_val,omitempty"`
	TimeVal   *time.Time `json:"time_val,omitempty"`
}

// NewNullValue creates a null cell
func NewNullValue() Value {
	return Value{Kind: KindNull}
}

// NewBoolValue creates a boolean cell
func NewBoolValue(b bool) Value {
	return Value{Kind: KindBool, BoolVal: &b}
}

// NewIntValue creates an integer cell
func NewIntValue(n int64) Value {
	return Value{Kind: KindInt, IntVal: &n}
}

// NewFloatValue creates a float cell
func NewFloatValue(f float64) Value {
	return Value{Kind: KindFloat, FloatVal: &f}
}

// NewStringValue creates a string cell; empty strings stay strings, not nulls
func NewStringValue(s string) Value {
	return Value{Kind: KindString, StringVal: &s}
}

// NewDateValue creates a date cell (time truncated to midnight UTC)
func NewDateValue(t time.Time) Value {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Value{Kind: KindDate, TimeVal: &d}
}

// NewDateTimeValue creates a datetime cell
func NewDateTimeValue(t time.Time) Value {
	u := t.UTC()
	return Value{Kind: KindDateTime, TimeVal: &u}
}

// IsNull returns true for null cells
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// Canonical returns the deterministic string rendering used for comparison,
// length checks, pattern matching and fingerprinting.
func (v Value) Canonical() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindBool:
		if v.BoolVal != nil {
			return strconv.FormatBool(*v.BoolVal)
		}
	case KindInt:
		if v.IntVal != nil {
			return strconv.FormatInt(*v.IntVal, 10)
		}
	case KindFloat:
		if v.FloatVal != nil {
			return strconv.FormatFloat(*v.FloatVal, 'g', -1, 64)
		}
	case KindString:
		if v.StringVal != nil {
			return *v.StringVal
		}
	case KindDate:
		if v.TimeVal != nil {
			return v.TimeVal.Format(DateLayout)
		}
	case KindDateTime:
		if v.TimeVal != nil {
			return v.TimeVal.Format(time.RFC3339)
		}
	}
	return ""
}

// AsFloat coerces the value to a float64. Numeric strings coerce; everything
// else reports false. NaN reports false so range checks fail closed.
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case KindInt:
		if v.IntVal != nil {
			return float64(*v.IntVal), true
		}
	case KindFloat:
		if v.FloatVal != nil {
			if math.IsNaN(*v.FloatVal) {
				return 0, false
			}
			return *v.FloatVal, true
		}
	case KindString:
		if v.StringVal != nil {
			f, err := strconv.ParseFloat(strings.TrimSpace(*v.StringVal), 64)
			if err == nil && !math.IsNaN(f) {
				return f, true
			}
		}
	case KindBool:
		if v.BoolVal != nil {
			if *v.BoolVal {
				return 1, true
			}
			return 0, true
		}
	}
	return 0, false
}

// AsTime coerces the value to a time. Date/datetime cells return directly;
// string cells are parsed as yyyy-mm-dd or RFC3339.
func (v Value) AsTime() (time.Time, bool) {
	switch v.Kind {
	case KindDate, KindDateTime:
		if v.TimeVal != nil {
			return *v.TimeVal, true
		}
	case KindString:
		if v.StringVal != nil {
			return ParseTemporal(*v.StringVal)
		}
	}
	return time.Time{}, false
}

// ParseTemporal parses ISO date or datetime text
func ParseTemporal(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// FromAny coerces an arbitrary Go value into a typed cell. Unhashable
// composites (maps, slices) are flattened to deterministic text so that
// downstream profiling and hashing stay stable.
func FromAny(raw interface{}) Value {
	if raw == nil {
		return NewNullValue()
	}
	switch v := raw.(type) {
	case Value:
		return v
	case bool:
		return NewBoolValue(v)
	case int:
		return NewIntValue(int64(v))
	case int32:
		return NewIntValue(int64(v))
	case int64:
		return NewIntValue(v)
	case float32:
		return NewFloatValue(float64(v))
	case float64:
		// JSON decodes all numbers as float64; whole values stay floats so a
		// column's kind does not depend on which rows happen to be integral
		return NewFloatValue(v)
	case string:
		return NewStringValue(v)
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return NewDateValue(v)
		}
		return NewDateTimeValue(v)
	case map[string]interface{}:
		return NewStringValue(canonicalMap(v))
	case []interface{}:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = FromAny(e).Canonical()
		}
		return NewStringValue("[" + strings.Join(parts, ",") + "]")
	default:
		return NewStringValue(fmt.Sprintf("%v", v))
	}
}

func canonicalMap(m map[string]interface{}) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ":" + FromAny(m[k]).Canonical()
	}
	return "{" + strings.Join(parts, ",") + "}"
}

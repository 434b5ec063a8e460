package dataset

import (
	"testing"
	"time"
)

func TestCanonicalRendering(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"null", NewNullValue(), ""},
		{"bool", NewBoolValue(true), "true"},
		{"int", NewIntValue(-42), "-42"},
		{"float", NewFloatValue(1.5), "1.5"},
		{"whole float", NewFloatValue(3), "3"},
		{"string", NewStringValue("hello"), "hello"},
		{"date", NewDateValue(date), "2024-03-15"},
		{"datetime", NewDateTimeValue(time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)), "2024-03-15T10:30:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Canonical(); got != tt.want {
				t.Errorf("Canonical() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAsFloatCoercion(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want float64
		ok   bool
	}{
		{"int", NewIntValue(7), 7, true},
		{"float", NewFloatValue(2.5), 2.5, true},
		{"numeric string", NewStringValue(" 12.25 "), 12.25, true},
		{"text string", NewStringValue("abc"), 0, false},
		{"bool true", NewBoolValue(true), 1, true},
		{"null", NewNullValue(), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.v.AsFloat()
			if ok != tt.ok || got != tt.want {
				t.Errorf("AsFloat() = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseTemporal(t *testing.T) {
	if _, ok := ParseTemporal("2024-03-15"); !ok {
		t.Error("ISO date should parse")
	}
	if _, ok := ParseTemporal("2024-03-15T10:30:00Z"); !ok {
		t.Error("RFC3339 should parse")
	}
	if _, ok := ParseTemporal("2024-03-15 10:30:00"); !ok {
		t.Error("space-separated datetime should parse")
	}
	if _, ok := ParseTemporal("15/03/2024"); ok {
		t.Error("ambiguous slash date should not parse")
	}
}

func TestFromAnyFlattensComposites(t *testing.T) {
	v := FromAny(map[string]interface{}{"b": 2, "a": 1})
	if v.Kind != KindString {
		t.Fatalf("expected string kind, got %s", v.Kind)
	}
	if v.Canonical() != "{a:1,b:2}" {
		t.Errorf("map flattening not deterministic: %q", v.Canonical())
	}

	list := FromAny([]interface{}{"x", 1})
	if list.Canonical() != "[x,1]" {
		t.Errorf("slice flattening wrong: %q", list.Canonical())
	}
}

func TestFromAnyNil(t *testing.T) {
	if !FromAny(nil).IsNull() {
		t.Error("nil should map to null")
	}
}

package rules

import (
	"testing"
	"time"

	"adri/domain/dataset"
	"adri/domain/standard"
)

func fptr(f float64) *float64 { return &f }
func iptr(n int) *int         { return &n }

func TestCheckType(t *testing.T) {
	tests := []struct {
		name string
		v    dataset.Value
		tag  standard.FieldType
		want bool
	}{
		{"int is integer", dataset.NewIntValue(5), standard.TypeInteger, true},
		{"whole float is integer", dataset.NewFloatValue(5), standard.TypeInteger, true},
		{"fractional float is not integer", dataset.NewFloatValue(5.5), standard.TypeInteger, false},
		{"numeric string is integer", dataset.NewStringValue("42"), standard.TypeInteger, true},
		{"text is not integer", dataset.NewStringValue("abc"), standard.TypeInteger, false},
		{"int is float", dataset.NewIntValue(5), standard.TypeFloat, true},
		{"bool is not float", dataset.NewBoolValue(true), standard.TypeFloat, false},
		{"anything renders as string", dataset.NewIntValue(5), standard.TypeString, true},
		{"bool string is boolean", dataset.NewStringValue("TRUE"), standard.TypeBoolean, true},
		{"iso string is date", dataset.NewStringValue("2024-03-15"), standard.TypeDate, true},
		{"garbage is not date", dataset.NewStringValue("yesterday"), standard.TypeDate, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckType(tt.v, &standard.FieldRule{Type: tt.tag})
			if got.Passed != tt.want {
				t.Errorf("CheckType = %v (%s), want %v", got.Passed, got.Detail, tt.want)
			}
		})
	}
}

func TestCheckAllowedValuesCanonicalComparison(t *testing.T) {
	rule := &standard.FieldRule{Type: standard.TypeString, AllowedValues: []interface{}{"active", 10, 2.5}}

	if !CheckAllowedValues(dataset.NewStringValue("active"), rule).Passed {
		t.Error("exact text member should pass")
	}
	if CheckAllowedValues(dataset.NewStringValue("Active"), rule).Passed {
		t.Error("comparison is case-sensitive")
	}
	// integer 10 and string "10" share a canonical form
	if !CheckAllowedValues(dataset.NewIntValue(10), rule).Passed {
		t.Error("canonical numeric match should pass")
	}
	if !CheckAllowedValues(dataset.NewFloatValue(2.5), rule).Passed {
		t.Error("float member should pass")
	}

	empty := &standard.FieldRule{Type: standard.TypeString}
	if !CheckAllowedValues(dataset.NewStringValue("anything"), empty).Passed {
		t.Error("no declared list means the check is inert")
	}
}

func TestCheckNumericBounds(t *testing.T) {
	rule := &standard.FieldRule{Type: standard.TypeFloat, MinValue: fptr(0), MaxValue: fptr(100)}

	if !CheckNumericBounds(dataset.NewFloatValue(0), rule).Passed {
		t.Error("boundary minimum is inclusive")
	}
	if !CheckNumericBounds(dataset.NewFloatValue(100), rule).Passed {
		t.Error("boundary maximum is inclusive")
	}
	if CheckNumericBounds(dataset.NewFloatValue(-0.001), rule).Passed {
		t.Error("below minimum must fail")
	}
	if !CheckNumericBounds(dataset.NewStringValue("50"), rule).Passed {
		t.Error("numeric strings coerce for comparison")
	}
	if CheckNumericBounds(dataset.NewStringValue("NaN"), rule).Passed {
		t.Error("NaN must fail closed")
	}
	if CheckNumericBounds(dataset.NewStringValue("abc"), rule).Passed {
		t.Error("non-numeric must fail when bounds are active")
	}
}

func TestCheckLengthBoundsCountsRunes(t *testing.T) {
	rule := &standard.FieldRule{Type: standard.TypeString, MinLength: iptr(2), MaxLength: iptr(4)}

	// "héll" is 4 runes but 5 bytes
	if !CheckLengthBounds(dataset.NewStringValue("héll"), rule).Passed {
		t.Error("length must count code points, not bytes")
	}
	if CheckLengthBounds(dataset.NewStringValue("a"), rule).Passed {
		t.Error("below min length must fail")
	}
	if CheckLengthBounds(dataset.NewStringValue("abcde"), rule).Passed {
		t.Error("above max length must fail")
	}
}

func TestCheckPatternAnchored(t *testing.T) {
	rule := &standard.FieldRule{Type: standard.TypeString, Pattern: "[A-Z]{2}[0-9]{3}"}

	if !CheckPattern(dataset.NewStringValue("AB123"), rule).Passed {
		t.Error("full match should pass")
	}
	if CheckPattern(dataset.NewStringValue("xAB123x"), rule).Passed {
		t.Error("pattern must be anchored to the whole value")
	}
	bad := &standard.FieldRule{Type: standard.TypeString, Pattern: "["}
	if CheckPattern(dataset.NewStringValue("x"), bad).Passed {
		t.Error("uncompilable pattern must fail the value")
	}
}

func TestCheckDateBounds(t *testing.T) {
	rule := &standard.FieldRule{
		Type:      standard.TypeDate,
		AfterDate: "2024-01-01", BeforeDate: "2024-12-31",
	}
	in := dataset.NewDateValue(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	out := dataset.NewDateValue(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	if !CheckDateBounds(in, rule).Passed {
		t.Error("date inside window should pass")
	}
	if CheckDateBounds(out, rule).Passed {
		t.Error("date outside window must fail")
	}
	if !CheckDateBounds(dataset.NewStringValue("2024-06-01"), rule).Passed {
		t.Error("ISO text coerces for the window check")
	}
}

func TestEvaluateNullShortCircuit(t *testing.T) {
	nullable := &standard.FieldRule{Type: standard.TypeString, Nullable: true, Pattern: "x+"}
	if results := Evaluate(dataset.NewNullValue(), nullable); len(results) != 0 {
		t.Errorf("null in nullable field must contribute nothing, got %d results", len(results))
	}

	strict := &standard.FieldRule{Type: standard.TypeString, Nullable: false, Pattern: "x+"}
	results := Evaluate(dataset.NewNullValue(), strict)
	if len(results) != 1 || results[0].Rule != RuleNullable || results[0].Passed {
		t.Errorf("null in non-nullable field must yield exactly one nullable failure, got %+v", results)
	}
}

func TestEvaluateRunsAllChecksInOrder(t *testing.T) {
	rule := &standard.FieldRule{Type: standard.TypeString, MinLength: iptr(1)}
	results := Evaluate(dataset.NewStringValue("ok"), rule)
	if len(results) != len(CheckOrder) {
		t.Fatalf("expected %d results, got %d", len(CheckOrder), len(results))
	}
	for i, r := range results {
		if r.Rule != CheckOrder[i] {
			t.Errorf("result %d is %s, want %s", i, r.Rule, CheckOrder[i])
		}
	}
}

func TestFirstFailure(t *testing.T) {
	rule := &standard.FieldRule{
		Type:          standard.TypeInteger,
		AllowedValues: []interface{}{1, 2},
		MaxValue:      fptr(1),
	}
	// value 2 passes type and membership, fails numeric bounds
	f := FirstFailure(dataset.NewIntValue(2), rule)
	if f == nil || f.Rule != RuleNumericBounds {
		t.Errorf("expected numeric_bounds failure, got %+v", f)
	}
	if FirstFailure(dataset.NewIntValue(1), rule) != nil {
		t.Error("fully conforming value should have no failure")
	}
}

// Package rules implements the pure per-value predicates that both the
// validation engine and the generator's training-pass enforcement run.
package rules

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"adri/domain/dataset"
	"adri/domain/standard"
)

// Rule identifiers, shared with dimension rule_weights
const (
	RuleType          = "type"
	RuleNullable      = "nullable"
	RuleAllowedValues = "allowed_values"
	RuleLengthBounds  = "length_bounds"
	RulePattern       = "pattern"
	RuleNumericBounds = "numeric_bounds"
	RuleDateBounds    = "date_bounds"
)

// CheckOrder is the fixed evaluation order used by the engine and by
// training-pass enforcement
var CheckOrder = []string{RuleType, RuleAllowedValues, RuleLengthBounds, RulePattern, RuleNumericBounds, RuleDateBounds}

// CheckResult is the outcome of one predicate on one value
type CheckResult struct {
	Rule   string
	Passed bool
	Detail string
}

func pass(rule string) CheckResult {
	return CheckResult{Rule: rule, Passed: true}
}

func fail(rule, format string, args ...interface{}) CheckResult {
	return CheckResult{Rule: rule, Passed: false, Detail: fmt.Sprintf(format, args...)}
}

// CheckType verifies the value's runtime kind is compatible with the tag.
// Date and datetime tags also accept well-formed ISO text.
func CheckType(v dataset.Value, rule *standard.FieldRule) CheckResult {
	switch rule.Type {
	case standard.TypeString:
		if v.Kind == dataset.KindString {
			return pass(RuleType)
		}
		// Any scalar renders to a string; the tag is satisfied by rendering
		return pass(RuleType)
	case standard.TypeInteger:
		switch v.Kind {
		case dataset.KindInt:
			return pass(RuleType)
		case dataset.KindFloat:
			if v.FloatVal != nil && *v.FloatVal == math.Trunc(*v.FloatVal) && !math.IsNaN(*v.FloatVal) {
				return pass(RuleType)
			}
		case dataset.KindString:
			if v.StringVal != nil {
				if _, err := strconv.ParseInt(strings.TrimSpace(*v.StringVal), 10, 64); err == nil {
					return pass(RuleType)
				}
			}
		}
		return fail(RuleType, "value %q is not an integer", v.Canonical())
	case standard.TypeFloat:
		if _, ok := v.AsFloat(); ok && v.Kind != dataset.KindBool {
			return pass(RuleType)
		}
		return fail(RuleType, "value %q is not numeric", v.Canonical())
	case standard.TypeBoolean:
		if v.Kind == dataset.KindBool {
			return pass(RuleType)
		}
		if v.Kind == dataset.KindString && v.StringVal != nil {
			s := strings.ToLower(strings.TrimSpace(*v.StringVal))
			if s == "true" || s == "false" {
				return pass(RuleType)
			}
		}
		return fail(RuleType, "value %q is not a boolean", v.Canonical())
	case standard.TypeDate, standard.TypeDateTime:
		if v.Kind == dataset.KindDate || v.Kind == dataset.KindDateTime {
			return pass(RuleType)
		}
		if v.Kind == dataset.KindString && v.StringVal != nil {
			if _, ok := dataset.ParseTemporal(*v.StringVal); ok {
				return pass(RuleType)
			}
		}
		return fail(RuleType, "value %q is not a valid %s", v.Canonical(), rule.Type)
	}
	return fail(RuleType, "unknown type tag %q", rule.Type)
}

// CheckNullable passes a null value iff nullable=true
func CheckNullable(v dataset.Value, rule *standard.FieldRule) CheckResult {
	if !v.IsNull() {
		return pass(RuleNullable)
	}
	if rule.Nullable {
		return pass(RuleNullable)
	}
	return fail(RuleNullable, "null value in non-nullable field")
}

// CheckAllowedValues verifies membership by canonical comparison,
// case-sensitive for text. Skipped when no list is declared.
func CheckAllowedValues(v dataset.Value, rule *standard.FieldRule) CheckResult {
	if len(rule.AllowedValues) == 0 {
		return pass(RuleAllowedValues)
	}
	canon := v.Canonical()
	for _, allowed := range rule.AllowedValues {
		if dataset.FromAny(allowed).Canonical() == canon {
			return pass(RuleAllowedValues)
		}
	}
	return fail(RuleAllowedValues, "value %q not in allowed set (%d values)", canon, len(rule.AllowedValues))
}

// CheckNumericBounds applies closed-interval comparison over numeric
// coercion; NaN and non-coercible values fail.
func CheckNumericBounds(v dataset.Value, rule *standard.FieldRule) CheckResult {
	if !rule.HasNumericBounds() {
		return pass(RuleNumericBounds)
	}
	f, ok := v.AsFloat()
	if !ok {
		return fail(RuleNumericBounds, "value %q is not comparable as a number", v.Canonical())
	}
	if rule.MinValue != nil && f < *rule.MinValue {
		return fail(RuleNumericBounds, "value %v below minimum %v", f, *rule.MinValue)
	}
	if rule.MaxValue != nil && f > *rule.MaxValue {
		return fail(RuleNumericBounds, "value %v above maximum %v", f, *rule.MaxValue)
	}
	return pass(RuleNumericBounds)
}

// CheckLengthBounds measures the rendered string form in code points
func CheckLengthBounds(v dataset.Value, rule *standard.FieldRule) CheckResult {
	if !rule.HasLengthBounds() {
		return pass(RuleLengthBounds)
	}
	n := utf8.RuneCountInString(v.Canonical())
	if rule.MinLength != nil && n < *rule.MinLength {
		return fail(RuleLengthBounds, "length %d below minimum %d", n, *rule.MinLength)
	}
	if rule.MaxLength != nil && n > *rule.MaxLength {
		return fail(RuleLengthBounds, "length %d above maximum %d", n, *rule.MaxLength)
	}
	return pass(RuleLengthBounds)
}

// CheckPattern matches the anchored regex over the string form
func CheckPattern(v dataset.Value, rule *standard.FieldRule) CheckResult {
	if rule.Pattern == "" {
		return pass(RulePattern)
	}
	re, err := compileAnchored(rule.Pattern)
	if err != nil {
		return fail(RulePattern, "invalid pattern %q: %v", rule.Pattern, err)
	}
	if re.MatchString(v.Canonical()) {
		return pass(RulePattern)
	}
	return fail(RulePattern, "value %q does not match pattern %q", v.Canonical(), rule.Pattern)
}

// CheckDateBounds verifies after <= v <= before when either bound is present
func CheckDateBounds(v dataset.Value, rule *standard.FieldRule) CheckResult {
	if !rule.HasDateBounds() {
		return pass(RuleDateBounds)
	}
	t, ok := v.AsTime()
	if !ok {
		return fail(RuleDateBounds, "value %q is not a date", v.Canonical())
	}
	check := func(bound string, isAfter bool) *CheckResult {
		if bound == "" {
			return nil
		}
		b, ok := dataset.ParseTemporal(bound)
		if !ok {
			r := fail(RuleDateBounds, "invalid bound %q", bound)
			return &r
		}
		if isAfter && t.Before(b) {
			r := fail(RuleDateBounds, "value %s before window start %s", t.Format(time.RFC3339), bound)
			return &r
		}
		if !isAfter && t.After(b) {
			r := fail(RuleDateBounds, "value %s after window end %s", t.Format(time.RFC3339), bound)
			return &r
		}
		return nil
	}
	for _, c := range []*CheckResult{
		check(rule.AfterDate, true),
		check(rule.AfterDatetime, true),
		check(rule.BeforeDate, false),
		check(rule.BeforeDatetime, false),
	} {
		if c != nil {
			return *c
		}
	}
	return pass(RuleDateBounds)
}

// checkers maps rule names to predicates, in CheckOrder
var checkers = map[string]func(dataset.Value, *standard.FieldRule) CheckResult{
	RuleType:          CheckType,
	RuleAllowedValues: CheckAllowedValues,
	RuleLengthBounds:  CheckLengthBounds,
	RulePattern:       CheckPattern,
	RuleNumericBounds: CheckNumericBounds,
	RuleDateBounds:    CheckDateBounds,
}

// Check runs a single named rule
func Check(rule string, v dataset.Value, fr *standard.FieldRule) CheckResult {
	fn, ok := checkers[rule]
	if !ok {
		return fail(rule, "unknown rule %q", rule)
	}
	return fn(v, fr)
}

// Evaluate runs all checks in fixed order. A null value short-circuits:
// with nullable=true it contributes no results at all, otherwise it fails
// the nullable rule and nothing downstream runs.
func Evaluate(v dataset.Value, rule *standard.FieldRule) []CheckResult {
	if v.IsNull() {
		if rule.Nullable {
			return nil
		}
		return []CheckResult{fail(RuleNullable, "null value in non-nullable field")}
	}
	results := make([]CheckResult, 0, len(CheckOrder))
	for _, name := range CheckOrder {
		results = append(results, checkers[name](v, rule))
	}
	return results
}

// FirstFailure returns the first failing check in fixed order, or nil
func FirstFailure(v dataset.Value, rule *standard.FieldRule) *CheckResult {
	for _, r := range Evaluate(v, rule) {
		if !r.Passed {
			out := r
			return &out
		}
	}
	return nil
}

package generation

import (
	"math"
	"unicode/utf8"

	"adri/domain/dataset"
	"adri/domain/standard"
	"adri/internal/rules"
)

// trainingPassReason is recorded on every relaxation adjustment
const trainingPassReason = "training-pass failure"

// maxRelaxationPasses bounds enforcement. Two passes suffice: every action
// either widens a bound to contain observed data or deletes a rule, and
// rules do not regrow.
const maxRelaxationPasses = 2

// enforceTrainingPass iterates the training data through the rule checkers
// in fixed order and relaxes only the failing rule until the data passes.
func enforceTrainingPass(std *standard.Standard, ds *dataset.Dataset) {
	for pass := 0; pass < maxRelaxationPasses; pass++ {
		clean := true
		for name, rule := range std.Requirements.FieldRequirements {
			col, ok := ds.Column(name)
			if !ok {
				continue
			}
			if relaxed := relaxField(std, name, rule, col); relaxed {
				clean = false
			}
		}
		if clean {
			return
		}
	}
}

// relaxField runs every cell through the checkers, applying the relaxation
// policy on the first failure of each rule. Returns true when anything changed.
func relaxField(std *standard.Standard, name string, rule *standard.FieldRule, col dataset.Column) bool {
	changed := false

	nullsSeen := col.NullCount() > 0
	if nullsSeen && !rule.Nullable {
		record(std, name, standard.Adjustment{
			Rule:   rules.RuleNullable,
			Action: "set nullable",
			Before: map[string]interface{}{"nullable": false},
			After:  map[string]interface{}{"nullable": true},
			Reason: trainingPassReason,
		})
		rule.Nullable = true
		changed = true
	}

	for _, v := range col.Values {
		if v.IsNull() {
			continue
		}
		for _, result := range rules.Evaluate(v, rule) {
			if result.Passed {
				continue
			}
			relax(std, name, rule, result.Rule, col)
			changed = true
			// Re-evaluate the cell against the relaxed rule
			break
		}
	}
	return changed
}

// relax applies the per-rule relaxation policy
func relax(std *standard.Standard, name string, rule *standard.FieldRule, failing string, col dataset.Column) {
	switch failing {
	case rules.RuleType:
		// Coerce to string; drop bounds that no longer apply
		record(std, name, standard.Adjustment{
			Rule:   rules.RuleType,
			Action: "coerce to string",
			Before: map[string]interface{}{"type": string(rule.Type)},
			After:  map[string]interface{}{"type": string(standard.TypeString)},
			Reason: trainingPassReason,
		})
		rule.Type = standard.TypeString
		rule.MinValue, rule.MaxValue = nil, nil
		rule.AfterDate, rule.BeforeDate = "", ""
		rule.AfterDatetime, rule.BeforeDatetime = "", ""

	case rules.RuleAllowedValues:
		record(std, name, standard.Adjustment{
			Rule:   rules.RuleAllowedValues,
			Action: "delete enum",
			Before: map[string]interface{}{"allowed_values": rule.AllowedValues},
			Reason: trainingPassReason,
		})
		rule.AllowedValues = nil

	case rules.RuleLengthBounds:
		lo, hi, ok := observedLengths(col)
		adj := standard.Adjustment{
			Rule:   rules.RuleLengthBounds,
			Action: "widen to observed extremes",
			Before: map[string]interface{}{"min_length": rule.MinLength, "max_length": rule.MaxLength},
			Reason: trainingPassReason,
		}
		if !ok {
			adj.Action = "delete length bounds"
			rule.MinLength, rule.MaxLength = nil, nil
		} else {
			rule.MinLength, rule.MaxLength = &lo, &hi
			adj.After = map[string]interface{}{"min_length": lo, "max_length": hi}
		}
		record(std, name, adj)

	case rules.RulePattern:
		record(std, name, standard.Adjustment{
			Rule:   rules.RulePattern,
			Action: "delete pattern",
			Before: map[string]interface{}{"pattern": rule.Pattern},
			Reason: trainingPassReason,
		})
		rule.Pattern = ""

	case rules.RuleNumericBounds:
		obsMin, obsMax, ok := observedRange(col)
		if !ok {
			return
		}
		before := map[string]interface{}{"min_value": rule.MinValue, "max_value": rule.MaxValue}
		if rule.MinValue == nil || obsMin < *rule.MinValue {
			rule.MinValue = &obsMin
		}
		if rule.MaxValue == nil || obsMax > *rule.MaxValue {
			rule.MaxValue = &obsMax
		}
		record(std, name, standard.Adjustment{
			Rule:   rules.RuleNumericBounds,
			Action: "widen to include observed values",
			Before: before,
			After:  map[string]interface{}{"min_value": *rule.MinValue, "max_value": *rule.MaxValue},
			Reason: trainingPassReason,
		})

	case rules.RuleDateBounds:
		record(std, name, standard.Adjustment{
			Rule:   rules.RuleDateBounds,
			Action: "delete date bounds",
			Before: map[string]interface{}{
				"after_date": rule.AfterDate, "before_date": rule.BeforeDate,
				"after_datetime": rule.AfterDatetime, "before_datetime": rule.BeforeDatetime,
			},
			Reason: trainingPassReason,
		})
		rule.AfterDate, rule.BeforeDate = "", ""
		rule.AfterDatetime, rule.BeforeDatetime = "", ""
	}
}

func observedLengths(col dataset.Column) (int, int, bool) {
	lo := math.MaxInt
	hi := 0
	found := false
	for _, v := range col.Values {
		if v.IsNull() {
			continue
		}
		n := utf8.RuneCountInString(v.Canonical())
		if n < lo {
			lo = n
		}
		if n > hi {
			hi = n
		}
		found = true
	}
	return lo, hi, found
}

func observedRange(col dataset.Column) (float64, float64, bool) {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	found := false
	for _, v := range col.Values {
		f, ok := v.AsFloat()
		if !ok {
			continue
		}
		if f < lo {
			lo = f
		}
		if f > hi {
			hi = f
		}
		found = true
	}
	return lo, hi, found
}

// record appends an adjustment entry under metadata.explanations[field]
func record(std *standard.Standard, field string, adj standard.Adjustment) {
	if std.Metadata == nil {
		std.Metadata = &standard.Metadata{}
	}
	if std.Metadata.Explanations == nil {
		std.Metadata.Explanations = make(map[string]*standard.FieldExplanation)
	}
	expl, ok := std.Metadata.Explanations[field]
	if !ok {
		expl = &standard.FieldExplanation{}
		std.Metadata.Explanations[field] = expl
	}
	expl.Adjustments = append(expl.Adjustments, adj)
}

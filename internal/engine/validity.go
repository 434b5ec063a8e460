package engine

import (
	"adri/domain/assessment"
	"adri/domain/standard"
	"adri/internal/rules"
)

// defaultValidityWeights apply when the standard declares no rule weights
var defaultValidityWeights = map[string]float64{
	rules.RuleType:          0.3,
	rules.RuleAllowedValues: 0.2,
	rules.RulePattern:       0.2,
	rules.RuleLengthBounds:  0.1,
	rules.RuleNumericBounds: 0.2,
}

// scoreValidity evaluates the configured rules on every non-null value of
// every required field present in the dataset and combines pass rates by
// rule weight. Null values contribute neither pass nor failure.
func (s *scoring) scoreValidity() assessment.DimensionScore {
	cfg := s.dimConfig(standard.DimValidity)

	fieldScores := make(map[string]float64)
	total := 0.0
	count := 0

	for _, name := range s.requiredFields() {
		rule := s.std.Requirements.FieldRequirements[name]
		col, ok := s.ds.Column(name)
		if !ok {
			// Missing fields are a completeness concern, not a validity one
			continue
		}

		active := activeValidityRules(rule)
		counts := make(map[string]*[2]int, len(active)) // rule -> [evaluated, passed]
		samples := make(map[string][]string)
		failedRows := make(map[string]int)

		for _, ruleName := range active {
			counts[ruleName] = &[2]int{}
		}

		for _, v := range col.Values {
			if v.IsNull() {
				continue
			}
			for _, ruleName := range active {
				res := rules.Check(ruleName, v, rule)
				c := counts[ruleName]
				c[0]++
				if res.Passed {
					c[1]++
				} else {
					failedRows[ruleName]++
					if len(samples[ruleName]) < s.failureSampleCap() {
						samples[ruleName] = append(samples[ruleName], res.Detail)
					}
				}
			}
		}

		weightSum := 0.0
		weighted := 0.0
		for _, ruleName := range active {
			w := cfg.RuleWeight(name, ruleName, defaultValidityWeights[ruleName])
			c := counts[ruleName]
			passRate := 1.0
			if c[0] > 0 {
				passRate = float64(c[1]) / float64(c[0])
			}
			weightSum += w
			weighted += w * passRate

			s.logExecution(standard.DimValidity, name, ruleName, w, c[0], c[1])
			s.recordFailure(name, ruleName, failedRows[ruleName], samples[ruleName])
		}

		score := standard.MaxDimensionScore
		if weightSum > 0 {
			score = weighted / weightSum * standard.MaxDimensionScore
		}
		fieldScores[name] = score
		total += score
		count++
	}

	score := standard.MaxDimensionScore
	if count > 0 {
		score = total / float64(count)
	}
	return assessment.DimensionScore{
		Score: score,
		Details: map[string]interface{}{
			"field_scores": fieldScores,
		},
	}
}

// activeValidityRules lists the rules that actually constrain a field
func activeValidityRules(rule *standard.FieldRule) []string {
	active := []string{rules.RuleType}
	if len(rule.AllowedValues) > 0 {
		active = append(active, rules.RuleAllowedValues)
	}
	if rule.HasLengthBounds() {
		active = append(active, rules.RuleLengthBounds)
	}
	if rule.Pattern != "" {
		active = append(active, rules.RulePattern)
	}
	if rule.HasNumericBounds() {
		active = append(active, rules.RuleNumericBounds)
	}
	return active
}

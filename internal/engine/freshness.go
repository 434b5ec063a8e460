package engine

import (
	"adri/domain/assessment"
	"adri/domain/standard"
	"adri/internal/rules"
)

// scoreFreshness scores date and datetime fields that declare a recency
// window by the proportion of values falling inside it. Window bounds are
// absolute dates carried by the standard; no wall clock is consulted.
// Without any windowed field the dimension returns the neutral maximum with
// a zero-weight log entry.
func (s *scoring) scoreFreshness() assessment.DimensionScore {
	cfg := s.dimConfig(standard.DimFreshness)

	fieldScores := make(map[string]float64)
	total := 0.0
	count := 0

	for _, name := range s.requiredFields() {
		rule := s.std.Requirements.FieldRequirements[name]
		if !rule.HasDateBounds() {
			continue
		}
		col, ok := s.ds.Column(name)
		if !ok {
			continue
		}

		evaluated, passed := 0, 0
		var samples []string
		for _, v := range col.Values {
			if v.IsNull() {
				continue
			}
			evaluated++
			res := rules.CheckDateBounds(v, rule)
			if res.Passed {
				passed++
			} else if len(samples) < s.failureSampleCap() {
				samples = append(samples, res.Detail)
			}
		}

		score := standard.MaxDimensionScore
		if evaluated > 0 {
			score = standard.MaxDimensionScore * float64(passed) / float64(evaluated)
		}
		fieldScores[name] = score
		total += score
		count++

		weight := cfg.RuleWeight(name, "recency_window", 1.0)
		s.logExecution(standard.DimFreshness, name, "recency_window", weight, evaluated, passed)
		s.recordFailure(name, "date_bounds", evaluated-passed, samples)
	}

	if count == 0 {
		s.logExecution(standard.DimFreshness, "", "recency_window", 0, 0, 0)
		return assessment.DimensionScore{
			Score: standard.MaxDimensionScore,
			Details: map[string]interface{}{
				"note": "no recency windows declared; dimension neutral",
			},
		}
	}

	return assessment.DimensionScore{
		Score: total / float64(count),
		Details: map[string]interface{}{
			"field_scores": fieldScores,
		},
	}
}

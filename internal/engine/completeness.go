package engine

import (
	"fmt"

	"adri/domain/assessment"
	"adri/domain/standard"
)

// scoreCompleteness scores each required field on its population. A null in
// a nullable field counts as a completeness pass; a null in a non-nullable
// field counts against. A required field missing from the dataset scores 0.
func (s *scoring) scoreCompleteness() assessment.DimensionScore {
	cfg := s.dimConfig(standard.DimCompleteness)

	fieldScores := make(map[string]float64)
	total := 0.0
	count := 0

	for _, name := range s.requiredFields() {
		rule := s.std.Requirements.FieldRequirements[name]
		col, ok := s.ds.Column(name)
		if !ok {
			fieldScores[name] = 0
			count++
			s.logExecution(standard.DimCompleteness, name, "missing_required",
				cfg.RuleWeight(name, "missing_required", 1.0), s.ds.RowCount(), 0)
			s.recordFailure(name, "missing_field", s.ds.RowCount(),
				[]string{fmt.Sprintf("column %s absent from dataset", name)})
			continue
		}

		rows := len(col.Values)
		nulls := col.NullCount()
		failing := 0
		if !rule.Nullable {
			failing = nulls
		}

		score := standard.MaxDimensionScore
		if rows > 0 {
			score = standard.MaxDimensionScore * float64(rows-failing) / float64(rows)
		}
		fieldScores[name] = score
		total += score
		count++

		s.logExecution(standard.DimCompleteness, name, "missing_required",
			cfg.RuleWeight(name, "missing_required", 1.0), rows, rows-failing)
		if failing > 0 {
			s.recordFailure(name, "missing_required", failing,
				[]string{fmt.Sprintf("%d null values in non-nullable field", failing)})
		}
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

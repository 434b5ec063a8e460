package engine

import (
	"fmt"
	"strings"

	"adri/domain/assessment"
	"adri/domain/standard"
)

// scoreConsistency is dominated by primary key uniqueness: 20 * (1 - dup
// rate) over the declared single or composite key. Without a usable key the
// dimension is neutral and logged at zero weight.
func (s *scoring) scoreConsistency() assessment.DimensionScore {
	cfg := s.dimConfig(standard.DimConsistency)

	pk := s.std.PrimaryKeyFields()
	var present []string
	for _, f := range pk {
		if s.ds.HasColumn(f) {
			present = append(present, f)
		}
	}

	if len(present) == 0 {
		s.logExecution(standard.DimConsistency, "", "primary_key_uniqueness", 0, 0, 0)
		return assessment.DimensionScore{
			Score: standard.MaxDimensionScore,
			Details: map[string]interface{}{
				"primary_key": pk,
				"note":        "no usable primary key; dimension neutral",
			},
		}
	}

	rows := s.ds.RowCount()
	seen := make(map[string]int, rows)
	duplicates := 0
	var samples []string

	for r := 0; r < rows; r++ {
		var parts []string
		for _, f := range present {
			col, _ := s.ds.Column(f)
			parts = append(parts, col.Values[r].Canonical())
		}
		key := strings.Join(parts, "\x1f")
		seen[key]++
		if seen[key] > 1 {
			duplicates++
			if len(samples) < s.failureSampleCap() {
				samples = append(samples, fmt.Sprintf("row %d duplicates key %q", r, strings.Join(parts, ",")))
			}
		}
	}

	dupRate := 0.0
	if rows > 0 {
		dupRate = float64(duplicates) / float64(rows)
	}
	score := standard.MaxDimensionScore * (1 - dupRate)

	weight := cfg.RuleWeight(strings.Join(present, ","), "primary_key_uniqueness", 1.0)
	s.logExecution(standard.DimConsistency, strings.Join(present, ","), "primary_key_uniqueness", weight, rows, rows-duplicates)
	s.recordFailure(strings.Join(present, ","), "primary_key_uniqueness", duplicates, samples)

	return assessment.DimensionScore{
		Score: score,
		Details: map[string]interface{}{
			"primary_key":    present,
			"duplicate_rows": duplicates,
			"duplicate_rate": dupRate,
		},
	}
}

package engine

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"adri/domain/assessment"
	"adri/domain/dataset"
	"adri/domain/standard"
	"adri/internal/profiling"
)

// rareCategoryRatio marks categories below this share of non-null values as
// rare for the categorical frequency rule
const rareCategoryRatio = 0.01

// scorePlausibility combines IQR outlier rates on numeric fields,
// categorical frequency stability, and any registered business-logic or
// cross-field hooks, each weighted by the dimension's rule weights.
func (s *scoring) scorePlausibility() assessment.DimensionScore {
	cfg := s.dimConfig(standard.DimPlausibility)

	type component struct {
		rule     string
		passRate float64
		weight   float64
	}
	var components []component

	outlierRate, outlierDetails := s.outlierComponent(cfg)
	if outlierDetails != nil {
		components = append(components, component{
			rule:     "statistical_outliers",
			passRate: 1 - outlierRate,
			weight:   cfg.RuleWeight("", "statistical_outliers", 0.4),
		})
	}

	catRate, catDetails := s.categoricalComponent(cfg)
	if catDetails != nil {
		components = append(components, component{
			rule:     "categorical_frequency",
			passRate: catRate,
			weight:   cfg.RuleWeight("", "categorical_frequency", 0.3),
		})
	}

	for _, hook := range s.hooks {
		passRate, failures := hook.Evaluate(s.ds, s.std)
		s.result.Failures = append(s.result.Failures, failures...)
		components = append(components, component{
			rule:     hook.Rule(),
			passRate: passRate,
			weight:   cfg.RuleWeight("", hook.Rule(), 0.15),
		})
		s.logExecution(standard.DimPlausibility, "", hook.Rule(),
			cfg.RuleWeight("", hook.Rule(), 0.15), s.ds.RowCount(), int(passRate*float64(s.ds.RowCount())))
	}

	weightSum := 0.0
	weighted := 0.0
	for _, c := range components {
		weightSum += c.weight
		weighted += c.weight * c.passRate
	}
	score := standard.MaxDimensionScore
	if weightSum > 0 {
		score = weighted / weightSum * standard.MaxDimensionScore
	}

	details := map[string]interface{}{}
	if outlierDetails != nil {
		details["statistical_outliers"] = outlierDetails
	}
	if catDetails != nil {
		details["categorical_frequency"] = catDetails
	}
	return assessment.DimensionScore{Score: score, Details: details}
}

// outlierComponent returns the IQR outlier rate across numeric required
// fields, or nil details when no numeric field exists
func (s *scoring) outlierComponent(cfg standard.DimensionConfig) (float64, map[string]interface{}) {
	evaluated := 0
	outliers := 0
	perField := make(map[string]int)

	for _, name := range s.requiredFields() {
		rule := s.std.Requirements.FieldRequirements[name]
		if rule.Type != standard.TypeInteger && rule.Type != standard.TypeFloat {
			continue
		}
		col, ok := s.ds.Column(name)
		if !ok {
			continue
		}

		data := profiling.Floats(col.NonNull())
		if len(data) < 4 {
			continue
		}
		q1, _ := stats.Percentile(data, 25)
		q3, _ := stats.Percentile(data, 75)
		iqr := q3 - q1
		lower, upper := q1-1.5*iqr, q3+1.5*iqr

		fieldOutliers := 0
		var samples []string
		for _, f := range data {
			if f < lower || f > upper {
				fieldOutliers++
				if len(samples) < s.failureSampleCap() {
					samples = append(samples, fmt.Sprintf("value %v outside [%v, %v]", f, lower, upper))
				}
			}
		}
		evaluated += len(data)
		outliers += fieldOutliers
		perField[name] = fieldOutliers

		weight := cfg.RuleWeight(name, "statistical_outliers", 0.4)
		s.logExecution(standard.DimPlausibility, name, "statistical_outliers", weight, len(data), len(data)-fieldOutliers)
		s.recordFailure(name, "statistical_outliers", fieldOutliers, samples)
	}

	if evaluated == 0 {
		return 0, nil
	}
	return float64(outliers) / float64(evaluated), map[string]interface{}{
		"outliers":  outliers,
		"evaluated": evaluated,
		"per_field": perField,
	}
}

// categoricalComponent measures frequency stability over low-cardinality
// string fields: values in categories below rareCategoryRatio count against
func (s *scoring) categoricalComponent(cfg standard.DimensionConfig) (float64, map[string]interface{}) {
	evaluated := 0
	stable := 0
	perField := make(map[string]int)

	for _, name := range s.requiredFields() {
		rule := s.std.Requirements.FieldRequirements[name]
		if rule.Type != standard.TypeString {
			continue
		}
		col, ok := s.ds.Column(name)
		if !ok {
			continue
		}
		nonNull := col.NonNull()
		if len(nonNull) == 0 {
			continue
		}

		freq := make(map[string]int)
		for _, v := range nonNull {
			freq[v.Canonical()]++
		}
		// High-cardinality fields are identifiers, not categoricals
		if float64(len(freq)) > 0.5*float64(len(nonNull)) && len(freq) > 10 {
			continue
		}

		threshold := rareCategoryRatio * float64(len(nonNull))
		rare := 0
		var samples []string
		for _, v := range nonNull {
			if float64(freq[v.Canonical()]) < threshold {
				rare++
				if len(samples) < s.failureSampleCap() {
					samples = append(samples, fmt.Sprintf("rare category %q", v.Canonical()))
				}
			}
		}
		evaluated += len(nonNull)
		stable += len(nonNull) - rare
		perField[name] = rare

		weight := cfg.RuleWeight(name, "categorical_frequency", 0.3)
		s.logExecution(standard.DimPlausibility, name, "categorical_frequency", weight, len(nonNull), len(nonNull)-rare)
		s.recordFailure(name, "categorical_frequency", rare, samples)
	}

	if evaluated == 0 {
		return 0, nil
	}
	return float64(stable) / float64(evaluated), map[string]interface{}{
		"evaluated": evaluated,
		"stable":    stable,
		"per_field": perField,
	}
}

// Hooks for declared business-logic predicates. FuncHook adapts a plain
// function to the PlausibilityHook interface.
type FuncHook struct {
	RuleName string
	Fn       func(ds *dataset.Dataset, std *standard.Standard) (float64, []assessment.FailedValidation)
}

// Rule returns the hook's rule name
func (h FuncHook) Rule() string { return h.RuleName }

// Evaluate runs the wrapped function
func (h FuncHook) Evaluate(ds *dataset.Dataset, std *standard.Standard) (float64, []assessment.FailedValidation) {
	return h.Fn(ds, std)
}

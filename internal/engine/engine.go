// Package engine scores a dataset against a standard across the five
// quality dimensions and assembles the AssessmentResult.
package engine

import (
	"fmt"
	"sort"

	"adri/domain/assessment"
	"adri/domain/core"
	"adri/domain/dataset"
	"adri/domain/standard"
)

// maxSampleFailures caps the per-failure sample list
const maxSampleFailures = 5

// PlausibilityHook extends the plausibility dimension with declared
// business-logic or cross-field predicates. The default registry is empty;
// hook rules then contribute at zero weight.
type PlausibilityHook interface {
	// Rule returns the rule name this hook scores ("business_logic" or
	// "cross_field_consistency")
	Rule() string

	// Evaluate returns the pass rate in [0,1] and any failure records
	Evaluate(ds *dataset.Dataset, std *standard.Standard) (float64, []assessment.FailedValidation)
}

// Limits caps assessment work. Zero values mean unlimited rows and the
// package default sample cap.
type Limits struct {
	MaxRows        int // rows assessed per call, 0 assesses everything
	SampleFailures int // sample values kept per failed rule
}

func (l Limits) sampleCap() int {
	if l.SampleFailures > 0 {
		return l.SampleFailures
	}
	return maxSampleFailures
}

// Engine assesses datasets against standards
type Engine struct {
	hooks  []PlausibilityHook
	limits Limits
}

// New creates an engine without extension hooks
func New() *Engine {
	return &Engine{}
}

// NewWithHooks creates an engine with plausibility extension hooks
func NewWithHooks(hooks ...PlausibilityHook) *Engine {
	return &Engine{hooks: hooks}
}

// NewWithLimits creates an engine with assessment caps
func NewWithLimits(limits Limits, hooks ...PlausibilityHook) *Engine {
	return &Engine{hooks: hooks, limits: limits}
}

// Assess scores the dataset against the standard. Per-value coercion
// problems are counted as rule failures and never surface as errors;
// a structurally invalid standard is fatal.
func (e *Engine) Assess(ds *dataset.Dataset, std *standard.Standard) (*assessment.AssessmentResult, error) {
	if ds == nil {
		return nil, core.NewDataValidationError("dataset is nil")
	}
	if std == nil {
		return nil, core.NewDataValidationError("standard is nil")
	}
	if err := std.Validate(); err != nil {
		return nil, err
	}

	result := &assessment.AssessmentResult{
		AssessmentID:    core.NewAssessmentID(),
		StandardID:      std.Standards.ID,
		AssessmentDate:  core.Now(),
		DimensionScores: make(map[string]assessment.DimensionScore),
		FieldAnalysis:   make(map[string]assessment.FieldAnalysis),
		Metadata: map[string]interface{}{
			"row_count":    ds.RowCount(),
			"column_count": ds.ColumnCount(),
		},
	}

	if e.limits.MaxRows > 0 && ds.RowCount() > e.limits.MaxRows {
		ds = ds.Head(e.limits.MaxRows)
		result.Metadata["assessed_rows"] = ds.RowCount()
	}

	analyzeFields(ds, std, result)

	sc := &scoring{ds: ds, std: std, result: result, hooks: e.hooks, sampleCap: e.limits.sampleCap()}
	result.DimensionScores[standard.DimValidity] = sc.scoreValidity()
	result.DimensionScores[standard.DimCompleteness] = sc.scoreCompleteness()
	result.DimensionScores[standard.DimConsistency] = sc.scoreConsistency()
	result.DimensionScores[standard.DimFreshness] = sc.scoreFreshness()
	result.DimensionScores[standard.DimPlausibility] = sc.scorePlausibility()

	overall := 0.0
	for _, dim := range standard.Dimensions {
		overall += result.DimensionScores[dim].Score
	}
	result.OverallScore = overall
	result.Passed = overall >= std.Requirements.OverallMinimum

	return result, nil
}

// scoring carries shared state for the five dimension scorers
type scoring struct {
	ds        *dataset.Dataset
	std       *standard.Standard
	result    *assessment.AssessmentResult
	hooks     []PlausibilityHook
	sampleCap int
}

// logExecution appends a summary-level rule execution record
func (s *scoring) logExecution(dim, field, rule string, weight float64, evaluated, passed int) {
	s.result.RuleExecutions = append(s.result.RuleExecutions, assessment.RuleExecution{
		Dimension: dim,
		Field:     field,
		Rule:      rule,
		Weight:    weight,
		Evaluated: evaluated,
		Passed:    passed,
		Failed:    evaluated - passed,
	})
}

// recordFailure collects a FailedValidation row with capped samples
func (s *scoring) recordFailure(field, issueType string, affected int, samples []string) {
	if affected == 0 {
		return
	}
	rows := s.ds.RowCount()
	pct := 0.0
	if rows > 0 {
		pct = float64(affected) / float64(rows) * 100
	}
	if cap := s.failureSampleCap(); len(samples) > cap {
		samples = samples[:cap]
	}
	s.result.Failures = append(s.result.Failures, assessment.FailedValidation{
		AssessmentID:       s.result.AssessmentID,
		FieldName:          field,
		IssueType:          issueType,
		AffectedRows:       affected,
		AffectedPercentage: pct,
		SampleFailures:     samples,
		Remediation:        remediationFor(issueType, field),
	})
}

// failureSampleCap returns the configured sample cap, defaulting when the
// scorer was built without limits
func (s *scoring) failureSampleCap() int {
	if s.sampleCap > 0 {
		return s.sampleCap
	}
	return maxSampleFailures
}

// requiredFields returns field requirement names in stable sorted order so
// the execution log is byte-identical across runs
func (s *scoring) requiredFields() []string {
	names := make([]string, 0, len(s.std.Requirements.FieldRequirements))
	for name := range s.std.Requirements.FieldRequirements {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// dimConfig returns the standard's configuration for a dimension
func (s *scoring) dimConfig(dim string) standard.DimensionConfig {
	if cfg, ok := s.std.Requirements.DimensionRequirements[dim]; ok {
		return cfg
	}
	return standard.DimensionConfig{Weight: 1.0}
}

// analyzeFields records per-column presence and type information. Extra
// columns are visible here and nowhere else in scoring.
func analyzeFields(ds *dataset.Dataset, std *standard.Standard, result *assessment.AssessmentResult) {
	required := std.Requirements.FieldRequirements

	for _, col := range ds.Columns() {
		_, isRequired := required[col.Name]
		kind := ""
		for _, v := range col.Values {
			if !v.IsNull() {
				kind = string(v.Kind)
				break
			}
		}
		result.FieldAnalysis[col.Name] = assessment.FieldAnalysis{
			Present:    true,
			Required:   isRequired,
			Extra:      !isRequired,
			ValueKind:  kind,
			NullCount:  col.NullCount(),
			TotalCount: len(col.Values),
		}
	}
	for name := range required {
		if !ds.HasColumn(name) {
			result.FieldAnalysis[name] = assessment.FieldAnalysis{
				Present:  false,
				Required: true,
			}
		}
	}
}

// remediationFor maps an issue type to a plain-language fix suggestion
func remediationFor(issueType, field string) string {
	switch issueType {
	case "type":
		return fmt.Sprintf("Convert %s values to the declared type before submission", field)
	case "allowed_values":
		return fmt.Sprintf("Restrict %s to the allowed value set declared in the standard", field)
	case "pattern":
		return fmt.Sprintf("Normalize %s to match the expected format", field)
	case "length_bounds":
		return fmt.Sprintf("Trim or pad %s values into the declared length range", field)
	case "numeric_bounds":
		return fmt.Sprintf("Clamp or correct out-of-range %s values", field)
	case "date_bounds":
		return fmt.Sprintf("Verify %s timestamps fall inside the declared window", field)
	case "missing_required":
		return fmt.Sprintf("Populate missing values for required field %s", field)
	case "missing_field":
		return fmt.Sprintf("Add the required column %s to the dataset", field)
	case "primary_key_uniqueness":
		return "Deduplicate rows sharing the same primary key"
	case "statistical_outliers":
		return fmt.Sprintf("Review outlying %s values for data-entry errors", field)
	case "categorical_frequency":
		return fmt.Sprintf("Review rare %s categories for typos or drift", field)
	default:
		return "Review the failing values against the standard"
	}
}

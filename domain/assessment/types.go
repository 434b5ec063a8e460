package assessment

import (
	"fmt"
	"sort"

	"adri/domain/core"
)

// AssessmentResult is the outcome of scoring a dataset against a standard
type AssessmentResult struct {
	AssessmentID    core.AssessmentID          `json:"assessment_id"`
	StandardID      string                     `json:"standard_id"`
	AssessmentDate  core.Timestamp             `json:"assessment_date"`
	OverallScore    float64                    `json:"overall_score"`
	Passed          bool                       `json:"passed"`
	DimensionScores map[string]DimensionScore  `json:"dimension_scores"`
	RuleExecutions  []RuleExecution            `json:"rule_execution_log"`
	FieldAnalysis   map[string]FieldAnalysis   `json:"field_analysis"`
	Failures        []FailedValidation         `json:"failed_validations"`
	Metadata        map[string]interface{}     `json:"metadata,omitempty"`
}

// DimensionScore is one dimension's contribution, in [0,20]
type DimensionScore struct {
	Score   float64                `json:"score"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RuleExecution is a summary-level record of one rule evaluated on one field
type RuleExecution struct {
	Dimension string  `json:"dimension"`
	Field     string  `json:"field"`
	Rule      string  `json:"rule"`
	Weight    float64 `json:"weight"`
	Evaluated int     `json:"evaluated"`
	Passed    int     `json:"passed"`
	Failed    int     `json:"failed"`
}

// PassRate returns the fraction of evaluated values that passed
func (r RuleExecution) PassRate() float64 {
	if r.Evaluated == 0 {
		return 1.0
	}
	return float64(r.Passed) / float64(r.Evaluated)
}

// FieldAnalysis records what the engine saw for each dataset column
type FieldAnalysis struct {
	Present    bool   `json:"present"`
	Required   bool   `json:"required"`
	Extra      bool   `json:"extra"`
	ValueKind  string `json:"value_kind,omitempty"`
	NullCount  int    `json:"null_count"`
	TotalCount int    `json:"total_count"`
}

// FailedValidation describes one failing rule on one field, with capped samples
type FailedValidation struct {
	AssessmentID       core.AssessmentID `json:"assessment_id"`
	FieldName          string            `json:"field_name"`
	IssueType          string            `json:"issue_type"`
	AffectedRows       int               `json:"affected_rows"`
	AffectedPercentage float64           `json:"affected_percentage"`
	SampleFailures     []string          `json:"sample_failures"`
	Remediation        string            `json:"remediation"`
}

// TopFailures returns up to n failures ordered by affected percentage
func (r *AssessmentResult) TopFailures(n int) []FailedValidation {
	out := append([]FailedValidation(nil), r.Failures...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AffectedPercentage > out[j].AffectedPercentage
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// DimensionScoreValue returns a dimension's score and whether it was scored
func (r *AssessmentResult) DimensionScoreValue(dim string) (float64, bool) {
	ds, ok := r.DimensionScores[dim]
	if !ok {
		return 0, false
	}
	return ds.Score, true
}

// Summary renders a one-line human summary
func (r *AssessmentResult) Summary() string {
	status := "FAILED"
	if r.Passed {
		status = "PASSED"
	}
	return fmt.Sprintf("%s: %.1f/100 against %s", status, r.OverallScore, r.StandardID)
}

package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"adri/domain/assessment"
	"adri/domain/core"
	"adri/domain/dataset"
	"adri/domain/standard"
)

func fptr(f float64) *float64 { return &f }

func customerStandard() *standard.Standard {
	std, err := standard.Parse([]byte(`
standards:
  id: customer_test_standard
  name: Customer Test
  version: 1.0.0
record_identification:
  primary_key_fields: [customer_id]
requirements:
  overall_minimum: 75
  field_requirements:
    customer_id:
      type: string
      nullable: false
      min_length: 1
      max_length: 10
    age:
      type: integer
      nullable: true
      min_value: 0
      max_value: 150
    status:
      type: string
      nullable: false
      allowed_values: [active, inactive]
`))
	if err != nil {
		panic(err)
	}
	return std
}

func cleanCustomers() *dataset.Dataset {
	return dataset.FromRecords([]map[string]interface{}{
		{"customer_id": "c1", "age": 30.0, "status": "active"},
		{"customer_id": "c2", "age": 41.0, "status": "inactive"},
		{"customer_id": "c3", "age": nil, "status": "active"},
		{"customer_id": "c4", "age": 35.0, "status": "active"},
	})
}

func TestAssessCleanDataScoresFull(t *testing.T) {
	result, err := New().Assess(cleanCustomers(), customerStandard())
	require.NoError(t, err)

	require.InDelta(t, 100.0, result.OverallScore, 1e-9)
	require.True(t, result.Passed)
	for _, dim := range standard.Dimensions {
		score, ok := result.DimensionScoreValue(dim)
		require.True(t, ok, dim)
		require.InDelta(t, 20.0, score, 1e-9, dim)
	}
	require.Empty(t, result.Failures)
}

func TestAssessNilInputs(t *testing.T) {
	_, err := New().Assess(nil, customerStandard())
	require.ErrorIs(t, err, core.ErrDataValidation)

	_, err = New().Assess(cleanCustomers(), nil)
	require.ErrorIs(t, err, core.ErrDataValidation)
}

func TestAssessInvalidStandardFatal(t *testing.T) {
	std := customerStandard()
	std.Requirements.OverallMinimum = 200
	_, err := New().Assess(cleanCustomers(), std)
	require.True(t, core.IsInvalidStandard(err), "got %v", err)
}

func TestDecisionLaw(t *testing.T) {
	ds := cleanCustomers()

	std := customerStandard()
	std.Requirements.OverallMinimum = 100
	result, err := New().Assess(ds, std)
	require.NoError(t, err)
	// boundary: overall == minimum passes
	require.True(t, result.Passed)

	dirty := dataset.FromRecords([]map[string]interface{}{
		{"customer_id": "c1", "age": 30.0, "status": "active"},
		{"customer_id": "c1", "age": 999.0, "status": "unknown"},
	})
	result, err = New().Assess(dirty, std)
	require.NoError(t, err)
	require.False(t, result.Passed)
	require.Less(t, result.OverallScore, 100.0)
}

func TestScoreBounds(t *testing.T) {
	dirty := dataset.FromRecords([]map[string]interface{}{
		{"customer_id": "", "age": "not a number", "status": "zzz"},
		{"customer_id": "", "age": -5.0, "status": "yyy"},
	})
	result, err := New().Assess(dirty, customerStandard())
	require.NoError(t, err)

	require.GreaterOrEqual(t, result.OverallScore, 0.0)
	require.LessOrEqual(t, result.OverallScore, 100.0)
	for _, dim := range standard.Dimensions {
		score, _ := result.DimensionScoreValue(dim)
		require.GreaterOrEqual(t, score, 0.0, dim)
		require.LessOrEqual(t, score, 20.0, dim)
	}
}

func TestCompletenessNullableLaw(t *testing.T) {
	// age is nullable: its nulls must not cost completeness points
	result, err := New().Assess(cleanCustomers(), customerStandard())
	require.NoError(t, err)
	score, _ := result.DimensionScoreValue(standard.DimCompleteness)
	require.InDelta(t, 20.0, score, 1e-9)

	// status is not nullable: a null there costs points
	withNull := dataset.FromRecords([]map[string]interface{}{
		{"customer_id": "c1", "age": 30.0, "status": "active"},
		{"customer_id": "c2", "age": 41.0, "status": nil},
	})
	result, err = New().Assess(withNull, customerStandard())
	require.NoError(t, err)
	score, _ = result.DimensionScoreValue(standard.DimCompleteness)
	require.Less(t, score, 20.0)

	found := false
	for _, f := range result.Failures {
		if f.FieldName == "status" && f.IssueType == "missing_required" {
			found = true
		}
	}
	require.True(t, found, "null in non-nullable field must be recorded: %+v", result.Failures)
}

func TestCompletenessMissingColumn(t *testing.T) {
	ds := dataset.FromRecords([]map[string]interface{}{
		{"customer_id": "c1", "age": 30.0},
		{"customer_id": "c2", "age": 41.0},
	})
	result, err := New().Assess(ds, customerStandard())
	require.NoError(t, err)

	// three required fields, one absent: mean of 20, 20, 0
	score, _ := result.DimensionScoreValue(standard.DimCompleteness)
	require.InDelta(t, 40.0/3.0, score, 1e-9)

	fa := result.FieldAnalysis["status"]
	require.False(t, fa.Present)
	require.True(t, fa.Required)

	found := false
	for _, f := range result.Failures {
		if f.FieldName == "status" && f.IssueType == "missing_field" {
			found = true
		}
	}
	require.True(t, found)
}

func TestConsistencyDuplicateKeys(t *testing.T) {
	ds := dataset.FromRecords([]map[string]interface{}{
		{"customer_id": "c1", "age": 30.0, "status": "active"},
		{"customer_id": "c1", "age": 41.0, "status": "active"},
		{"customer_id": "c2", "age": 35.0, "status": "active"},
		{"customer_id": "c3", "age": 39.0, "status": "active"},
	})
	result, err := New().Assess(ds, customerStandard())
	require.NoError(t, err)

	// one duplicate row out of four: 20 * (1 - 0.25)
	score, _ := result.DimensionScoreValue(standard.DimConsistency)
	require.InDelta(t, 15.0, score, 1e-9)
}

func TestConsistencyNeutralWithoutKey(t *testing.T) {
	std := customerStandard()
	std.RecordIdentification = nil
	result, err := New().Assess(cleanCustomers(), std)
	require.NoError(t, err)

	score, _ := result.DimensionScoreValue(standard.DimConsistency)
	require.InDelta(t, 20.0, score, 1e-9)

	// the neutral dimension still leaves a zero-weight trace in the log
	found := false
	for _, ex := range result.RuleExecutions {
		if ex.Dimension == standard.DimConsistency && ex.Rule == "primary_key_uniqueness" && ex.Weight == 0 {
			found = true
		}
	}
	require.True(t, found)
}

func TestFreshnessWindow(t *testing.T) {
	std := customerStandard()
	std.Requirements.FieldRequirements["joined"] = &standard.FieldRule{
		Type: standard.TypeDate, Nullable: false,
		AfterDate: "2024-01-01", BeforeDate: "2024-06-30",
	}
	ds := dataset.FromRecords([]map[string]interface{}{
		{"customer_id": "c1", "age": 30.0, "status": "active", "joined": "2024-02-01"},
		{"customer_id": "c2", "age": 41.0, "status": "active", "joined": "2023-05-01"},
	})
	result, err := New().Assess(ds, std)
	require.NoError(t, err)

	// half the values fall inside the window
	score, _ := result.DimensionScoreValue(standard.DimFreshness)
	require.InDelta(t, 10.0, score, 1e-9)
}

func TestValidityFailuresRecorded(t *testing.T) {
	ds := dataset.FromRecords([]map[string]interface{}{
		{"customer_id": "c1", "age": 30.0, "status": "active"},
		{"customer_id": "c2", "age": 999.0, "status": "unknown"},
	})
	result, err := New().Assess(ds, customerStandard())
	require.NoError(t, err)

	score, _ := result.DimensionScoreValue(standard.DimValidity)
	require.Less(t, score, 20.0)

	issues := make(map[string]bool)
	for _, f := range result.Failures {
		issues[f.FieldName+"/"+f.IssueType] = true
		require.NotEmpty(t, f.Remediation)
		require.LessOrEqual(t, len(f.SampleFailures), 5)
	}
	require.True(t, issues["age/numeric_bounds"], "issues: %v", issues)
	require.True(t, issues["status/allowed_values"], "issues: %v", issues)
}

func TestExtraColumnsNeutral(t *testing.T) {
	base := cleanCustomers()
	withExtra := dataset.FromRecords([]map[string]interface{}{
		{"customer_id": "c1", "age": 30.0, "status": "active", "note": "hi"},
		{"customer_id": "c2", "age": 41.0, "status": "inactive", "note": "yo"},
		{"customer_id": "c3", "age": nil, "status": "active", "note": "ok"},
		{"customer_id": "c4", "age": 35.0, "status": "active", "note": "so"},
	})

	a, err := New().Assess(base, customerStandard())
	require.NoError(t, err)
	b, err := New().Assess(withExtra, customerStandard())
	require.NoError(t, err)

	require.Equal(t, a.OverallScore, b.OverallScore, "extra columns must not affect the score")
	fa := b.FieldAnalysis["note"]
	require.True(t, fa.Extra)
	require.False(t, fa.Required)
}

func TestAssessDeterministicExecutionLog(t *testing.T) {
	ds := cleanCustomers()
	std := customerStandard()

	a, err := New().Assess(ds, std)
	require.NoError(t, err)
	b, err := New().Assess(ds, std)
	require.NoError(t, err)

	require.Equal(t, a.OverallScore, b.OverallScore)
	require.Equal(t, len(a.RuleExecutions), len(b.RuleExecutions))
	for i := range a.RuleExecutions {
		require.Equal(t, a.RuleExecutions[i], b.RuleExecutions[i], "execution log order must be stable")
	}
}

func TestPlausibilityHook(t *testing.T) {
	hook := FuncHook{
		RuleName: "business_logic",
		Fn: func(ds *dataset.Dataset, std *standard.Standard) (float64, []assessment.FailedValidation) {
			return 0.0, []assessment.FailedValidation{{
				FieldName: "age", IssueType: "business_logic", AffectedRows: ds.RowCount(),
			}}
		},
	}
	result, err := NewWithHooks(hook).Assess(cleanCustomers(), customerStandard())
	require.NoError(t, err)

	score, _ := result.DimensionScoreValue(standard.DimPlausibility)
	require.Less(t, score, 20.0, "an always-failing hook must cost plausibility points")

	found := false
	for _, f := range result.Failures {
		if f.IssueType == "business_logic" {
			found = true
		}
	}
	require.True(t, found)
}

func TestNumericBoundsRangeInclusive(t *testing.T) {
	std := customerStandard()
	std.Requirements.FieldRequirements["age"].MinValue = fptr(0)
	std.Requirements.FieldRequirements["age"].MaxValue = fptr(150)
	ds := dataset.FromRecords([]map[string]interface{}{
		{"customer_id": "c1", "age": 0.0, "status": "active"},
		{"customer_id": "c2", "age": 150.0, "status": "active"},
		{"customer_id": "c3", "age": 75.0, "status": "active"},
		{"customer_id": "c4", "age": 80.0, "status": "active"},
	})
	result, err := New().Assess(ds, std)
	require.NoError(t, err)
	score, _ := result.DimensionScoreValue(standard.DimValidity)
	require.InDelta(t, 20.0, score, 1e-9, "boundary values are in range")
}

func TestAssessRowLimit(t *testing.T) {
	ds := dataset.FromRecords([]map[string]interface{}{
		{"customer_id": "c1", "age": 30.0, "status": "active"},
		{"customer_id": "c2", "age": 41.0, "status": "inactive"},
		{"customer_id": "c9", "age": 999.0, "status": "bogus"},
		{"customer_id": "c9", "age": -4.0, "status": "bogus"},
	})

	capped, err := NewWithLimits(Limits{MaxRows: 2}).Assess(ds, customerStandard())
	require.NoError(t, err)
	require.InDelta(t, 100.0, capped.OverallScore, 1e-9, "rows beyond the cap must not be scored")
	require.Equal(t, 2, capped.Metadata["assessed_rows"])
	require.Equal(t, 4, capped.Metadata["row_count"])

	full, err := New().Assess(ds, customerStandard())
	require.NoError(t, err)
	require.Less(t, full.OverallScore, 100.0)
	require.NotContains(t, full.Metadata, "assessed_rows")
}

func TestFailureSampleCap(t *testing.T) {
	ds := dataset.FromRecords([]map[string]interface{}{
		{"customer_id": "c1", "age": 900.0, "status": "active"},
		{"customer_id": "c2", "age": 901.0, "status": "active"},
		{"customer_id": "c3", "age": 902.0, "status": "active"},
		{"customer_id": "c4", "age": 903.0, "status": "active"},
	})

	result, err := NewWithLimits(Limits{SampleFailures: 2}).Assess(ds, customerStandard())
	require.NoError(t, err)

	found := false
	for _, f := range result.Failures {
		if f.FieldName == "age" && f.IssueType == "numeric_bounds" {
			found = true
			require.Equal(t, 4, f.AffectedRows)
			require.Len(t, f.SampleFailures, 2)
		}
	}
	require.True(t, found)
}

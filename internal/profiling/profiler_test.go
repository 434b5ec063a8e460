package profiling

import (
	"math"
	"testing"

	"adri/domain/dataset"
)

func numericColumn(values ...float64) dataset.Column {
	cells := make([]dataset.Value, len(values))
	for i, f := range values {
		cells[i] = dataset.NewFloatValue(f)
	}
	return dataset.Column{Name: "n", Values: cells}
}

func TestProfileSummary(t *testing.T) {
	ds := dataset.FromRecords([]map[string]interface{}{
		{"id": "a", "score": 1.0},
		{"id": "b", "score": 2.0},
		{"id": "c", "score": nil},
	})
	profile := Profile(ds, DefaultConfig())

	if profile.Summary.TotalRows != 3 || profile.Summary.ColumnCount != 2 {
		t.Errorf("summary shape wrong: %+v", profile.Summary)
	}
	// one null out of six cells
	want := 5.0 / 6.0
	if math.Abs(profile.Summary.Completeness-want) > 1e-9 {
		t.Errorf("completeness = %v, want %v", profile.Summary.Completeness, want)
	}

	fp, ok := profile.Field("score")
	if !ok {
		t.Fatal("score profile missing")
	}
	if fp.NullCount != 1 {
		t.Errorf("score null count = %d", fp.NullCount)
	}
	if fp.Numeric == nil || fp.Numeric.Min != 1 || fp.Numeric.Max != 2 {
		t.Errorf("numeric stats wrong: %+v", fp.Numeric)
	}
}

func TestProfileRespectsMaxRows(t *testing.T) {
	records := make([]map[string]interface{}, 50)
	for i := range records {
		records[i] = map[string]interface{}{"v": float64(i)}
	}
	profile := Profile(dataset.FromRecords(records), Config{MaxRows: 10})
	if profile.Summary.TotalRows != 10 {
		t.Errorf("cap not applied: %d rows profiled", profile.Summary.TotalRows)
	}
}

func TestDominantKindPromotions(t *testing.T) {
	tests := []struct {
		name   string
		values []dataset.Value
		want   dataset.Kind
	}{
		{
			"numeric strings promote to float",
			[]dataset.Value{dataset.NewStringValue("1"), dataset.NewStringValue("2.5")},
			dataset.KindFloat,
		},
		{
			"date strings promote to date",
			[]dataset.Value{dataset.NewStringValue("2024-01-01"), dataset.NewStringValue("2024-01-02")},
			dataset.KindDate,
		},
		{
			"mixed int and float widen to float",
			[]dataset.Value{dataset.NewIntValue(1), dataset.NewIntValue(2), dataset.NewFloatValue(2.5)},
			dataset.KindFloat,
		},
		{
			"mixed text stays string",
			[]dataset.Value{dataset.NewStringValue("1"), dataset.NewStringValue("abc")},
			dataset.KindString,
		},
		{
			"empty column defaults to string",
			nil,
			dataset.KindString,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DominantKind(tt.values); got != tt.want {
				t.Errorf("DominantKind = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNumericProfileQuartilesAndOutliers(t *testing.T) {
	col := numericColumn(1, 2, 3, 4, 5, 6, 7, 8, 100)
	fp := profileColumn(col)
	if fp.Numeric == nil {
		t.Fatal("numeric profile missing")
	}
	if fp.Numeric.OutlierCount != 1 {
		t.Errorf("expected 1 IQR outlier, got %d", fp.Numeric.OutlierCount)
	}
	if fp.Numeric.IQR <= 0 {
		t.Errorf("IQR should be positive, got %v", fp.Numeric.IQR)
	}
}

func TestTextProfilePatternDetection(t *testing.T) {
	cells := []dataset.Value{
		dataset.NewStringValue("ana@example.com"),
		dataset.NewStringValue("bo@example.org"),
		dataset.NewStringValue("cy@test.io"),
	}
	fp := profileColumn(dataset.Column{Name: "email", Values: cells})
	if fp.Text == nil {
		t.Fatal("text profile missing")
	}
	found := false
	for _, p := range fp.Text.Patterns {
		if p == "email" {
			found = true
		}
	}
	if !found {
		t.Errorf("email pattern not detected: %v", fp.Text.Patterns)
	}
}

func TestDistinctCounting(t *testing.T) {
	cells := []dataset.Value{
		dataset.NewStringValue("a"), dataset.NewStringValue("a"), dataset.NewStringValue("b"),
	}
	fp := profileColumn(dataset.Column{Name: "c", Values: cells})
	if fp.DistinctCount != 2 {
		t.Errorf("distinct = %d, want 2", fp.DistinctCount)
	}
}

package dataset

import (
	"testing"
)

func recordsFixture() []map[string]interface{} {
	return []map[string]interface{}{
		{"id": "a1", "amount": 10.0, "status": "active"},
		{"id": "a2", "amount": 20.5, "status": "inactive"},
		{"id": "a3", "amount": nil, "status": "active", "note": "late"},
	}
}

func TestFromRecordsColumnOrderDeterministic(t *testing.T) {
	first := FromRecords(recordsFixture()).ColumnNames()
	for i := 0; i < 20; i++ {
		names := FromRecords(recordsFixture()).ColumnNames()
		for j := range first {
			if names[j] != first[j] {
				t.Fatalf("column order varies across builds: %v vs %v", names, first)
			}
		}
	}
	// note appears first in the third record, so it must come last
	if first[len(first)-1] != "note" {
		t.Errorf("late-appearing column should sort last, got %v", first)
	}
}

func TestFromRecordsAbsentKeysBecomeNulls(t *testing.T) {
	ds := FromRecords(recordsFixture())
	col, ok := ds.Column("note")
	if !ok {
		t.Fatal("note column missing")
	}
	if col.NullCount() != 2 {
		t.Errorf("expected 2 nulls in note, got %d", col.NullCount())
	}
}

func TestNewRejectsRaggedColumns(t *testing.T) {
	_, err := New(
		Column{Name: "a", Values: []Value{NewIntValue(1)}},
		Column{Name: "b", Values: []Value{NewIntValue(1), NewIntValue(2)}},
	)
	if err == nil {
		t.Error("unequal column lengths should be rejected")
	}
}

func TestNewRejectsDuplicateNames(t *testing.T) {
	_, err := New(
		Column{Name: "a", Values: []Value{NewIntValue(1)}},
		Column{Name: "a", Values: []Value{NewIntValue(2)}},
	)
	if err == nil {
		t.Error("duplicate column names should be rejected")
	}
}

func TestFingerprintStability(t *testing.T) {
	a := FromRecords(recordsFixture())
	b := FromRecords(recordsFixture())
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical datasets must share a fingerprint")
	}

	changed := recordsFixture()
	changed[0]["amount"] = 11.0
	if a.Fingerprint() == FromRecords(changed).Fingerprint() {
		t.Error("changing a cell must change the fingerprint")
	}
}

func TestHead(t *testing.T) {
	ds := FromRecords(recordsFixture())
	if got := ds.Head(2).RowCount(); got != 2 {
		t.Errorf("Head(2) rows = %d", got)
	}
	if ds.Head(10) != ds {
		t.Error("Head beyond length should return the dataset itself")
	}
}

func TestFromRowsPadsShortRows(t *testing.T) {
	ds, err := FromRows([]string{"a", "b"}, [][]interface{}{{"x"}})
	if err != nil {
		t.Fatal(err)
	}
	col, _ := ds.Column("b")
	if !col.Values[0].IsNull() {
		t.Error("missing trailing cell should be null")
	}
}

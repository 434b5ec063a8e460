// Package profiling computes advisory summary statistics over a dataset.
// Results feed rule inference and generator explanations; scoring never
// consults them directly.
package profiling

import (
	"adri/domain/core"
	"adri/domain/dataset"
)

// Config defines the profiling parameters
type Config struct {
	MaxRows int `json:"max_rows"` // 0 means profile every row
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{MaxRows: 10000}
}

// DatasetProfile summarizes the whole table and each column
type DatasetProfile struct {
	Summary    TableSummary   `json:"summary"`
	Fields     []FieldProfile `json:"fields"`
	ComputedAt core.Timestamp `json:"computed_at"`
}

// Field returns a column's profile by name
func (p *DatasetProfile) Field(name string) (*FieldProfile, bool) {
	for i := range p.Fields {
		if p.Fields[i].Name == name {
			return &p.Fields[i], true
		}
	}
	return nil, false
}

// TableSummary carries table-level statistics
type TableSummary struct {
	TotalRows    int            `json:"total_rows"`
	ColumnCount  int            `json:"column_count"`
	TypeCounts   map[string]int `json:"type_counts"`
	MemoryBytes  int64          `json:"memory_bytes"` // rough estimate over canonical forms
	Completeness float64        `json:"completeness"` // non-null ratio over all cells
}

// FieldProfile contains the statistical profile of one column
type FieldProfile struct {
	Name          string          `json:"name"`
	Kind          dataset.Kind    `json:"kind"` // dominant inferred kind
	SampleSize    int             `json:"sample_size"`
	NullCount     int             `json:"null_count"`
	NullPct       float64         `json:"null_pct"`
	DistinctCount int             `json:"distinct_count"`
	DistinctPct   float64         `json:"distinct_pct"`
	Numeric       *NumericProfile `json:"numeric,omitempty"`
	Text          *TextProfile    `json:"text,omitempty"`
}

// NumericProfile contains statistics for numeric columns
type NumericProfile struct {
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
	StdDev       float64 `json:"std_dev"`
	Q1           float64 `json:"q1"`
	Q3           float64 `json:"q3"`
	IQR          float64 `json:"iqr"`
	OutlierCount int     `json:"outlier_count"` // IQR method
}

// TextProfile contains statistics for text columns
type TextProfile struct {
	MinLength int      `json:"min_length"`
	AvgLength float64  `json:"avg_length"`
	MaxLength int      `json:"max_length"`
	Patterns  []string `json:"patterns,omitempty"` // detected from {email, phone, date}
}

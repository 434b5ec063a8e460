// Package generation assembles a complete standard from a training dataset
// and enforces the training-pass guarantee: the generated standard always
// scores its own training data as passing.
package generation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"adri/domain/dataset"
	"adri/domain/standard"
	"adri/internal/inference"
	"adri/internal/profiling"
)

// Options configures standard generation
type Options struct {
	StandardID      string            `json:"standard_id"`   // Defaults to "<name>_standard"
	StandardName    string            `json:"standard_name"` // Human readable name
	Authority       string            `json:"authority"`
	OverallMinimum  float64           `json:"overall_minimum"`
	Profiling       profiling.Config  `json:"profiling"`
	Inference       inference.Options `json:"inference"`
}

// DefaultOptions returns sensible defaults
func DefaultOptions(name string) Options {
	return Options{
		StandardID:     sanitizeID(name) + "_standard",
		StandardName:   name,
		Authority:      "adri",
		OverallMinimum: 75,
		Profiling:      profiling.DefaultConfig(),
		Inference:      inference.DefaultOptions(),
	}
}

func sanitizeID(name string) string {
	id := strings.ToLower(strings.TrimSpace(name))
	id = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, id)
	if id == "" {
		id = "dataset"
	}
	return id
}

// Generator orchestrates profiling, inference and training-pass enforcement
type Generator struct {
	opts Options
}

// NewGenerator creates a generator with options
func NewGenerator(opts Options) *Generator {
	if opts.OverallMinimum == 0 {
		opts.OverallMinimum = 75
	}
	return &Generator{opts: opts}
}

// Generate produces a self-consistent standard from the training dataset.
// Composite cells were already flattened to canonical text at dataset
// construction, so every cell is a hashable scalar here.
func (g *Generator) Generate(ds *dataset.Dataset) (*standard.Standard, error) {
	if ds == nil || ds.ColumnCount() == 0 {
		return nil, fmt.Errorf("cannot generate a standard from an empty dataset")
	}

	profile := profiling.Profile(ds, g.opts.Profiling)
	pk := inference.DetectPrimaryKey(ds, g.opts.Inference)
	pkSet := make(map[string]bool, len(pk))
	for _, f := range pk {
		pkSet[f] = true
	}

	fields := make(map[string]*standard.FieldRule)
	explanations := make(map[string]*standard.FieldExplanation)
	hasDateField := false

	for _, col := range ds.Columns() {
		fp, _ := profile.Field(col.Name)
		inf := inference.InferField(fp, col, g.opts.Inference, pkSet[col.Name])
		fields[col.Name] = inf.Rule
		explanations[col.Name] = inf.Explanation
		if inf.Rule.Type == standard.TypeDate || inf.Rule.Type == standard.TypeDateTime {
			hasDateField = true
		}
	}

	std := &standard.Standard{
		Standards: standard.Identity{
			ID:          g.opts.StandardID,
			Name:        g.opts.StandardName,
			Version:     "1.0.0",
			Authority:   g.opts.Authority,
			Description: fmt.Sprintf("Generated from %d training rows", ds.RowCount()),
		},
		Requirements: standard.Requirements{
			OverallMinimum:        g.opts.OverallMinimum,
			FieldRequirements:     fields,
			DimensionRequirements: defaultDimensionRequirements(hasDateField),
		},
		Metadata: &standard.Metadata{
			GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
			GeneratedBy:  "adri standard generator",
			SourceRows:   ds.RowCount(),
			Explanations: explanations,
			Glossary:     explanationGlossary(),
		},
	}
	if len(pk) > 0 {
		std.RecordIdentification = &standard.RecordIdentification{
			PrimaryKeyFields: pk,
			Strategy:         "inferred",
		}
	}

	enforceTrainingPass(std, ds)

	if err := std.Validate(); err != nil {
		return nil, err
	}
	return std, nil
}

// defaultDimensionRequirements populates explicit, active rule weights for
// every dimension. Freshness starts zero-weighted unless date fields exist.
func defaultDimensionRequirements(hasDateField bool) map[string]standard.DimensionConfig {
	freshnessWeight := 0.0
	if hasDateField {
		freshnessWeight = 1.0
	}
	return map[string]standard.DimensionConfig{
		standard.DimValidity: {
			Weight: 1.0,
			Scoring: &standard.ScoringConfig{RuleWeights: map[string]float64{
				"type":           0.3,
				"allowed_values": 0.2,
				"pattern":        0.2,
				"length_bounds":  0.1,
				"numeric_bounds": 0.2,
			}},
		},
		standard.DimCompleteness: {
			Weight: 1.0,
			Scoring: &standard.ScoringConfig{RuleWeights: map[string]float64{
				"missing_required": 1.0,
			}},
		},
		standard.DimConsistency: {
			Weight: 1.0,
			Scoring: &standard.ScoringConfig{RuleWeights: map[string]float64{
				"primary_key_uniqueness": 1.0,
			}},
		},
		standard.DimFreshness: {
			Weight: 1.0,
			Scoring: &standard.ScoringConfig{RuleWeights: map[string]float64{
				"recency_window": freshnessWeight,
			}},
		},
		standard.DimPlausibility: {
			Weight: 1.0,
			Scoring: &standard.ScoringConfig{RuleWeights: map[string]float64{
				"statistical_outliers":    0.4,
				"categorical_frequency":   0.3,
				"business_logic":          0.15,
				"cross_field_consistency": 0.15,
			}},
		},
	}
}

func explanationGlossary() map[string]string {
	return map[string]string{
		"allowed_values": "Closed set of values the field may take",
		"numeric_bounds": "Inclusive numeric interval the field must fall in",
		"length_bounds":  "Inclusive code-point length interval of the rendered value",
		"pattern":        "Anchored regular expression the full value must match",
		"date_bounds":    "Inclusive date window the value must fall in",
		"coverage":       "Fraction of training rows with a non-null value",
		"iqr":            "Interquartile range, Q3 - Q1",
	}
}

// WriteStandard persists a standard as YAML, creating parent directories
func WriteStandard(path string, std *standard.Standard) error {
	data, err := std.Marshal()
	if err != nil {
		return fmt.Errorf("marshal standard: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create standard directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

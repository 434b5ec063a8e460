package standard

// The five quality dimensions. Each contributes at most 20 points to the
// overall score.
const (
	DimValidity     = "validity"
	DimCompleteness = "completeness"
	DimConsistency  = "consistency"
	DimFreshness    = "freshness"
	DimPlausibility = "plausibility"
)

// Dimensions lists the five dimensions in scoring order
var Dimensions = []string{DimValidity, DimCompleteness, DimConsistency, DimFreshness, DimPlausibility}

// MaxDimensionScore is the ceiling for a single dimension
const MaxDimensionScore = 20.0

// FieldType tags the expected runtime type of a field
type FieldType string

const (
	TypeString   FieldType = "string"
	TypeInteger  FieldType = "integer"
	TypeFloat    FieldType = "float"
	TypeBoolean  FieldType = "boolean"
	TypeDate     FieldType = "date"
	TypeDateTime FieldType = "datetime"
)

// Standard is the contract describing expected shape and quality of a dataset
type Standard struct {
	Standards            Identity              `yaml:"standards" json:"standards"`
	RecordIdentification *RecordIdentification `yaml:"record_identification,omitempty" json:"record_identification,omitempty"`
	Requirements         Requirements          `yaml:"requirements" json:"requirements"`
	Metadata             *Metadata             `yaml:"metadata,omitempty" json:"metadata,omitempty"`

	// Unknown top-level keys are preserved on load but ignored by scoring
	Extra map[string]interface{} `yaml:",inline" json:"-"`
}

// Identity names a standard
type Identity struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version" json:"version"`
	Authority   string `yaml:"authority,omitempty" json:"authority,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// RecordIdentification declares how rows are identified
type RecordIdentification struct {
	PrimaryKeyFields []string `yaml:"primary_key_fields" json:"primary_key_fields"`
	Strategy         string   `yaml:"strategy,omitempty" json:"strategy,omitempty"`
}

// Requirements carries the scored contract
type Requirements struct {
	OverallMinimum        float64                    `yaml:"overall_minimum" json:"overall_minimum"`
	FieldRequirements     map[string]*FieldRule      `yaml:"field_requirements" json:"field_requirements"`
	DimensionRequirements map[string]DimensionConfig `yaml:"dimension_requirements,omitempty" json:"dimension_requirements,omitempty"`
}

// FieldRule constrains a single field. Only the subset of constraints
// matching the type tag is meaningful; the rest are ignored by checkers.
type FieldRule struct {
	Type          FieldType     `yaml:"type" json:"type"`
	Nullable      bool          `yaml:"nullable" json:"nullable"`
	AllowedValues []interface{} `yaml:"allowed_values,omitempty" json:"allowed_values,omitempty"`
	MinValue      *float64      `yaml:"min_value,omitempty" json:"min_value,omitempty"`
	MaxValue      *float64      `yaml:"max_value,omitempty" json:"max_value,omitempty"`
	MinLength     *int          `yaml:"min_length,omitempty" json:"min_length,omitempty"`
	MaxLength     *int          `yaml:"max_length,omitempty" json:"max_length,omitempty"`
	Pattern       string        `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	AfterDate     string        `yaml:"after_date,omitempty" json:"after_date,omitempty"`
	BeforeDate    string        `yaml:"before_date,omitempty" json:"before_date,omitempty"`
	AfterDatetime string        `yaml:"after_datetime,omitempty" json:"after_datetime,omitempty"`
	BeforeDatetime string       `yaml:"before_datetime,omitempty" json:"before_datetime,omitempty"`
}

// HasNumericBounds reports whether a numeric range is active
func (r *FieldRule) HasNumericBounds() bool {
	return r.MinValue != nil || r.MaxValue != nil
}

// HasLengthBounds reports whether a length range is active
func (r *FieldRule) HasLengthBounds() bool {
	return r.MinLength != nil || r.MaxLength != nil
}

// HasDateBounds reports whether a date window is active
func (r *FieldRule) HasDateBounds() bool {
	return r.AfterDate != "" || r.BeforeDate != "" || r.AfterDatetime != "" || r.BeforeDatetime != ""
}

// Clone returns a deep copy so loaded standards stay immutable to consumers
func (r *FieldRule) Clone() *FieldRule {
	if r == nil {
		return nil
	}
	out := *r
	if r.AllowedValues != nil {
		out.AllowedValues = append([]interface{}(nil), r.AllowedValues...)
	}
	clonePtr := func(p *float64) *float64 {
		if p == nil {
			return nil
		}
		v := *p
		return &v
	}
	cloneInt := func(p *int) *int {
		if p == nil {
			return nil
		}
		v := *p
		return &v
	}
	out.MinValue = clonePtr(r.MinValue)
	out.MaxValue = clonePtr(r.MaxValue)
	out.MinLength = cloneInt(r.MinLength)
	out.MaxLength = cloneInt(r.MaxLength)
	return &out
}

// Clone deep-copies the scored parts of a standard. Metadata and Extra
// are shared; callers only ever override requirements.
func (s *Standard) Clone() *Standard {
	out := *s
	if s.RecordIdentification != nil {
		ri := *s.RecordIdentification
		ri.PrimaryKeyFields = append([]string(nil), s.RecordIdentification.PrimaryKeyFields...)
		out.RecordIdentification = &ri
	}
	if s.Requirements.FieldRequirements != nil {
		fields := make(map[string]*FieldRule, len(s.Requirements.FieldRequirements))
		for name, rule := range s.Requirements.FieldRequirements {
			fields[name] = rule.Clone()
		}
		out.Requirements.FieldRequirements = fields
	}
	if s.Requirements.DimensionRequirements != nil {
		dims := make(map[string]DimensionConfig, len(s.Requirements.DimensionRequirements))
		for name, dc := range s.Requirements.DimensionRequirements {
			dims[name] = dc
		}
		out.Requirements.DimensionRequirements = dims
	}
	return &out
}

// DimensionConfig tunes one dimension's contribution
type DimensionConfig struct {
	MinimumScore float64        `yaml:"minimum_score" json:"minimum_score"`
	Weight       float64        `yaml:"weight" json:"weight"`
	Scoring      *ScoringConfig `yaml:"scoring,omitempty" json:"scoring,omitempty"`
}

// ScoringConfig weights the rules inside a dimension
type ScoringConfig struct {
	RuleWeights    map[string]float64            `yaml:"rule_weights,omitempty" json:"rule_weights,omitempty"`
	FieldOverrides map[string]map[string]float64 `yaml:"field_overrides,omitempty" json:"field_overrides,omitempty"`
}

// RuleWeight returns the effective weight of a rule for a field, honoring
// per-field overrides, with a default when the dimension declares nothing.
func (c DimensionConfig) RuleWeight(field, rule string, fallback float64) float64 {
	if c.Scoring == nil {
		return fallback
	}
	if fo, ok := c.Scoring.FieldOverrides[field]; ok {
		if w, ok := fo[rule]; ok {
			return w
		}
	}
	if w, ok := c.Scoring.RuleWeights[rule]; ok {
		return w
	}
	return fallback
}

// Metadata carries generator provenance and per-field explanations
type Metadata struct {
	GeneratedAt  string                       `yaml:"generated_at,omitempty" json:"generated_at,omitempty"`
	GeneratedBy  string                       `yaml:"generated_by,omitempty" json:"generated_by,omitempty"`
	SourceRows   int                          `yaml:"source_rows,omitempty" json:"source_rows,omitempty"`
	Explanations map[string]*FieldExplanation `yaml:"explanations,omitempty" json:"explanations,omitempty"`
	Glossary     map[string]string            `yaml:"glossary,omitempty" json:"glossary,omitempty"`
}

// FieldExplanation records why each active rule was inferred
type FieldExplanation struct {
	Rules       map[string]RuleExplanation `yaml:"rules,omitempty" json:"rules,omitempty"`
	Adjustments []Adjustment               `yaml:"adjustments,omitempty" json:"adjustments,omitempty"`
}

// RuleExplanation carries the active values, supporting stats and rationale
type RuleExplanation struct {
	Active    map[string]interface{} `yaml:"active,omitempty" json:"active,omitempty"`
	Stats     map[string]interface{} `yaml:"stats,omitempty" json:"stats,omitempty"`
	Rationale string                 `yaml:"rationale,omitempty" json:"rationale,omitempty"`
}

// Adjustment records a training-pass relaxation
type Adjustment struct {
	Rule   string                 `yaml:"rule" json:"rule"`
	Action string                 `yaml:"action" json:"action"`
	Before map[string]interface{} `yaml:"before,omitempty" json:"before,omitempty"`
	After  map[string]interface{} `yaml:"after,omitempty" json:"after,omitempty"`
	Reason string                 `yaml:"reason" json:"reason"`
}

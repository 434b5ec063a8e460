package standard

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"adri/domain/core"
)

// Parse decodes YAML bytes into a validated Standard
func Parse(data []byte) (*Standard, error) {
	var std Standard
	if err := yaml.Unmarshal(data, &std); err != nil {
		return nil, core.NewInvalidStandardError("", fmt.Sprintf("yaml parse failure: %v", err))
	}
	if err := std.Validate(); err != nil {
		return nil, err
	}
	return &std, nil
}

// LoadFile reads and parses a standard from disk
func LoadFile(path string) (*Standard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", core.ErrStandardNotFound, path)
		}
		return nil, core.NewInvalidStandardError(path, err.Error())
	}
	std, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return std, nil
}

// Marshal renders the standard back to YAML
func (s *Standard) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Validate checks structural invariants: identity presence, finite numbers,
// percentages within [0,100], dimension minimums within [0,20].
func (s *Standard) Validate() error {
	if s.Standards.ID == "" {
		return core.NewInvalidStandardError(s.Standards.Name, "standards.id is required")
	}
	if s.Standards.Name == "" {
		return core.NewInvalidStandardError(s.Standards.ID, "standards.name is required")
	}
	if s.Standards.Version == "" {
		return core.NewInvalidStandardError(s.Standards.ID, "standards.version is required")
	}
	om := s.Requirements.OverallMinimum
	if math.IsNaN(om) || math.IsInf(om, 0) || om < 0 || om > 100 {
		return core.NewInvalidStandardError(s.Standards.ID,
			fmt.Sprintf("requirements.overall_minimum %v outside [0,100]", om))
	}
	for name, rule := range s.Requirements.FieldRequirements {
		if err := validateFieldRule(name, rule); err != nil {
			return core.NewInvalidStandardError(s.Standards.ID, err.Error())
		}
	}
	for dim, cfg := range s.Requirements.DimensionRequirements {
		if !isKnownDimension(dim) {
			return core.NewInvalidStandardError(s.Standards.ID, fmt.Sprintf("unknown dimension %q", dim))
		}
		if math.IsNaN(cfg.MinimumScore) || cfg.MinimumScore < 0 || cfg.MinimumScore > MaxDimensionScore {
			return core.NewInvalidStandardError(s.Standards.ID,
				fmt.Sprintf("dimension %s minimum_score %v outside [0,20]", dim, cfg.MinimumScore))
		}
		if math.IsNaN(cfg.Weight) || cfg.Weight < 0 {
			return core.NewInvalidStandardError(s.Standards.ID,
				fmt.Sprintf("dimension %s weight %v must be >= 0", dim, cfg.Weight))
		}
		if cfg.Scoring != nil {
			for rule, w := range cfg.Scoring.RuleWeights {
				if math.IsNaN(w) || w < 0 || w > 1 {
					return core.NewInvalidStandardError(s.Standards.ID,
						fmt.Sprintf("dimension %s rule_weight %s=%v outside [0,1]", dim, rule, w))
				}
			}
		}
	}
	return nil
}

func validateFieldRule(name string, rule *FieldRule) error {
	if rule == nil {
		return fmt.Errorf("field %s: empty rule", name)
	}
	switch rule.Type {
	case TypeString, TypeInteger, TypeFloat, TypeBoolean, TypeDate, TypeDateTime:
	default:
		return fmt.Errorf("field %s: unknown type %q", name, rule.Type)
	}
	for _, p := range []*float64{rule.MinValue, rule.MaxValue} {
		if p != nil && (math.IsNaN(*p) || math.IsInf(*p, 0)) {
			return fmt.Errorf("field %s: numeric bound must be finite", name)
		}
	}
	for _, p := range []*int{rule.MinLength, rule.MaxLength} {
		if p != nil && *p < 0 {
			return fmt.Errorf("field %s: length bound must be >= 0", name)
		}
	}
	return nil
}

func isKnownDimension(dim string) bool {
	for _, d := range Dimensions {
		if d == dim {
			return true
		}
	}
	return false
}

// PrimaryKeyFields returns the declared PK columns, if any
func (s *Standard) PrimaryKeyFields() []string {
	if s.RecordIdentification == nil {
		return nil
	}
	return s.RecordIdentification.PrimaryKeyFields
}

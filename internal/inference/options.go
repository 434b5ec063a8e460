// Package inference synthesizes the smallest field rules that training data
// satisfies and that usefully constrain future data.
package inference

import "strings"

// RangeStrategy selects how numeric bounds are derived
type RangeStrategy string

const (
	RangeSpan     RangeStrategy = "span"
	RangeIQR      RangeStrategy = "iqr"
	RangeQuantile RangeStrategy = "quantile"
	RangeMAD      RangeStrategy = "mad"
)

// EnumStrategy selects how allowed_values sets are derived
type EnumStrategy string

const (
	EnumCoverage EnumStrategy = "coverage"
	EnumTolerant EnumStrategy = "tolerant"
)

// Options defines the inference thresholds and strategies
type Options struct {
	EnumStrategy    EnumStrategy  `json:"enum_strategy"`
	EnumMaxUnique   int           `json:"enum_max_unique"`   // Max distinct values for an enum
	EnumMinCoverage float64       `json:"enum_min_coverage"` // Min non-null coverage for an enum
	EnumTopK        int           `json:"enum_top_k"`        // Tolerant strategy accepted set cap

	RangeStrategy RangeStrategy `json:"range_strategy"`
	SpanMargin    float64       `json:"span_margin"`  // Fractional widening for span strategy
	IQRFactor     float64       `json:"iqr_factor"`   // k in [Q1 - k*IQR, Q3 + k*IQR]
	QuantileLow   float64       `json:"quantile_low"`
	QuantileHigh  float64       `json:"quantile_high"`
	MADFactor     float64       `json:"mad_factor"` // k in [median - k*MAD, median + k*MAD]

	LengthWidening float64 `json:"length_widening"` // Symmetric fractional widening of length bounds
	DateMarginDays int     `json:"date_margin_days"`

	MaxPKComboSize int `json:"max_pk_combo_size"`
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		EnumStrategy:    EnumCoverage,
		EnumMaxUnique:   20,
		EnumMinCoverage: 0.8,
		EnumTopK:        10,
		RangeStrategy:   RangeSpan,
		SpanMargin:      0.10,
		IQRFactor:       1.5,
		QuantileLow:     0.005,
		QuantileHigh:    0.995,
		MADFactor:       3.0,
		LengthWidening:  0,
		DateMarginDays:  0,
		MaxPKComboSize:  3,
	}
}

// idLikeTokens flags column names that identify records rather than carry
// categorical meaning; enums are suppressed for them.
var idLikeTokens = []string{"id", "key", "code", "number", "num", "uuid", "guid"}

// IsIDLike reports whether a column name looks like an identifier
func IsIDLike(name string) bool {
	lower := strings.ToLower(name)
	for _, tok := range idLikeTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

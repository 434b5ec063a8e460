package inference

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/montanaflynn/stats"

	"adri/domain/dataset"
	"adri/domain/standard"
	"adri/internal/profiling"
)

// emailRegex is the only canned pattern inference emits; it is emitted when
// every non-null value matches.
const emailRegex = `[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`

var emailMatcher = regexp.MustCompile(`^(?:` + emailRegex + `)$`)

// FieldInference pairs a synthesized rule with its explanation
type FieldInference struct {
	Rule        *standard.FieldRule
	Explanation *standard.FieldExplanation
}

// InferField synthesizes a FieldRule from a column's profile and raw cells.
// isPK suppresses enum inference for primary-key columns.
func InferField(fp *profiling.FieldProfile, col dataset.Column, opts Options, isPK bool) FieldInference {
	nonNull := col.NonNull()

	rule := &standard.FieldRule{
		Type:     typeTag(fp.Kind),
		Nullable: fp.NullCount > 0,
	}
	expl := &standard.FieldExplanation{Rules: make(map[string]standard.RuleExplanation)}

	expl.Rules["type"] = standard.RuleExplanation{
		Active:    map[string]interface{}{"type": string(rule.Type), "nullable": rule.Nullable},
		Stats:     map[string]interface{}{"null_count": fp.NullCount, "sample_size": fp.SampleSize},
		Rationale: fmt.Sprintf("Narrowest tag for the observed values is %s; %d of %d training values were null", rule.Type, fp.NullCount, fp.SampleSize),
	}

	if enum := inferEnum(fp, nonNull, opts, isPK); enum != nil {
		rule.AllowedValues = enum.values
		expl.Rules["allowed_values"] = enum.explanation
	}

	switch rule.Type {
	case standard.TypeInteger, standard.TypeFloat:
		if r := inferRange(nonNull, opts); r != nil {
			rule.MinValue = &r.min
			rule.MaxValue = &r.max
			expl.Rules["numeric_bounds"] = r.explanation
		}
	case standard.TypeString:
		if l := inferLengths(nonNull, opts); l != nil {
			rule.MinLength = &l.min
			rule.MaxLength = &l.max
			expl.Rules["length_bounds"] = l.explanation
		}
		if p := inferPattern(nonNull); p != nil {
			rule.Pattern = p.pattern
			expl.Rules["pattern"] = p.explanation
		}
	case standard.TypeDate, standard.TypeDateTime:
		if w := inferDateWindow(nonNull, rule.Type, opts); w != nil {
			if rule.Type == standard.TypeDate {
				rule.AfterDate = w.after
				rule.BeforeDate = w.before
			} else {
				rule.AfterDatetime = w.after
				rule.BeforeDatetime = w.before
			}
			expl.Rules["date_bounds"] = w.explanation
		}
	}

	return FieldInference{Rule: rule, Explanation: expl}
}

func typeTag(kind dataset.Kind) standard.FieldType {
	switch kind {
	case dataset.KindBool:
		return standard.TypeBoolean
	case dataset.KindInt:
		return standard.TypeInteger
	case dataset.KindFloat:
		return standard.TypeFloat
	case dataset.KindDate:
		return standard.TypeDate
	case dataset.KindDateTime:
		return standard.TypeDateTime
	default:
		return standard.TypeString
	}
}

type enumResult struct {
	values      []interface{}
	explanation standard.RuleExplanation
}

// inferEnum derives allowed_values for string/integer columns that are not
// primary keys and whose name is not id-like.
func inferEnum(fp *profiling.FieldProfile, nonNull []dataset.Value, opts Options, isPK bool) *enumResult {
	kind := typeTag(fp.Kind)
	if kind != standard.TypeString && kind != standard.TypeInteger {
		return nil
	}
	if isPK || IsIDLike(fp.Name) {
		return nil
	}
	if len(nonNull) == 0 {
		return nil
	}

	freq := make(map[string]int)
	order := make([]string, 0)
	for _, v := range nonNull {
		c := v.Canonical()
		if _, seen := freq[c]; !seen {
			order = append(order, c)
		}
		freq[c]++
	}
	coverage := float64(len(nonNull)) / float64(fp.SampleSize)

	var accepted []string
	switch opts.EnumStrategy {
	case EnumTolerant:
		// Walk values by descending frequency until cumulative coverage is met
		sorted := append([]string(nil), order...)
		sort.SliceStable(sorted, func(i, j int) bool { return freq[sorted[i]] > freq[sorted[j]] })
		cum := 0
		for _, c := range sorted {
			accepted = append(accepted, c)
			cum += freq[c]
			if float64(cum)/float64(fp.SampleSize) >= opts.EnumMinCoverage {
				break
			}
		}
		if float64(cum)/float64(fp.SampleSize) < opts.EnumMinCoverage ||
			len(accepted) > opts.EnumTopK || len(accepted) > opts.EnumMaxUnique {
			return nil
		}
	default: // coverage
		if len(freq) > opts.EnumMaxUnique || coverage < opts.EnumMinCoverage {
			return nil
		}
		accepted = order
	}

	sort.Strings(accepted)
	values := make([]interface{}, len(accepted))
	for i, c := range accepted {
		if kind == standard.TypeInteger {
			if n, err := strconv.ParseInt(c, 10, 64); err == nil {
				values[i] = n
				continue
			}
		}
		values[i] = c
	}

	return &enumResult{
		values: values,
		explanation: standard.RuleExplanation{
			Active: map[string]interface{}{"allowed_values": values},
			Stats: map[string]interface{}{
				"distinct_count": len(freq),
				"coverage":       coverage,
				"strategy":       string(opts.EnumStrategy),
			},
			Rationale: fmt.Sprintf("%d distinct values cover %.0f%% of training rows", len(accepted), coverage*100),
		},
	}
}

type rangeResult struct {
	min, max    float64
	explanation standard.RuleExplanation
}

// inferRange derives numeric bounds via the configured strategy. Strategies
// other than span are outward-clamped to the observed extremes so the
// training data always passes.
func inferRange(nonNull []dataset.Value, opts Options) *rangeResult {
	data := profiling.Floats(nonNull)
	if len(data) == 0 {
		return nil
	}
	obsMin, _ := stats.Min(data)
	obsMax, _ := stats.Max(data)

	var lo, hi float64
	strategy := opts.RangeStrategy
	switch strategy {
	case RangeIQR:
		q1, _ := stats.Percentile(data, 25)
		q3, _ := stats.Percentile(data, 75)
		iqr := q3 - q1
		if iqr == 0 {
			lo, hi = spanBounds(obsMin, obsMax, opts.SpanMargin)
			strategy = RangeSpan
		} else {
			lo, hi = q1-opts.IQRFactor*iqr, q3+opts.IQRFactor*iqr
		}
	case RangeQuantile:
		lo, _ = stats.Percentile(data, opts.QuantileLow*100)
		hi, _ = stats.Percentile(data, opts.QuantileHigh*100)
	case RangeMAD:
		median, _ := stats.Median(data)
		mad, _ := stats.MedianAbsoluteDeviation(data)
		lo, hi = median-opts.MADFactor*mad, median+opts.MADFactor*mad
	default:
		lo, hi = spanBounds(obsMin, obsMax, opts.SpanMargin)
		strategy = RangeSpan
	}

	// Outward clamp: bounds always include observed min/max
	lo = math.Min(lo, obsMin)
	hi = math.Max(hi, obsMax)

	return &rangeResult{
		min: lo,
		max: hi,
		explanation: standard.RuleExplanation{
			Active: map[string]interface{}{"min_value": lo, "max_value": hi},
			Stats: map[string]interface{}{
				"observed_min": obsMin,
				"observed_max": obsMax,
				"strategy":     string(strategy),
			},
			Rationale: fmt.Sprintf("Bounds derived with the %s strategy from observed range [%v, %v]", strategy, obsMin, obsMax),
		},
	}
}

func spanBounds(min, max, margin float64) (float64, float64) {
	span := max - min
	if span == 0 {
		widen := margin * math.Abs(min)
		if widen == 0 {
			widen = 1.0
		}
		return min - widen, max + widen
	}
	return min - margin*span, max + margin*span
}

type lengthResult struct {
	min, max    int
	explanation standard.RuleExplanation
}

// inferLengths always emits observed extremes, optionally widened
func inferLengths(nonNull []dataset.Value, opts Options) *lengthResult {
	if len(nonNull) == 0 {
		return nil
	}
	minLen := int(^uint(0) >> 1)
	maxLen := 0
	for _, v := range nonNull {
		n := utf8.RuneCountInString(v.Canonical())
		if n < minLen {
			minLen = n
		}
		if n > maxLen {
			maxLen = n
		}
	}
	lo, hi := minLen, maxLen
	if opts.LengthWidening > 0 {
		delta := int(math.Ceil(opts.LengthWidening * float64(maxLen-minLen)))
		lo = minLen - delta
		if lo < 0 {
			lo = 0
		}
		hi = maxLen + delta
	}
	return &lengthResult{
		min: lo,
		max: hi,
		explanation: standard.RuleExplanation{
			Active: map[string]interface{}{"min_length": lo, "max_length": hi},
			Stats:  map[string]interface{}{"observed_min": minLen, "observed_max": maxLen},
			Rationale: fmt.Sprintf("Observed lengths span [%d, %d] code points", minLen, maxLen),
		},
	}
}

type patternResult struct {
	pattern     string
	explanation standard.RuleExplanation
}

// inferPattern emits a canned pattern only when it matches every non-null value
func inferPattern(nonNull []dataset.Value) *patternResult {
	if len(nonNull) == 0 {
		return nil
	}
	for _, v := range nonNull {
		if !emailMatcher.MatchString(v.Canonical()) {
			return nil
		}
	}
	return &patternResult{
		pattern: emailRegex,
		explanation: standard.RuleExplanation{
			Active: map[string]interface{}{"pattern": emailRegex},
			Stats:  map[string]interface{}{"match_rate": 1.0},
			Rationale: "Every non-null training value matches the e-mail pattern",
		},
	}
}

type dateWindowResult struct {
	after, before string
	explanation   standard.RuleExplanation
}

// inferDateWindow derives an inclusive [min - margin, max + margin] window
func inferDateWindow(nonNull []dataset.Value, tag standard.FieldType, opts Options) *dateWindowResult {
	var minT, maxT time.Time
	found := false
	for _, v := range nonNull {
		t, ok := v.AsTime()
		if !ok {
			continue
		}
		if !found {
			minT, maxT = t, t
			found = true
			continue
		}
		if t.Before(minT) {
			minT = t
		}
		if t.After(maxT) {
			maxT = t
		}
	}
	if !found {
		return nil
	}

	margin := time.Duration(opts.DateMarginDays) * 24 * time.Hour
	after := minT.Add(-margin)
	before := maxT.Add(margin)

	layout := dataset.DateLayout
	if tag == standard.TypeDateTime {
		layout = time.RFC3339
	}
	return &dateWindowResult{
		after:  after.Format(layout),
		before: before.Format(layout),
		explanation: standard.RuleExplanation{
			Active: map[string]interface{}{"after": after.Format(layout), "before": before.Format(layout)},
			Stats: map[string]interface{}{
				"observed_min": minT.Format(layout),
				"observed_max": maxT.Format(layout),
				"margin_days":  opts.DateMarginDays,
			},
			Rationale: fmt.Sprintf("Observed dates span [%s, %s]", minT.Format(layout), maxT.Format(layout)),
		},
	}
}

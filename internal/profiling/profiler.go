package profiling

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"adri/domain/core"
	"adri/domain/dataset"
)

// Detected text patterns. Each must cover at least patternCoverage of the
// non-null values to be reported.
const patternCoverage = 0.95

var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ().\-]{6,}$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}([T ].*)?$`)
)

// Profile analyzes a dataset, optionally capped to config.MaxRows rows
func Profile(ds *dataset.Dataset, config Config) *DatasetProfile {
	if config.MaxRows > 0 && ds.RowCount() > config.MaxRows {
		ds = ds.Head(config.MaxRows)
	}

	profile := &DatasetProfile{
		Summary: TableSummary{
			TotalRows:   ds.RowCount(),
			ColumnCount: ds.ColumnCount(),
			TypeCounts:  make(map[string]int),
		},
		ComputedAt: core.Now(),
	}

	totalCells := 0
	nonNullCells := 0
	var memory int64

	for _, col := range ds.Columns() {
		fp := profileColumn(col)
		profile.Fields = append(profile.Fields, fp)
		profile.Summary.TypeCounts[string(fp.Kind)]++
		totalCells += len(col.Values)
		nonNullCells += len(col.Values) - fp.NullCount
		for _, v := range col.Values {
			memory += int64(len(v.Canonical())) + 16
		}
	}

	profile.Summary.MemoryBytes = memory
	if totalCells > 0 {
		profile.Summary.Completeness = float64(nonNullCells) / float64(totalCells)
	} else {
		profile.Summary.Completeness = 1.0
	}
	return profile
}

func profileColumn(col dataset.Column) FieldProfile {
	total := len(col.Values)
	nonNull := col.NonNull()
	nullCount := total - len(nonNull)

	fp := FieldProfile{
		Name:       col.Name,
		Kind:       DominantKind(nonNull),
		SampleSize: total,
		NullCount:  nullCount,
	}
	if total > 0 {
		fp.NullPct = float64(nullCount) / float64(total) * 100
	}

	distinct := make(map[string]struct{}, len(nonNull))
	for _, v := range nonNull {
		distinct[v.Canonical()] = struct{}{}
	}
	fp.DistinctCount = len(distinct)
	if len(nonNull) > 0 {
		fp.DistinctPct = float64(len(distinct)) / float64(len(nonNull)) * 100
	}

	switch fp.Kind {
	case dataset.KindInt, dataset.KindFloat:
		fp.Numeric = numericProfile(nonNull)
	case dataset.KindString:
		fp.Text = textProfile(nonNull)
	}
	return fp
}

// DominantKind infers the dominant value kind of a column. Object-like
// columns whose values all coerce numerically are treated as float; columns
// dominated by the ISO date pattern are treated as date.
func DominantKind(values []dataset.Value) dataset.Kind {
	if len(values) == 0 {
		return dataset.KindString
	}

	counts := make(map[dataset.Kind]int)
	numericOK := 0
	dateOK := 0
	for _, v := range values {
		counts[v.Kind]++
		if _, ok := v.AsFloat(); ok && v.Kind != dataset.KindBool {
			numericOK++
		}
		if _, ok := v.AsTime(); ok {
			dateOK++
		}
	}

	var best dataset.Kind
	bestN := -1
	for _, k := range []dataset.Kind{dataset.KindBool, dataset.KindInt, dataset.KindFloat, dataset.KindDate, dataset.KindDateTime, dataset.KindString} {
		if counts[k] > bestN {
			best, bestN = k, counts[k]
		}
	}

	if best == dataset.KindString {
		if numericOK == len(values) {
			return dataset.KindFloat
		}
		if dateOK == len(values) {
			return dataset.KindDate
		}
	}
	// Mixed int/float columns widen to float
	if best == dataset.KindInt && counts[dataset.KindFloat] > 0 {
		return dataset.KindFloat
	}
	return best
}

// Floats extracts the coercible numeric values of a column
func Floats(values []dataset.Value) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := v.AsFloat(); ok && v.Kind != dataset.KindBool {
			out = append(out, f)
		}
	}
	return out
}

func numericProfile(values []dataset.Value) *NumericProfile {
	data := Floats(values)
	if len(data) == 0 {
		return nil
	}

	min, _ := stats.Min(data)
	max, _ := stats.Max(data)
	median, _ := stats.Median(data)
	q1, _ := stats.Percentile(data, 25)
	q3, _ := stats.Percentile(data, 75)
	mean, std := stat.MeanStdDev(data, nil)
	if len(data) == 1 {
		std = 0
	}

	np := &NumericProfile{
		Min:    min,
		Max:    max,
		Mean:   mean,
		Median: median,
		StdDev: std,
		Q1:     q1,
		Q3:     q3,
		IQR:    q3 - q1,
	}

	lower := q1 - 1.5*np.IQR
	upper := q3 + 1.5*np.IQR
	for _, f := range data {
		if f < lower || f > upper {
			np.OutlierCount++
		}
	}
	return np
}

func textProfile(values []dataset.Value) *TextProfile {
	if len(values) == 0 {
		return nil
	}
	tp := &TextProfile{MinLength: int(^uint(0) >> 1)}
	totalLen := 0
	emailN, phoneN, dateN := 0, 0, 0
	for _, v := range values {
		s := v.Canonical()
		n := utf8.RuneCountInString(s)
		totalLen += n
		if n < tp.MinLength {
			tp.MinLength = n
		}
		if n > tp.MaxLength {
			tp.MaxLength = n
		}
		trimmed := strings.TrimSpace(s)
		if emailPattern.MatchString(trimmed) {
			emailN++
		}
		if phonePattern.MatchString(trimmed) {
			phoneN++
		}
		if datePattern.MatchString(trimmed) {
			dateN++
		}
	}
	tp.AvgLength = float64(totalLen) / float64(len(values))

	threshold := int(patternCoverage * float64(len(values)))
	if threshold < 1 {
		threshold = 1
	}
	if emailN >= threshold {
		tp.Patterns = append(tp.Patterns, "email")
	}
	if phoneN >= threshold {
		tp.Patterns = append(tp.Patterns, "phone")
	}
	if dateN >= threshold {
		tp.Patterns = append(tp.Patterns, "date")
	}
	return tp
}

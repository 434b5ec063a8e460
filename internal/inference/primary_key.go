package inference

import (
	"adri/domain/dataset"
)

// DetectPrimaryKey finds one or more columns whose combined values are unique
// and non-null across all rows. Preference order: a single id-like column,
// then ordered combinations up to MaxPKComboSize (id-like columns first,
// then all columns). Falls back to the first column for non-empty tables.
func DetectPrimaryKey(ds *dataset.Dataset, opts Options) []string {
	if ds.RowCount() == 0 || ds.ColumnCount() == 0 {
		return nil
	}

	names := ds.ColumnNames()
	var idLike, rest []string
	for _, n := range names {
		if IsIDLike(n) {
			idLike = append(idLike, n)
		} else {
			rest = append(rest, n)
		}
	}

	for _, n := range idLike {
		if uniqueNonNull(ds, []string{n}) {
			return []string{n}
		}
	}

	ordered := append(append([]string(nil), idLike...), rest...)
	maxSize := opts.MaxPKComboSize
	if maxSize < 1 {
		maxSize = 1
	}
	for size := 1; size <= maxSize && size <= len(ordered); size++ {
		if combo := findCombo(ds, ordered, size); combo != nil {
			return combo
		}
	}

	return []string{names[0]}
}

// findCombo tries ordered combinations of the given size
func findCombo(ds *dataset.Dataset, names []string, size int) []string {
	combo := make([]string, size)
	var walk func(start, depth int) []string
	walk = func(start, depth int) []string {
		if depth == size {
			if uniqueNonNull(ds, combo) {
				return append([]string(nil), combo...)
			}
			return nil
		}
		for i := start; i < len(names); i++ {
			combo[depth] = names[i]
			if found := walk(i+1, depth+1); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(0, 0)
}

// uniqueNonNull reports whether the column set is non-null and unique per row
func uniqueNonNull(ds *dataset.Dataset, names []string) bool {
	cols := make([]dataset.Column, len(names))
	for i, n := range names {
		col, ok := ds.Column(n)
		if !ok {
			return false
		}
		cols[i] = col
	}

	seen := make(map[string]struct{}, ds.RowCount())
	for r := 0; r < ds.RowCount(); r++ {
		key := ""
		for _, col := range cols {
			v := col.Values[r]
			if v.IsNull() {
				return false
			}
			key += string(v.Kind) + "\x1f" + v.Canonical() + "\x1e"
		}
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
	}
	return true
}

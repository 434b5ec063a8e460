package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"adri/domain/core"
)

// Column is a named, ordered sequence of cells
type Column struct {
	Name   string  `json:"name"`
	Values []Value `json:"values"`
}

// NullCount returns the number of null cells in the column
func (c Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if v.IsNull() {
			n++
		}
	}
	return n
}

// NonNull returns the column's non-null cells in order
func (c Column) NonNull() []Value {
	out := make([]Value, 0, len(c.Values))
	for _, v := range c.Values {
		if !v.IsNull() {
			out = append(out, v)
		}
	}
	return out
}

// Dataset is an ordered collection of equal-length columns
type Dataset struct {
	columns []Column
	index   map[string]int
	rows    int
}

// New creates a dataset from columns, enforcing equal lengths
func New(columns ...Column) (*Dataset, error) {
	ds := &Dataset{index: make(map[string]int, len(columns))}
	for i, col := range columns {
		if i == 0 {
			ds.rows = len(col.Values)
		} else if len(col.Values) != ds.rows {
			return nil, fmt.Errorf("column %s has %d rows, expected %d", col.Name, len(col.Values), ds.rows)
		}
		if _, dup := ds.index[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %s", col.Name)
		}
		ds.index[col.Name] = i
		ds.columns = append(ds.columns, col)
	}
	return ds, nil
}

// FromRecords builds a dataset from row-oriented maps. Column order follows
// first appearance across the records; absent keys become nulls.
func FromRecords(records []map[string]interface{}) *Dataset {
	var order []string
	seen := make(map[string]bool)
	for _, rec := range records {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				order = append(order, k)
			}
		}
	}
	// First-appearance order is ambiguous for Go maps within a single record;
	// sort keys introduced by the same record for determinism.
	sortStable(order, records)

	cols := make([]Column, len(order))
	for i, name := range order {
		values := make([]Value, len(records))
		for r, rec := range records {
			raw, ok := rec[name]
			if !ok {
				values[r] = NewNullValue()
				continue
			}
			values[r] = FromAny(raw)
		}
		cols[i] = Column{Name: name, Values: values}
	}
	ds, _ := New(cols...)
	return ds
}

func sortStable(order []string, records []map[string]interface{}) {
	first := make(map[string]int, len(order))
	for _, name := range order {
		for r, rec := range records {
			if _, ok := rec[name]; ok {
				first[name] = r
				break
			}
		}
	}
	// Insertion sort keeps the list tiny-friendly and deterministic
	for i := 1; i < len(order); i++ {
		for j := i; j > 0; j-- {
			a, b := order[j-1], order[j]
			if first[a] > first[b] || (first[a] == first[b] && a > b) {
				order[j-1], order[j] = b, a
			} else {
				break
			}
		}
	}
}

// FromRows builds a dataset from a header plus row-major raw cells
func FromRows(header []string, rows [][]interface{}) (*Dataset, error) {
	cols := make([]Column, len(header))
	for i, name := range header {
		values := make([]Value, len(rows))
		for r, row := range rows {
			if i < len(row) {
				values[r] = FromAny(row[i])
			} else {
				values[r] = NewNullValue()
			}
		}
		cols[i] = Column{Name: name, Values: values}
	}
	return New(cols...)
}

// RowCount returns the number of rows
func (d *Dataset) RowCount() int { return d.rows }

// ColumnCount returns the number of columns
func (d *Dataset) ColumnCount() int { return len(d.columns) }

// ColumnNames returns column names in declaration order
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns a column by name
func (d *Dataset) Column(name string) (Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, false
	}
	return d.columns[i], true
}

// HasColumn reports whether the dataset contains the named column
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Columns returns all columns in order
func (d *Dataset) Columns() []Column { return d.columns }

// Head returns a dataset containing at most n leading rows
func (d *Dataset) Head(n int) *Dataset {
	if n >= d.rows {
		return d
	}
	cols := make([]Column, len(d.columns))
	for i, c := range d.columns {
		cols[i] = Column{Name: c.Name, Values: c.Values[:n]}
	}
	out, _ := New(cols...)
	return out
}

// Row returns the cells of row r keyed by column name
func (d *Dataset) Row(r int) map[string]Value {
	out := make(map[string]Value, len(d.columns))
	for _, c := range d.columns {
		out[c.Name] = c.Values[r]
	}
	return out
}

// Fingerprint derives a short stable hash over the dataset shape and contents
func (d *Dataset) Fingerprint() core.Fingerprint {
	var b strings.Builder
	b.WriteString(strconv.Itoa(d.rows))
	b.WriteByte('x')
	b.WriteString(strconv.Itoa(len(d.columns)))
	for _, c := range d.columns {
		b.WriteByte('|')
		b.WriteString(c.Name)
		for _, v := range c.Values {
			b.WriteByte(';')
			b.WriteString(string(v.Kind))
			b.WriteByte('=')
			b.WriteString(v.Canonical())
		}
	}
	return core.NewFingerprint([]byte(b.String()))
}

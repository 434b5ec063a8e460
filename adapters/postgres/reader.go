// Package postgres materializes SQL query results into datasets so
// database-resident tables can be assessed like files.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"adri/domain/dataset"
)

// Reader runs queries against an open connection pool
type Reader struct {
	db *sqlx.DB
}

// NewReader wraps an existing pool
func NewReader(db *sqlx.DB) *Reader {
	return &Reader{db: db}
}

// Connect opens a pool with sane pool limits and verifies connectivity
func Connect(ctx context.Context, dsn string) (*Reader, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Reader{db: db}, nil
}

// Close releases the pool
func (r *Reader) Close() error { return r.db.Close() }

// Query materializes a result set into a dataset. Column order follows
// the select list; SQL NULLs become dataset nulls.
func (r *Reader) Query(ctx context.Context, query string, args ...interface{}) (*dataset.Dataset, error) {
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var data [][]interface{}
	for rows.Next() {
		record, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make([]interface{}, len(header))
		for i := range header {
			if i < len(record) {
				row[i] = normalizeSQLValue(record[i])
			}
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("query returned no rows")
	}

	ds, err := dataset.FromRows(header, data)
	if err != nil {
		return nil, fmt.Errorf("build dataset: %w", err)
	}
	log.Debug().Int("rows", ds.RowCount()).Int("columns", ds.ColumnCount()).
		Msg("query materialized")
	return ds, nil
}

// Table materializes an entire table, optionally capped
func (r *Reader) Table(ctx context.Context, table string, limit int) (*dataset.Dataset, error) {
	query := fmt.Sprintf("SELECT * FROM %s", pqQuoteIdentifier(table))
	if limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, limit)
	}
	return r.Query(ctx, query)
}

// normalizeSQLValue maps driver types onto what dataset construction
// understands. Byte slices arrive for text columns under lib/pq.
func normalizeSQLValue(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(t)
	default:
		return v
	}
}

// pqQuoteIdentifier quotes a table name, handling schema qualification
func pqQuoteIdentifier(name string) string {
	parts := splitQualified(name)
	for i, p := range parts {
		parts[i] = `"` + p + `"`
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += "." + p
	}
	return out
}

func splitQualified(name string) []string {
	var parts []string
	current := ""
	for _, r := range name {
		if r == '.' {
			parts = append(parts, current)
			current = ""
			continue
		}
		if r != '"' {
			current += string(r)
		}
	}
	return append(parts, current)
}

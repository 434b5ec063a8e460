// Package ports declares the boundary interfaces between the scoring
// core and its adapters. Adapters return concrete readers; consumers
// accept these interfaces.
package ports

import (
	"context"

	"adri/domain/dataset"
	"adri/domain/standard"
)

// DatasetReader loads a complete dataset from some source
type DatasetReader interface {
	Read() (*dataset.Dataset, error)
}

// QueryReader materializes datasets from parameterized queries
type QueryReader interface {
	Query(ctx context.Context, query string, args ...interface{}) (*dataset.Dataset, error)
}

// StandardLoader resolves standards by name
type StandardLoader interface {
	Load(name string) (*standard.Standard, error)
	Exists(name string) bool
	List() ([]string, error)
}

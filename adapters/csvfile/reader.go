// Package csvfile reads delimited text files into datasets.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"adri/domain/dataset"
)

// Reader loads a CSV file
type Reader struct {
	filePath string
	comma    rune
}

// NewReader targets a comma-separated file
func NewReader(filePath string) *Reader {
	return &Reader{filePath: filePath, comma: ','}
}

// NewDelimitedReader targets a file with a custom delimiter
func NewDelimitedReader(filePath string, comma rune) *Reader {
	return &Reader{filePath: filePath, comma: comma}
}

// Read loads the file into a dataset. The first record is the header;
// empty cells become nulls. Short records are padded with nulls.
func (r *Reader) Read() (*dataset.Dataset, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return r.read(f)
}

func (r *Reader) read(src io.Reader) (*dataset.Dataset, error) {
	reader := csv.NewReader(src)
	reader.Comma = r.comma
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("csv needs a header row and at least one data row")
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	data := make([][]interface{}, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]interface{}, len(header))
		for j := range header {
			if j < len(record) {
				cell := strings.TrimSpace(record[j])
				if cell != "" {
					row[j] = cell
				}
			}
		}
		data = append(data, row)
	}

	ds, err := dataset.FromRows(header, data)
	if err != nil {
		return nil, fmt.Errorf("build dataset from %s: %w", r.filePath, err)
	}
	log.Debug().Str("file", r.filePath).
		Int("rows", ds.RowCount()).Int("columns", ds.ColumnCount()).
		Msg("csv loaded")
	return ds, nil
}

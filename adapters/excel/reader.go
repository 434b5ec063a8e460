// Package excel reads tabular data from .xlsx workbooks into datasets.
package excel

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"adri/domain/dataset"
)

// Reader loads one worksheet of a workbook
type Reader struct {
	filePath string
	sheet    string
}

// NewReader targets the named sheet; empty means the first sheet
func NewReader(filePath, sheet string) *Reader {
	return &Reader{filePath: filePath, sheet: sheet}
}

// Read loads the sheet into a dataset. The first row is the header;
// empty cells become nulls.
func (r *Reader) Read() (*dataset.Dataset, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("workbook not found: %s", r.filePath)
	}

	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %s needs a header row and at least one data row", sheet)
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	data := make([][]interface{}, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make([]interface{}, len(header))
		for j := range header {
			if j < len(row) {
				cell := strings.TrimSpace(row[j])
				if cell != "" {
					record[j] = cell
				}
			}
		}
		data = append(data, record)
	}

	ds, err := dataset.FromRows(header, data)
	if err != nil {
		return nil, fmt.Errorf("build dataset from %s: %w", r.filePath, err)
	}
	log.Debug().Str("file", r.filePath).Str("sheet", sheet).
		Int("rows", ds.RowCount()).Int("columns", ds.ColumnCount()).
		Msg("workbook loaded")
	return ds, nil
}

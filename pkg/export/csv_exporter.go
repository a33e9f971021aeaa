package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter renders sheets as CSV. CSV cannot merge cells, so covered cells
// repeat the text of the cell spanning them.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (e *CSVExporter) ContentType() string { return "text/csv" }

func (e *CSVExporter) Extension() string { return "csv" }

// Render produces CSV encoded bytes for the sheet.
func (e *CSVExporter) Render(sheet Sheet) ([]byte, error) {
	if err := sheet.Validate(); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(append([]string{sheet.Corner}, sheet.Columns...)); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}

	carry := make([]string, len(sheet.Columns))
	for _, row := range sheet.Rows {
		record := make([]string, 0, len(row.Cells)+1)
		record = append(record, row.Label)
		for j, cell := range row.Cells {
			if !cell.Covered {
				carry[j] = cell.Text
			}
			record = append(record, carry[j])
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

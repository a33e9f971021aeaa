package export

import "fmt"

// Sheet is a labelled table whose cells may span several rows downward, the
// shape of a timetable: columns are days, rows are time slots.
type Sheet struct {
	Title   string
	Corner  string
	Columns []string
	Rows    []SheetRow
}

// SheetRow is one labelled row.
type SheetRow struct {
	Label string
	Cells []SheetCell
}

// SheetCell is either a value (spanning RowSpan rows, at least one) or
// Covered by a spanning value above it.
type SheetCell struct {
	Text    string
	RowSpan int
	Covered bool
}

func (c SheetCell) span() int {
	if c.RowSpan < 1 {
		return 1
	}
	return c.RowSpan
}

// Validate checks that every row has one cell per column and that spans stay inside the sheet.
func (s Sheet) Validate() error {
	if len(s.Columns) == 0 {
		return fmt.Errorf("sheet requires at least one column")
	}
	for i, row := range s.Rows {
		if len(row.Cells) != len(s.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row.Cells), len(s.Columns))
		}
		for j, cell := range row.Cells {
			if !cell.Covered && i+cell.span() > len(s.Rows) {
				return fmt.Errorf("cell %d/%d spans past the last row", i, j)
			}
		}
	}
	return nil
}

// Exporter renders a sheet into a downloadable document.
type Exporter interface {
	Render(sheet Sheet) ([]byte, error)
	ContentType() string
	Extension() string
}

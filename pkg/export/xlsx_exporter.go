package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxSheetName = "Timetable"

// XLSXExporter renders sheets as a workbook with spanning cells merged.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *XLSXExporter) Extension() string { return "xlsx" }

// Render builds the workbook: title on row 1, headers on row 2, slots from row 3.
func (e *XLSXExporter) Render(sheet Sheet) ([]byte, error) {
	if err := sheet.Validate(); err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	centered, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border: []excelize.Border{
			{Type: "left", Color: "999999", Style: 1},
			{Type: "right", Color: "999999", Style: 1},
			{Type: "top", Color: "999999", Style: 1},
			{Type: "bottom", Color: "999999", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	lastCol := len(sheet.Columns) + 1
	set := func(col, row int, value interface{}) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(xlsxSheetName, cell, value)
	}

	if err := set(1, 1, sheet.Title); err != nil {
		return nil, fmt.Errorf("write title: %w", err)
	}
	if err := merge(f, 1, 1, lastCol, 1); err != nil {
		return nil, err
	}

	if err := set(1, 2, sheet.Corner); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for j, col := range sheet.Columns {
		if err := set(j+2, 2, col); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for i, row := range sheet.Rows {
		r := i + 3
		if err := set(1, r, row.Label); err != nil {
			return nil, fmt.Errorf("write row %d: %w", r, err)
		}
		for j, cell := range row.Cells {
			if cell.Covered {
				continue
			}
			if err := set(j+2, r, cell.Text); err != nil {
				return nil, fmt.Errorf("write row %d: %w", r, err)
			}
			if cell.span() > 1 {
				if err := merge(f, j+2, r, j+2, r+cell.span()-1); err != nil {
					return nil, err
				}
			}
		}
	}

	lastName, err := excelize.ColumnNumberToName(lastCol)
	if err != nil {
		return nil, err
	}
	bottomRight, err := excelize.CoordinatesToCellName(lastCol, len(sheet.Rows)+2)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(xlsxSheetName, "A2", bottomRight, centered); err != nil {
		return nil, fmt.Errorf("apply style: %w", err)
	}
	if err := f.SetColWidth(xlsxSheetName, "B", lastName, 22); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func merge(f *excelize.File, col1, row1, col2, row2 int) error {
	from, err := excelize.CoordinatesToCellName(col1, row1)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(col2, row2)
	if err != nil {
		return err
	}
	if err := f.MergeCell(xlsxSheetName, from, to); err != nil {
		return fmt.Errorf("merge %s:%s: %w", from, to, err)
	}
	return nil
}

package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleSheet() Sheet {
	return Sheet{
		Title:   "STEM 11-A 1st Semester",
		Corner:  "Time",
		Columns: []string{"Monday", "Tuesday"},
		Rows: []SheetRow{
			{Label: "07:30", Cells: []SheetCell{{Text: "Calculus", RowSpan: 2}, {}}},
			{Label: "08:00", Cells: []SheetCell{{Covered: true}, {Text: "Physics", RowSpan: 1}}},
			{Label: "08:30", Cells: []SheetCell{{}, {}}},
		},
	}
}

func TestSheetValidate(t *testing.T) {
	require.NoError(t, sampleSheet().Validate())

	bad := sampleSheet()
	bad.Rows[2].Cells[0] = SheetCell{Text: "x", RowSpan: 2}
	assert.Error(t, bad.Validate())

	bad = sampleSheet()
	bad.Rows[0].Cells = bad.Rows[0].Cells[:1]
	assert.Error(t, bad.Validate())

	assert.Error(t, Sheet{}.Validate())
}

func TestCSVExporterRepeatsSpans(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleSheet())
	require.NoError(t, err)
	assert.Equal(t, "Time,Monday,Tuesday\n07:30,Calculus,\n08:00,Calculus,Physics\n08:30,,\n", string(out))
}

func TestPDFExporterProducesDocument(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleSheet())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXExporterMergesSpans(t *testing.T) {
	exp := NewXLSXExporter()
	out, err := exp.Render(sampleSheet())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(xlsxSheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "STEM 11-A 1st Semester", title)

	calc, err := f.GetCellValue(xlsxSheetName, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Calculus", calc)

	merged, err := f.GetMergeCells(xlsxSheetName)
	require.NoError(t, err)
	ranges := make([]string, 0, len(merged))
	for _, m := range merged {
		ranges = append(ranges, m.GetStartAxis()+":"+m.GetEndAxis())
	}
	assert.ElementsMatch(t, []string{"A1:C1", "B3:B4"}, ranges)
	assert.Equal(t, "xlsx", exp.Extension())
}

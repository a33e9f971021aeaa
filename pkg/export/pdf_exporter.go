package export

import (
	"bytes"
	"fmt"
	"math"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfMargin     = 10.0
	pdfLabelWidth = 18.0
	pdfTitleH     = 10.0
	pdfHeaderH    = 8.0
	pdfMaxRowH    = 9.0
)

// PDFExporter renders sheets on a single landscape A4 page. Spanning cells
// are drawn as one tall box.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

func (e *PDFExporter) ContentType() string { return "application/pdf" }

func (e *PDFExporter) Extension() string { return "pdf" }

// Render creates the PDF document.
func (e *PDFExporter) Render(sheet Sheet) ([]byte, error) {
	if err := sheet.Validate(); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	y := pdfMargin
	if sheet.Title != "" {
		pdf.SetFont("Arial", "B", 13)
		pdf.SetXY(pdfMargin, y)
		pdf.CellFormat(pageW-2*pdfMargin, pdfTitleH, tr(sheet.Title), "", 0, "C", false, 0, "")
		y += pdfTitleH + 2
	}

	colW := (pageW - 2*pdfMargin - pdfLabelWidth) / float64(len(sheet.Columns))
	rowH := pdfMaxRowH
	if len(sheet.Rows) > 0 {
		rowH = math.Min(pdfMaxRowH, (pageH-pdfMargin-y-pdfHeaderH)/float64(len(sheet.Rows)))
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.SetXY(pdfMargin, y)
	pdf.CellFormat(pdfLabelWidth, pdfHeaderH, tr(sheet.Corner), "1", 0, "C", true, 0, "")
	for _, col := range sheet.Columns {
		pdf.CellFormat(colW, pdfHeaderH, tr(col), "1", 0, "C", true, 0, "")
	}
	y += pdfHeaderH

	pdf.SetFont("Arial", "", 7)
	for i, row := range sheet.Rows {
		top := y + float64(i)*rowH
		pdf.SetXY(pdfMargin, top)
		pdf.CellFormat(pdfLabelWidth, rowH, tr(row.Label), "1", 0, "C", false, 0, "")
		for j, cell := range row.Cells {
			if cell.Covered {
				continue
			}
			pdf.SetXY(pdfMargin+pdfLabelWidth+float64(j)*colW, top)
			fill := cell.Text != ""
			if fill {
				pdf.SetFillColor(220, 235, 250)
			}
			pdf.CellFormat(colW, rowH*float64(cell.span()), tr(cell.Text), "1", 0, "C", fill, 0, "")
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

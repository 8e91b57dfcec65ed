package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const pageWidth = 190.0

// PDFExporter renders datasets into a single tabular PDF document.
type PDFExporter struct {
	// Weights sizes columns relative to each other; equal widths when empty.
	Weights []float64
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter(weights ...float64) *PDFExporter {
	return &PDFExporter{Weights: weights}
}

// Render creates a PDF with the dataset title, table body and footer line.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	widths := e.columnWidths(len(data.Headers))

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, data.Title, "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, header := range data.Headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for i := range data.Headers {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			align := "C"
			if i == 1 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 7, value, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if data.Footer != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "I", 10)
		pdf.CellFormat(0, 8, data.Footer, "", 1, "L", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) columnWidths(n int) []float64 {
	widths := make([]float64, n)
	if len(e.Weights) != n {
		for i := range widths {
			widths[i] = pageWidth / float64(n)
		}
		return widths
	}
	sum := 0.0
	for _, w := range e.Weights {
		sum += w
	}
	for i, w := range e.Weights {
		widths[i] = pageWidth * w / sum
	}
	return widths
}

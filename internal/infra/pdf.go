package infra

// pdf.go renders a printable bin count sheet with go-pdf/fpdf: one row per
// expected product (code, description, baseline quantity) with an empty
// "Counted" column for the person walking the bin.

import (
	"bytes"
	"fmt"
	"time"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateBinSheetPDF returns the count sheet for binCode as PDF bytes.
func GenerateBinSheetPDF(binCode string, rows []model.BinProduct, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// Header
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 8, tr("Bin "+binCode), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5,
		fmt.Sprintf("%d products  |  printed %s", len(rows), generatedAt.Format("02/01/2006 15:04")),
		"", 1, "L", false, 0, "")
	pdf.Ln(3)

	colCode := contentW * 0.18
	colDesc := contentW * 0.50
	colBase := contentW * 0.14
	colCount := contentW * 0.18

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(colCode, 7, "Code", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colDesc, 7, "Description", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colBase, 7, "Baseline", "1", 0, "R", true, 0, "")
		pdf.CellFormat(colCount, 7, "Counted", "1", 1, "C", true, 0, "")
		pdf.SetFont("Helvetica", "", 9)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})
	header()

	for _, r := range rows {
		desc := r.Description
		if len([]rune(desc)) > 48 {
			desc = string([]rune(desc)[:47]) + "..."
		}
		code := r.ProductCode
		if !r.IsMain {
			code += " *"
		}
		pdf.CellFormat(colCode, 7, tr(code), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colDesc, 7, tr(desc), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colBase, 7, r.BaselineQty.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colCount, 7, "", "1", 1, "C", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 4, "* alternative location", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render bin sheet: %w", err)
	}
	return buf.Bytes(), nil
}

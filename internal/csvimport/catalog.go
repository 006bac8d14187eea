package csvimport

import (
	"fmt"
	"io"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/barcode"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/dto"
)

// Header spellings seen in the ERP and spreadsheet exports, in priority order.
var (
	barcodeHeaders     = []string{"Bar Code", "Barcode", "BarCode", "ScanCode", "Scan Code", "EAN", "EAN13", "UPC"}
	productCodeHeaders = []string{"Product Code", "ProductCode", "Code", "product_code"}
	descriptionHeaders = []string{"Full Description", "Description", "full_description", "Name", "FullDescription"}
	priceHeaders       = []string{"VAT Inclusive Price", "Retail Price", "Price", "vat_inclusive_price", "retail_price"}
	mfgCodeHeaders     = []string{"Manufacturers Product Code", "Manufacturer Product Code", "manufacturers_product_code", "MFG Code", "MFG"}
)

// ParseCatalog reads one catalog export. Barcodes are read and normalized
// only when hasBarcodes is set; rows of the other report never carry one.
// Rows without a product code are kept so the importer can count them as
// skipped.
func ParseCatalog(r io.Reader, hasBarcodes bool) ([]dto.CatalogRecord, error) {
	header, rows, err := readTable(r)
	if err != nil {
		return nil, err
	}
	h := newHeaderIndex(header)

	codeCol := h.pick(productCodeHeaders...)
	if codeCol < 0 {
		return nil, fmt.Errorf("%w: product code", ErrMissingColumn)
	}
	descCol := h.pick(descriptionHeaders...)
	priceCol := h.pick(priceHeaders...)
	mfgCol := h.pick(mfgCodeHeaders...)
	barcodeCol := -1
	if hasBarcodes {
		barcodeCol = h.pick(barcodeHeaders...)
	}

	out := make([]dto.CatalogRecord, 0, len(rows))
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		rec := dto.CatalogRecord{
			ProductCode:              cell(row, codeCol),
			FullDescription:          cell(row, descCol),
			RetailPrice:              parseAmount(cell(row, priceCol)),
			ManufacturersProductCode: cell(row, mfgCol),
		}
		if barcodeCol >= 0 {
			rec.Barcode = barcode.Normalize(cell(row, barcodeCol))
		}
		out = append(out, rec)
	}
	return out, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if cleanCell(c) != "" {
			return false
		}
	}
	return true
}

package dto

import "github.com/shopspring/decimal"

// CatalogRecord is one parsed row of a catalog export. Barcode is already
// normalized and is only ever set for rows of the barcode-bearing report.
type CatalogRecord struct {
	ProductCode              string
	FullDescription          string
	RetailPrice              decimal.Decimal
	ManufacturersProductCode string
	Barcode                  string
}

type ImportResult struct {
	OK                      bool `json:"ok"`
	ImportedWithBarcodes    int  `json:"imported_with_barcodes"`
	ImportedWithoutBarcodes int  `json:"imported_without_barcodes"`
	TotalChanged            int  `json:"total_changed"`
	Skipped                 int  `json:"skipped"`
}

// ─── Overrides ───────────────────────────────────────────────────────────────

type SetOverrideRequest struct {
	Barcode                  string `json:"barcode" validate:"required,max=64"`
	AlsoUpdateCatalogBarcode bool   `json:"also_update_catalog_barcode"`
}

type OverrideResponse struct {
	ProductCode string `json:"product_code"`
	Barcode     string `json:"barcode"`
}

type ClearOverrideResponse struct {
	ProductCode string `json:"product_code"`
	Cleared     bool   `json:"cleared"`
}

type OverrideStatusResponse struct {
	ProductCode      string  `json:"product_code"`
	FullDescription  string  `json:"full_description"`
	OverrideBarcode  *string `json:"override_barcode"`
	CatalogBarcode   *string `json:"catalog_barcode"`
	EffectiveBarcode *string `json:"effective_barcode"`
}

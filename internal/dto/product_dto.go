package dto

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SearchMode selects the resolver strategy.
type SearchMode string

const (
	SearchSmart   SearchMode = "smart"
	SearchName    SearchMode = "name"
	SearchCode    SearchMode = "code"
	SearchBarcode SearchMode = "barcode"
)

// ParseSearchMode maps free text to a mode; anything unrecognised is smart.
func ParseSearchMode(s string) SearchMode {
	switch m := SearchMode(strings.ToLower(strings.TrimSpace(s))); m {
	case SearchName, SearchCode, SearchBarcode:
		return m
	default:
		return SearchSmart
	}
}

// ─── Filter ──────────────────────────────────────────────────────────────────

// SearchQuery accepts q, query or search for the text (first non-blank wins).
// limit is read separately so a malformed value falls back to the default.
type SearchQuery struct {
	Q      string `form:"q"`
	Query  string `form:"query"`
	Search string `form:"search"`
	Mode   string `form:"mode"`
}

func (s SearchQuery) Text() string {
	for _, v := range []string{s.Q, s.Query, s.Search} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ProductResponse is a resolved product. Barcode is always the effective
// barcode (override if present, else catalog).
type ProductResponse struct {
	ProductCode              string          `json:"product_code"`
	FullDescription          string          `json:"full_description"`
	RetailPrice              decimal.Decimal `json:"retail_price"`
	ManufacturersProductCode *string         `json:"manufacturers_product_code"`
	Barcode                  *string         `json:"barcode"`
	ImageURL                 *string         `json:"image_url"`
}

type ImageUploadResponse struct {
	OK          bool   `json:"ok"`
	ProductCode string `json:"product_code"`
	ImageURL    string `json:"image_url"`
}

type ImageDeleteResponse struct {
	OK      bool `json:"ok"`
	Deleted bool `json:"deleted"`
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type UpsertItemRequest struct {
	SessionID   string          `json:"session_id"   validate:"required,max=64"`
	Barcode     string          `json:"barcode"      validate:"max=64"`
	ProductCode string          `json:"product_code" validate:"max=64"`
	Quantity    decimal.Decimal `json:"quantity"`
	UpdatedBy   string          `json:"updated_by"   validate:"max=100"`
}

type MoveItemRequest struct {
	FromSessionID string `json:"from_session_id" validate:"required"`
	ToSessionID   string `json:"to_session_id"   validate:"required"`
	ProductCode   string `json:"product_code"    validate:"required"`
}

// BinProductRecord is one parsed row of the bin layout CSV.
type BinProductRecord struct {
	BinCode     string
	ProductCode string
	Description string
	BaselineQty decimal.Decimal
	IsMain      bool
	AltIndex    int
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type StocktakeItemResponse struct {
	SessionID   string          `json:"session_id"`
	ProductCode string          `json:"product_code"`
	Description string          `json:"description"`
	Barcode     *string         `json:"barcode"`
	Quantity    decimal.Decimal `json:"quantity"`
	UpdatedBy   *string         `json:"updated_by"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type BinProductResponse struct {
	BinCode     string          `json:"bin_code"`
	ProductCode string          `json:"product_code"`
	Description string          `json:"description"`
	BaselineQty decimal.Decimal `json:"baseline_qty"`
	IsMain      bool            `json:"is_main"`
	AltIndex    int             `json:"alt_index"`
}

type RowsResponse struct {
	OK   bool `json:"ok"`
	Rows int  `json:"rows"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

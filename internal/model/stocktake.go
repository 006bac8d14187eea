package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StocktakeSession groups counted items. Sessions are named after the bin
// being counted, so SessionID is usually a bin code.
type StocktakeSession struct {
	SessionID string `gorm:"primaryKey"`
	Label     string
	CreatedAt time.Time

	Items []StocktakeItem `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

func (StocktakeSession) TableName() string { return "stocktake_sessions" }

// StocktakeItem is one counted product inside a session. Description and
// Barcode are snapshots taken when the count was recorded.
type StocktakeItem struct {
	SessionID   string `gorm:"primaryKey"`
	ProductCode string `gorm:"primaryKey"`
	Description string
	Barcode     *string
	Quantity    decimal.Decimal `gorm:"type:numeric(12,3);not null"`
	UpdatedBy   *string
	UpdatedAt   time.Time
}

func (StocktakeItem) TableName() string { return "stocktake_items" }

// BinProduct is an expected product location uploaded from the bin layout CSV.
type BinProduct struct {
	BinCode     string `gorm:"primaryKey"`
	ProductCode string `gorm:"primaryKey;index"`
	Description string
	BaselineQty decimal.Decimal `gorm:"type:numeric(12,3);not null"`
	IsMain      bool            `gorm:"primaryKey"`
	AltIndex    int             `gorm:"primaryKey"`
}

func (BinProduct) TableName() string { return "bin_products" }

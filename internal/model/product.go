package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the canonical catalog row, keyed by the ERP product code.
// CatalogBarcode is the barcode as last reported by a CSV import; it is not
// necessarily the barcode shown to users (see EffectiveProduct).
type Product struct {
	ProductCode              string          `gorm:"primaryKey"`
	FullDescription          string          `gorm:"not null;index"`
	RetailPrice              decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ManufacturersProductCode *string         `gorm:"index"`
	CatalogBarcode           *string         `gorm:"index"`
	UpdatedAt                time.Time
}

func (Product) TableName() string { return "products" }

// EffectiveProduct is a Product row as read through the effective-barcode
// view: EffectiveBarcode is the override barcode when one exists, otherwise
// the catalog barcode.
type EffectiveProduct struct {
	ProductCode              string
	FullDescription          string
	RetailPrice              decimal.Decimal
	ManufacturersProductCode *string
	CatalogBarcode           *string
	OverrideBarcode          *string
	EffectiveBarcode         *string
}

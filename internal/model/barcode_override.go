package model

import "time"

// BarcodeOverride is a manually assigned barcode. It is authoritative over
// Product.CatalogBarcode and is never touched by catalog imports.
type BarcodeOverride struct {
	ProductCode string `gorm:"primaryKey"`
	Barcode     string `gorm:"not null;index"`
	UpdatedAt   time.Time
}

func (BarcodeOverride) TableName() string { return "barcode_overrides" }

// BarcodeAlias maps a scanned barcode straight to a product code.
// Every BarcodeOverride (pc, bc) has a matching alias (bc, pc).
type BarcodeAlias struct {
	Barcode     string `gorm:"primaryKey"`
	ProductCode string `gorm:"not null;index"`
	UpdatedAt   time.Time
}

func (BarcodeAlias) TableName() string { return "barcode_aliases" }

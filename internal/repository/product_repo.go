package repository

import (
	"context"
	"time"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BarcodePolicy decides how an imported record's barcode meets the stored one.
type BarcodePolicy int

const (
	// BarcodePreferred: a non-absent incoming barcode replaces the stored one.
	BarcodePreferred BarcodePolicy = iota
	// BarcodeFillOnly: the incoming barcode only fills an empty slot.
	BarcodeFillOnly
)

// ProductRepository is the Catalog Store plus the effective-barcode reads.
type ProductRepository interface {
	// UpsertImportedTx inserts or updates one catalog row inside an import tx.
	// Description, price, manufacturer code and updated_at are always
	// overwritten; catalog_barcode follows policy.
	UpsertImportedTx(tx *gorm.DB, p *model.Product, policy BarcodePolicy) error
	ExistsTx(tx *gorm.DB, code string) (bool, error)
	SetCatalogBarcodeTx(tx *gorm.DB, code, barcode string) error

	FindEffective(ctx context.Context, code string) (*model.EffectiveProduct, error)
	Lookup(ctx context.Context, l Lookup, value string, limit int) ([]model.EffectiveProduct, error)
	Count(ctx context.Context) (int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) UpsertImportedTx(tx *gorm.DB, p *model.Product, policy BarcodePolicy) error {
	// COALESCE order encodes the policy: preferred keeps the new value when
	// present, fill-only keeps the stored value when present.
	barcodeExpr := gorm.Expr("COALESCE(excluded.catalog_barcode, products.catalog_barcode)")
	if policy == BarcodeFillOnly {
		barcodeExpr = gorm.Expr("COALESCE(products.catalog_barcode, excluded.catalog_barcode)")
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}

	assignments := clause.AssignmentColumns([]string{
		"full_description", "retail_price", "manufacturers_product_code", "updated_at",
	})
	assignments = append(assignments, clause.Assignment{
		Column: clause.Column{Name: "catalog_barcode"},
		Value:  barcodeExpr,
	})

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_code"}},
		DoUpdates: assignments,
	}).Create(p).Error
}

func (r *productRepo) ExistsTx(tx *gorm.DB, code string) (bool, error) {
	var n int64
	err := tx.Model(&model.Product{}).Where("product_code = ?", code).Count(&n).Error
	return n > 0, err
}

func (r *productRepo) SetCatalogBarcodeTx(tx *gorm.DB, code, barcode string) error {
	return tx.Model(&model.Product{}).Where("product_code = ?", code).
		Updates(map[string]interface{}{"catalog_barcode": barcode, "updated_at": time.Now().UTC()}).Error
}

func (r *productRepo) FindEffective(ctx context.Context, code string) (*model.EffectiveProduct, error) {
	var rows []model.EffectiveProduct
	err := applyLookup(effectiveProducts(r.db.WithContext(ctx)), LookupProductCode, code).
		Limit(1).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *productRepo) Lookup(ctx context.Context, l Lookup, value string, limit int) ([]model.EffectiveProduct, error) {
	var rows []model.EffectiveProduct
	q := applyLookup(effectiveProducts(r.db.WithContext(ctx)), l, value)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Scan(&rows).Error
	return rows, err
}

func (r *productRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&n).Error
	return n, err
}

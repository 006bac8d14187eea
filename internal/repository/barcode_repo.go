package repository

import (
	"context"
	"time"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BarcodeRepository covers the Override Store and the Alias Index. All
// writes take a tx: an override and its alias are only ever changed together.
type BarcodeRepository interface {
	FindOverride(ctx context.Context, code string) (*model.BarcodeOverride, error)
	FindOverrideTx(tx *gorm.DB, code string) (*model.BarcodeOverride, error)
	FindAliasTx(tx *gorm.DB, barcode string) (*model.BarcodeAlias, error)
	// OverrideHolderTx returns a product other than code whose override is barcode.
	OverrideHolderTx(tx *gorm.DB, barcode, code string) (string, error)

	UpsertOverrideTx(tx *gorm.DB, code, barcode string) error
	// ClaimAliasTx points barcode at code. It reports false, writing nothing,
	// when the alias already belongs to a different product.
	ClaimAliasTx(tx *gorm.DB, barcode, code string) (bool, error)
	DeleteOverrideTx(tx *gorm.DB, code string) (int64, error)
	// DeleteAliasIfOwnedTx removes barcode's alias only while it points at code.
	DeleteAliasIfOwnedTx(tx *gorm.DB, barcode, code string) (int64, error)

	DB() *gorm.DB
}

type barcodeRepo struct{ db *gorm.DB }

func NewBarcodeRepository(db *gorm.DB) BarcodeRepository { return &barcodeRepo{db: db} }

func (r *barcodeRepo) DB() *gorm.DB { return r.db }

func (r *barcodeRepo) FindOverride(ctx context.Context, code string) (*model.BarcodeOverride, error) {
	return r.FindOverrideTx(r.db.WithContext(ctx), code)
}

func (r *barcodeRepo) FindOverrideTx(tx *gorm.DB, code string) (*model.BarcodeOverride, error) {
	var o model.BarcodeOverride
	err := tx.Where("product_code = ?", code).First(&o).Error
	return &o, err
}

func (r *barcodeRepo) FindAliasTx(tx *gorm.DB, barcode string) (*model.BarcodeAlias, error) {
	var a model.BarcodeAlias
	err := tx.Where("barcode = ?", barcode).First(&a).Error
	return &a, err
}

func (r *barcodeRepo) OverrideHolderTx(tx *gorm.DB, barcode, code string) (string, error) {
	var codes []string
	err := tx.Model(&model.BarcodeOverride{}).
		Where("barcode = ? AND product_code <> ?", barcode, code).
		Limit(1).Pluck("product_code", &codes).Error
	if err != nil || len(codes) == 0 {
		return "", err
	}
	return codes[0], nil
}

func (r *barcodeRepo) UpsertOverrideTx(tx *gorm.DB, code, barcode string) error {
	o := model.BarcodeOverride{ProductCode: code, Barcode: barcode, UpdatedAt: time.Now().UTC()}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"barcode", "updated_at"}),
	}).Create(&o).Error
}

func (r *barcodeRepo) ClaimAliasTx(tx *gorm.DB, barcode, code string) (bool, error) {
	a := model.BarcodeAlias{Barcode: barcode, ProductCode: code, UpdatedAt: time.Now().UTC()}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "barcode"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "barcode_aliases.product_code = excluded.product_code"},
		}},
	}).Create(&a)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *barcodeRepo) DeleteOverrideTx(tx *gorm.DB, code string) (int64, error) {
	res := tx.Where("product_code = ?", code).Delete(&model.BarcodeOverride{})
	return res.RowsAffected, res.Error
}

func (r *barcodeRepo) DeleteAliasIfOwnedTx(tx *gorm.DB, barcode, code string) (int64, error) {
	res := tx.Where("barcode = ? AND product_code = ?", barcode, code).Delete(&model.BarcodeAlias{})
	return res.RowsAffected, res.Error
}

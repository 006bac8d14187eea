package repository

import (
	"context"
	"time"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MergedTotal is one product's quantity summed across every session.
type MergedTotal struct {
	ProductCode string
	Description string
	Quantity    decimal.Decimal
}

type StocktakeRepository interface {
	ListBinCodes(ctx context.Context) ([]string, error)
	ListSessionIDs(ctx context.Context) ([]string, error)
	BinProducts(ctx context.Context, bin string) ([]model.BinProduct, error)
	// ReplaceBinsTx swaps the whole bin layout; rows must be unique by key.
	ReplaceBinsTx(tx *gorm.DB, rows []model.BinProduct) error

	EnsureSessionTx(tx *gorm.DB, id string) error
	UpsertItemTx(tx *gorm.DB, item *model.StocktakeItem) error
	FindItemTx(tx *gorm.DB, session, code string) (*model.StocktakeItem, error)
	DeleteItemTx(tx *gorm.DB, session, code string) error

	ListItems(ctx context.Context, session string) ([]model.StocktakeItem, error)
	ListAllItems(ctx context.Context) ([]model.StocktakeItem, error)
	ClearItems(ctx context.Context, session string) (int64, error)
	MergedTotals(ctx context.Context) ([]MergedTotal, error)

	DB() *gorm.DB
}

type stocktakeRepo struct{ db *gorm.DB }

func NewStocktakeRepository(db *gorm.DB) StocktakeRepository { return &stocktakeRepo{db: db} }

func (r *stocktakeRepo) DB() *gorm.DB { return r.db }

func (r *stocktakeRepo) ListBinCodes(ctx context.Context) ([]string, error) {
	var bins []string
	err := r.db.WithContext(ctx).Model(&model.BinProduct{}).
		Where("TRIM(bin_code) <> ''").
		Distinct().Order("bin_code").Pluck("bin_code", &bins).Error
	return bins, err
}

func (r *stocktakeRepo) ListSessionIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.StocktakeSession{}).
		Where("TRIM(session_id) <> ''").
		Order("session_id").Pluck("session_id", &ids).Error
	return ids, err
}

func (r *stocktakeRepo) BinProducts(ctx context.Context, bin string) ([]model.BinProduct, error) {
	var rows []model.BinProduct
	err := r.db.WithContext(ctx).Where("bin_code = ?", bin).
		Order("product_code").Find(&rows).Error
	return rows, err
}

func (r *stocktakeRepo) ReplaceBinsTx(tx *gorm.DB, rows []model.BinProduct) error {
	if err := tx.Where("1 = 1").Delete(&model.BinProduct{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(rows, 200).Error
}

func (r *stocktakeRepo) EnsureSessionTx(tx *gorm.DB, id string) error {
	s := model.StocktakeSession{SessionID: id, Label: id, CreatedAt: time.Now().UTC()}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&s).Error
}

func (r *stocktakeRepo) UpsertItemTx(tx *gorm.DB, item *model.StocktakeItem) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}, {Name: "product_code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"description", "barcode", "quantity", "updated_by", "updated_at",
		}),
	}).Create(item).Error
}

func (r *stocktakeRepo) FindItemTx(tx *gorm.DB, session, code string) (*model.StocktakeItem, error) {
	var it model.StocktakeItem
	err := tx.Where("session_id = ? AND product_code = ?", session, code).First(&it).Error
	return &it, err
}

func (r *stocktakeRepo) DeleteItemTx(tx *gorm.DB, session, code string) error {
	return tx.Where("session_id = ? AND product_code = ?", session, code).
		Delete(&model.StocktakeItem{}).Error
}

func (r *stocktakeRepo) ListItems(ctx context.Context, session string) ([]model.StocktakeItem, error) {
	var items []model.StocktakeItem
	err := r.db.WithContext(ctx).Where("session_id = ?", session).
		Order("product_code").Find(&items).Error
	return items, err
}

func (r *stocktakeRepo) ListAllItems(ctx context.Context) ([]model.StocktakeItem, error) {
	var items []model.StocktakeItem
	err := r.db.WithContext(ctx).Order("session_id, product_code").Find(&items).Error
	return items, err
}

func (r *stocktakeRepo) ClearItems(ctx context.Context, session string) (int64, error) {
	res := r.db.WithContext(ctx).Where("session_id = ?", session).Delete(&model.StocktakeItem{})
	return res.RowsAffected, res.Error
}

func (r *stocktakeRepo) MergedTotals(ctx context.Context) ([]MergedTotal, error) {
	var out []MergedTotal
	err := r.db.WithContext(ctx).Model(&model.StocktakeItem{}).
		Select("product_code, MAX(description) AS description, SUM(quantity) AS quantity").
		Group("product_code").Order("product_code").
		Scan(&out).Error
	return out, err
}

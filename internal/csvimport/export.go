package csvimport

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/barcode"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/model"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/repository"
)

var stocktakeHeader = []string{"bin", "product_code", "description", "barcode", "quantity", "updated_by", "updated_at"}

// WriteStocktakeItems writes per-bin counts; the session id is the bin column.
func WriteStocktakeItems(w io.Writer, items []model.StocktakeItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(stocktakeHeader); err != nil {
		return err
	}
	for _, it := range items {
		updatedBy := ""
		if it.UpdatedBy != nil {
			updatedBy = *it.UpdatedBy
		}
		updatedAt := ""
		if !it.UpdatedAt.IsZero() {
			updatedAt = it.UpdatedAt.UTC().Format(time.RFC3339)
		}
		if err := cw.Write([]string{
			it.SessionID,
			it.ProductCode,
			it.Description,
			barcode.Value(it.Barcode),
			it.Quantity.String(),
			updatedBy,
			updatedAt,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMergedTotals writes one grand-total row per product, no bin column.
func WriteMergedTotals(w io.Writer, totals []repository.MergedTotal) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"product_code", "description", "quantity"}); err != nil {
		return err
	}
	for _, t := range totals {
		if err := cw.Write([]string{t.ProductCode, t.Description, t.Quantity.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

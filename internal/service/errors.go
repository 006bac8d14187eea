package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/infra"

	"gorm.io/gorm"
)

// Domain errors. Handlers map them to HTTP status codes with errors.Is.
var (
	ErrInvalidBarcode     = errors.New("invalid barcode")
	ErrProductNotFound    = errors.New("product not found")
	ErrBarcodeConflict    = errors.New("barcode already assigned to another product")
	ErrStorageUnavailable = errors.New("storage unavailable")

	ErrInvalidInput       = errors.New("invalid input")
	ErrItemNotFound       = errors.New("item not found")
	ErrImageNotFound      = errors.New("image not found")
	ErrEmailNotConfigured = infra.ErrMailerNotConfigured
	ErrEmailDelivery      = errors.New("reorder email failed")
	ErrInvalidPIN         = errors.New("invalid PIN")
)

var domainErrors = []error{
	ErrInvalidBarcode, ErrProductNotFound, ErrBarcodeConflict, ErrStorageUnavailable,
	ErrInvalidInput, ErrItemNotFound, ErrImageNotFound,
	ErrEmailNotConfigured, ErrEmailDelivery, ErrInvalidPIN,
}

// storageErr passes domain errors through untouched and wraps everything
// else (driver errors, lock timeouts, closed pools) as ErrStorageUnavailable.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, d := range domainErrors {
		if errors.Is(err, d) {
			return err
		}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}

func invalidInput(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

// runTx executes fn inside a GORM transaction bound to ctx.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/barcode"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/dto"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/metrics"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// OverrideService assigns and clears manual barcodes. An override and its
// alias are always written or removed in the same transaction.
type OverrideService interface {
	Set(ctx context.Context, productCode, rawBarcode string, alsoUpdateCatalog bool) (*dto.OverrideResponse, error)
	Clear(ctx context.Context, productCode string) (*dto.ClearOverrideResponse, error)
	Get(ctx context.Context, productCode string) (*dto.OverrideStatusResponse, error)
}

type overrideService struct {
	products repository.ProductRepository
	barcodes repository.BarcodeRepository
	metrics  *metrics.CatalogMetrics
}

func NewOverrideService(products repository.ProductRepository, barcodes repository.BarcodeRepository, m *metrics.CatalogMetrics) OverrideService {
	return &overrideService{products: products, barcodes: barcodes, metrics: m}
}

func (s *overrideService) Set(ctx context.Context, productCode, rawBarcode string, alsoUpdateCatalog bool) (*dto.OverrideResponse, error) {
	code := strings.TrimSpace(productCode)
	bc := barcode.Normalize(rawBarcode)
	if bc == "" {
		return nil, ErrInvalidBarcode
	}

	var previous string
	err := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		exists, err := s.products.ExistsTx(tx, code)
		if err != nil {
			return err
		}
		if !exists {
			return ErrProductNotFound
		}

		holder, err := s.barcodes.OverrideHolderTx(tx, bc, code)
		if err != nil {
			return err
		}
		if holder != "" {
			return ErrBarcodeConflict
		}

		prev, err := s.barcodes.FindOverrideTx(tx, code)
		switch {
		case err == nil:
			previous = prev.Barcode
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		claimed, err := s.barcodes.ClaimAliasTx(tx, bc, code)
		if err != nil {
			return err
		}
		if !claimed {
			return ErrBarcodeConflict
		}
		if err := s.barcodes.UpsertOverrideTx(tx, code, bc); err != nil {
			return err
		}
		if previous != "" && previous != bc {
			if _, err := s.barcodes.DeleteAliasIfOwnedTx(tx, previous, code); err != nil {
				return err
			}
		}
		if alsoUpdateCatalog {
			return s.products.SetCatalogBarcodeTx(tx, code, bc)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrBarcodeConflict) {
			s.metrics.OverrideChange("conflict")
			log.Warn().Str("product_code", code).Str("barcode", bc).Msg("override rejected: barcode in use")
		}
		return nil, storageErr("set override", err)
	}

	s.metrics.OverrideChange("set")
	log.Info().
		Str("product_code", code).
		Str("barcode", bc).
		Str("previous", previous).
		Bool("catalog_updated", alsoUpdateCatalog).
		Msg("barcode override set")
	return &dto.OverrideResponse{ProductCode: code, Barcode: bc}, nil
}

func (s *overrideService) Clear(ctx context.Context, productCode string) (*dto.ClearOverrideResponse, error) {
	code := strings.TrimSpace(productCode)
	cleared := false

	err := runTx(ctx, s.barcodes.DB(), func(tx *gorm.DB) error {
		prev, err := s.barcodes.FindOverrideTx(tx, code)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		n, err := s.barcodes.DeleteOverrideTx(tx, code)
		if err != nil {
			return err
		}
		// The alias may already belong to another product; leave it alone then.
		if _, err := s.barcodes.DeleteAliasIfOwnedTx(tx, prev.Barcode, code); err != nil {
			return err
		}
		cleared = n > 0
		return nil
	})
	if err != nil {
		return nil, storageErr("clear override", err)
	}

	if cleared {
		s.metrics.OverrideChange("clear")
		log.Info().Str("product_code", code).Msg("barcode override cleared")
	}
	return &dto.ClearOverrideResponse{ProductCode: code, Cleared: cleared}, nil
}

func (s *overrideService) Get(ctx context.Context, productCode string) (*dto.OverrideStatusResponse, error) {
	p, err := s.products.FindEffective(ctx, strings.TrimSpace(productCode))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, storageErr("get override", err)
	}
	return &dto.OverrideStatusResponse{
		ProductCode:      p.ProductCode,
		FullDescription:  p.FullDescription,
		OverrideBarcode:  p.OverrideBarcode,
		CatalogBarcode:   p.CatalogBarcode,
		EffectiveBarcode: p.EffectiveBarcode,
	}, nil
}

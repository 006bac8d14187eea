package service

import (
	"context"
	"strings"
	"time"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/barcode"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/dto"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/metrics"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/model"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const UnknownDescription = "Unknown product"

// Report artefacts that look like rows but are not products.
var (
	sentinelCodes       = map[string]bool{"999998": true, "999999": true}
	nonProductDescParts = []string{"line group", "handling charge"}
)

// CatalogImportService merges the two catalog exports into the products table.
type CatalogImportService interface {
	// Import applies withBarcodes first (its barcodes win) and then
	// withoutBarcodes (which can only fill, never erase). Each report is one
	// transaction; rows that cannot be used are counted in Skipped.
	Import(ctx context.Context, withBarcodes, withoutBarcodes []dto.CatalogRecord) (*dto.ImportResult, error)
}

type catalogImportService struct {
	repo    repository.ProductRepository
	metrics *metrics.CatalogMetrics
	now     func() time.Time
}

func NewCatalogImportService(repo repository.ProductRepository, m *metrics.CatalogMetrics) CatalogImportService {
	return &catalogImportService{repo: repo, metrics: m, now: time.Now}
}

func (s *catalogImportService) Import(ctx context.Context, withBarcodes, withoutBarcodes []dto.CatalogRecord) (*dto.ImportResult, error) {
	started := s.now()
	res := &dto.ImportResult{OK: true}

	n, skipped, err := s.importReport(ctx, "with_barcodes", withBarcodes, repository.BarcodePreferred)
	if err != nil {
		return nil, err
	}
	res.ImportedWithBarcodes, res.Skipped = n, skipped

	n, skipped, err = s.importReport(ctx, "without_barcodes", withoutBarcodes, repository.BarcodeFillOnly)
	if err != nil {
		return nil, err
	}
	res.ImportedWithoutBarcodes = n
	res.Skipped += skipped
	res.TotalChanged = res.ImportedWithBarcodes + res.ImportedWithoutBarcodes

	log.Info().
		Int("imported_with_barcodes", res.ImportedWithBarcodes).
		Int("imported_without_barcodes", res.ImportedWithoutBarcodes).
		Int("skipped", res.Skipped).
		Dur("took", s.now().Sub(started)).
		Msg("catalog import finished")
	return res, nil
}

func (s *catalogImportService) importReport(ctx context.Context, report string, records []dto.CatalogRecord, policy repository.BarcodePolicy) (int, int, error) {
	if len(records) == 0 {
		return 0, 0, nil
	}
	imported, skipped := 0, 0
	stamp := s.now().UTC()

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for i := range records {
			p, ok := toProduct(records[i], policy)
			if !ok {
				skipped++
				continue
			}
			p.UpdatedAt = stamp
			if err := s.repo.UpsertImportedTx(tx, p, policy); err != nil {
				return err
			}
			imported++
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("report", report).Msg("catalog import aborted")
		return 0, 0, storageErr("import "+report, err)
	}

	s.metrics.ImportRecords(report, "imported", imported)
	s.metrics.ImportRecords(report, "skipped", skipped)
	return imported, skipped, nil
}

// toProduct applies the row-level rules: required code, non-negative price,
// report artefact filter, description default. Barcodes are only taken from
// the barcode-bearing report.
func toProduct(rec dto.CatalogRecord, policy repository.BarcodePolicy) (*model.Product, bool) {
	code := clean(rec.ProductCode)
	if code == "" || rec.RetailPrice.IsNegative() {
		return nil, false
	}
	desc := clean(rec.FullDescription)
	if desc == "" {
		desc = UnknownDescription
	}
	if isReportArtefact(code, desc) {
		return nil, false
	}

	p := &model.Product{
		ProductCode:     code,
		FullDescription: desc,
		RetailPrice:     rec.RetailPrice.Round(2),
	}
	if mpc := clean(rec.ManufacturersProductCode); mpc != "" {
		p.ManufacturersProductCode = &mpc
	}
	if policy == repository.BarcodePreferred {
		p.CatalogBarcode = barcode.Ptr(barcode.Normalize(rec.Barcode))
	}
	return p, true
}

func isReportArtefact(code, desc string) bool {
	if sentinelCodes[code] {
		return true
	}
	low := strings.ToLower(desc)
	for _, part := range nonProductDescParts {
		if strings.Contains(low, part) {
			return true
		}
	}
	return false
}

func clean(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
}

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
)

// scanChain is the exact-match order for a scanned value. The first step
// returning rows wins.
var scanChain = []repository.Lookup{
	repository.LookupAlias,
	repository.LookupOverride,
	repository.LookupCatalogBarcode,
}

// ResolverService turns a scanned or typed identifier into products.
type ResolverService interface {
	Resolve(ctx context.Context, query string, mode dto.SearchMode, limit int) ([]dto.ProductResponse, error)
	// ResolveOne finds a single product for stock-take and reorder lines:
	// the barcode through the scan chain, then productCode exactly, then the
	// barcode digits as a product code.
	ResolveOne(ctx context.Context, rawBarcode, productCode string) (*dto.ProductResponse, error)
}

type resolverService struct {
	repo    repository.ProductRepository
	metrics *metrics.CatalogMetrics
}

func NewResolverService(repo repository.ProductRepository, m *metrics.CatalogMetrics) ResolverService {
	return &resolverService{repo: repo, metrics: m}
}

func (s *resolverService) Resolve(ctx context.Context, query string, mode dto.SearchMode, limit int) ([]dto.ProductResponse, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []dto.ProductResponse{}, nil
	}
	mode = dto.ParseSearchMode(string(mode))

	started := time.Now()
	defer func() { s.metrics.ObserveResolve(string(mode), time.Since(started)) }()

	var (
		rows []model.EffectiveProduct
		err  error
	)
	switch mode {
	case dto.SearchName:
		rows, err = s.run(ctx, mode, limit, step{repository.LookupDescription, q})
	case dto.SearchCode:
		rows, err = s.run(ctx, mode, limit, step{repository.LookupCode, q})
	case dto.SearchBarcode:
		bc := barcode.Normalize(barcode.Compact(q))
		if bc == "" {
			return []dto.ProductResponse{}, nil
		}
		steps := append(chainSteps(bc),
			step{repository.LookupProductCode, bc},
			step{repository.LookupBarcodeLike, bc},
		)
		rows, err = s.run(ctx, mode, limit, steps...)
	default:
		rows, err = s.run(ctx, mode, limit, smartSteps(q)...)
	}
	if err != nil {
		return nil, storageErr("resolve", err)
	}
	return toProductResponses(rows), nil
}

func (s *resolverService) ResolveOne(ctx context.Context, rawBarcode, productCode string) (*dto.ProductResponse, error) {
	digits := strings.TrimPrefix(barcode.Compact(rawBarcode), string(barcode.LeadIn))
	var steps []step
	if bc := barcode.Normalize(digits); bc != "" {
		steps = chainSteps(bc)
	}
	if code := strings.TrimSpace(productCode); code != "" {
		steps = append(steps, step{repository.LookupProductCode, code})
	}
	if barcode.IsNumeric(digits) {
		steps = append(steps, step{repository.LookupProductCode, digits})
	}
	if len(steps) == 0 {
		return nil, ErrProductNotFound
	}

	rows, err := s.run(ctx, "one", 1, steps...)
	if err != nil {
		return nil, storageErr("resolve one", err)
	}
	if len(rows) == 0 {
		return nil, ErrProductNotFound
	}
	out := toProductResponse(rows[0])
	return &out, nil
}

type step struct {
	lookup repository.Lookup
	value  string
}

func chainSteps(bc string) []step {
	steps := make([]step, 0, len(scanChain)+2)
	for _, l := range scanChain {
		steps = append(steps, step{l, bc})
	}
	return steps
}

// smartSteps: a numeric query (after an optional lead-in) runs the scan chain
// and the product-code match; every query ends with the description match.
func smartSteps(q string) []step {
	var steps []step
	digits := strings.TrimPrefix(barcode.Compact(q), string(barcode.LeadIn))
	if barcode.IsNumeric(digits) {
		if bc := barcode.Normalize(digits); bc != "" {
			steps = chainSteps(bc)
		}
		steps = append(steps, step{repository.LookupProductCode, digits})
	}
	return append(steps, step{repository.LookupDescription, q})
}

// run executes steps in order and returns the first non-empty result.
func (s *resolverService) run(ctx context.Context, mode dto.SearchMode, limit int, steps ...step) ([]model.EffectiveProduct, error) {
	for _, st := range steps {
		rows, err := s.repo.Lookup(ctx, st.lookup, st.value, limit)
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			s.metrics.ResolveHit(string(mode), st.lookup.String())
			return rows, nil
		}
	}
	return nil, nil
}

func toProductResponse(p model.EffectiveProduct) dto.ProductResponse {
	return dto.ProductResponse{
		ProductCode:              p.ProductCode,
		FullDescription:          p.FullDescription,
		RetailPrice:              p.RetailPrice,
		ManufacturersProductCode: p.ManufacturersProductCode,
		Barcode:                  p.EffectiveBarcode,
	}
}

func toProductResponses(rows []model.EffectiveProduct) []dto.ProductResponse {
	out := make([]dto.ProductResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, toProductResponse(r))
	}
	return out
}

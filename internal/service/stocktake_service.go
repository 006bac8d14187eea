package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/barcode"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/csvimport"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/dto"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/infra"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/model"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// UnknownItemDescription marks a counted item that matched no product.
const UnknownItemDescription = "UNKNOWN"

// StocktakeService records counts per bin. A session is named after the bin
// being counted and is created on first use.
type StocktakeService interface {
	ListBins(ctx context.Context) ([]string, error)
	BinProducts(ctx context.Context, bin string) ([]dto.BinProductResponse, error)
	UploadBins(ctx context.Context, records []dto.BinProductRecord) (*dto.RowsResponse, error)

	UpsertItem(ctx context.Context, req dto.UpsertItemRequest) (*dto.StocktakeItemResponse, error)
	ListItems(ctx context.Context, session string) ([]dto.StocktakeItemResponse, error)
	ClearItems(ctx context.Context, session string) (*dto.RowsResponse, error)
	MoveItem(ctx context.Context, req dto.MoveItemRequest) (*dto.OKResponse, error)

	ExportSession(ctx context.Context, session string) ([]byte, error)
	ExportAllBins(ctx context.Context) ([]byte, error)
	ExportAllMerged(ctx context.Context) ([]byte, error)
	BinSheetPDF(ctx context.Context, bin string) ([]byte, error)
}

type stocktakeService struct {
	repo     repository.StocktakeRepository
	resolver ResolverService
	now      func() time.Time
}

func NewStocktakeService(repo repository.StocktakeRepository, resolver ResolverService) StocktakeService {
	return &stocktakeService{repo: repo, resolver: resolver, now: time.Now}
}

func (s *stocktakeService) ListBins(ctx context.Context) ([]string, error) {
	bins, err := s.repo.ListBinCodes(ctx)
	if err != nil {
		return nil, storageErr("list bins", err)
	}
	sessions, err := s.repo.ListSessionIDs(ctx)
	if err != nil {
		return nil, storageErr("list sessions", err)
	}

	seen := make(map[string]struct{}, len(bins)+len(sessions))
	out := make([]string, 0, len(bins)+len(sessions))
	for _, id := range append(bins, sessions...) {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (s *stocktakeService) BinProducts(ctx context.Context, bin string) ([]dto.BinProductResponse, error) {
	bin = strings.TrimSpace(bin)
	if bin == "" {
		return nil, invalidInput("bin_code is required")
	}
	rows, err := s.repo.BinProducts(ctx, bin)
	if err != nil {
		return nil, storageErr("bin products", err)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return productCodeLess(rows[i].ProductCode, rows[j].ProductCode)
	})

	out := make([]dto.BinProductResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.BinProductResponse{
			BinCode:     r.BinCode,
			ProductCode: r.ProductCode,
			Description: r.Description,
			BaselineQty: r.BaselineQty,
			IsMain:      r.IsMain,
			AltIndex:    r.AltIndex,
		})
	}
	return out, nil
}

// productCodeLess orders by the code's leading integer (non-numeric codes
// count as 0), then by the code text.
func productCodeLess(a, b string) bool {
	na, nb := leadingInt(a), leadingInt(b)
	if na != nb {
		return na < nb
	}
	return a < b
}

func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (s *stocktakeService) UploadBins(ctx context.Context, records []dto.BinProductRecord) (*dto.RowsResponse, error) {
	if len(records) == 0 {
		return nil, invalidInput("No bin records found in CSV (check headers/format)")
	}

	type key struct {
		bin, code string
		main      bool
		alt       int
	}
	index := make(map[key]int, len(records))
	rows := make([]model.BinProduct, 0, len(records))
	for _, r := range records {
		row := model.BinProduct{
			BinCode:     strings.TrimSpace(r.BinCode),
			ProductCode: strings.TrimSpace(r.ProductCode),
			Description: strings.TrimSpace(r.Description),
			BaselineQty: r.BaselineQty,
			IsMain:      r.IsMain,
			AltIndex:    r.AltIndex,
		}
		k := key{row.BinCode, row.ProductCode, row.IsMain, row.AltIndex}
		if i, dup := index[k]; dup {
			rows[i] = row
			continue
		}
		index[k] = len(rows)
		rows = append(rows, row)
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.ReplaceBinsTx(tx, rows)
	})
	if err != nil {
		return nil, storageErr("replace bins", err)
	}
	log.Info().Int("records", len(records)).Int("rows", len(rows)).Msg("bin layout replaced")
	return &dto.RowsResponse{OK: true, Rows: len(records)}, nil
}

func (s *stocktakeService) UpsertItem(ctx context.Context, req dto.UpsertItemRequest) (*dto.StocktakeItemResponse, error) {
	session := strings.TrimSpace(req.SessionID)
	if session == "" {
		return nil, invalidInput("session_id is required")
	}

	item := model.StocktakeItem{
		SessionID: session,
		Quantity:  req.Quantity,
		UpdatedAt: s.now().UTC(),
	}
	if by := strings.TrimSpace(req.UpdatedBy); by != "" {
		item.UpdatedBy = &by
	}

	p, err := s.resolver.ResolveOne(ctx, req.Barcode, req.ProductCode)
	switch {
	case err == nil:
		item.ProductCode = p.ProductCode
		item.Description = p.FullDescription
		item.Barcode = p.Barcode
	case errors.Is(err, ErrProductNotFound):
		raw := barcode.Compact(req.Barcode)
		item.ProductCode = strings.TrimSpace(req.ProductCode)
		if item.ProductCode == "" {
			item.ProductCode = raw
		}
		item.Description = UnknownItemDescription
		item.Barcode = barcode.Ptr(raw)
	default:
		return nil, err
	}
	if item.ProductCode == "" {
		return nil, invalidInput("Could not resolve product code")
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.EnsureSessionTx(tx, session); err != nil {
			return err
		}
		return s.repo.UpsertItemTx(tx, &item)
	})
	if err != nil {
		return nil, storageErr("upsert item", err)
	}
	resp := toItemResponse(item)
	return &resp, nil
}

func (s *stocktakeService) ListItems(ctx context.Context, session string) ([]dto.StocktakeItemResponse, error) {
	items, err := s.repo.ListItems(ctx, strings.TrimSpace(session))
	if err != nil {
		return nil, storageErr("list items", err)
	}
	out := make([]dto.StocktakeItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it))
	}
	return out, nil
}

func (s *stocktakeService) ClearItems(ctx context.Context, session string) (*dto.RowsResponse, error) {
	n, err := s.repo.ClearItems(ctx, strings.TrimSpace(session))
	if err != nil {
		return nil, storageErr("clear items", err)
	}
	return &dto.RowsResponse{OK: true, Rows: int(n)}, nil
}

// MoveItem carries quantity, description and barcode over to the destination
// bin, replacing any count already there, and removes the source row.
func (s *stocktakeService) MoveItem(ctx context.Context, req dto.MoveItemRequest) (*dto.OKResponse, error) {
	from := strings.TrimSpace(req.FromSessionID)
	to := strings.TrimSpace(req.ToSessionID)
	code := strings.TrimSpace(req.ProductCode)
	if from == "" || to == "" || code == "" {
		return nil, invalidInput("from_session_id, to_session_id, product_code required")
	}
	if from == to {
		return &dto.OKResponse{OK: true}, nil
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		src, err := s.repo.FindItemTx(tx, from, code)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: Item not found in source bin", ErrItemNotFound)
		}
		if err != nil {
			return err
		}
		if err := s.repo.EnsureSessionTx(tx, to); err != nil {
			return err
		}
		moved := *src
		moved.SessionID = to
		moved.UpdatedAt = s.now().UTC()
		if err := s.repo.UpsertItemTx(tx, &moved); err != nil {
			return err
		}
		return s.repo.DeleteItemTx(tx, from, code)
	})
	if err != nil {
		return nil, storageErr("move item", err)
	}
	log.Info().Str("from", from).Str("to", to).Str("product_code", code).Msg("stocktake item moved")
	return &dto.OKResponse{OK: true}, nil
}

func (s *stocktakeService) ExportSession(ctx context.Context, session string) ([]byte, error) {
	items, err := s.repo.ListItems(ctx, strings.TrimSpace(session))
	if err != nil {
		return nil, storageErr("export session", err)
	}
	var buf bytes.Buffer
	if err := csvimport.WriteStocktakeItems(&buf, items); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *stocktakeService) ExportAllBins(ctx context.Context) ([]byte, error) {
	items, err := s.repo.ListAllItems(ctx)
	if err != nil {
		return nil, storageErr("export bins", err)
	}
	var buf bytes.Buffer
	if err := csvimport.WriteStocktakeItems(&buf, items); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *stocktakeService) ExportAllMerged(ctx context.Context) ([]byte, error) {
	totals, err := s.repo.MergedTotals(ctx)
	if err != nil {
		return nil, storageErr("export merged", err)
	}
	var buf bytes.Buffer
	if err := csvimport.WriteMergedTotals(&buf, totals); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *stocktakeService) BinSheetPDF(ctx context.Context, bin string) ([]byte, error) {
	bin = strings.TrimSpace(bin)
	if bin == "" {
		return nil, invalidInput("bin_code is required")
	}
	rows, err := s.repo.BinProducts(ctx, bin)
	if err != nil {
		return nil, storageErr("bin sheet", err)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return productCodeLess(rows[i].ProductCode, rows[j].ProductCode)
	})
	return infra.GenerateBinSheetPDF(bin, rows, s.now())
}

func toItemResponse(it model.StocktakeItem) dto.StocktakeItemResponse {
	return dto.StocktakeItemResponse{
		SessionID:   it.SessionID,
		ProductCode: it.ProductCode,
		Description: it.Description,
		Barcode:     it.Barcode,
		Quantity:    it.Quantity,
		UpdatedBy:   it.UpdatedBy,
		UpdatedAt:   it.UpdatedAt,
	}
}

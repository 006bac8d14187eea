package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/dto"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStocktake(env *testEnv) *stocktakeService {
	svc := NewStocktakeService(env.stocktake, env.resolver).(*stocktakeService)
	svc.now = func() time.Time { return time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestUpsertItemResolvesEffectiveBarcode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.importA(t, rec("107", "Bread", "10", "6001"))
	_, err := env.overrides.Set(ctx, "107", "7002", false)
	require.NoError(t, err)
	svc := newStocktake(env)

	item, err := svc.UpsertItem(ctx, dto.UpsertItemRequest{
		SessionID: " A1 ", Barcode: "7002", Quantity: decimal.NewFromInt(3), UpdatedBy: "sam",
	})
	require.NoError(t, err)
	assert.Equal(t, "A1", item.SessionID)
	assert.Equal(t, "107", item.ProductCode)
	assert.Equal(t, "Bread", item.Description)
	assert.Equal(t, "7002", *item.Barcode)

	// second count replaces the first
	_, err = svc.UpsertItem(ctx, dto.UpsertItemRequest{
		SessionID: "A1", ProductCode: "107", Quantity: decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	items, err := svc.ListItems(ctx, "A1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, decimal.NewFromInt(5).Equal(items[0].Quantity))
	assert.Nil(t, items[0].UpdatedBy)

	bins, err := svc.ListBins(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, bins)
}

func TestUpsertItemUnknownProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newStocktake(env)

	item, err := svc.UpsertItem(ctx, dto.UpsertItemRequest{
		SessionID: "B2", Barcode: "600 123", Quantity: decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "600123", item.ProductCode)
	assert.Equal(t, UnknownItemDescription, item.Description)
	assert.Equal(t, "600123", *item.Barcode)

	_, err = svc.UpsertItem(ctx, dto.UpsertItemRequest{SessionID: "B2"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.UpsertItem(ctx, dto.UpsertItemRequest{SessionID: "  ", ProductCode: "1"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMoveItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.importA(t, rec("107", "Bread", "10", ""))
	svc := newStocktake(env)

	_, err := svc.UpsertItem(ctx, dto.UpsertItemRequest{SessionID: "A1", ProductCode: "107", Quantity: decimal.NewFromInt(4)})
	require.NoError(t, err)

	// same bin is a no-op
	_, err = svc.MoveItem(ctx, dto.MoveItemRequest{FromSessionID: "A1", ToSessionID: "A1", ProductCode: "107"})
	require.NoError(t, err)
	items, err := svc.ListItems(ctx, "A1")
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = svc.MoveItem(ctx, dto.MoveItemRequest{FromSessionID: "A1", ToSessionID: "B9", ProductCode: "107"})
	require.NoError(t, err)

	items, err = svc.ListItems(ctx, "A1")
	require.NoError(t, err)
	assert.Empty(t, items)
	items, err = svc.ListItems(ctx, "B9")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, decimal.NewFromInt(4).Equal(items[0].Quantity))

	_, err = svc.MoveItem(ctx, dto.MoveItemRequest{FromSessionID: "A1", ToSessionID: "B9", ProductCode: "107"})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestBinsUploadAndOrdering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newStocktake(env)

	_, err := svc.UploadBins(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	res, err := svc.UploadBins(ctx, []dto.BinProductRecord{
		{BinCode: "A1", ProductCode: "100", Description: "Hundred", IsMain: true},
		{BinCode: "A1", ProductCode: "20", Description: "Twenty", IsMain: true},
		{BinCode: "A1", ProductCode: "X5", Description: "Letters", IsMain: true},
		{BinCode: "A1", ProductCode: "20", Description: "Twenty again", IsMain: true},
		{BinCode: "C3", ProductCode: "1", IsMain: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Rows)

	rows, err := svc.BinProducts(ctx, " A1 ")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "X5", rows[0].ProductCode)
	assert.Equal(t, "20", rows[1].ProductCode)
	assert.Equal(t, "Twenty again", rows[1].Description)
	assert.Equal(t, "100", rows[2].ProductCode)

	_, err = svc.BinProducts(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpsertItem(ctx, dto.UpsertItemRequest{SessionID: "B2", ProductCode: "1", Quantity: decimal.NewFromInt(1)})
	require.NoError(t, err)
	bins, err := svc.ListBins(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "B2", "C3"}, bins)

	// a second upload replaces the layout
	_, err = svc.UploadBins(ctx, []dto.BinProductRecord{{BinCode: "Z", ProductCode: "1", IsMain: true}})
	require.NoError(t, err)
	rows, err = svc.BinProducts(ctx, "A1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestExports(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.importA(t, rec("107", "Bread", "10", "6001"))
	svc := newStocktake(env)

	for _, s := range []string{"A1", "B2"} {
		_, err := svc.UpsertItem(ctx, dto.UpsertItemRequest{SessionID: s, ProductCode: "107", Quantity: decimal.NewFromInt(2)})
		require.NoError(t, err)
	}

	one, err := svc.ExportSession(ctx, "A1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(one)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "A1,107,Bread,6001,2,,2026-05-04T10:00:00Z", lines[1])

	all, err := svc.ExportAllBins(ctx)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(all)), "\n"), 3)

	merged, err := svc.ExportAllMerged(ctx)
	require.NoError(t, err)
	assert.Equal(t, "product_code,description,quantity\n107,Bread,4\n", string(merged))

	cleared, err := svc.ClearItems(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, 1, cleared.Rows)
}

func TestBinSheetPDF(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newStocktake(env)
	_, err := svc.UploadBins(ctx, []dto.BinProductRecord{{BinCode: "A1", ProductCode: "107", Description: "Bread", IsMain: true}})
	require.NoError(t, err)

	pdf, err := svc.BinSheetPDF(ctx, "A1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF-"))
}

func TestProductCodeLess(t *testing.T) {
	assert.True(t, productCodeLess("9", "10"))
	assert.True(t, productCodeLess("ABC", "1"))
	assert.True(t, productCodeLess("10", "10A"))
	assert.False(t, productCodeLess("10", "9"))
}

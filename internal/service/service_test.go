package service

import (
	"context"
	"errors"
	"testing"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/dto"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/infra"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	products  repository.ProductRepository
	barcodes  repository.BarcodeRepository
	stocktake repository.StocktakeRepository

	importer  CatalogImportService
	resolver  ResolverService
	overrides OverrideService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := infra.NewDatabase(infra.DatabaseOptions{
		Driver: infra.DriverSQLite,
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	env := &testEnv{
		db:        db,
		products:  repository.NewProductRepository(db),
		barcodes:  repository.NewBarcodeRepository(db),
		stocktake: repository.NewStocktakeRepository(db),
	}
	env.importer = NewCatalogImportService(env.products, nil)
	env.resolver = NewResolverService(env.products, nil)
	env.overrides = NewOverrideService(env.products, env.barcodes, nil)
	return env
}

func rec(code, desc, price, bc string) dto.CatalogRecord {
	return dto.CatalogRecord{
		ProductCode:     code,
		FullDescription: desc,
		RetailPrice:     decimal.RequireFromString(price),
		Barcode:         bc,
	}
}

func (e *testEnv) importA(t *testing.T, recs ...dto.CatalogRecord) *dto.ImportResult {
	t.Helper()
	res, err := e.importer.Import(context.Background(), recs, nil)
	require.NoError(t, err)
	return res
}

func (e *testEnv) importB(t *testing.T, recs ...dto.CatalogRecord) *dto.ImportResult {
	t.Helper()
	res, err := e.importer.Import(context.Background(), nil, recs)
	require.NoError(t, err)
	return res
}

func (e *testEnv) resolveSmart(t *testing.T, q string) []dto.ProductResponse {
	t.Helper()
	out, err := e.resolver.Resolve(context.Background(), q, dto.SearchSmart, 25)
	require.NoError(t, err)
	return out
}

func (e *testEnv) effectiveBarcode(t *testing.T, code string) string {
	t.Helper()
	st, err := e.overrides.Get(context.Background(), code)
	require.NoError(t, err)
	if st.EffectiveBarcode == nil {
		return ""
	}
	return *st.EffectiveBarcode
}

// ─── Importer ────────────────────────────────────────────────────────────────

func TestImportEndToEndTwoReports(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.importer.Import(ctx,
		[]dto.CatalogRecord{rec("107", "Widget", "19.99", "6009509920844")},
		[]dto.CatalogRecord{rec("107", "Widget", "21.50", "")},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ImportedWithBarcodes)
	assert.Equal(t, 1, res.ImportedWithoutBarcodes)
	assert.Equal(t, 2, res.TotalChanged)
	assert.Equal(t, 0, res.Skipped)

	got := env.resolveSmart(t, "6009509920844")
	require.Len(t, got, 1)
	assert.Equal(t, "107", got[0].ProductCode)
	assert.True(t, decimal.RequireFromString("21.50").Equal(got[0].RetailPrice))
	require.NotNil(t, got[0].Barcode)
	assert.Equal(t, "6009509920844", *got[0].Barcode)
}

func TestImportAbsentBarcodeNeverErases(t *testing.T) {
	env := newTestEnv(t)
	env.importA(t, rec("X", "Thing", "1.00", "111"))
	env.importB(t, rec("X", "Thing", "1.00", ""))
	assert.Equal(t, "111", env.effectiveBarcode(t, "X"))

	// an empty barcode in the barcode-bearing report does not erase either
	env.importA(t, rec("X", "Thing", "1.00", "0000000000000"))
	assert.Equal(t, "111", env.effectiveBarcode(t, "X"))
}

func TestImportBarcodeArrivesAfterBarcodelessRow(t *testing.T) {
	env := newTestEnv(t)
	env.importB(t, rec("Y", "Other", "2.00", ""))
	assert.Equal(t, "", env.effectiveBarcode(t, "Y"))

	env.importA(t, rec("Y", "Other", "2.00", "^600 95 51"))
	assert.Equal(t, "6009551", env.effectiveBarcode(t, "Y"))
}

func TestImportSkipRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.importer.Import(ctx,
		[]dto.CatalogRecord{
			rec("999999", "Handling", "0", "5"),
			rec("", "No code", "1", ""),
			rec("200", "Line Group total", "1", ""),
			rec("201", "Broken", "-1", ""),
		},
		[]dto.CatalogRecord{rec("999999", "Handling", "0", ""), rec("202", "", "3.456", "")},
	)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ImportedWithBarcodes)
	assert.Equal(t, 1, res.ImportedWithoutBarcodes)
	assert.Equal(t, 5, res.Skipped)

	_, err = env.overrides.Get(ctx, "999999")
	assert.ErrorIs(t, err, ErrProductNotFound)

	st, err := env.overrides.Get(ctx, "202")
	require.NoError(t, err)
	assert.Equal(t, UnknownDescription, st.FullDescription)

	p, err := env.products.FindEffective(ctx, "202")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("3.46").Equal(p.RetailPrice))
}

// ─── Override manager ───────────────────────────────────────────────────────

func TestClearOverrideIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.importA(t, rec("A", "Apple", "1", ""))

	for i := 0; i < 2; i++ {
		res, err := env.overrides.Clear(ctx, "A")
		require.NoError(t, err)
		assert.False(t, res.Cleared)
	}
}

func TestSetOverrideConflictGuard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.importA(t, rec("A", "Apple", "1", ""), rec("B", "Banana", "1", ""))

	_, err := env.overrides.Set(ctx, "A", "123", false)
	require.NoError(t, err)

	_, err = env.overrides.Set(ctx, "B", "123", false)
	assert.ErrorIs(t, err, ErrBarcodeConflict)

	res, err := env.overrides.Set(ctx, "A", "123", false)
	require.NoError(t, err)
	assert.Equal(t, "123", res.Barcode)

	assert.Equal(t, "", env.effectiveBarcode(t, "B"))
}

func TestSetOverrideValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.importA(t, rec("A", "Apple", "1", ""))

	_, err := env.overrides.Set(ctx, "A", "abc", false)
	assert.ErrorIs(t, err, ErrInvalidBarcode)
	_, err = env.overrides.Set(ctx, "A", "0000", false)
	assert.ErrorIs(t, err, ErrInvalidBarcode)
	_, err = env.overrides.Set(ctx, "nope", "123", false)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestOverrideSurvivesReimport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.importA(t, rec("X", "Thing", "1", ""))

	_, err := env.overrides.Set(ctx, "X", "222", false)
	require.NoError(t, err)

	env.importA(t, rec("X", "Thing", "1", "111"))

	st, err := env.overrides.Get(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, "222", *st.EffectiveBarcode)
	assert.Equal(t, "111", *st.CatalogBarcode)

	got := env.resolveSmart(t, "222")
	require.Len(t, got, 1)
	assert.Equal(t, "222", *got[0].Barcode)
}

func TestReassignOverrideReleasesOldAlias(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.importA(t, rec("A", "Apple", "1", ""), rec("B", "Banana", "1", ""))

	_, err := env.overrides.Set(ctx, "A", "123", false)
	require.NoError(t, err)
	_, err = env.overrides.Set(ctx, "A", "456", false)
	require.NoError(t, err)

	// 123 is free again
	_, err = env.overrides.Set(ctx, "B", "123", false)
	require.NoError(t, err)

	got := env.resolveSmart(t, "123")
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].ProductCode)
}

func TestClearOverrideRestoresCatalogBarcode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.importA(t, rec("A", "Apple", "1", "111"))

	_, err := env.overrides.Set(ctx, "A", "999", false)
	require.NoError(t, err)
	assert.Equal(t, "999", env.effectiveBarcode(t, "A"))

	res, err := env.overrides.Clear(ctx, "A")
	require.NoError(t, err)
	assert.True(t, res.Cleared)
	assert.Equal(t, "111", env.effectiveBarcode(t, "A"))
	assert.Empty(t, env.resolveSmart(t, "999"))
}

func TestSetOverrideAlsoUpdatesCatalog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.importA(t, rec("A", "Apple", "1", "111"))

	_, err := env.overrides.Set(ctx, "A", " 600-123 ", true)
	require.NoError(t, err)

	st, err := env.overrides.Get(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "600123", *st.OverrideBarcode)
	assert.Equal(t, "600123", *st.CatalogBarcode)
}

// ─── Resolver ───────────────────────────────────────────────────────────────

func TestResolverAliasWins(t *testing.T) {
	env := newTestEnv(t)
	env.importA(t, rec("P1", "First", "1", ""), rec("P2", "Second", "1", "999"))

	claimed, err := env.barcodes.ClaimAliasTx(env.db, "999", "P1")
	require.NoError(t, err)
	require.True(t, claimed)

	got := env.resolveSmart(t, "999")
	require.Len(t, got, 1)
	assert.Equal(t, "P1", got[0].ProductCode)
}

func TestResolverModes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.importA(t,
		rec("107", "White Bread", "10", "6001"),
		rec("6001", "Code looks like barcode", "1", ""),
		rec("AB12", "Brown Bread", "12", "7770001"),
	)

	// the scan chain beats the product-code match
	got := env.resolveSmart(t, "^60 01")
	require.Len(t, got, 1)
	assert.Equal(t, "107", got[0].ProductCode)

	got = env.resolveSmart(t, "bread")
	assert.Len(t, got, 2)

	got, err := env.resolver.Resolve(ctx, "ab1", dto.SearchCode, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "AB12", got[0].ProductCode)

	got, err = env.resolver.Resolve(ctx, "white", dto.SearchName, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// partial barcode falls through to the LIKE step
	got, err = env.resolver.Resolve(ctx, "777", dto.SearchBarcode, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "AB12", got[0].ProductCode)

	got, err = env.resolver.Resolve(ctx, "abc", dto.SearchBarcode, 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = env.resolver.Resolve(ctx, "   ", dto.SearchSmart, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolveOne(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.importA(t, rec("107", "Bread", "10", "6001"), rec("55", "Milk", "5", ""))

	p, err := env.resolver.ResolveOne(ctx, "60 01", "")
	require.NoError(t, err)
	assert.Equal(t, "107", p.ProductCode)

	p, err = env.resolver.ResolveOne(ctx, "", "55")
	require.NoError(t, err)
	assert.Equal(t, "Milk", p.FullDescription)

	// digits typed into the barcode field can be a product code
	p, err = env.resolver.ResolveOne(ctx, "55", "")
	require.NoError(t, err)
	assert.Equal(t, "55", p.ProductCode)

	_, err = env.resolver.ResolveOne(ctx, "123", "zzz")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestStorageErrPassesDomainErrors(t *testing.T) {
	assert.Nil(t, storageErr("x", nil))
	assert.Equal(t, ErrBarcodeConflict, storageErr("x", ErrBarcodeConflict))
	assert.ErrorIs(t, storageErr("x", context.Canceled), context.Canceled)

	err := storageErr("import", assert.AnError)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRunTxRollsBackOnError(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := runTx(ctx, env.db, func(tx *gorm.DB) error {
		require.NoError(t, env.stocktake.EnsureSessionTx(tx, "B1"))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	ids, err := env.stocktake.ListSessionIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, runTx(ctx, env.db, func(tx *gorm.DB) error {
		return env.stocktake.EnsureSessionTx(tx, "B1")
	}))
	ids, err = env.stocktake.ListSessionIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"B1"}, ids)
}

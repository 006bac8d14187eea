package csvimport

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/model"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/repository"
)

func TestParseCatalogWithBarcodes(t *testing.T) {
	in := "\xEF\xBB\xBFProduct Code,Full Description,VAT Inclusive Price,Bar Code\n" +
		"107,White Bread 700g,\"1,021.50\",^60095 09920 844\n" +
		"108,No Barcode,3.00,0\n" +
		",,,\n"
	recs, err := ParseCatalog(strings.NewReader(in), true)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "107", recs[0].ProductCode)
	assert.Equal(t, "White Bread 700g", recs[0].FullDescription)
	assert.True(t, decimal.RequireFromString("1021.50").Equal(recs[0].RetailPrice))
	assert.Equal(t, "6009509920844", recs[0].Barcode)
	assert.Equal(t, "", recs[1].Barcode)
}

func TestParseCatalogIgnoresBarcodeColumnForFillReport(t *testing.T) {
	in := "Code;Description;Price;Barcode\n200;Milk;12,00;6001\n"
	recs, err := ParseCatalog(strings.NewReader(in), false)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "200", recs[0].ProductCode)
	assert.Equal(t, "", recs[0].Barcode)
}

func TestParseCatalogWindows1252AndTabs(t *testing.T) {
	// 0xE9 is "é" in Windows-1252 and invalid on its own in UTF-8.
	in := []byte("Product Code\tFull Description\tPrice\n300\tCaf\xE9 Latte\tabc\n")
	recs, err := ParseCatalog(bytes.NewReader(in), true)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Café Latte", recs[0].FullDescription)
	assert.True(t, recs[0].RetailPrice.IsZero())
}

func TestParseCatalogNBSPCells(t *testing.T) {
	in := "Product Code|Full Description\n\u00a0401\u00a0|Soap\u00a0\n"
	recs, err := ParseCatalog(strings.NewReader(in), false)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "401", recs[0].ProductCode)
	assert.Equal(t, "Soap", recs[0].FullDescription)
}

func TestParseCatalogKeepsBlankCodesForSkipCount(t *testing.T) {
	in := "Product Code,Full Description\n,Orphan row\n"
	recs, err := ParseCatalog(strings.NewReader(in), false)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "", recs[0].ProductCode)
}

func TestParseCatalogErrors(t *testing.T) {
	_, err := ParseCatalog(strings.NewReader("  \n"), true)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = ParseCatalog(strings.NewReader("Name,Price\nx,1\n"), true)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, ';', sniffDelimiter("a;b;c\n1,2;3"))
	assert.Equal(t, '\t', sniffDelimiter("a\tb\tc"))
	assert.Equal(t, '|', sniffDelimiter("a|b"))
	assert.Equal(t, ',', sniffDelimiter(`"x;y;z",b`))
	assert.Equal(t, ',', sniffDelimiter("single"))
}

func TestParseBinLocations(t *testing.T) {
	in := "Bin Code,Product Code,Description,Baseline Qty\n" +
		"A1,107,Bread,4\n" +
		"A1,,Missing code,1\n" +
		"10,200,Milk,\n"
	recs, err := ParseBinLocations(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "A1", recs[0].BinCode)
	assert.Equal(t, "107", recs[0].ProductCode)
	assert.True(t, recs[0].IsMain)
	assert.True(t, decimal.NewFromInt(4).Equal(recs[0].BaselineQty))
	assert.True(t, recs[1].BaselineQty.IsZero())
}

func TestParseBinLocationsFallsBackAcrossHeaders(t *testing.T) {
	in := "bin_code,BIN,Code\n,B7,55\n"
	recs, err := ParseBinLocations(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "B7", recs[0].BinCode)
}

func TestWriteStocktakeItems(t *testing.T) {
	by := "sam"
	bc := "6001"
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	var buf bytes.Buffer
	err := WriteStocktakeItems(&buf, []model.StocktakeItem{
		{SessionID: "A1", ProductCode: "107", Description: "Bread, white", Barcode: &bc,
			Quantity: decimal.RequireFromString("2.5"), UpdatedBy: &by, UpdatedAt: at},
		{SessionID: "A2", ProductCode: "108", Description: "UNKNOWN", Quantity: decimal.NewFromInt(1)},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"bin,product_code,description,barcode,quantity,updated_by,updated_at\n"+
			"A1,107,\"Bread, white\",6001,2.5,sam,2026-03-01T09:30:00Z\n"+
			"A2,108,UNKNOWN,,1,,\n",
		buf.String())
}

func TestWriteMergedTotals(t *testing.T) {
	var buf bytes.Buffer
	err := WriteMergedTotals(&buf, []repository.MergedTotal{
		{ProductCode: "107", Description: "Bread", Quantity: decimal.NewFromInt(7)},
	})
	require.NoError(t, err)
	assert.Equal(t, "product_code,description,quantity\n107,Bread,7\n", buf.String())
}

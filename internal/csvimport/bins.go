package csvimport

import (
	"io"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/dto"
)

var (
	binHeaders         = []string{"bin_code", "Bin", "Bin Code", "BIN"}
	binProductHeaders  = []string{"product_code", "Product Code", "Code"}
	binDescHeaders     = []string{"description", "Description", "Full Description", "Product"}
	binBaselineHeaders = []string{"baseline_qty", "Baseline Qty", "Qty", "Quantity"}
)

// ParseBinLocations reads the bin layout export. Rows missing a bin or a
// product code are dropped; every row is a main location.
func ParseBinLocations(r io.Reader) ([]dto.BinProductRecord, error) {
	header, rows, err := readTable(r)
	if err != nil {
		return nil, err
	}
	h := newHeaderIndex(header)
	binCols := h.all(binHeaders...)
	codeCols := h.all(binProductHeaders...)
	descCols := h.all(binDescHeaders...)
	qtyCols := h.all(binBaselineHeaders...)

	var out []dto.BinProductRecord
	for _, row := range rows {
		bin := firstValue(row, binCols)
		code := firstValue(row, codeCols)
		if bin == "" || code == "" {
			continue
		}
		out = append(out, dto.BinProductRecord{
			BinCode:     bin,
			ProductCode: code,
			Description: firstValue(row, descCols),
			BaselineQty: parseAmount(firstValue(row, qtyCols)),
			IsMain:      true,
		})
	}
	return out, nil
}

// all returns the columns of every candidate present, in candidate order.
func (h headerIndex) all(candidates ...string) []int {
	var cols []int
	seen := map[int]bool{}
	for _, c := range candidates {
		if i := h.pick(c); i >= 0 && !seen[i] {
			cols = append(cols, i)
			seen[i] = true
		}
	}
	return cols
}

// firstValue returns the first non-blank cell among cols.
func firstValue(row []string, cols []int) string {
	for _, i := range cols {
		if v := cell(row, i); v != "" {
			return v
		}
	}
	return ""
}

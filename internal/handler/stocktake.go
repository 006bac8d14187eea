package handler

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/apierror"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/csvimport"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/dto"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/service"

	"github.com/gin-gonic/gin"
)

const maxBinFileBytes = 16 << 20

type StocktakeHandler struct{ svc service.StocktakeService }

func NewStocktakeHandler(svc service.StocktakeService) *StocktakeHandler {
	return &StocktakeHandler{svc: svc}
}

// ListBins godoc
// @Summary List bins and sessions
// @Tags stocktake
// @Produce json
// @Success 200 {array} string
// @Router /v1/stocktake/bins [get]
func (h *StocktakeHandler) ListBins(c *gin.Context) {
	bins, err := h.svc.ListBins(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bins)
}

// BinProducts godoc
// @Summary Expected products in a bin
// @Tags stocktake
// @Produce json
// @Param bin_code query string true "Bin code"
// @Success 200 {array} dto.BinProductResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/stocktake/bin_products [get]
func (h *StocktakeHandler) BinProducts(c *gin.Context) {
	rows, err := h.svc.BinProducts(c.Request.Context(), c.Query("bin_code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// UploadBins godoc
// @Summary      Replace bin layout
// @Description  Replaces every bin row from the uploaded CSV.
// @Tags         stocktake
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Security     AdminPin
// @Param        file formData file true "Bin layout (.csv)"
// @Success      200  {object} dto.RowsResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/admin/stocktake/bins/upload [post]
func (h *StocktakeHandler) UploadBins(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Upload a CSV file (.csv) for bin locations"))
		return
	}
	data, err := readCSVUpload(fh, maxBinFileBytes)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	records, err := csvimport.ParseBinLocations(bytes.NewReader(data))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.UploadBins(c.Request.Context(), records)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpsertItem godoc
// @Summary      Record a count
// @Description  Resolves the product by barcode or code and stores the count for the session; unknown products are kept as UNKNOWN.
// @Tags         stocktake
// @Accept       json
// @Produce      json
// @Param        body body dto.UpsertItemRequest true "Count"
// @Success      200  {object} dto.StocktakeItemResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/stocktake/item [post]
func (h *StocktakeHandler) UpsertItem(c *gin.Context) {
	var req dto.UpsertItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpsertItem(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListItems godoc
// @Summary Counts in a session
// @Tags stocktake
// @Produce json
// @Param session_id query string true "Session (bin) id"
// @Success 200 {array} dto.StocktakeItemResponse
// @Router /v1/stocktake/items [get]
func (h *StocktakeHandler) ListItems(c *gin.Context) {
	items, err := h.svc.ListItems(c.Request.Context(), c.Query("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// ClearItems godoc
// @Summary Clear a session
// @Tags stocktake
// @Produce json
// @Param session_id query string true "Session (bin) id"
// @Success 200 {object} dto.RowsResponse
// @Router /v1/stocktake/items [delete]
func (h *StocktakeHandler) ClearItems(c *gin.Context) {
	resp, err := h.svc.ClearItems(c.Request.Context(), c.Query("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MoveItem godoc
// @Summary      Move a count to another bin
// @Tags         stocktake
// @Accept       json
// @Produce      json
// @Param        body body dto.MoveItemRequest true "Move"
// @Success      200  {object} dto.OKResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/stocktake/move [post]
func (h *StocktakeHandler) MoveItem(c *gin.Context) {
	var req dto.MoveItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.MoveItem(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportSession godoc
// @Summary Export a session as CSV
// @Tags stocktake
// @Produce text/csv
// @Param session_id query string true "Session (bin) id"
// @Success 200 {file} binary
// @Router /v1/stocktake/export [get]
func (h *StocktakeHandler) ExportSession(c *gin.Context) {
	session := strings.TrimSpace(c.Query("session_id"))
	data, err := h.svc.ExportSession(c.Request.Context(), session)
	if err != nil {
		respondError(c, err)
		return
	}
	attachment(c, "stocktake_"+safeFilename(session)+".csv", "text/csv", data)
}

// ExportAllBins godoc
// @Summary Export every count as CSV
// @Tags stocktake
// @Produce text/csv
// @Success 200 {file} binary
// @Router /v1/stocktake/export_all_bins [get]
func (h *StocktakeHandler) ExportAllBins(c *gin.Context) {
	data, err := h.svc.ExportAllBins(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	attachment(c, "stocktake_ALL_bins.csv", "text/csv", data)
}

// ExportAllMerged godoc
// @Summary Export totals per product as CSV
// @Tags stocktake
// @Produce text/csv
// @Success 200 {file} binary
// @Router /v1/stocktake/export_all_merged [get]
func (h *StocktakeHandler) ExportAllMerged(c *gin.Context) {
	data, err := h.svc.ExportAllMerged(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	attachment(c, "stocktake_ALL_merged.csv", "text/csv", data)
}

// BinSheet godoc
// @Summary Printable bin count sheet
// @Tags stocktake
// @Produce application/pdf
// @Param bin_code query string true "Bin code"
// @Success 200 {file} binary
// @Router /v1/stocktake/bin_sheet [get]
func (h *StocktakeHandler) BinSheet(c *gin.Context) {
	bin := strings.TrimSpace(c.Query("bin_code"))
	data, err := h.svc.BinSheetPDF(c.Request.Context(), bin)
	if err != nil {
		respondError(c, err)
		return
	}
	attachment(c, "bin_"+safeFilename(bin)+".pdf", "application/pdf", data)
}

// safeFilename keeps a session id usable inside Content-Disposition.
func safeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, s)
}

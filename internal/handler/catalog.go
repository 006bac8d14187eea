package handler

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/apierror"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/csvimport"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/dto"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const maxReportBytes = 64 << 20

type CatalogHandler struct {
	svc        service.CatalogImportService
	archiveDir string
}

// NewCatalogHandler keeps a copy of the last uploaded reports in archiveDir
// when it is set.
func NewCatalogHandler(svc service.CatalogImportService, archiveDir string) *CatalogHandler {
	return &CatalogHandler{svc: svc, archiveDir: archiveDir}
}

// Import godoc
// @Summary      Import POS product reports
// @Description  Applies the barcode report first (barcodes replace), then the report without barcodes (fills only). At least one file is required.
// @Tags         catalog
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Security     AdminPin
// @Param        file_barcodes   formData file false "Report with barcodes (.csv)"
// @Param        file_nobarcodes formData file false "Report without barcodes (.csv)"
// @Success      200  {object} dto.ImportResult
// @Failure      400  {object} apierror.APIError
// @Failure      503  {object} apierror.APIError
// @Router       /v1/admin/catalog/import [post]
func (h *CatalogHandler) Import(c *gin.Context) {
	withFile, _ := c.FormFile("file_barcodes")
	withoutFile, _ := c.FormFile("file_nobarcodes")
	if withFile == nil && withoutFile == nil {
		c.JSON(http.StatusBadRequest, apierror.New("Upload file_barcodes and/or file_nobarcodes"))
		return
	}

	withBarcodes, err := h.readReport(withFile, true, "report_with_barcodes.csv")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("file_barcodes: "+err.Error()))
		return
	}
	withoutBarcodes, err := h.readReport(withoutFile, false, "report_without_barcodes.csv")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("file_nobarcodes: "+err.Error()))
		return
	}

	resp, err := h.svc.Import(c.Request.Context(), withBarcodes, withoutBarcodes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

var errNotCSV = errors.New("upload a .csv file")

func (h *CatalogHandler) readReport(fh *multipart.FileHeader, hasBarcodes bool, archiveName string) ([]dto.CatalogRecord, error) {
	if fh == nil {
		return nil, nil
	}
	data, err := readCSVUpload(fh, maxReportBytes)
	if err != nil {
		return nil, err
	}
	h.archive(archiveName, data)
	return csvimport.ParseCatalog(bytes.NewReader(data), hasBarcodes)
}

func (h *CatalogHandler) archive(name string, data []byte) {
	if h.archiveDir == "" {
		return
	}
	if err := os.MkdirAll(h.archiveDir, 0o755); err != nil {
		log.Warn().Err(err).Msg("report archive dir unavailable")
		return
	}
	if err := os.WriteFile(filepath.Join(h.archiveDir, name), data, 0o644); err != nil {
		log.Warn().Err(err).Str("file", name).Msg("report archive failed")
	}
}

// readCSVUpload checks the extension and reads at most limit bytes.
func readCSVUpload(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".csv") {
		return nil, errNotCSV
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errors.New("file too large")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, csvimport.ErrEmptyFile
	}
	return data, nil
}

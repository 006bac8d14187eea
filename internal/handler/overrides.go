package handler

import (
	"net/http"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/dto"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type OverridesHandler struct{ svc service.OverrideService }

func NewOverridesHandler(svc service.OverrideService) *OverridesHandler {
	return &OverridesHandler{svc: svc}
}

// Get godoc
// @Summary Current barcode override
// @Tags overrides
// @Produce json
// @Security BearerAuth
// @Security AdminPin
// @Param code path string true "Product code"
// @Success 200 {object} dto.OverrideStatusResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/admin/products/{code}/barcode [get]
func (h *OverridesHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Set godoc
// @Summary      Set barcode override
// @Description  Assigns a barcode that survives catalog imports. Fails with 409 when another product already holds it.
// @Tags         overrides
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Security     AdminPin
// @Param        code path string                 true "Product code"
// @Param        body body dto.SetOverrideRequest true "Barcode"
// @Success      200  {object} dto.OverrideResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/admin/products/{code}/barcode [put]
func (h *OverridesHandler) Set(c *gin.Context) {
	var req dto.SetOverrideRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Set(c.Request.Context(), c.Param("code"), req.Barcode, req.AlsoUpdateCatalogBarcode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Clear godoc
// @Summary Clear barcode override
// @Tags overrides
// @Produce json
// @Security BearerAuth
// @Security AdminPin
// @Param code path string true "Product code"
// @Success 200 {object} dto.ClearOverrideResponse
// @Router /v1/admin/products/{code}/barcode [delete]
func (h *OverridesHandler) Clear(c *gin.Context) {
	resp, err := h.svc.Clear(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/apierror"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/dto"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type ReorderHandler struct{ svc service.ReorderService }

func NewReorderHandler(svc service.ReorderService) *ReorderHandler {
	return &ReorderHandler{svc: svc}
}

// Submit godoc
// @Summary      Send a reorder request
// @Description  Accepts a single line object or an object carrying a list of lines. Lines without a product code or with qty <= 0 are dropped.
// @Tags         reorder
// @Accept       json
// @Produce      json
// @Param        body body object true "Reorder lines"
// @Success      200  {object} dto.ReorderResponse
// @Failure      400  {object} apierror.APIError
// @Failure      502  {object} apierror.APIError
// @Failure      503  {object} apierror.APIError
// @Router       /v1/reorder [post]
func (h *ReorderHandler) Submit(c *gin.Context) {
	var req dto.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		msg := dto.ErrReorderNotObject.Error()
		if errors.Is(err, dto.ErrReorderNoLines) || errors.Is(err, dto.ErrReorderAllBad) {
			msg = err.Error()
		}
		c.JSON(http.StatusBadRequest, apierror.New(msg))
		return
	}
	resp, err := h.svc.Submit(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

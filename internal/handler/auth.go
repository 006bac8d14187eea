package handler

import (
	"net/http"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/dto"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// PinLogin godoc
// @Summary      Admin PIN login
// @Description  Exchanges the admin PIN for a signed session token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body dto.PinLoginRequest true "Admin PIN"
// @Success      200  {object} dto.LoginResponse
// @Failure      401  {object} apierror.APIError
// @Failure      429  {object} apierror.APIError
// @Router       /v1/auth/pin [post]
func (h *AuthHandler) PinLogin(c *gin.Context) {
	var req dto.PinLoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.LoginWithPIN(c.Request.Context(), req.Pin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

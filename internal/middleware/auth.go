package middleware

import (
	"net/http"
	"strings"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/apierror"

	"github.com/gin-gonic/gin"
)

const AdminPINHeader = "X-Admin-Pin"

// AdminVerifier is satisfied by service.AuthService.
type AdminVerifier interface {
	ValidateToken(token string) error
	CheckPIN(pin string) bool
}

// AdminAuth accepts either a Bearer session token issued by /v1/auth/pin or
// the raw admin PIN in X-Admin-Pin.
func AdminAuth(v AdminVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			if v.ValidateToken(strings.TrimPrefix(header, "Bearer ")) == nil {
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Invalid or expired session"))
			return
		}
		if pin := c.GetHeader(AdminPINHeader); pin != "" {
			if v.CheckPIN(pin) {
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Invalid admin PIN"))
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Admin authentication required"))
	}
}

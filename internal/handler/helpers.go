package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/apierror"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails; the
// caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps service errors to status codes. Server-side failures are
// attached with c.Error so middleware.ErrorHandler logs them; the client only
// sees a generic message.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidBarcode):
		c.JSON(http.StatusUnprocessableEntity, apierror.New("Invalid barcode"))
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, apierror.New("Product not found"))
	case errors.Is(err, service.ErrItemNotFound):
		c.JSON(http.StatusNotFound, apierror.New(detailOf(err, service.ErrItemNotFound)))
	case errors.Is(err, service.ErrImageNotFound):
		c.JSON(http.StatusNotFound, apierror.New("Image not found"))
	case errors.Is(err, service.ErrBarcodeConflict):
		c.JSON(http.StatusConflict, apierror.New("Barcode already assigned to another product"))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, apierror.New(detailOf(err, service.ErrInvalidInput)))
	case errors.Is(err, service.ErrInvalidPIN):
		c.JSON(http.StatusUnauthorized, apierror.New("Invalid PIN"))
	case errors.Is(err, service.ErrEmailNotConfigured):
		c.JSON(http.StatusServiceUnavailable, apierror.New(err.Error()))
	case errors.Is(err, service.ErrEmailDelivery):
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, apierror.New("Reorder email failed"))
	case errors.Is(err, service.ErrStorageUnavailable):
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, apierror.New("Storage unavailable, try again"))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Internal server error"))
	}
}

// detailOf strips the sentinel prefix from a wrapped "<sentinel>: <detail>".
func detailOf(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}

// queryLimit reads ?limit, falling back to def and clamping to [1, 100].
func queryLimit(c *gin.Context, def int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		n = def
	}
	if n < 1 {
		n = 1
	}
	if n > 100 {
		n = 100
	}
	return n
}

func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}

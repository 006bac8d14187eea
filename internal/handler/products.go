package handler

import (
	"io"
	"net/http"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/apierror"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/dto"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/service"

	"github.com/gin-gonic/gin"
)

const maxImageBytes = 10 << 20

type ProductsHandler struct {
	resolver     service.ResolverService
	images       service.ImageService
	defaultLimit int
}

func NewProductsHandler(resolver service.ResolverService, images service.ImageService, defaultLimit int) *ProductsHandler {
	return &ProductsHandler{resolver: resolver, images: images, defaultLimit: defaultLimit}
}

// Search godoc
// @Summary      Search products
// @Description  Resolves a scan or free text. smart tries alias, override, catalog barcode and product code before a description match.
// @Tags         products
// @Produce      json
// @Param        q     query string false "Scan or text (also query, search)"
// @Param        mode  query string false "smart | name | code | barcode"
// @Param        limit query int    false "1-100, default SEARCH_DEFAULT_LIMIT"
// @Success      200  {array}  dto.ProductResponse
// @Failure      503  {object} apierror.APIError
// @Router       /v1/products/search [get]
func (h *ProductsHandler) Search(c *gin.Context) {
	var q dto.SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	limit := queryLimit(c, h.defaultLimit)
	resp, err := h.resolver.Resolve(c.Request.Context(), q.Text(), dto.ParseSearchMode(q.Mode), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	h.images.Decorate(c.Request.Context(), resp)
	c.JSON(http.StatusOK, resp)
}

// Image godoc
// @Summary Product image
// @Tags products
// @Produce image/jpeg
// @Param code path string true "Product code"
// @Success 200 {file} binary
// @Failure 404 {object} apierror.APIError
// @Router /v1/products/{code}/image [get]
func (h *ProductsHandler) Image(c *gin.Context) {
	data, contentType, err := h.images.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, data)
}

// UploadImage godoc
// @Summary      Upload product image
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Security     AdminPin
// @Param        code path     string true "Product code"
// @Param        file formData file   true ".jpg, .jpeg, .png or .webp"
// @Success      200  {object} dto.ImageUploadResponse
// @Failure      400  {object} apierror.APIError
// @Failure      413  {object} apierror.APIError
// @Router       /v1/admin/products/{code}/image [post]
func (h *ProductsHandler) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Missing file"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Unreadable file"))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Unreadable file"))
		return
	}
	if len(data) > maxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, apierror.New("Image too large"))
		return
	}

	resp, err := h.images.Upload(c.Request.Context(), c.Param("code"), fh.Filename, data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteImage godoc
// @Summary Delete product image
// @Tags products
// @Produce json
// @Security BearerAuth
// @Security AdminPin
// @Param code path string true "Product code"
// @Success 200 {object} dto.ImageDeleteResponse
// @Router /v1/admin/products/{code}/image [delete]
func (h *ProductsHandler) DeleteImage(c *gin.Context) {
	resp, err := h.images.Delete(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

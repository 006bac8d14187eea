package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/dto"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/infra"

	"github.com/rs/zerolog/log"
)

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// ImageService stores one photo per product. Whatever the upload format,
// the photo is kept under "<code>.jpg" and served as image/jpeg.
type ImageService interface {
	Upload(ctx context.Context, productCode, filename string, data []byte) (*dto.ImageUploadResponse, error)
	Get(ctx context.Context, productCode string) ([]byte, string, error)
	Delete(ctx context.Context, productCode string) (*dto.ImageDeleteResponse, error)
	// Decorate sets ImageURL on every product that has a stored photo.
	Decorate(ctx context.Context, products []dto.ProductResponse)
}

type imageService struct {
	store infra.ImageStore
}

func NewImageService(store infra.ImageStore) ImageService {
	return &imageService{store: store}
}

// ImageURL is the public path a product photo is served from.
func ImageURL(code string) string { return "/v1/products/" + code + "/image" }

func imageKey(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" || strings.ContainsAny(code, `/\`) || code == "." || code == ".." {
		return "", invalidInput("Invalid product code")
	}
	return code + ".jpg", nil
}

func (s *imageService) Upload(ctx context.Context, productCode, filename string, data []byte) (*dto.ImageUploadResponse, error) {
	key, err := imageKey(productCode)
	if err != nil {
		return nil, err
	}
	if !allowedImageExt[strings.ToLower(filepath.Ext(filename))] {
		return nil, invalidInput("Upload an image: .jpg/.jpeg/.png/.webp")
	}
	if len(data) == 0 {
		return nil, invalidInput("Uploaded file is empty")
	}
	if err := s.store.Put(ctx, key, data); err != nil {
		return nil, storageErr("save image", err)
	}
	code := strings.TrimSpace(productCode)
	log.Info().Str("product_code", code).Int("bytes", len(data)).Msg("product image saved")
	return &dto.ImageUploadResponse{OK: true, ProductCode: code, ImageURL: ImageURL(code)}, nil
}

func (s *imageService) Get(ctx context.Context, productCode string) ([]byte, string, error) {
	key, err := imageKey(productCode)
	if err != nil {
		return nil, "", ErrImageNotFound
	}
	data, _, err := s.store.Get(ctx, key)
	if errors.Is(err, infra.ErrImageNotFound) {
		return nil, "", ErrImageNotFound
	}
	if err != nil {
		return nil, "", storageErr("read image", err)
	}
	return data, "image/jpeg", nil
}

func (s *imageService) Delete(ctx context.Context, productCode string) (*dto.ImageDeleteResponse, error) {
	key, err := imageKey(productCode)
	if err != nil {
		return nil, err
	}
	deleted, err := s.store.Delete(ctx, key)
	if err != nil {
		return nil, storageErr("delete image", err)
	}
	return &dto.ImageDeleteResponse{OK: true, Deleted: deleted}, nil
}

func (s *imageService) Decorate(ctx context.Context, products []dto.ProductResponse) {
	for i := range products {
		key, err := imageKey(products[i].ProductCode)
		if err != nil {
			continue
		}
		ok, err := s.store.Exists(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("product_code", products[i].ProductCode).Msg("image lookup failed")
			continue
		}
		if ok {
			url := ImageURL(products[i].ProductCode)
			products[i].ImageURL = &url
		}
	}
}

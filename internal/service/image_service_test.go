package service

import (
	"context"
	"testing"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/dto"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImageService(t *testing.T) ImageService {
	t.Helper()
	store, err := infra.NewLocalImageStore(t.TempDir())
	require.NoError(t, err)
	return NewImageService(store)
}

func TestImageLifecycle(t *testing.T) {
	svc := newImageService(t)
	ctx := context.Background()

	res, err := svc.Upload(ctx, " 107 ", "photo.PNG", []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "/v1/products/107/image", res.ImageURL)

	data, ct, err := svc.Get(ctx, "107")
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), data)
	assert.Equal(t, "image/jpeg", ct)

	products := []dto.ProductResponse{{ProductCode: "107"}, {ProductCode: "108"}}
	svc.Decorate(ctx, products)
	require.NotNil(t, products[0].ImageURL)
	assert.Equal(t, "/v1/products/107/image", *products[0].ImageURL)
	assert.Nil(t, products[1].ImageURL)

	del, err := svc.Delete(ctx, "107")
	require.NoError(t, err)
	assert.True(t, del.Deleted)
	del, err = svc.Delete(ctx, "107")
	require.NoError(t, err)
	assert.False(t, del.Deleted)

	_, _, err = svc.Get(ctx, "107")
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestImageUploadValidation(t *testing.T) {
	svc := newImageService(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "107", "notes.txt", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Upload(ctx, "../etc", "a.jpg", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Upload(ctx, "107", "a.webp", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

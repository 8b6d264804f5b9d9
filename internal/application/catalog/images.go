package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/catalog"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImageStore is object storage that accepts direct client uploads
type ImageStore interface {
	// GenerateUploadURL presigns a PUT for key; a zero expiresIn uses the store default
	GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error)
	ObjectExists(ctx context.Context, key string) (bool, error)
	DeleteObject(ctx context.Context, key string) error
	// PublicURL is the address the storefront loads key from
	PublicURL(key string) string
}

var (
	// ErrImagesDisabled is returned when no image store is configured
	ErrImagesDisabled = shared.NewDomainError("IMAGE_STORAGE_DISABLED", "Product image uploads are not enabled")
	// ErrImageNotUploaded is returned when confirming a key with no object behind it
	ErrImageNotUploaded = shared.NewDomainError("IMAGE_NOT_UPLOADED", "Image has not been uploaded yet")
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// RequestImageUpload presigns an upload for a new picture of one of the
// seller's products. The product keeps its current image until confirmed.
func (s *Service) RequestImageUpload(ctx context.Context, sellerID, id uuid.UUID, contentType string) (*ImageUpload, error) {
	if s.images == nil {
		return nil, ErrImagesDisabled
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Unsupported image type "+contentType)
	}
	if _, err := s.products.FindForSeller(ctx, sellerID, id); err != nil {
		return nil, err
	}

	key := imageKeyPrefix(id) + uuid.NewString() + ext
	uploadURL, expiresAt, err := s.images.GenerateUploadURL(ctx, key, contentType, 0)
	if err != nil {
		return nil, err
	}
	return &ImageUpload{UploadURL: uploadURL, StorageKey: key, ExpiresAt: expiresAt}, nil
}

// ConfirmImage points the product at an uploaded object and removes the
// object it replaced, if that one was stored here too.
func (s *Service) ConfirmImage(ctx context.Context, sellerID, id uuid.UUID, key string) (*catalog.Product, error) {
	if s.images == nil {
		return nil, ErrImagesDisabled
	}
	if !strings.HasPrefix(key, imageKeyPrefix(id)) {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Storage key does not belong to this product")
	}
	product, err := s.products.FindForSeller(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}
	exists, err := s.images.ObjectExists(ctx, key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrImageNotUploaded
	}

	previous := product.ImageURL
	product.SetImage(s.images.PublicURL(key))
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	s.lookups.Forget(id.String())

	if old, ok := strings.CutPrefix(previous, s.images.PublicURL("")); ok && old != "" && old != key {
		if err := s.images.DeleteObject(ctx, old); err != nil {
			logger.L(ctx).Warn("failed to delete replaced product image",
				zap.String("product_id", id.String()),
				zap.String("storage_key", old),
				zap.Error(err))
		}
	}
	return product, nil
}

func imageKeyPrefix(productID uuid.UUID) string {
	return "products/" + productID.String() + "/"
}

package catalog

import (
	"time"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/catalog"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductListFilter represents filter options for the storefront listing
type ProductListFilter struct {
	Search     string     `form:"search" binding:"max=100"`
	Featured   *bool      `form:"featured"`
	CategoryID *uuid.UUID `form:"category_id"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ProductRequest carries the seller-editable fields of a product
type ProductRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"max=2000"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Currency    string          `json:"currency" binding:"omitempty,currency"`
	ImageURL    string          `json:"image_url" binding:"omitempty,url,max=1000"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	Featured    bool            `json:"featured"`
}

// SetActiveRequest publishes or hides a product
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// ImageUploadRequest asks for a presigned upload URL
type ImageUploadRequest struct {
	ContentType string `json:"content_type" binding:"required,oneof=image/jpeg image/png image/webp"`
}

// ImageUpload is where the client PUTs the image bytes before confirming
type ImageUpload struct {
	UploadURL  string    `json:"upload_url"`
	StorageKey string    `json:"storage_key"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ImageConfirmRequest attaches an uploaded object to the product
type ImageConfirmRequest struct {
	StorageKey string `json:"storage_key" binding:"required,max=500"`
}

func (r ProductRequest) details() catalog.ProductDetails {
	return catalog.ProductDetails{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Currency:    valueobject.Currency(r.Currency),
		ImageURL:    r.ImageURL,
		CategoryID:  r.CategoryID,
		Featured:    r.Featured,
	}
}

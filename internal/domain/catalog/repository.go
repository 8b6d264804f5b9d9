package catalog

import (
	"context"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductFilter narrows product queries
type ProductFilter struct {
	shared.Filter
	ActiveOnly bool
	Featured   *bool
	CategoryID *uuid.UUID
	SellerID   *uuid.UUID
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by ID with its category and seller loaded
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll finds products matching the filter, newest first
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, error)

	// Count counts products matching the filter
	Count(ctx context.Context, filter ProductFilter) (int64, error)

	// FindForSeller finds a product only if it belongs to sellerID
	FindForSeller(ctx context.Context, sellerID, id uuid.UUID) (*Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// DeleteForSeller deletes a product only if it belongs to sellerID
	DeleteForSeller(ctx context.Context, sellerID, id uuid.UUID) error
}

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	FindAll(ctx context.Context) ([]Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
}

// Package catalog serves the storefront listing and the seller's own product
// management.
package catalog

import (
	"context"
	"errors"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/catalog"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/logger"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ErrInvalidCategory is returned when a product points at an unknown category
var ErrInvalidCategory = shared.NewDomainError("INVALID_CATEGORY", "Category not found")

// Service handles catalog reads and seller product writes
type Service struct {
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	images     ImageStore
	lookups    singleflight.Group
}

// Option configures a Service
type Option func(*Service)

// WithImageStore enables product image uploads
func WithImageStore(store ImageStore) Option {
	return func(s *Service) {
		s.images = store
	}
}

// NewService creates a new catalog service
func NewService(products catalog.ProductRepository, categories catalog.CategoryRepository, opts ...Option) *Service {
	s := &Service{products: products, categories: categories}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListProducts lists active products newest first. A search query is matched
// ignoring case and accents, so it is applied after loading.
func (s *Service) ListProducts(ctx context.Context, f ProductListFilter) (shared.Paginated[catalog.Product], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "list_products")
	defer span.End()

	page, size := normalizePage(f.Page, f.PageSize)
	filter := catalog.ProductFilter{
		Filter:     shared.Filter{Page: page, PageSize: size, OrderBy: "created_at", OrderDir: "desc"},
		ActiveOnly: true,
		Featured:   f.Featured,
		CategoryID: f.CategoryID,
	}

	matcher := catalog.NewSearchMatcher(f.Search)
	if !matcher.IsEmpty() {
		all := filter
		all.PageSize = 0
		products, err := s.products.FindAll(ctx, all)
		if err != nil {
			telemetry.RecordError(span, err)
			return shared.Paginated[catalog.Product]{}, err
		}
		matched := matcher.Filter(products)
		return shared.NewPaginated(pageOf(matched, filter.Filter), int64(len(matched)), page, size), nil
	}

	total, err := s.products.Count(ctx, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return shared.Paginated[catalog.Product]{}, err
	}
	products, err := s.products.FindAll(ctx, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return shared.Paginated[catalog.Product]{}, err
	}
	span.SetAttributes(attribute.Int64("catalog.total", total))
	return shared.NewPaginated(products, total, page, size), nil
}

// GetProduct returns an active product. Concurrent lookups of the same id
// share one query.
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	v, err, dup := s.lookups.Do(id.String(), func() (any, error) {
		return s.products.FindByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if dup {
		logger.L(ctx).Debug("product lookup shared", zap.String("product_id", id.String()))
	}

	p := *v.(*catalog.Product)
	if !p.Active {
		return nil, errNotFound()
	}
	return &p, nil
}

// ListCategories lists all categories by name
func (s *Service) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	return s.categories.FindAll(ctx)
}

// ListSellerProducts lists every product of a seller, hidden ones included
func (s *Service) ListSellerProducts(ctx context.Context, sellerID uuid.UUID) ([]catalog.Product, error) {
	return s.products.FindAll(ctx, catalog.ProductFilter{
		Filter:   shared.Filter{OrderBy: "created_at", OrderDir: "desc"},
		SellerID: &sellerID,
	})
}

// CreateProduct lists a new product for sellerID
func (s *Service) CreateProduct(ctx context.Context, sellerID uuid.UUID, req ProductRequest) (*catalog.Product, error) {
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	product, err := catalog.NewProduct(sellerID, req.details())
	if err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	logger.L(ctx).Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("seller_id", sellerID.String()))
	return product, nil
}

// UpdateProduct replaces the editable fields of one of the seller's products
func (s *Service) UpdateProduct(ctx context.Context, sellerID, id uuid.UUID, req ProductRequest) (*catalog.Product, error) {
	product, err := s.products.FindForSeller(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	if err := product.Update(req.details()); err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	s.lookups.Forget(id.String())
	return product, nil
}

// SetProductActive publishes or hides one of the seller's products
func (s *Service) SetProductActive(ctx context.Context, sellerID, id uuid.UUID, active bool) (*catalog.Product, error) {
	product, err := s.products.FindForSeller(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}
	product.SetActive(active)
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	s.lookups.Forget(id.String())
	return product, nil
}

// DeleteProduct removes one of the seller's products
func (s *Service) DeleteProduct(ctx context.Context, sellerID, id uuid.UUID) error {
	if err := s.products.DeleteForSeller(ctx, sellerID, id); err != nil {
		return err
	}
	s.lookups.Forget(id.String())
	logger.L(ctx).Info("product deleted",
		zap.String("product_id", id.String()),
		zap.String("seller_id", sellerID.String()))
	return nil
}

func (s *Service) checkCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.categories.FindByID(ctx, *id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrInvalidCategory
		}
		return err
	}
	return nil
}

func errNotFound() error {
	return shared.NewDomainError(shared.ErrNotFound.Code, "Product not found")
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

func pageOf(items []catalog.Product, f shared.Filter) []catalog.Product {
	start := f.Offset()
	if start >= len(items) {
		return []catalog.Product{}
	}
	end := min(start+f.PageSize, len(items))
	return items[start:end]
}

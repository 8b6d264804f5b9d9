// Package orders lists the checkout records of a customer.
package orders

import (
	"context"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/trade"
	"github.com/google/uuid"
)

// ListFilter is the pagination of the order history
type ListFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Service reads order history
type Service struct {
	orders trade.OrderRepository
}

// NewService creates a new order history service
func NewService(orders trade.OrderRepository) *Service {
	return &Service{orders: orders}
}

// ListOrders returns the user's orders newest first with their items
func (s *Service) ListOrders(ctx context.Context, userID uuid.UUID, f ListFilter) (shared.Paginated[trade.Order], error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}

	total, err := s.orders.CountByUser(ctx, userID)
	if err != nil {
		return shared.Paginated[trade.Order]{}, err
	}
	orders, err := s.orders.FindByUser(ctx, userID, filter)
	if err != nil {
		return shared.Paginated[trade.Order]{}, err
	}
	return shared.NewPaginated(orders, total, filter.Page, filter.PageSize), nil
}

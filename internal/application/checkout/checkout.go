// Package checkout records orders and hands cart groups to sellers through
// click-to-chat links.
package checkout

import (
	"context"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/cart"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/dispatch"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/trade"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Cart is the session cart a checkout reads and may clear
type Cart interface {
	Items() []cart.LineItem
	Clear(ctx context.Context) error
}

// Request selects the checkout variant. The drawer variant clears the cart
// once every group was sent and adds the buyer to the messages.
type Request struct {
	ClearCart bool
	Customer  *dispatch.Customer
}

// Result is returned as soon as the order attempt finished and the bulk
// send started
type Result struct {
	Order      *trade.Order `json:"order,omitempty"`
	OrderError string       `json:"order_error,omitempty"`
	Groups     int          `json:"groups"`
	Unroutable int          `json:"unroutable"`
	ClearCart  bool         `json:"clear_cart"`
}

// Service runs the checkout flow: one order attempt, then a bulk send that
// does not depend on the order outcome
type Service struct {
	submitter *OrderSubmitter
	logger    *zap.Logger
}

// NewService creates a checkout service
func NewService(submitter *OrderSubmitter, l *zap.Logger) *Service {
	if l == nil {
		l = zap.NewNop()
	}
	return &Service{submitter: submitter, logger: l}
}

// Checkout records the order for userID (skipped for guests) and starts the
// bulk send on the same cart snapshot
func (s *Service) Checkout(ctx context.Context, sessionCart Cart, dispatcher *Dispatcher, userID uuid.UUID, req Request) (*Result, error) {
	items := sessionCart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	// Held across the order insert: a second checkout on the session fails
	// before writing anything
	claim, err := dispatcher.ClaimAll()
	if err != nil {
		return nil, err
	}
	defer claim.Release()

	result := &Result{ClearCart: req.ClearCart}
	grouping := cart.GroupByChannel(items)
	result.Groups = len(grouping.Groups)
	result.Unroutable = len(grouping.Unroutable)

	order, err := s.submitter.CreateOrder(ctx, userID, items)
	if err != nil {
		result.OrderError = err.Error()
	}
	result.Order = order

	opts := BulkOptions{Items: items}
	if req.ClearCart {
		opts.Customer = req.Customer
		opts.OnComplete = func(ctx context.Context, _ BulkReport) {
			if err := sessionCart.Clear(ctx); err != nil {
				logger.WithLogger(ctx, s.logger).Error("failed to clear cart after checkout", zap.Error(err))
			}
		}
	}
	claim.Start(ctx, opts)
	return result, nil
}

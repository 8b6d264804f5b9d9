// Package cart keeps one cart session in memory, mirrors every change to
// durable storage and follows changes made by other instances.
package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/cart"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/catalog"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Option configures a Service
type Option func(*Service)

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOnChange registers a callback run after a change from another
// instance replaced the cart
func WithOnChange(fn func(items []cart.LineItem)) Option {
	return func(s *Service) {
		s.onChange = fn
	}
}

// Service is the cart of one session. It is safe for concurrent use.
type Service struct {
	writeMu  sync.Mutex
	mu       sync.RWMutex
	cart     *cart.Cart
	storage  cart.Storage
	key      string
	origin   string
	logger   *zap.Logger
	onChange func([]cart.LineItem)
}

// NewService creates an empty cart stored under key
func NewService(storage cart.Storage, key string, opts ...Option) *Service {
	s := &Service{
		cart:    cart.New(nil),
		storage: storage,
		key:     key,
		origin:  uuid.NewString(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the durable storage key
func (s *Service) Key() string {
	return s.key
}

// Load restores the cart from storage. An unreadable entry is deleted and the
// cart starts empty; a storage error is returned and the cart stays empty.
func (s *Service) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.replace(nil)
	raw, err := s.storage.Load(ctx, s.key)
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}

	items, err := decodeItems(raw)
	if err != nil {
		logger.WithLogger(ctx, s.logger).Warn("discarding unreadable cart entry",
			zap.String("key", s.key),
			zap.Error(err))
		if rmErr := s.storage.Remove(ctx, s.key, s.origin); rmErr != nil {
			logger.WithLogger(ctx, s.logger).Warn("failed to remove unreadable cart entry",
				zap.String("key", s.key),
				zap.Error(rmErr))
		}
		return nil
	}
	s.replace(items)
	return nil
}

func (s *Service) replace(items []cart.LineItem) {
	s.mu.Lock()
	s.cart = cart.New(items)
	s.mu.Unlock()
}

// AddItem adds quantity units of product, merging with an existing line
func (s *Service) AddItem(ctx context.Context, product catalog.Product, quantity int) error {
	return s.mutate(ctx, func(c *cart.Cart) error {
		return c.Add(product, quantity)
	})
}

// UpdateQuantity sets an absolute quantity; zero or less removes the line
func (s *Service) UpdateQuantity(ctx context.Context, productID uuid.UUID, quantity int) error {
	return s.mutate(ctx, func(c *cart.Cart) error {
		c.SetQuantity(productID, quantity)
		return nil
	})
}

// RemoveItem removes the line of productID if present
func (s *Service) RemoveItem(ctx context.Context, productID uuid.UUID) error {
	return s.mutate(ctx, func(c *cart.Cart) error {
		c.Remove(productID)
		return nil
	})
}

// Clear empties the cart and deletes the durable entry
func (s *Service) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.cart.Clear()
	s.mu.Unlock()
	return s.storage.Remove(ctx, s.key, s.origin)
}

// StartSync follows changes of the durable entry made by other instances
// until ctx is done or stop is called
func (s *Service) StartSync(ctx context.Context) (stop func(), err error) {
	return s.storage.Subscribe(ctx, s.key, s.applyChange)
}

// Sync is the blocking form of StartSync
func (s *Service) Sync(ctx context.Context) error {
	stop, err := s.StartSync(ctx)
	if err != nil {
		return err
	}
	defer stop()
	<-ctx.Done()
	return nil
}

// Items returns a copy of the line items
func (s *Service) Items() []cart.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Items()
}

// TotalPrice returns the exact cart total
func (s *Service) TotalPrice() decimal.Decimal {
	return cart.TotalPrice(s.Items())
}

// TotalItemCount returns the number of units in the cart
func (s *Service) TotalItemCount() int {
	return cart.TotalItemCount(s.Items())
}

// GroupBySeller groups the current items by seller
func (s *Service) GroupBySeller() []cart.SellerGroup {
	return cart.GroupBySeller(s.Items())
}

// GroupByChannel groups the current items by messaging number
func (s *Service) GroupByChannel() cart.ChannelGrouping {
	return cart.GroupByChannel(s.Items())
}

// mutate applies fn and writes the resulting list. writeMu keeps writes in
// mutation order; mu is not held while storage notifies subscribers.
func (s *Service) mutate(ctx context.Context, fn func(*cart.Cart) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if err := fn(s.cart); err != nil {
		s.mu.Unlock()
		return err
	}
	items := s.cart.Items()
	s.mu.Unlock()

	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.storage.Save(ctx, s.key, raw, s.origin)
}

func (s *Service) applyChange(change cart.Change) {
	if change.Origin == s.origin || change.Key != s.key {
		return
	}

	var incoming []cart.LineItem
	if !change.Deleted {
		items, err := decodeItems(change.Value)
		if err != nil {
			s.logger.Warn("ignoring unreadable cart change",
				zap.String("key", s.key),
				zap.Error(err))
			return
		}
		incoming = items
	}

	s.mu.Lock()
	current, _ := json.Marshal(s.cart.Items())
	next, _ := json.Marshal(cart.New(incoming).Items())
	if bytes.Equal(current, next) {
		s.mu.Unlock()
		return
	}
	s.cart = cart.New(incoming)
	snapshot := s.cart.Items()
	s.mu.Unlock()

	s.logger.Debug("cart replaced by remote change",
		zap.String("key", s.key),
		zap.String("origin", change.Origin),
		zap.Int("items", len(snapshot)))
	if s.onChange != nil {
		s.onChange(snapshot)
	}
}

func decodeItems(raw []byte) ([]cart.LineItem, error) {
	var items []cart.LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

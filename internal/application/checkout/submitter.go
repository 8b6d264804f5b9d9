package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/cart"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/trade"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/logger"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrOrderStoreUnavailable is returned while the breaker is open
var ErrOrderStoreUnavailable = shared.NewDomainError("ORDER_STORE_UNAVAILABLE", "Orders cannot be recorded right now")

// SubmitterConfig tunes the order store breaker
type SubmitterConfig struct {
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

// DefaultSubmitterConfig returns the breaker settings used when none are configured
func DefaultSubmitterConfig() SubmitterConfig {
	return SubmitterConfig{BreakerMaxFailures: 5, BreakerOpenTimeout: 30 * time.Second}
}

// SubmitterOption configures an OrderSubmitter
type SubmitterOption func(*OrderSubmitter)

// WithSubmitterLogger sets the logger
func WithSubmitterLogger(l *zap.Logger) SubmitterOption {
	return func(s *OrderSubmitter) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSubmitterMetrics sets the metrics recorder
func WithSubmitterMetrics(m *telemetry.CheckoutMetrics) SubmitterOption {
	return func(s *OrderSubmitter) {
		s.metrics = m
	}
}

// OrderSubmitter records one order per checkout. Each checkout makes a
// single attempt; header and items are separate writes.
type OrderSubmitter struct {
	orders  trade.OrderRepository
	breaker *gobreaker.CircuitBreaker[*trade.Order]
	metrics *telemetry.CheckoutMetrics
	logger  *zap.Logger
}

// NewOrderSubmitter creates an order submitter
func NewOrderSubmitter(orders trade.OrderRepository, cfg SubmitterConfig, opts ...SubmitterOption) *OrderSubmitter {
	if cfg.BreakerMaxFailures == 0 {
		cfg.BreakerMaxFailures = DefaultSubmitterConfig().BreakerMaxFailures
	}
	s := &OrderSubmitter{orders: orders, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	maxFailures := cfg.BreakerMaxFailures
	s.breaker = gobreaker.NewCircuitBreaker[*trade.Order](gobreaker.Settings{
		Name:    "order-store",
		Timeout: cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn("order store breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return s
}

// CreateOrder inserts a pending order and its items. Without a user or items
// it returns (nil, nil) and writes nothing. When the items insert fails the
// order row is kept and the error is returned.
func (s *OrderSubmitter) CreateOrder(ctx context.Context, userID uuid.UUID, items []cart.LineItem) (*trade.Order, error) {
	if userID == uuid.Nil || len(items) == 0 {
		s.metrics.RecordOrder(ctx, telemetry.OrderResultSkipped)
		return nil, nil
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "create_order",
		attribute.Int("order.items", len(items)))
	defer span.End()

	order, err := trade.NewOrder(userID, items)
	if err != nil {
		return nil, err
	}

	created, err := s.breaker.Execute(func() (*trade.Order, error) {
		if err := s.orders.Create(ctx, order); err != nil {
			return nil, fmt.Errorf("create order: %w", err)
		}
		if err := s.orders.CreateItems(ctx, order.Items); err != nil {
			return nil, fmt.Errorf("create items of order %s: %w", order.ID, err)
		}
		return order, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = ErrOrderStoreUnavailable
		}
		telemetry.RecordError(span, err)
		s.metrics.RecordOrder(ctx, telemetry.OrderResultFailed)
		logger.WithLogger(ctx, s.logger).Error("order submission failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, err
	}

	s.metrics.RecordOrder(ctx, telemetry.OrderResultCreated)
	logger.WithLogger(ctx, s.logger).Info("order created",
		zap.String("order_id", created.ID.String()),
		zap.String("total", created.Total.String()),
		zap.Int("items", len(created.Items)))
	return created, nil
}

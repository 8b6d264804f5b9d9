package cache

import (
	"fmt"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/cart"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/config"
	"go.uber.org/zap"
)

// CartStorage is a cart.Storage that holds resources to release on shutdown
type CartStorage interface {
	cart.Storage
	Close() error
}

// CartStorageFactory creates cart storage based on configuration
type CartStorageFactory struct {
	cartConfig            config.CartConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// CartStorageFactoryOption is a functional option for configuring the factory
type CartStorageFactoryOption func(*CartStorageFactory)

// WithLogger sets the logger for the factory and the storage it builds
func WithLogger(logger *zap.Logger) CartStorageFactoryOption {
	return func(f *CartStorageFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to
// process-local storage. Default is true.
func WithInMemoryFallback(allow bool) CartStorageFactoryOption {
	return func(f *CartStorageFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewCartStorageFactory creates a new factory
func NewCartStorageFactory(cartCfg config.CartConfig, redisCfg config.RedisConfig, opts ...CartStorageFactoryOption) *CartStorageFactory {
	f := &CartStorageFactory{
		cartConfig:            cartCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStorage returns the configured backend. With "redis" it falls back
// to memory when Redis cannot be reached and fallback is allowed.
func (f *CartStorageFactory) CreateStorage() (CartStorage, error) {
	if f.cartConfig.Storage == "memory" {
		f.logger.Info("using in-memory cart storage")
		return NewMemoryCartStorage(), nil
	}

	store, err := NewRedisCartStorage(
		f.redisConfig.Addr(),
		f.redisConfig.Password,
		f.redisConfig.DB,
		WithChangeChannel(f.cartConfig.ChangeChannel),
		WithEntryTTL(f.cartConfig.EntryTTL),
		WithStorageLogger(f.logger.Named("cart_storage")),
	)
	if err == nil {
		f.logger.Info("using Redis cart storage", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for cart storage but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory cart storage. "+
		"Carts will not be shared between instances.",
		zap.Error(err),
	)
	return NewMemoryCartStorage(), nil
}

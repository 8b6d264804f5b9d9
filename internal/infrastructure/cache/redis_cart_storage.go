package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/cart"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultChangeChannel = "storefront:cart:changes"
	pingTimeout          = 5 * time.Second
)

// RedisCartStorage keeps cart entries in Redis and announces every write on
// a per-key Pub/Sub channel so other instances can pick it up.
type RedisCartStorage struct {
	client     *redis.Client
	ownsClient bool
	channel    string
	ttl        time.Duration
	logger     *zap.Logger
}

// RedisCartStorageOption configures a RedisCartStorage
type RedisCartStorageOption func(*RedisCartStorage)

// WithChangeChannel sets the Pub/Sub channel prefix
func WithChangeChannel(channel string) RedisCartStorageOption {
	return func(s *RedisCartStorage) {
		if channel != "" {
			s.channel = channel
		}
	}
}

// WithEntryTTL expires idle carts after ttl. Zero keeps them until cleared.
func WithEntryTTL(ttl time.Duration) RedisCartStorageOption {
	return func(s *RedisCartStorage) {
		s.ttl = ttl
	}
}

// WithStorageLogger sets the logger
func WithStorageLogger(logger *zap.Logger) RedisCartStorageOption {
	return func(s *RedisCartStorage) {
		s.logger = logger
	}
}

// NewRedisCartStorage connects to Redis at addr and verifies the connection.
func NewRedisCartStorage(addr, password string, db int, opts ...RedisCartStorageOption) (*RedisCartStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	s := NewRedisCartStorageWithClient(client, opts...)
	s.ownsClient = true
	return s, nil
}

// NewRedisCartStorageWithClient wraps an existing client. The caller keeps
// ownership of the client.
func NewRedisCartStorageWithClient(client *redis.Client, opts ...RedisCartStorageOption) *RedisCartStorage {
	s := &RedisCartStorage{
		client:  client,
		channel: defaultChangeChannel,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisCartStorage) channelFor(key string) string {
	return s.channel + ":" + key
}

// Load implements cart.Storage
func (s *RedisCartStorage) Load(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart %q: %w", key, err)
	}
	return value, nil
}

// Save implements cart.Storage. The write and its announcement go out in
// one MULTI/EXEC block.
func (s *RedisCartStorage) Save(ctx context.Context, key string, value []byte, origin string) error {
	return s.write(ctx, cart.Change{Key: key, Value: value, Origin: origin})
}

// Remove implements cart.Storage
func (s *RedisCartStorage) Remove(ctx context.Context, key string, origin string) error {
	return s.write(ctx, cart.Change{Key: key, Deleted: true, Origin: origin})
}

func (s *RedisCartStorage) write(ctx context.Context, change cart.Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal cart change: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if change.Deleted {
			pipe.Del(ctx, change.Key)
		} else {
			pipe.Set(ctx, change.Key, change.Value, s.ttl)
		}
		pipe.Publish(ctx, s.channelFor(change.Key), payload)
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to write cart entry",
			zap.String("key", change.Key),
			zap.Bool("deleted", change.Deleted),
			zap.Error(err))
		return fmt.Errorf("failed to write cart %q: %w", change.Key, err)
	}
	return nil
}

// Subscribe implements cart.Storage. It returns once the subscription is
// confirmed; changes are delivered in publish order on a single goroutine.
func (s *RedisCartStorage) Subscribe(ctx context.Context, key string, fn func(cart.Change)) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)
	channel := s.channelFor(key)
	pubsub := s.client.Subscribe(subCtx, channel)

	if _, err := pubsub.Receive(subCtx); err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %q: %w", channel, err)
	}
	s.logger.Debug("Subscribed to cart changes", zap.String("channel", channel))

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					s.logger.Warn("Cart change channel closed", zap.String("channel", channel))
					return
				}
				var change cart.Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					s.logger.Error("Failed to unmarshal cart change",
						zap.String("channel", channel),
						zap.Error(err))
					continue
				}
				s.deliver(fn, change)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}, nil
}

func (s *RedisCartStorage) deliver(fn func(cart.Change), change cart.Change) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic in cart change callback",
				zap.String("key", change.Key),
				zap.Any("panic", r))
		}
	}()
	fn(change)
}

// Ping checks the connection
func (s *RedisCartStorage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the client when this storage created it
func (s *RedisCartStorage) Close() error {
	if s.ownsClient {
		return s.client.Close()
	}
	return nil
}

var _ cart.Storage = (*RedisCartStorage)(nil)

// Package session keeps one cart store and one dispatcher per cart session.
package session

import (
	"context"
	"sync"
	"time"

	appcart "github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/application/cart"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/application/checkout"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/cart"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultKeyPrefix prefixes the durable cart key of every session
const DefaultKeyPrefix = "storefront:cart:"

// Sink delivers dispatch output and cart updates to the clients of a session
type Sink interface {
	checkout.LinkOpener
	checkout.Notifier
	PublishState(status checkout.Status)
	PublishCart(items []cart.LineItem)
}

// SinkFactory returns the sink of a session
type SinkFactory func(sessionID string) Sink

// Session bundles the cart and the dispatcher of one cart session
type Session struct {
	ID         string
	Cart       *appcart.Service
	Dispatcher *checkout.Dispatcher

	stopSync func()
	lastSeen time.Time
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the manager logger
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithKeyPrefix sets the durable key prefix
func WithKeyPrefix(prefix string) Option {
	return func(m *Manager) {
		if prefix != "" {
			m.keyPrefix = prefix
		}
	}
}

// WithIdleTimeout sets how long an unused idle session is kept in memory
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.idleTimeout = d
	}
}

// WithDispatcherOptions adds options to every dispatcher
func WithDispatcherOptions(opts ...checkout.DispatcherOption) Option {
	return func(m *Manager) {
		m.dispatchOpts = append(m.dispatchOpts, opts...)
	}
}

// Manager creates sessions on first use and evicts idle ones
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	opening  singleflight.Group

	storage      cart.Storage
	dispatchCfg  checkout.Config
	dispatchOpts []checkout.DispatcherOption
	sinks        SinkFactory
	keyPrefix    string
	idleTimeout  time.Duration
	logger       *zap.Logger

	syncCtx    context.Context
	cancelSync context.CancelFunc
	now        func() time.Time
}

// NewManager creates a session manager
func NewManager(storage cart.Storage, dispatchCfg checkout.Config, sinks SinkFactory, opts ...Option) *Manager {
	syncCtx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		sessions:    make(map[string]*Session),
		storage:     storage,
		dispatchCfg: dispatchCfg,
		sinks:       sinks,
		keyPrefix:   DefaultKeyPrefix,
		idleTimeout: 30 * time.Minute,
		logger:      zap.NewNop(),
		syncCtx:     syncCtx,
		cancelSync:  cancel,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the session, loading its cart and following remote changes
// the first time it is used. Storage errors are logged; the session still
// works with an empty cart. Concurrent first uses of one id share a single
// open; other sessions are not held up by it.
func (m *Manager) Get(ctx context.Context, id string) *Session {
	if s := m.lookup(id); s != nil {
		return s
	}
	v, _, _ := m.opening.Do(id, func() (any, error) {
		if s := m.lookup(id); s != nil {
			return s, nil
		}
		s := m.open(context.WithoutCancel(ctx), id)
		m.mu.Lock()
		m.sessions[id] = s
		m.mu.Unlock()
		return s, nil
	})
	return v.(*Session)
}

func (m *Manager) lookup(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil
	}
	s.lastSeen = m.now()
	return s
}

// open builds a session without holding the manager lock
func (m *Manager) open(ctx context.Context, id string) *Session {
	log := logger.WithLogger(ctx, m.logger).With(zap.String("cart_session", id))
	sink := m.sinks(id)
	svc := appcart.NewService(m.storage, m.keyPrefix+id,
		appcart.WithLogger(m.logger),
		appcart.WithOnChange(sink.PublishCart))
	if err := svc.Load(ctx); err != nil {
		log.Warn("failed to load cart, starting empty", zap.Error(err))
	}

	opts := append([]checkout.DispatcherOption{
		checkout.WithDispatchLogger(m.logger),
		checkout.WithStateListener(sink.PublishState),
	}, m.dispatchOpts...)
	s := &Session{
		ID:         id,
		Cart:       svc,
		Dispatcher: checkout.NewDispatcher(m.dispatchCfg, svc, sink, sink, opts...),
		stopSync:   func() {},
		lastSeen:   m.now(),
	}
	if stop, err := svc.StartSync(m.syncCtx); err != nil {
		log.Warn("cart change feed unavailable", zap.Error(err))
	} else {
		s.stopSync = stop
	}
	log.Debug("cart session opened")
	return s
}

// Len returns the number of sessions in memory
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions unused for longer than the idle timeout that have
// nothing in flight. The durable cart entry is kept.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.idleTimeout)
	evicted := 0
	for id, s := range m.sessions {
		if s.lastSeen.After(cutoff) || !s.Dispatcher.IsIdle() {
			continue
		}
		s.stopSync()
		delete(m.sessions, id)
		evicted++
	}
	if evicted > 0 {
		m.logger.Debug("idle cart sessions evicted", zap.Int("count", evicted))
	}
	return evicted
}

// Run sweeps idle sessions every interval until ctx is done
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Close stops every change feed and waits for scheduled dispatch work
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	m.cancelSync()
	for _, s := range sessions {
		s.stopSync()
		s.Dispatcher.Wait()
	}
}

package cache

import (
	"context"
	"sync"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/cart"
)

// MemoryCartStorage is a process-local cart.Storage. Subscribers are called
// synchronously, after the write is visible and outside the lock.
type MemoryCartStorage struct {
	mu      sync.RWMutex
	entries map[string][]byte
	subs    map[string]map[uint64]func(cart.Change)
	nextID  uint64
}

// NewMemoryCartStorage creates an empty store
func NewMemoryCartStorage() *MemoryCartStorage {
	return &MemoryCartStorage{
		entries: make(map[string][]byte),
		subs:    make(map[string]map[uint64]func(cart.Change)),
	}
}

// Load implements cart.Storage
func (s *MemoryCartStorage) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), value...), nil
}

// Save implements cart.Storage
func (s *MemoryCartStorage) Save(_ context.Context, key string, value []byte, origin string) error {
	stored := append([]byte(nil), value...)
	s.mu.Lock()
	s.entries[key] = stored
	listeners := s.listeners(key)
	s.mu.Unlock()

	notify(listeners, cart.Change{Key: key, Value: stored, Origin: origin})
	return nil
}

// Remove implements cart.Storage
func (s *MemoryCartStorage) Remove(_ context.Context, key string, origin string) error {
	s.mu.Lock()
	delete(s.entries, key)
	listeners := s.listeners(key)
	s.mu.Unlock()

	notify(listeners, cart.Change{Key: key, Deleted: true, Origin: origin})
	return nil
}

// Subscribe implements cart.Storage
func (s *MemoryCartStorage) Subscribe(ctx context.Context, key string, fn func(cart.Change)) (func(), error) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	if s.subs[key] == nil {
		s.subs[key] = make(map[uint64]func(cart.Change))
	}
	s.subs[key][id] = fn
	s.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs[key], id)
			if len(s.subs[key]) == 0 {
				delete(s.subs, key)
			}
		})
	}
	context.AfterFunc(ctx, stop)
	return stop, nil
}

// Close implements CartStorage
func (s *MemoryCartStorage) Close() error {
	return nil
}

// listeners must be called with s.mu held
func (s *MemoryCartStorage) listeners(key string) []func(cart.Change) {
	out := make([]func(cart.Change), 0, len(s.subs[key]))
	for _, fn := range s.subs[key] {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []func(cart.Change), change cart.Change) {
	for _, fn := range listeners {
		fn(change)
	}
}

var _ cart.Storage = (*MemoryCartStorage)(nil)

package cart

import "context"

// Change is a write to a stored cart entry, published to every store
// instance sharing the entry.
type Change struct {
	Key     string `json:"key"`
	Value   []byte `json:"value,omitempty"`
	Deleted bool   `json:"deleted"`
	Origin  string `json:"origin"`
}

// Storage is the durable key-value store backing carts.
// Load returns nil without error for a missing key.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte, origin string) error
	Remove(ctx context.Context, key string, origin string) error
	// Subscribe registers fn for changes of key until the returned stop
	// function is called or ctx is done.
	Subscribe(ctx context.Context, key string, fn func(Change)) (stop func(), err error)
}

package embedding

import (
	"context"
	"slices"
	"sync"
)

// Cache stores embedding vectors keyed by requirement ID. Implementations
// must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Put(ctx context.Context, key string, vec []float32) error
	Len(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// MemoryCache is the default process-local cache.
type MemoryCache struct {
	mu   sync.RWMutex
	vecs map[string][]float32
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{vecs: make(map[string][]float32)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]float32, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vec, ok := c.vecs[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(vec), true, nil
}

func (c *MemoryCache) Put(_ context.Context, key string, vec []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vecs[key] = slices.Clone(vec)
	return nil
}

func (c *MemoryCache) Len(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vecs), nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vecs = make(map[string][]float32)
	return nil
}

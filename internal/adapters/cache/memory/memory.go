package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/tribehive/ai-orchestrator/internal/core/ports"
)

type item struct {
	value     []byte
	expiresAt time.Time
}

// Cache is a process-local TTL cache. Values are stored as JSON so the
// behavior matches the redis adapter.
type Cache struct {
	items map[string]item
	mu    sync.RWMutex
}

func New() *Cache {
	return &Cache{
		items: make(map[string]item),
	}
}

func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.RLock()
	it, exists := c.items[key]
	c.mu.RUnlock()

	if !exists || time.Now().After(it.expiresAt) {
		return ports.ErrCacheMiss
	}

	return json.Unmarshal(it.value, dest)
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = item{
		value:     data,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

var _ ports.CacheService = (*Cache)(nil)

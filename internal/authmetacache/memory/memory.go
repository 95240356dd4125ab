// Package memory provides an in-memory authmetacache driver with TTL
// support, registered under the name "memory".
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/openalljoyn/authzcore/internal/authmetacache"
)

func init() {
	authmetacache.Register("memory", func(config map[string]any) (authmetacache.Cache, error) {
		defaultTTL := 15 * time.Minute
		if config != nil {
			if v, ok := config["default_ttl_seconds"]; ok {
				if secs, ok := toInt(v); ok && secs > 0 {
					defaultTTL = time.Duration(secs) * time.Second
				}
			}
		}
		return New(defaultTTL), nil
	})
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e *entry) isExpired() bool { return time.Now().After(e.expiresAt) }

// Cache is an in-memory, mutex-guarded implementation of
// authmetacache.Cache.
type Cache struct {
	mu         sync.RWMutex
	items      map[string]*entry
	defaultTTL time.Duration
}

// New creates an in-memory cache using defaultTTL when callers pass ttl=0.
func New(defaultTTL time.Duration) *Cache {
	return &Cache{items: make(map[string]*entry), defaultTTL: defaultTTL}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok {
		return nil, authmetacache.ErrNotFound
	}
	if e.isExpired() {
		return nil, authmetacache.ErrExpired
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	cp := make([]byte, len(value))
	copy(cp, value)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = &entry{value: cp, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *Cache) Close() error { return nil }

// Package redis provides a Redis/Valkey-backed authmetacache driver,
// registered under the name "redis". Fail-fast: construction pings the
// server and returns an error immediately if it is unreachable, so a
// misconfigured auth_cache.driver=redis is caught at startup, not on the first
// peer lookup.
package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/openalljoyn/authzcore/internal/authmetacache"
)

func init() {
	authmetacache.Register("redis", func(config map[string]any) (authmetacache.Cache, error) {
		cfg := DefaultConfig()
		if config != nil {
			if v, ok := config["addr"].(string); ok && v != "" {
				cfg.Addr = v
			}
			if v, ok := config["password"].(string); ok {
				cfg.Password = v
			}
			if v, ok := config["db"]; ok {
				if db, ok := toInt(v); ok {
					cfg.DB = db
				}
			}
			if v, ok := config["dial_timeout_ms"]; ok {
				if ms, ok := toInt(v); ok && ms > 0 {
					cfg.DialTimeout = time.Duration(ms) * time.Millisecond
				}
			}
			if v, ok := config["default_ttl_seconds"]; ok {
				if secs, ok := toInt(v); ok && secs > 0 {
					cfg.DefaultTTL = time.Duration(secs) * time.Second
				}
			}
		}
		return New(cfg)
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

// Config holds Redis/Valkey connection configuration.
type Config struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
	DefaultTTL  time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Addr:        "localhost:6379",
		DialTimeout: 5 * time.Second,
		DefaultTTL:  15 * time.Minute,
	}
}

// Cache implements authmetacache.Cache using Redis/Valkey.
type Cache struct {
	client     valkey.Client
	defaultTTL time.Duration
}

// New creates a Redis/Valkey-backed cache, failing fast if the server is
// unreachable.
func New(cfg *Config) (*Cache, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{cfg.Addr},
		Password:    cfg.Password,
		SelectDB:    cfg.DB,
		Dialer: net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: 30 * time.Second,
		},
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("authmetacache/redis: create client: %w", err)
	}

	c := &Cache{client: client, defaultTTL: cfg.DefaultTTL}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if resp := client.Do(ctx, client.B().Ping().Build()); resp.Error() != nil {
		client.Close()
		return nil, fmt.Errorf("authmetacache/redis: ping failed: %w", resp.Error())
	}

	return c, nil
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	resp := c.client.Do(ctx, c.client.B().Get().Key(key).Build())
	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, authmetacache.ErrNotFound
		}
		return nil, err
	}
	return resp.AsBytes()
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	resp := c.client.Do(ctx, c.client.B().Set().Key(key).Value(string(value)).Px(ttl).Build())
	return resp.Error()
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	resp := c.client.Do(ctx, c.client.B().Del().Key(key).Build())
	return resp.Error()
}

func (c *Cache) Close() error {
	c.client.Close()
	return nil
}

var _ authmetacache.Cache = (*Cache)(nil)

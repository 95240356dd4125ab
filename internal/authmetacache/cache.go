// Package authmetacache sits in front of an authmeta.Provider so that a
// repeated peer-metadata lookup within the TTL is served from the cache
// instead of the (possibly slow) underlying provider. A cache miss, and
// every Claimed call, still go to the provider synchronously, so those
// calls block for as long as the provider does. It uses the same driver-registry pattern
// as this codebase's platform caches: drivers self-register via init(),
// callers select one by name.
package authmetacache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrNotFound marks a cache miss; callers fall through to the wrapped
	// Provider and repopulate the cache.
	ErrNotFound = errors.New("authmetacache: not found")
	// ErrExpired marks an entry whose TTL has elapsed.
	ErrExpired = errors.New("authmetacache: expired")
)

// Cache is the narrow TTL-keyed byte store every driver implements. The
// value is always a JSON-encoded authmeta.Resolution.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// DriverFactory builds a Cache from a driver-specific config map, which
// may be nil; each driver reads the keys it knows from the map itself.
type DriverFactory func(config map[string]any) (Cache, error)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]DriverFactory)
)

// Register registers a driver factory by name. Called from a driver
// package's init().
func Register(name string, factory DriverFactory) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[name] = factory
}

// AvailableDrivers returns the names of all registered drivers, for
// diagnostics and config validation.
func AvailableDrivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	return names
}

// New builds a Cache for the named driver. driver defaults to "memory" if
// empty. Returns an error if the driver was never registered (the caller
// forgot to blank-import its package, directly or via
// internal/authmetacache/loader).
func New(driver string, config map[string]any) (Cache, error) {
	if driver == "" {
		driver = "memory"
	}

	driversMu.RLock()
	factory, ok := drivers[driver]
	driversMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("authmetacache: unknown driver %q (registered: %v)", driver, AvailableDrivers())
	}
	return factory(config)
}

package policystore

import (
	"fmt"
	"sync"
)

// DriverConfig selects and configures a policystore driver.
type DriverConfig struct {
	// Driver is the driver name: json, sqlite, mirror.
	Driver string

	// DataDir is the directory holding the driver's data file(s).
	DataDir string

	// Mirror is only consulted when Driver == "mirror".
	Mirror MirrorConfig
}

// MirrorConfig configures the sqlite+json mirror driver.
type MirrorConfig struct {
	// ExportPath overrides where the one-way JSON export is written.
	// Defaults to <DataDir>/mirror/policy.json when empty.
	ExportPath string
}

// DriverFactory builds a Driver from a DriverConfig.
type DriverFactory func(cfg *DriverConfig) (Driver, error)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]DriverFactory)
)

// Register registers a driver factory by name, called from a driver
// package's init().
func Register(name string, factory DriverFactory) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[name] = factory
}

// New creates a driver instance based on cfg.Driver.
func New(cfg *DriverConfig) (Driver, error) {
	driversMu.RLock()
	factory, ok := drivers[cfg.Driver]
	driversMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("policystore: unknown driver %q (registered: %v)", cfg.Driver, AvailableDrivers())
	}
	return factory(cfg)
}

// AvailableDrivers returns the names of all registered drivers.
func AvailableDrivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	return names
}

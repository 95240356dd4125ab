// Package json implements a JSON file-based policystore driver with
// atomic writes (temp file + fsync + rename).
package json

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/openalljoyn/authzcore/internal/permpolicy"
	"github.com/openalljoyn/authzcore/internal/policystore"
)

func init() {
	policystore.Register("json", NewDriver)
}

// Driver implements policystore.Driver using a single JSON file.
type Driver struct {
	path string

	mu     sync.RWMutex
	policy *permpolicy.Policy // nil until loaded/saved
	closed bool
}

// NewDriver creates a new JSON driver instance.
func NewDriver(cfg *policystore.DriverConfig) (policystore.Driver, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("policystore/json: data_dir is required")
	}
	return &Driver{path: filepath.Join(cfg.DataDir, "policy.json")}, nil
}

func (d *Driver) Name() string { return "json" }

// Init loads the policy file if present; a missing file is not an error,
// the store simply starts empty (ErrNotFound on the first Load).
func (d *Driver) Init(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(d.path), 0700); err != nil {
		return fmt.Errorf("policystore/json: create data dir: %w", err)
	}

	data, err := os.ReadFile(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("policystore/json: read policy file: %w", err)
	}

	var wire permpolicy.WirePolicy
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("policystore/json: decode policy file: %w", err)
	}
	policy, err := permpolicy.FromWire(wire)
	if err != nil {
		return err
	}
	d.policy = &policy
	return nil
}

func (d *Driver) Load(ctx context.Context) (permpolicy.Policy, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return permpolicy.Policy{}, policystore.ErrClosed
	}
	if d.policy == nil {
		return permpolicy.Policy{}, policystore.ErrNotFound
	}
	return d.policy.Clone(), nil
}

func (d *Driver) Save(ctx context.Context, policy permpolicy.Policy) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return policystore.ErrClosed
	}

	wire := permpolicy.ToWire(policy)
	data, err := json.MarshalIndent(wire, "", "  ")
	if err != nil {
		return fmt.Errorf("policystore/json: encode policy: %w", err)
	}
	if err := writeAtomic(d.path, data); err != nil {
		return err
	}

	clone := policy.Clone()
	d.policy = &clone
	return nil
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// writeAtomic writes data to path via a temp-file-then-rename so a reader
// never observes a partially written policy.
func writeAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"

	f, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("policystore/json: create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("policystore/json: write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("policystore/json: sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("policystore/json: close temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("policystore/json: rename temp file: %w", err)
	}
	return nil
}

var _ policystore.Driver = (*Driver)(nil)

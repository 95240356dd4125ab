// Package policystore persists the permission policy tree outside the
// authorization core's boundary (spec §1 lists "persistent key store,
// trust-anchor management" as external collaborators the core only
// queries through a narrow interface; policy persistence is the same
// kind of collaborator — internal/authz never imports this package
// directly, a caller loads a Policy and hands the core a snapshot).
package policystore

import (
	"context"
	"errors"

	"github.com/openalljoyn/authzcore/internal/permpolicy"
)

var (
	ErrNotFound = errors.New("policystore: no policy stored")
	ErrClosed   = errors.New("policystore: driver closed")
)

// Driver is a persistence backend for a single Policy tree. Implementations
// must be safe for concurrent use.
type Driver interface {
	// Init prepares the backend (open files/db, run migrations).
	Init(ctx context.Context) error

	// Load returns the currently stored policy. Returns ErrNotFound if
	// none has ever been saved.
	Load(ctx context.Context) (permpolicy.Policy, error)

	// Save persists policy, replacing whatever was stored before.
	Save(ctx context.Context, policy permpolicy.Policy) error

	// Close releases resources held by the driver.
	Close() error

	// Name returns the driver name (json, sqlite, mirror).
	Name() string
}

package peerstate

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is the Peer State Registry (spec §2, §5): a concurrent map of
// guid -> *PeerState. The registry lock only ever guards the map's shape
// (insert/remove/lookup). Get returns the shared pointer, not a copy;
// callers that mutate a *PeerState's fields do so on that pointer, and
// PeerState has no lock of its own, so such writes are not synchronised
// with concurrent readers.
type Registry struct {
	mu    sync.RWMutex
	peers map[string]*PeerState
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{peers: make(map[string]*PeerState)}
}

// Create allocates a new PeerState for a freshly observed identity and
// registers it under a minted guid.
func (r *Registry) Create() *PeerState {
	guid := uuid.NewString()
	state := New(guid)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[guid] = state
	return state
}

// Get returns the PeerState for guid, or nil if no such peer is
// registered (session already torn down, or never observed).
func (r *Registry) Get(guid string) *PeerState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.peers[guid]
}

// Remove tears down the registry's record of guid. Safe to call even if
// guid is unknown.
func (r *Registry) Remove(guid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.peers, guid)
}

// Len reports how many peers are currently registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}

package permpolicy

import "sync/atomic"

// Snapshot is a lock-free, atomically-swapped pointer to the current
// Policy (spec §5, §9: "A versioned snapshot pointer with reader-acquired
// shared ownership is sufficient"). Readers call Load and get either the
// old or the new tree in full, never a partial view; writers build a new
// tree and Store it.
type Snapshot struct {
	ptr atomic.Pointer[Policy]
}

// NewSnapshot returns a Snapshot initialized to initial.
func NewSnapshot(initial Policy) *Snapshot {
	s := &Snapshot{}
	s.Store(initial)
	return s
}

// Load returns the current policy. Safe to call concurrently with Store.
func (s *Snapshot) Load() Policy {
	p := s.ptr.Load()
	if p == nil {
		return Empty()
	}
	return *p
}

// Store atomically replaces the current policy with next.
func (s *Snapshot) Store(next Policy) {
	s.ptr.Store(&next)
}

// Package permpolicy implements the immutable policy value tree: Policy →
// Acls → (Peers, Rules) → Members (spec §3.1). Every layer has explicit
// equality, a deep Clone, and (de)serialization to/from a wire form.
//
// Values here are immutable by convention once built: callers that need to
// change a Policy build a new tree and publish it with Snapshot.Store
// (internal/policystore persists it) rather than mutating fields in
// place. This is what lets the orchestrator hold a lock-free snapshot
// pointer (spec §5, §9 "shared policy under readers").
package permpolicy

// CurrentSpecVersion is the only specVersion this package accepts on import.
const CurrentSpecVersion uint32 = 1

// Policy is the top-level value: a monotonic version counter (interpreted
// only by equality, never by the core) and an ordered sequence of Acls.
type Policy struct {
	SpecVersion uint32
	Version     uint32
	Acls        []Acl

	// Installed distinguishes "no policy has ever been installed" from "a
	// policy with zero ACLs is installed" (see SPEC_FULL.md §E.3). The
	// orchestrator does not read Installed: an uninstalled policy has zero
	// ACLs, so on a claimed node it denies everything non-management, the
	// same as an installed zero-ACL policy.
	Installed bool
}

// Empty returns the zero-ACL, uninstalled policy a freshly-claimed node
// starts with before any policy replace has happened.
func Empty() Policy {
	return Policy{SpecVersion: CurrentSpecVersion, Installed: false}
}

// Equal reports structural, order-sensitive equality across the whole tree.
func (p Policy) Equal(other Policy) bool {
	if p.SpecVersion != other.SpecVersion || p.Version != other.Version || p.Installed != other.Installed {
		return false
	}
	if len(p.Acls) != len(other.Acls) {
		return false
	}
	for i := range p.Acls {
		if !p.Acls[i].Equal(other.Acls[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy, safe to mutate independently of p. Used by
// writers building a new tree before publishing it (spec §9: "Writers
// build a new tree, then publish").
func (p Policy) Clone() Policy {
	acls := make([]Acl, len(p.Acls))
	for i, a := range p.Acls {
		acls[i] = a.Clone()
	}
	p.Acls = acls
	return p
}

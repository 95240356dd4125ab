package permpolicy

// Acl pairs a set of peer matchers with a set of rules. A policy's ACLs
// are evaluated in order; see aclengine.Authorize.
type Acl struct {
	Peers []Peer
	Rules []Rule
}

// Equal reports structural, order-sensitive equality.
func (a Acl) Equal(other Acl) bool {
	if len(a.Peers) != len(other.Peers) || len(a.Rules) != len(other.Rules) {
		return false
	}
	for i := range a.Peers {
		if !a.Peers[i].Equal(other.Peers[i]) {
			return false
		}
	}
	for i := range a.Rules {
		if !a.Rules[i].Equal(other.Rules[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (a Acl) Clone() Acl {
	peers := make([]Peer, len(a.Peers))
	copy(peers, a.Peers)
	rules := make([]Rule, len(a.Rules))
	for i, r := range a.Rules {
		rules[i] = r.Clone()
	}
	return Acl{Peers: peers, Rules: rules}
}

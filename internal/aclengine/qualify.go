package aclengine

import (
	"github.com/openalljoyn/authzcore/internal/eckey"
	"github.com/openalljoyn/authzcore/internal/peerstate"
	"github.com/openalljoyn/authzcore/internal/permpolicy"
)

// Qualify implements Peer Qualification (spec §4.5): iterate the ACL's
// Peer list, returning true on the first match. A WITH_PUBLIC_KEY match
// additionally reports viaPublicKey=true, which Policy Authorization
// (§4.6) uses to scope explicit-deny scanning to peers identified by key.
func Qualify(acl permpolicy.Acl, peer *peerstate.PeerState, trustedPeer bool, peerPublicKey eckey.Key, issuerChain eckey.Chain) (qualifies, viaPublicKey bool) {
	for _, p := range acl.Peers {
		switch p.Kind {
		case permpolicy.PeerAll:
			return true, false

		case permpolicy.PeerAnyTrusted:
			if trustedPeer {
				return true, false
			}

		case permpolicy.PeerWithPublicKey:
			if trustedPeer && peerPublicKey.Equal(p.Key) {
				return true, true
			}

		case permpolicy.PeerFromCertificateAuthority:
			if trustedPeer && issuerChain.Contains(p.Key) {
				return true, false
			}

		case permpolicy.PeerWithMembership:
			if trustedPeer && peer != nil && peer.HasGroup(p.GroupID) {
				return true, false
			}
		}
	}
	return false, false
}

package permpolicy

import (
	"fmt"

	"github.com/openalljoyn/authzcore/internal/eckey"
)

// PeerKind identifies which of the five closed Peer cases a Peer value is.
// Modeled as a tagged variant (kind + payload fields) rather than an
// interface hierarchy, per the design note in spec §9: the cases are closed
// and small, and subclass dispatch would only add indirection.
type PeerKind uint8

const (
	PeerAll PeerKind = iota
	PeerAnyTrusted
	PeerWithPublicKey
	PeerFromCertificateAuthority
	PeerWithMembership
)

func (k PeerKind) String() string {
	switch k {
	case PeerAll:
		return "ALL"
	case PeerAnyTrusted:
		return "ANY_TRUSTED"
	case PeerWithPublicKey:
		return "WITH_PUBLIC_KEY"
	case PeerFromCertificateAuthority:
		return "FROM_CERTIFICATE_AUTHORITY"
	case PeerWithMembership:
		return "WITH_MEMBERSHIP"
	default:
		return "UNKNOWN"
	}
}

// Peer is one matcher in an Acl's peer list. Only the fields relevant to
// Kind are populated; see the constructors below.
type Peer struct {
	Kind    PeerKind
	Key     eckey.Key // WITH_PUBLIC_KEY, FROM_CERTIFICATE_AUTHORITY
	GroupID string    // WITH_MEMBERSHIP
}

// PeerAllMatcher matches any caller.
func PeerAllMatcher() Peer { return Peer{Kind: PeerAll} }

// PeerAnyTrustedMatcher matches any caller that completed a trusted
// authentication.
func PeerAnyTrustedMatcher() Peer { return Peer{Kind: PeerAnyTrusted} }

// PeerWithPublicKeyMatcher matches exactly the given public key.
func PeerWithPublicKeyMatcher(key eckey.Key) Peer {
	return Peer{Kind: PeerWithPublicKey, Key: key}
}

// PeerFromCertificateAuthorityMatcher matches peers whose issuer chain
// contains key.
func PeerFromCertificateAuthorityMatcher(key eckey.Key) Peer {
	return Peer{Kind: PeerFromCertificateAuthority, Key: key}
}

// PeerWithMembershipMatcher matches peers holding a membership certificate
// issued to groupID by key.
func PeerWithMembershipMatcher(groupID string, key eckey.Key) Peer {
	return Peer{Kind: PeerWithMembership, GroupID: groupID, Key: key}
}

// Equal reports structural equality between two Peer matchers.
func (p Peer) Equal(other Peer) bool {
	if p.Kind != other.Kind {
		return false
	}
	switch p.Kind {
	case PeerAll, PeerAnyTrusted:
		return true
	case PeerWithPublicKey, PeerFromCertificateAuthority:
		return p.Key.Equal(other.Key)
	case PeerWithMembership:
		return p.GroupID == other.GroupID && p.Key.Equal(other.Key)
	default:
		return false
	}
}

func (p Peer) String() string {
	switch p.Kind {
	case PeerWithPublicKey, PeerFromCertificateAuthority:
		return fmt.Sprintf("%s(%s)", p.Kind, p.Key)
	case PeerWithMembership:
		return fmt.Sprintf("%s(group=%s, %s)", p.Kind, p.GroupID, p.Key)
	default:
		return p.Kind.String()
	}
}

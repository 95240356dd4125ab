// Package peerstate holds the per-connected-peer mutable record the
// authorization core borrows from for the duration of a single evaluation
// (spec §3.2): negotiated authentication mechanism, cached public key,
// issuer chain, membership certificates, and the peer's own signed
// manifest rules.
package peerstate

import (
	"github.com/openalljoyn/authzcore/internal/eckey"
	"github.com/openalljoyn/authzcore/internal/permpolicy"
)

// Mechanism names the negotiated authentication mechanism. The core never
// branches on the exact mechanism beyond "certificate or not" (spec §4.7);
// the full string is kept for logging and for authmeta providers.
type Mechanism string

const (
	MechanismUnknown   Mechanism = ""
	MechanismECDHENull Mechanism = "ECDHE_NULL"
	MechanismECDHEPSK  Mechanism = "ECDHE_PSK"
	MechanismECDHEECDSA Mechanism = "ECDHE_ECDSA"
	MechanismECDHESPEKE Mechanism = "ECDHE_SPEKE"
)

// IsCertificateBased reports whether the mechanism authenticates via a
// certificate (and therefore has a manifest to enforce, spec §4.7). The
// non-certificate mechanisms (PSK/ECDHE-null, SPEKE/logon-name) derive
// trust from a shared secret and carry no manifest.
func (m Mechanism) IsCertificateBased() bool {
	return m == MechanismECDHEECDSA
}

// Membership is one membership certificate the peer has presented, keyed
// by certificate serial at the registry level (see Memberships).
type Membership struct {
	GroupID   string
	CertChain []eckey.Key
}

// PeerState is the mutable per-peer record (spec §3.2). Populated
// incrementally: created empty when a remote identity is first observed,
// then filled in by the authentication subsystem (Mechanism, TrustedAuth,
// PublicKey, IssuerChain) and by the manifest-exchange step (Manifest),
// and discarded when the session tears down.
type PeerState struct {
	GUID        string
	Mechanism   Mechanism
	TrustedAuth bool
	PublicKey   eckey.Key
	IssuerChain eckey.Chain
	Memberships map[string]Membership // certSerial -> membership
	Manifest    []permpolicy.Rule
}

// New returns an empty PeerState for a newly observed identity.
func New(guid string) *PeerState {
	return &PeerState{
		GUID:        guid,
		Memberships: make(map[string]Membership),
	}
}

// HasGroup reports whether any presented membership certificate names
// groupID, which is what Peer Qualification's WITH_MEMBERSHIP case checks
// (spec §4.5).
func (s *PeerState) HasGroup(groupID string) bool {
	for _, m := range s.Memberships {
		if m.GroupID == groupID {
			return true
		}
	}
	return false
}

// EnforceManifest reports whether the peer's authentication mechanism has
// a manifest to validate against (spec §4.7's skip condition).
func (s *PeerState) EnforceManifest() bool {
	return s.Mechanism.IsCertificateBased()
}

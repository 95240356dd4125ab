// Package authmeta defines the narrow interface the authorization core
// uses to query trust anchors and per-peer authentication metadata (spec
// §2.3): the core never parses certificates or performs key exchange
// itself, it only asks this boundary what an already-authenticated peer
// looks like and whether the local node has been claimed at all.
package authmeta

import (
	"context"

	"github.com/openalljoyn/authzcore/internal/eckey"
	"github.com/openalljoyn/authzcore/internal/peerstate"
)

// Resolution is what the Provider reports for a single peer guid: the
// negotiated mechanism, its public key (present only for certificate-based
// mechanisms), and its certificate issuer chain.
type Resolution struct {
	Mechanism   peerstate.Mechanism
	TrustedAuth bool
	PublicKey   eckey.Key
	IssuerChain eckey.Chain
}

// Provider resolves a peer's persistent identity to authentication
// metadata and reports whether the local node has any trust anchors
// installed at all (i.e. whether it has been claimed).
type Provider interface {
	// Resolve returns the authentication metadata for guid. Returns false
	// if guid is unknown to the provider (never observed a handshake).
	Resolve(ctx context.Context, guid string) (Resolution, bool, error)

	// Claimed reports whether the local node has any trust anchors
	// installed. An unclaimed node is fully open (spec §4.8 step 6).
	Claimed(ctx context.Context) (bool, error)
}

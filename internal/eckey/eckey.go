// Package eckey represents ECC public keys used throughout the permission
// policy (peer matchers, issuer chains) and peer state (cached public key,
// issuer chain). Actual signature verification and key exchange are the
// authentication subsystem's job, not this package's — it only needs keys
// to be comparable values.
package eckey

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/x509"
	"fmt"
)

// Key wraps an ECDSA public key and gives it byte-exact equality, so it can
// be used as a map key's payload and compared across the peer-qualification
// and peer-state boundaries without caring about pointer identity.
type Key struct {
	pub     *ecdsa.PublicKey
	encoded []byte // cached PKIX encoding, computed once at construction
}

// New wraps an *ecdsa.PublicKey. Returns an error if the key cannot be
// marshaled (e.g. a nil or zero-value key).
func New(pub *ecdsa.PublicKey) (Key, error) {
	if pub == nil {
		return Key{}, fmt.Errorf("eckey: nil public key")
	}
	encoded, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return Key{}, fmt.Errorf("eckey: marshal public key: %w", err)
	}
	return Key{pub: pub, encoded: encoded}, nil
}

// FromDER parses a PKIX-encoded ECDSA public key.
func FromDER(der []byte) (Key, error) {
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return Key{}, fmt.Errorf("eckey: parse public key: %w", err)
	}
	ecPub, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return Key{}, fmt.Errorf("eckey: not an ECDSA public key")
	}
	return New(ecPub)
}

// IsZero reports whether the key is the unset zero value.
func (k Key) IsZero() bool {
	return k.pub == nil
}

// Public returns the underlying ECDSA public key. May be nil for a zero Key.
func (k Key) Public() *ecdsa.PublicKey {
	return k.pub
}

// Equal reports whether two keys represent the same point on the same curve.
func (k Key) Equal(other Key) bool {
	if k.IsZero() || other.IsZero() {
		return k.IsZero() == other.IsZero()
	}
	return bytes.Equal(k.encoded, other.encoded)
}

// DER returns the cached PKIX encoding of the key. Empty for a zero Key.
func (k Key) DER() []byte {
	return k.encoded
}

// String renders a short, stable identifier for logging (not the full key).
func (k Key) String() string {
	if k.IsZero() {
		return "<none>"
	}
	if len(k.encoded) < 8 {
		return fmt.Sprintf("ec:%x", k.encoded)
	}
	return fmt.Sprintf("ec:%x", k.encoded[:8])
}

// Chain is an ordered sequence of issuer keys, root-to-leaf or
// leaf-to-root depending on caller convention (the core never interprets
// order — aclengine.Qualify's FROM_CERTIFICATE_AUTHORITY case only checks
// membership).
type Chain []Key

// Contains reports whether k appears anywhere in the chain.
func (c Chain) Contains(k Key) bool {
	for _, ck := range c {
		if ck.Equal(k) {
			return true
		}
	}
	return false
}

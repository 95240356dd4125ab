package authmetacache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/openalljoyn/authzcore/internal/authmeta"
	"github.com/openalljoyn/authzcore/internal/eckey"
	"github.com/openalljoyn/authzcore/internal/peerstate"
)

// wireResolution is authmeta.Resolution's JSON-safe shape: eckey.Key and
// eckey.Chain hold unexported fields, so the cache stores DER bytes.
type wireResolution struct {
	Mechanism   string   `json:"mechanism"`
	TrustedAuth bool     `json:"trustedAuth"`
	PublicKey   []byte   `json:"publicKey,omitempty"`
	IssuerChain [][]byte `json:"issuerChain,omitempty"`
}

func toWire(r authmeta.Resolution) wireResolution {
	w := wireResolution{
		Mechanism:   string(r.Mechanism),
		TrustedAuth: r.TrustedAuth,
		PublicKey:   r.PublicKey.DER(),
	}
	for _, k := range r.IssuerChain {
		w.IssuerChain = append(w.IssuerChain, k.DER())
	}
	return w
}

func fromWire(w wireResolution) (authmeta.Resolution, error) {
	r := authmeta.Resolution{
		Mechanism:   peerstate.Mechanism(w.Mechanism),
		TrustedAuth: w.TrustedAuth,
	}
	if len(w.PublicKey) > 0 {
		key, err := eckey.FromDER(w.PublicKey)
		if err != nil {
			return authmeta.Resolution{}, err
		}
		r.PublicKey = key
	}
	for _, der := range w.IssuerChain {
		key, err := eckey.FromDER(der)
		if err != nil {
			return authmeta.Resolution{}, err
		}
		r.IssuerChain = append(r.IssuerChain, key)
	}
	return r, nil
}

// CachedProvider wraps an authmeta.Provider with a Cache so repeated
// lookups for the same peer guid within the TTL window never touch the
// (possibly slow) upstream provider.
type CachedProvider struct {
	upstream authmeta.Provider
	cache    Cache
	ttl      time.Duration
}

// NewCachedProvider wraps upstream with cache, using ttl for every entry
// (ttl=0 defers to the driver's own default).
func NewCachedProvider(upstream authmeta.Provider, cache Cache, ttl time.Duration) *CachedProvider {
	return &CachedProvider{upstream: upstream, cache: cache, ttl: ttl}
}

func (p *CachedProvider) Resolve(ctx context.Context, guid string) (authmeta.Resolution, bool, error) {
	if raw, err := p.cache.Get(ctx, guid); err == nil {
		var w wireResolution
		if err := json.Unmarshal(raw, &w); err == nil {
			res, err := fromWire(w)
			if err == nil {
				return res, true, nil
			}
		}
	} else if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrExpired) {
		return authmeta.Resolution{}, false, err
	}

	res, ok, err := p.upstream.Resolve(ctx, guid)
	if err != nil || !ok {
		return res, ok, err
	}

	raw, err := json.Marshal(toWire(res))
	if err == nil {
		_ = p.cache.Set(ctx, guid, raw, p.ttl)
	}
	return res, true, nil
}

func (p *CachedProvider) Claimed(ctx context.Context) (bool, error) {
	return p.upstream.Claimed(ctx)
}

var _ authmeta.Provider = (*CachedProvider)(nil)

package authz_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/openalljoyn/authzcore/internal/authmeta"
	"github.com/openalljoyn/authzcore/internal/authz"
	"github.com/openalljoyn/authzcore/internal/eckey"
	"github.com/openalljoyn/authzcore/internal/msgdesc"
	"github.com/openalljoyn/authzcore/internal/peerstate"
	"github.com/openalljoyn/authzcore/internal/permerr"
	"github.com/openalljoyn/authzcore/internal/permpolicy"
)

func genKey(t *testing.T) eckey.Key {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	k, err := eckey.New(&priv.PublicKey)
	if err != nil {
		t.Fatalf("eckey.New: %v", err)
	}
	return k
}

func methodCall(objPath, iface, member string, dir msgdesc.Direction) msgdesc.MsgDesc {
	return msgdesc.MsgDesc{
		Direction:     dir,
		Kind:          msgdesc.MethodCall,
		ObjPath:       objPath,
		InterfaceName: iface,
		MemberName:    member,
	}
}

func wantDenied(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("got allow, want deny")
	}
	if !errors.Is(err, permerr.ErrPermissionDenied) {
		t.Fatalf("got error %v, want ErrPermissionDenied", err)
	}
}

func wantAllowed(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("got %v, want allow", err)
	}
}

// S1: unclaimed claim allowed, claimed claim denied.
func TestCheck_S1_UnclaimedClaim(t *testing.T) {
	store := authmeta.NewStaticStore(false)
	c := &authz.Checker{
		Policy:   permpolicy.NewSnapshot(permpolicy.Empty()),
		Peers:    peerstate.NewRegistry(),
		AuthMeta: store,
	}

	desc := methodCall("/security", "org.alljoyn.Bus.Security.ClaimableApplication", "Claim", msgdesc.Incoming)
	err := c.Check(context.Background(), desc, "peer-1", nil)
	wantAllowed(t, err)

	store.SetClaimed(true)
	err = c.Check(context.Background(), desc, "peer-1", nil)
	wantDenied(t, err)
}

// S2: explicit deny wins over a broad allow, when the deny ACL qualifies
// the peer by public key.
func TestCheck_S2_ExplicitDenyWins(t *testing.T) {
	store := authmeta.NewStaticStore(true)
	key := genKey(t)
	store.Set("peer-1", authmeta.Resolution{
		Mechanism:   peerstate.MechanismECDHEECDSA,
		TrustedAuth: true,
		PublicKey:   key,
	})

	allowAcl := permpolicy.Acl{
		Peers: []permpolicy.Peer{permpolicy.PeerWithPublicKeyMatcher(key)},
		Rules: []permpolicy.Rule{
			permpolicy.NewRule("*", "*",
				permpolicy.Member{Name: "*", Kind: permpolicy.MemberNotSpecified, ActionMask: permpolicy.ActionModify}),
		},
	}
	denyAcl := permpolicy.Acl{
		Peers: []permpolicy.Peer{permpolicy.PeerWithPublicKeyMatcher(key)},
		Rules: []permpolicy.Rule{
			permpolicy.NewRule("*", "*",
				permpolicy.Member{Name: "*", Kind: permpolicy.MemberNotSpecified, ActionMask: permpolicy.ActionNone}),
		},
	}
	policy := permpolicy.Policy{
		SpecVersion: permpolicy.CurrentSpecVersion,
		Version:     1,
		Installed:   true,
		Acls:        []permpolicy.Acl{allowAcl, denyAcl},
	}

	c := &authz.Checker{
		Policy:   permpolicy.NewSnapshot(policy),
		Peers:    peerstate.NewRegistry(),
		AuthMeta: store,
	}
	peer := c.Peers.Create()
	peer.Mechanism = peerstate.MechanismECDHEECDSA
	peer.TrustedAuth = true
	peer.PublicKey = key
	peer.Manifest = []permpolicy.Rule{
		permpolicy.NewRule("*", "*",
			permpolicy.Member{Name: "*", Kind: permpolicy.MemberNotSpecified, ActionMask: permpolicy.ActionModify}),
	}
	store.Set(peer.GUID, authmeta.Resolution{
		Mechanism:   peerstate.MechanismECDHEECDSA,
		TrustedAuth: true,
		PublicKey:   key,
	})

	desc := methodCall("/foo", "com.x.Y", "m", msgdesc.Incoming)
	err := c.Check(context.Background(), desc, peer.GUID, nil)
	wantDenied(t, err)
}

// S3: same two ACLs, but the deny ACL qualifies via ANY_TRUSTED instead of
// WITH_PUBLIC_KEY — deny eligibility requires public-key qualification, so
// the deny never triggers and the allow stands.
func TestCheck_S3_DenyIgnoredForBroadPeer(t *testing.T) {
	store := authmeta.NewStaticStore(true)
	key := genKey(t)
	store.Set("peer-1", authmeta.Resolution{
		Mechanism:   peerstate.MechanismECDHEECDSA,
		TrustedAuth: true,
		PublicKey:   key,
	})

	allowAcl := permpolicy.Acl{
		Peers: []permpolicy.Peer{permpolicy.PeerWithPublicKeyMatcher(key)},
		Rules: []permpolicy.Rule{
			permpolicy.NewRule("*", "*",
				permpolicy.Member{Name: "*", Kind: permpolicy.MemberNotSpecified, ActionMask: permpolicy.ActionModify}),
		},
	}
	denyAcl := permpolicy.Acl{
		Peers: []permpolicy.Peer{permpolicy.PeerAnyTrustedMatcher()},
		Rules: []permpolicy.Rule{
			permpolicy.NewRule("*", "*",
				permpolicy.Member{Name: "*", Kind: permpolicy.MemberNotSpecified, ActionMask: permpolicy.ActionNone}),
		},
	}
	policy := permpolicy.Policy{
		SpecVersion: permpolicy.CurrentSpecVersion,
		Version:     1,
		Installed:   true,
		Acls:        []permpolicy.Acl{allowAcl, denyAcl},
	}

	c := &authz.Checker{
		Policy:   permpolicy.NewSnapshot(policy),
		Peers:    peerstate.NewRegistry(),
		AuthMeta: store,
	}
	peer := c.Peers.Create()
	peer.Mechanism = peerstate.MechanismECDHEECDSA
	peer.TrustedAuth = true
	peer.PublicKey = key
	peer.Manifest = []permpolicy.Rule{
		permpolicy.NewRule("*", "*",
			permpolicy.Member{Name: "*", Kind: permpolicy.MemberNotSpecified, ActionMask: permpolicy.ActionModify}),
	}
	store.Set(peer.GUID, authmeta.Resolution{
		Mechanism:   peerstate.MechanismECDHEECDSA,
		TrustedAuth: true,
		PublicKey:   key,
	})

	desc := methodCall("/foo", "com.x.Y", "m", msgdesc.Incoming)
	err := c.Check(context.Background(), desc, peer.GUID, nil)
	wantAllowed(t, err)
}

// S4: prefix wildcard object path.
func TestCheck_S4_PrefixWildcard(t *testing.T) {
	store := authmeta.NewStaticStore(true)

	acl := permpolicy.Acl{
		Peers: []permpolicy.Peer{permpolicy.PeerAllMatcher()},
		Rules: []permpolicy.Rule{
			permpolicy.NewRule("/foo/*", "com.x",
				permpolicy.Member{Name: "*", Kind: permpolicy.MemberNotSpecified, ActionMask: permpolicy.ActionModify | permpolicy.ActionProvide}),
		},
	}
	policy := permpolicy.Policy{
		SpecVersion: permpolicy.CurrentSpecVersion,
		Version:     1,
		Installed:   true,
		Acls:        []permpolicy.Acl{acl},
	}
	c := &authz.Checker{
		Policy:   permpolicy.NewSnapshot(policy),
		Peers:    peerstate.NewRegistry(),
		AuthMeta: store,
	}

	okDesc := methodCall("/foo/bar", "com.x", "Ping", msgdesc.Incoming)
	if err := c.Check(context.Background(), okDesc, "anon", nil); err != nil {
		t.Fatalf("expected allow for /foo/bar, got %v", err)
	}

	badDesc := methodCall("/baz/bar", "com.x", "Ping", msgdesc.Incoming)
	wantDenied(t, c.Check(context.Background(), badDesc, "anon", nil))
}

// S5: a rule granting MODIFY on a property also allows an incoming Get
// (OBSERVE), because MODIFY subsumes OBSERVE.
func TestCheck_S5_PropertyObserveViaModify(t *testing.T) {
	store := authmeta.NewStaticStore(true)

	acl := permpolicy.Acl{
		Peers: []permpolicy.Peer{permpolicy.PeerAllMatcher()},
		Rules: []permpolicy.Rule{
			permpolicy.NewRule("/app", "org.example.Widget",
				permpolicy.Member{Name: "Speed", Kind: permpolicy.MemberProperty, ActionMask: permpolicy.ActionModify}),
		},
	}
	policy := permpolicy.Policy{
		SpecVersion: permpolicy.CurrentSpecVersion,
		Version:     1,
		Installed:   true,
		Acls:        []permpolicy.Acl{acl},
	}
	c := &authz.Checker{
		Policy:   permpolicy.NewSnapshot(policy),
		Peers:    peerstate.NewRegistry(),
		AuthMeta: store,
	}

	desc := msgdesc.MsgDesc{
		Direction:     msgdesc.Incoming,
		Kind:          msgdesc.MethodCall,
		ObjPath:       "/app",
		InterfaceName: msgdesc.PropertiesInterface,
		MemberName:    "Get",
	}
	err := c.Check(context.Background(), desc, "anon", msgdesc.PropertyArgs{"org.example.Widget", "Speed"})
	wantAllowed(t, err)
}

// S6: policy allows, but a certificate-based peer with no matching
// manifest rule is denied; the same setup with an ECDHE-PSK peer is
// allowed, because manifest enforcement is skipped for non-certificate
// mechanisms.
func TestCheck_S6_ManifestGate(t *testing.T) {
	store := authmeta.NewStaticStore(true)
	key := genKey(t)

	acl := permpolicy.Acl{
		Peers: []permpolicy.Peer{permpolicy.PeerAllMatcher()},
		Rules: []permpolicy.Rule{
			permpolicy.NewRule("/app", "org.example.Widget",
				permpolicy.Member{Name: "Spin", Kind: permpolicy.MemberMethodCall, ActionMask: permpolicy.ActionModify}),
		},
	}
	policy := permpolicy.Policy{
		SpecVersion: permpolicy.CurrentSpecVersion,
		Version:     1,
		Installed:   true,
		Acls:        []permpolicy.Acl{acl},
	}

	c := &authz.Checker{
		Policy:   permpolicy.NewSnapshot(policy),
		Peers:    peerstate.NewRegistry(),
		AuthMeta: store,
	}
	desc := methodCall("/app", "org.example.Widget", "Spin", msgdesc.Incoming)

	certPeer := c.Peers.Create()
	certPeer.Mechanism = peerstate.MechanismECDHEECDSA
	certPeer.TrustedAuth = true
	certPeer.PublicKey = key
	store.Set(certPeer.GUID, authmeta.Resolution{
		Mechanism:   peerstate.MechanismECDHEECDSA,
		TrustedAuth: true,
		PublicKey:   key,
	})
	wantDenied(t, c.Check(context.Background(), desc, certPeer.GUID, nil))

	pskPeer := c.Peers.Create()
	pskPeer.Mechanism = peerstate.MechanismECDHEPSK
	pskPeer.TrustedAuth = true
	store.Set(pskPeer.GUID, authmeta.Resolution{
		Mechanism:   peerstate.MechanismECDHEPSK,
		TrustedAuth: true,
	})
	wantAllowed(t, c.Check(context.Background(), desc, pskPeer.GUID, nil))
}

func TestCheck_StandardInterfacePassThrough(t *testing.T) {
	store := authmeta.NewStaticStore(true)
	c := &authz.Checker{
		Policy:   permpolicy.NewSnapshot(permpolicy.Empty()),
		Peers:    peerstate.NewRegistry(),
		AuthMeta: store,
	}
	desc := methodCall("/org/alljoyn/Bus", "org.freedesktop.DBus.Peer", "Ping", msgdesc.Incoming)
	wantAllowed(t, c.Check(context.Background(), desc, "anon", nil))
}

func TestCheck_NonCallOrSignalPassThrough(t *testing.T) {
	store := authmeta.NewStaticStore(true)
	c := &authz.Checker{
		Policy:   permpolicy.NewSnapshot(permpolicy.Empty()),
		Peers:    peerstate.NewRegistry(),
		AuthMeta: store,
	}
	desc := msgdesc.MsgDesc{Kind: msgdesc.Other, InterfaceName: "com.x.Y"}
	wantAllowed(t, c.Check(context.Background(), desc, "anon", nil))
}

func TestCheck_ManagedInterface_AdminRequired(t *testing.T) {
	store := authmeta.NewStaticStore(true)
	c := &authz.Checker{
		Policy:       permpolicy.NewSnapshot(permpolicy.Empty()),
		Peers:        peerstate.NewRegistry(),
		AuthMeta:     store,
		AdminGroupID: "admin-group",
	}
	desc := methodCall("/security", "org.alljoyn.Bus.Security.ManagedApplication", "Reset", msgdesc.Incoming)

	plainPeer := c.Peers.Create()
	wantDenied(t, c.Check(context.Background(), desc, plainPeer.GUID, nil))

	adminPeer := c.Peers.Create()
	adminPeer.Memberships["cert-1"] = peerstate.Membership{GroupID: "admin-group"}
	wantAllowed(t, c.Check(context.Background(), desc, adminPeer.GUID, nil))
}

func TestCheck_ManagedInterface_AlwaysAllowed(t *testing.T) {
	store := authmeta.NewStaticStore(true)
	c := &authz.Checker{
		Policy:   permpolicy.NewSnapshot(permpolicy.Empty()),
		Peers:    peerstate.NewRegistry(),
		AuthMeta: store,
	}
	desc := methodCall("/security", "org.alljoyn.Bus.Security.ManagedApplication", "Identity", msgdesc.Incoming)
	wantAllowed(t, c.Check(context.Background(), desc, "anon", nil))
}

func TestCheck_NoManagementObjectInstalled(t *testing.T) {
	store := authmeta.NewStaticStore(false)
	c := &authz.Checker{
		Policy:                    permpolicy.NewSnapshot(permpolicy.Empty()),
		Peers:                     peerstate.NewRegistry(),
		AuthMeta:                  store,
		ManagementObjectInstalled: func() bool { return false },
	}
	desc := methodCall("/security", "org.alljoyn.Bus.Security.ClaimableApplication", "Claim", msgdesc.Incoming)
	wantDenied(t, c.Check(context.Background(), desc, "anon", nil))
}

func TestCheck_UnclaimedOpenness(t *testing.T) {
	store := authmeta.NewStaticStore(false)
	c := &authz.Checker{
		Policy:   permpolicy.NewSnapshot(permpolicy.Empty()),
		Peers:    peerstate.NewRegistry(),
		AuthMeta: store,
	}
	desc := methodCall("/app", "org.example.Widget", "Spin", msgdesc.Incoming)
	wantAllowed(t, c.Check(context.Background(), desc, "anon", nil))
}

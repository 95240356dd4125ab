package permpolicy_test

import (
	"testing"

	"github.com/openalljoyn/authzcore/internal/permpolicy"
)

func TestPolicyEmpty(t *testing.T) {
	p := permpolicy.Empty()
	if p.SpecVersion != permpolicy.CurrentSpecVersion {
		t.Errorf("SpecVersion = %d, want %d", p.SpecVersion, permpolicy.CurrentSpecVersion)
	}
	if p.Installed {
		t.Error("a freshly-empty policy must not be Installed")
	}
	if len(p.Acls) != 0 {
		t.Error("expected zero ACLs")
	}
}

func TestPolicyClone_Independent(t *testing.T) {
	p := permpolicy.Policy{
		SpecVersion: permpolicy.CurrentSpecVersion,
		Acls: []permpolicy.Acl{
			{Rules: []permpolicy.Rule{permpolicy.NewRule("/app", "org.example.Widget",
				permpolicy.Member{Name: "Spin", ActionMask: permpolicy.ActionModify})}},
		},
	}
	clone := p.Clone()
	clone.Acls[0].Rules[0].Members[0].Name = "Stop"

	if p.Acls[0].Rules[0].Members[0].Name != "Spin" {
		t.Fatal("mutating a cloned policy must not affect the original")
	}
}

func TestPolicyEqual_OrderSensitive(t *testing.T) {
	acl1 := permpolicy.Acl{Peers: []permpolicy.Peer{permpolicy.PeerAllMatcher()}}
	acl2 := permpolicy.Acl{Peers: []permpolicy.Peer{permpolicy.PeerAnyTrustedMatcher()}}

	a := permpolicy.Policy{Acls: []permpolicy.Acl{acl1, acl2}}
	b := permpolicy.Policy{Acls: []permpolicy.Acl{acl2, acl1}}

	if a.Equal(b) {
		t.Fatal("Policy.Equal must be order-sensitive across Acls")
	}
	if !a.Equal(a.Clone()) {
		t.Fatal("a policy must equal its own clone")
	}
}

func TestWireRoundTrip(t *testing.T) {
	key := genKey(t)
	original := permpolicy.Policy{
		SpecVersion: permpolicy.CurrentSpecVersion,
		Version:     3,
		Installed:   true,
		Acls: []permpolicy.Acl{
			{
				Peers: []permpolicy.Peer{
					permpolicy.PeerAllMatcher(),
					permpolicy.PeerWithPublicKeyMatcher(key),
					permpolicy.PeerWithMembershipMatcher("group-a", key),
				},
				Rules: []permpolicy.Rule{
					permpolicy.NewRule("/app", "org.example.Widget",
						permpolicy.Member{Name: "Spin", Kind: permpolicy.MemberMethodCall, ActionMask: permpolicy.ActionModify}),
					permpolicy.NewRule("*", "*",
						permpolicy.Member{Name: "*", ActionMask: permpolicy.ActionNone}),
				},
			},
		},
	}

	wire := permpolicy.ToWire(original)
	roundTripped, err := permpolicy.FromWire(wire)
	if err != nil {
		t.Fatalf("FromWire: %v", err)
	}

	if roundTripped.Version != original.Version || roundTripped.SpecVersion != original.SpecVersion {
		t.Fatalf("scalar fields did not round-trip: got %+v, want %+v", roundTripped, original)
	}
	if !roundTripped.Equal(original) {
		t.Fatalf("round-tripped policy not structurally equal to original:\ngot:  %+v\nwant: %+v", roundTripped, original)
	}
}

func TestFromWire_VersionMismatch(t *testing.T) {
	_, err := permpolicy.FromWire(permpolicy.WirePolicy{SpecVersion: 99})
	if err == nil {
		t.Fatal("expected an error for an unrecognized specVersion")
	}
}

func TestFromWire_UnknownPeerKind(t *testing.T) {
	_, err := permpolicy.FromWire(permpolicy.WirePolicy{
		SpecVersion: permpolicy.CurrentSpecVersion,
		Acls:        []permpolicy.WireAcl{{Peers: []permpolicy.WirePeer{{Kind: "NOT_A_REAL_KIND"}}}},
	})
	if err == nil {
		t.Fatal("expected an error for an unknown peer kind")
	}
}

func TestFromWire_MembershipRequiresGroupID(t *testing.T) {
	_, err := permpolicy.FromWire(permpolicy.WirePolicy{
		SpecVersion: permpolicy.CurrentSpecVersion,
		Acls:        []permpolicy.WireAcl{{Peers: []permpolicy.WirePeer{{Kind: "WITH_MEMBERSHIP"}}}},
	})
	if err == nil {
		t.Fatal("expected an error for WITH_MEMBERSHIP peer missing a group_id")
	}
}

package peerstate_test

import (
	"testing"

	"github.com/openalljoyn/authzcore/internal/peerstate"
)

func TestMechanismIsCertificateBased(t *testing.T) {
	cases := []struct {
		mech peerstate.Mechanism
		want bool
	}{
		{peerstate.MechanismUnknown, false},
		{peerstate.MechanismECDHENull, false},
		{peerstate.MechanismECDHEPSK, false},
		{peerstate.MechanismECDHESPEKE, false},
		{peerstate.MechanismECDHEECDSA, true},
	}
	for _, c := range cases {
		if got := c.mech.IsCertificateBased(); got != c.want {
			t.Errorf("Mechanism(%q).IsCertificateBased() = %v, want %v", c.mech, got, c.want)
		}
	}
}

func TestHasGroup(t *testing.T) {
	s := peerstate.New("guid-1")
	if s.HasGroup("admins") {
		t.Fatal("HasGroup on empty state returned true")
	}
	s.Memberships["cert-serial-1"] = peerstate.Membership{GroupID: "admins"}
	if !s.HasGroup("admins") {
		t.Fatal("HasGroup did not find installed membership")
	}
	if s.HasGroup("other") {
		t.Fatal("HasGroup matched an unrelated group")
	}
}

func TestEnforceManifest(t *testing.T) {
	s := peerstate.New("guid-1")
	s.Mechanism = peerstate.MechanismECDHEPSK
	if s.EnforceManifest() {
		t.Fatal("EnforceManifest true for a PSK peer")
	}
	s.Mechanism = peerstate.MechanismECDHEECDSA
	if !s.EnforceManifest() {
		t.Fatal("EnforceManifest false for a certificate-based peer")
	}
}

func TestRegistryCreateGetRemove(t *testing.T) {
	r := peerstate.NewRegistry()
	if r.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", r.Len())
	}

	a := r.Create()
	b := r.Create()
	if a.GUID == "" || b.GUID == "" {
		t.Fatal("Create did not mint a guid")
	}
	if a.GUID == b.GUID {
		t.Fatal("two Create calls minted the same guid")
	}
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}

	if got := r.Get(a.GUID); got != a {
		t.Fatal("Get did not return the same pointer Create returned")
	}
	if got := r.Get("unknown"); got != nil {
		t.Fatal("Get(unknown) returned a non-nil pointer")
	}

	r.Remove(a.GUID)
	if r.Len() != 1 {
		t.Fatalf("Len() after Remove = %d, want 1", r.Len())
	}
	if got := r.Get(a.GUID); got != nil {
		t.Fatal("Get still finds a removed peer")
	}

	// Removing an unknown guid is a no-op, not an error.
	r.Remove("unknown")
}

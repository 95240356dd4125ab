// Package testutil provides a shared conformance suite for policystore
// drivers, run by each driver package's own tests.
package testutil

import (
	"context"
	"testing"

	"github.com/openalljoyn/authzcore/internal/permpolicy"
	"github.com/openalljoyn/authzcore/internal/policystore"
)

// SamplePolicy returns a small installed Policy with one ANY_TRUSTED ACL
// holding one method-call rule, suitable for persistence tests.
func SamplePolicy() permpolicy.Policy {
	acl := permpolicy.Acl{
		Peers: []permpolicy.Peer{permpolicy.PeerAnyTrustedMatcher()},
		Rules: []permpolicy.Rule{
			permpolicy.NewRule("/app", "org.example.Widget",
				permpolicy.Member{Name: "Spin", Kind: permpolicy.MemberMethodCall, ActionMask: permpolicy.ActionModify}),
		},
	}
	return permpolicy.Policy{
		SpecVersion: permpolicy.CurrentSpecVersion,
		Version:     1,
		Acls:        []permpolicy.Acl{acl},
		Installed:   true,
	}
}

// RunDriverTests exercises Init/Load/Save against a freshly constructed
// driver from cfg. Callers are responsible for cfg's DataDir cleanup.
func RunDriverTests(t *testing.T, cfg *policystore.DriverConfig) {
	t.Helper()
	ctx := context.Background()

	driver, err := policystore.New(cfg)
	if err != nil {
		t.Fatalf("New(%s) failed: %v", cfg.Driver, err)
	}
	if err := driver.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer driver.Close()

	if _, err := driver.Load(ctx); err != policystore.ErrNotFound {
		t.Fatalf("Load before Save = %v, want ErrNotFound", err)
	}

	want := SamplePolicy()
	if err := driver.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := driver.Load(ctx)
	if err != nil {
		t.Fatalf("Load after Save failed: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("Load round-trip mismatch:\n got  %+v\n want %+v", got, want)
	}

	// Replacement: saving a new version overwrites, never merges.
	replacement := want.Clone()
	replacement.Version = 2
	replacement.Acls = nil
	if err := driver.Save(ctx, replacement); err != nil {
		t.Fatalf("Save replacement failed: %v", err)
	}
	got2, err := driver.Load(ctx)
	if err != nil {
		t.Fatalf("Load after replacement failed: %v", err)
	}
	if !got2.Equal(replacement) {
		t.Fatalf("Load after replacement mismatch:\n got  %+v\n want %+v", got2, replacement)
	}
	if got2.Equal(want) {
		t.Fatal("replacement Save did not actually replace the prior policy")
	}
}

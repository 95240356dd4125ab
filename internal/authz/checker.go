// Package authz implements the Authorization Orchestrator (spec §4.8):
// the top-level entry point that skips standard bus interfaces,
// special-cases the management interfaces, and otherwise enforces both
// local policy and peer manifest. It is the seam where every other
// package in this module (permpolicy, msgdesc, rulematch, aclengine,
// manifest, authmeta, peerstate, permerr) is wired together, mirroring
// the cascade shape of this codebase's lineage's
// federation.PolicyEngine.Evaluate.
package authz

import (
	"context"
	"log/slog"

	"github.com/openalljoyn/authzcore/internal/aclengine"
	"github.com/openalljoyn/authzcore/internal/authmeta"
	"github.com/openalljoyn/authzcore/internal/manifest"
	"github.com/openalljoyn/authzcore/internal/msgdesc"
	"github.com/openalljoyn/authzcore/internal/peerstate"
	"github.com/openalljoyn/authzcore/internal/permerr"
	"github.com/openalljoyn/authzcore/internal/permpolicy"
	"github.com/openalljoyn/authzcore/internal/platform/logutil"
)

// Checker is the orchestrator. It holds no mutable state of its own —
// everything it reasons about (policy, peer, claim state) is borrowed
// from the collaborators it is constructed with, so a Checker is safe to
// share across goroutines and call concurrently (spec §5).
type Checker struct {
	// Policy is the lock-free current-policy snapshot (spec §5, §9).
	Policy *permpolicy.Snapshot

	// Peers resolves a guid to the mutable per-peer record (manifest,
	// cached credentials). Required.
	Peers *peerstate.Registry

	// AuthMeta answers "is this peer trusted, and with what credentials"
	// and "has this node been claimed at all" (spec §2.3).
	AuthMeta authmeta.Provider

	// AdminGroupID is the membership group identifier that marks a peer
	// as holding admin rights over the managed-application interface
	// (spec §4.8, "Admin-group membership is...").
	AdminGroupID string

	// ManagementObjectInstalled reports whether this local node exposes a
	// permission-management object at all (spec §4.8 step 4). This is a
	// static deployment-time capability distinct from "claimed" (whether
	// trust anchors have been provisioned into that object, spec §4.8
	// step 6): a node can have the object installed yet remain unclaimed
	// (S1), but a node built without the security feature compiled in has
	// no such object to dispatch management calls to at all and denies
	// everything this core governs. When nil, the core behaves as if the
	// object is always installed (the common case, and the only one the
	// testable-property scenarios in spec §8 exercise).
	ManagementObjectInstalled func() bool

	// Log receives one debug-level line for each policy or manifest
	// denial; allows, carve-out denials and errors are not logged. Never
	// logs PermissionDenied as an error — spec §7 is explicit that denial
	// is the ordinary "no", not an exceptional event. If nil, a discard
	// logger is used.
	Log *slog.Logger
}

func (c *Checker) logger() *slog.Logger {
	return logutil.NoopIfNil(c.Log)
}

func (c *Checker) managementObjectInstalled() bool {
	if c.ManagementObjectInstalled == nil {
		return true
	}
	return c.ManagementObjectInstalled()
}

// Check runs the full §4.8 cascade for one message against one peer
// identified by guid. Returns nil on allow, or a *permerr.Classified
// wrapping one of permerr's sentinel kinds on a deny or a malformed
// Properties call. Errors from AuthMeta are returned as they come.
func (c *Checker) Check(ctx context.Context, desc msgdesc.MsgDesc, guid string, args msgdesc.PropertyArgs) error {
	log := c.logger()

	// Step 1: only method calls and signals are governed at all.
	if desc.Kind != msgdesc.MethodCall && desc.Kind != msgdesc.Signal {
		return nil
	}

	// Step 2: standard bus interfaces are always open plumbing.
	if isStandardBusInterface(desc.InterfaceName) {
		return nil
	}

	// Step 3: Properties sub-calls get their descriptor rewritten before
	// anything downstream looks at InterfaceName/MemberName.
	if desc.InterfaceName == msgdesc.PropertiesInterface {
		rewritten, err := msgdesc.ParsePropertyCall(desc, args)
		if err != nil {
			return err
		}
		desc = rewritten
	}

	// Step 4: no permission-management object at all means nothing this
	// core governs can be evaluated — deny unconditionally, even the
	// management carve-outs below.
	if !c.managementObjectInstalled() {
		return permerr.Denyf(permerr.ReasonNoPermissionObject, "no permission-management object installed")
	}

	claimed, err := c.AuthMeta.Claimed(ctx)
	if err != nil {
		return err
	}

	// Step 5: management-interface carve-out table, evaluated before the
	// general claimed/unclaimed gate — Claim must be reachable while
	// unclaimed (S1), and admin-gated members must stay gated even once
	// claimed.
	if isManagementInterface(desc.InterfaceName) {
		peer := c.Peers.Get(guid)
		hasAdmin := peer != nil && c.AdminGroupID != "" && peer.HasGroup(c.AdminGroupID)

		switch carveOut(desc.InterfaceName, desc.MemberName, desc.Direction, claimed, hasAdmin) {
		case verdictAllow:
			return nil
		case verdictDenyUnclaimable:
			return permerr.Denyf(permerr.ReasonClaimNotAllowed, "already claimed")
		case verdictRequireAdmin:
			return permerr.Denyf(permerr.ReasonAdminRequired, "%s requires admin-group membership", desc.MemberName)
		case verdictNoMatch:
			// Fall through to ordinary policy authorization below.
		}
	}

	// Step 6: unmanaged (unclaimed) devices are fully open by design.
	if !claimed {
		return nil
	}

	// Step 7: derive the required action; a descriptor the matrix does
	// not cover (Kind == Other never reaches here, see step 1) falls
	// through to manifest-only handling, which has nothing to check
	// either — allow.
	required := msgdesc.RequiredAction(desc)
	if required == permpolicy.ActionNone {
		return nil
	}

	// Step 8: peer authentication metadata determines trust and whether
	// the manifest must additionally be enforced.
	res, known, err := c.AuthMeta.Resolve(ctx, guid)
	if err != nil {
		return err
	}
	trustedPeer := known && res.TrustedAuth
	enforceManifest := trustedPeer && res.Mechanism.IsCertificateBased()

	peer := c.Peers.Get(guid)

	// Step 9: policy authorization.
	policy := c.Policy.Load()
	allowed, denied := aclengine.Authorize(policy, peer, desc, required, trustedPeer, res.PublicKey, res.IssuerChain)
	if denied {
		log.Debug("authz: explicit deny", "guid", guid, "iface", desc.InterfaceName, "member", desc.MemberName)
		return permerr.Denyf(permerr.ReasonExplicitDeny, "policy explicitly denies %s %s on %s", desc.InterfaceName, desc.MemberName, desc.ObjPath)
	}
	if !allowed {
		log.Debug("authz: policy denied", "guid", guid, "iface", desc.InterfaceName, "member", desc.MemberName)
		return permerr.Denyf(permerr.ReasonPolicyNotAllowed, "policy does not allow %s %s on %s", desc.InterfaceName, desc.MemberName, desc.ObjPath)
	}

	// Step 10: peer manifest enforcement, only for certificate-based
	// peers (spec §4.7's skip condition).
	if enforceManifest {
		var manifestRules []permpolicy.Rule
		if peer != nil {
			manifestRules = peer.Manifest
		}
		if len(manifestRules) == 0 {
			log.Debug("authz: manifest empty", "guid", guid, "iface", desc.InterfaceName, "member", desc.MemberName)
			return permerr.Denyf(permerr.ReasonManifestEmpty, "peer has no manifest granting %s %s on %s", desc.InterfaceName, desc.MemberName, desc.ObjPath)
		}
		if !manifest.Enforce(manifestRules, desc, required) {
			log.Debug("authz: manifest denied", "guid", guid, "iface", desc.InterfaceName, "member", desc.MemberName)
			return permerr.Denyf(permerr.ReasonManifestNotAllowed, "peer manifest does not grant %s %s on %s", desc.InterfaceName, desc.MemberName, desc.ObjPath)
		}
	}

	// Step 11: allow.
	return nil
}

package authz

import "github.com/openalljoyn/authzcore/internal/msgdesc"

// Standard bus interfaces (spec §4.8 step 2): plumbing rails that must
// always flow regardless of policy or manifest state.
const (
	ifaceBus               = "org.alljoyn.Bus"
	ifaceDaemon             = "org.alljoyn.Daemon"
	ifaceDaemonDebug        = "org.alljoyn.Daemon.Debug"
	ifacePeerAuthentication = "org.alljoyn.Bus.Peer.Authentication"
	ifacePeerSession        = "org.alljoyn.Bus.Peer.Session"
	ifacePeerHeaderCompr    = "org.alljoyn.Bus.Peer.HeaderCompression"
	ifaceAllseenIntrospect  = "org.allseen.Introspectable"
	ifaceFreedesktopBus     = "org.freedesktop.DBus"
	ifaceFreedesktopPeer    = "org.freedesktop.DBus.Peer"
	ifaceFreedesktopIntro   = "org.freedesktop.DBus.Introspectable"
)

var standardBusInterfaces = map[string]bool{
	ifaceBus:                true,
	ifaceDaemon:             true,
	ifaceDaemonDebug:        true,
	ifacePeerAuthentication: true,
	ifacePeerSession:        true,
	ifacePeerHeaderCompr:    true,
	ifaceAllseenIntrospect:  true,
	ifaceFreedesktopBus:     true,
	ifaceFreedesktopPeer:    true,
	ifaceFreedesktopIntro:   true,
}

// isStandardBusInterface reports whether iface is one of the fixed set of
// plumbing interfaces the orchestrator always allows (spec §4.8 step 2).
func isStandardBusInterface(iface string) bool {
	return standardBusInterfaces[iface]
}

// Permission-management interfaces (spec §4.8 step 5).
const (
	ifaceSecurityApplication = "org.alljoyn.Bus.Security.Application"
	ifaceClaimableApp        = "org.alljoyn.Bus.Security.ClaimableApplication"
	ifaceManagedApp          = "org.alljoyn.Bus.Security.ManagedApplication"
)

var managementInterfaces = map[string]bool{
	ifaceSecurityApplication: true,
	ifaceClaimableApp:        true,
	ifaceManagedApp:          true,
}

// isManagementInterface reports whether iface is one of the permission-
// management interfaces subject to the carve-out table.
func isManagementInterface(iface string) bool {
	return managementInterfaces[iface]
}

// carveOutVerdict is what the management-interface carve-out table (spec
// §4.8, "Management-interface carve-out") returns for a matched member.
type carveOutVerdict int

const (
	// verdictNoMatch means the member name is not covered by the
	// carve-out table for this interface; the caller falls through to
	// ordinary policy authorization.
	verdictNoMatch carveOutVerdict = iota
	verdictAllow
	verdictDenyUnclaimable // claimable-application/Claim when already claimed
	verdictRequireAdmin
)

// alwaysAllowedManagedMembers are the managed-application members that are
// always allowed incoming, with no further check.
var alwaysAllowedManagedMembers = map[string]bool{
	"Identity":              true,
	"Manifest":              true,
	"IdentityCertificateId": true,
	"DefaultPolicy":         true,
}

var adminRequiredManagedMembers = map[string]bool{
	"ReplaceIdentity":     true,
	"Reset":               true,
	"PolicyVersion":       true,
	"Policy":              true,
	"MembershipSummaries": true,
}

var alwaysAllowedSecurityMembers = map[string]bool{
	"ApplicationState":               true,
	"ManifestTemplateDigest":         true,
	"EccPublicKey":                   true,
	"ManufacturerCertificate":        true,
	"ManifestTemplate":               true,
	"ClaimCapabilities":              true,
	"ClaimCapabilityAdditionalInfo":  true,
}

const claimMember = "Claim"
const versionMember = "Version"

// carveOut evaluates the management-interface carve-out table (spec
// §4.8 step 5) for one incoming-or-outgoing member access. claimed
// reports whether the local node already has trust anchors installed;
// hasAdminMembership reports whether the calling peer holds a membership
// certificate in the local admin group.
//
// Outgoing traffic on a management interface always carries verdictAllow
// (table's last row) — the local node is always allowed to ask about its
// own management state.
func carveOut(iface, member string, direction msgdesc.Direction, claimed, hasAdminMembership bool) carveOutVerdict {
	if direction == msgdesc.Outgoing {
		return verdictAllow
	}

	if member == versionMember {
		return verdictAllow
	}

	switch iface {
	case ifaceClaimableApp:
		if member == claimMember {
			if claimed {
				return verdictDenyUnclaimable
			}
			return verdictAllow
		}
		return verdictNoMatch

	case ifaceManagedApp:
		if alwaysAllowedManagedMembers[member] {
			return verdictAllow
		}
		if adminRequiredManagedMembers[member] {
			if hasAdminMembership {
				return verdictAllow
			}
			return verdictRequireAdmin
		}
		return verdictNoMatch

	case ifaceSecurityApplication:
		if alwaysAllowedSecurityMembers[member] {
			return verdictAllow
		}
		return verdictNoMatch

	default:
		return verdictNoMatch
	}
}

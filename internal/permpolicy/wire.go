package permpolicy

import (
	"github.com/openalljoyn/authzcore/internal/eckey"
	"github.com/openalljoyn/authzcore/internal/permerr"
)

// The wire package is already-parsed by an external converter (spec §6):
// callers never hand this package raw bytes, only a typed argument tree
// equivalent to §3.1's shape. WirePolicy/WireAcl/WirePeer/WireRule/WireMember
// are that tree — a plain, JSON-friendly struct shape, not a wire codec.

// WirePolicy is the external representation of a Policy.
type WirePolicy struct {
	SpecVersion uint32    `json:"spec_version"`
	Version     uint32    `json:"version"`
	Acls        []WireAcl `json:"acls"`
}

type WireAcl struct {
	Peers []WirePeer `json:"peers"`
	Rules []WireRule `json:"rules"`
}

// WirePeer is a tagged union encoded as a kind string plus the fields that
// apply to it. Unused fields for a given kind are ignored on import.
type WirePeer struct {
	Kind    string `json:"kind"`
	KeyDER  []byte `json:"key_der,omitempty"`
	GroupID string `json:"group_id,omitempty"`
}

type WireRule struct {
	ObjPath                  string       `json:"obj_path"`
	InterfaceName            string       `json:"interface_name"`
	RuleType                 string       `json:"rule_type"`
	RecommendedSecurityLevel string       `json:"recommended_security_level"`
	Members                  []WireMember `json:"members"`
}

type WireMember struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	ActionMask uint8  `json:"action_mask"`
}

const (
	wireKindAll           = "ALL"
	wireKindAnyTrusted    = "ANY_TRUSTED"
	wireKindWithPublicKey = "WITH_PUBLIC_KEY"
	wireKindFromCA        = "FROM_CERTIFICATE_AUTHORITY"
	wireKindWithMembership = "WITH_MEMBERSHIP"
)

const (
	wireRuleManifestOrPolicy = "MANIFEST_OR_POLICY"
	wireRuleManifestTemplate = "MANIFEST_TEMPLATE"
)

const (
	wireMemberUnspecified = "NOT_SPECIFIED"
	wireMemberMethodCall  = "METHOD_CALL"
	wireMemberSignal      = "SIGNAL"
	wireMemberProperty    = "PROPERTY"
)

const (
	wireSecurityPrivileged     = "PRIVILEGED"
	wireSecurityNonPrivileged  = "NON_PRIVILEGED"
	wireSecurityUnauthenticated = "UNAUTHENTICATED"
)

// FromWire imports a Policy from its already-parsed wire form. Rejects any
// specVersion other than CurrentSpecVersion with ErrVersionMismatch, and
// any structurally malformed tree with ErrUnsupportedPolicyShape.
func FromWire(w WirePolicy) (Policy, error) {
	if w.SpecVersion != CurrentSpecVersion {
		return Policy{}, permerr.VersionMismatchf(
			"policy specVersion %d not recognized, want %d", w.SpecVersion, CurrentSpecVersion)
	}

	acls := make([]Acl, len(w.Acls))
	for i, wa := range w.Acls {
		acl, err := aclFromWire(wa)
		if err != nil {
			return Policy{}, err
		}
		acls[i] = acl
	}

	return Policy{
		SpecVersion: w.SpecVersion,
		Version:     w.Version,
		Acls:        acls,
		Installed:   true,
	}, nil
}

func aclFromWire(w WireAcl) (Acl, error) {
	peers := make([]Peer, len(w.Peers))
	for i, wp := range w.Peers {
		p, err := peerFromWire(wp)
		if err != nil {
			return Acl{}, err
		}
		peers[i] = p
	}
	rules := make([]Rule, len(w.Rules))
	for i, wr := range w.Rules {
		r, err := ruleFromWire(wr)
		if err != nil {
			return Acl{}, err
		}
		rules[i] = r
	}
	return Acl{Peers: peers, Rules: rules}, nil
}

func peerFromWire(w WirePeer) (Peer, error) {
	switch w.Kind {
	case wireKindAll:
		return PeerAllMatcher(), nil
	case wireKindAnyTrusted:
		return PeerAnyTrustedMatcher(), nil
	case wireKindWithPublicKey:
		k, err := eckey.FromDER(w.KeyDER)
		if err != nil {
			return Peer{}, permerr.UnsupportedShapef("WITH_PUBLIC_KEY peer: %v", err)
		}
		return PeerWithPublicKeyMatcher(k), nil
	case wireKindFromCA:
		k, err := eckey.FromDER(w.KeyDER)
		if err != nil {
			return Peer{}, permerr.UnsupportedShapef("FROM_CERTIFICATE_AUTHORITY peer: %v", err)
		}
		return PeerFromCertificateAuthorityMatcher(k), nil
	case wireKindWithMembership:
		if w.GroupID == "" {
			return Peer{}, permerr.UnsupportedShapef("WITH_MEMBERSHIP peer missing group_id")
		}
		var k eckey.Key
		if len(w.KeyDER) > 0 {
			var err error
			k, err = eckey.FromDER(w.KeyDER)
			if err != nil {
				return Peer{}, permerr.UnsupportedShapef("WITH_MEMBERSHIP peer: %v", err)
			}
		}
		return PeerWithMembershipMatcher(w.GroupID, k), nil
	default:
		return Peer{}, permerr.UnsupportedShapef("unknown peer kind %q", w.Kind)
	}
}

func ruleFromWire(w WireRule) (Rule, error) {
	ruleType, err := ruleTypeFromWire(w.RuleType)
	if err != nil {
		return Rule{}, err
	}
	level, err := securityLevelFromWire(w.RecommendedSecurityLevel)
	if err != nil {
		return Rule{}, err
	}
	members := make([]Member, len(w.Members))
	for i, wm := range w.Members {
		m, err := memberFromWire(wm)
		if err != nil {
			return Rule{}, err
		}
		members[i] = m
	}
	return Rule{
		ObjPath:                  w.ObjPath,
		InterfaceName:            w.InterfaceName,
		RuleType:                 ruleType,
		RecommendedSecurityLevel: level,
		Members:                  members,
	}, nil
}

func memberFromWire(w WireMember) (Member, error) {
	kind, err := memberKindFromWire(w.Kind)
	if err != nil {
		return Member{}, err
	}
	return Member{Name: w.Name, Kind: kind, ActionMask: Action(w.ActionMask)}, nil
}

func ruleTypeFromWire(s string) (RuleType, error) {
	switch s {
	case "", wireRuleManifestOrPolicy:
		return RuleManifestOrPolicy, nil
	case wireRuleManifestTemplate:
		return RuleManifestTemplate, nil
	default:
		return 0, permerr.UnsupportedShapef("unknown rule type %q", s)
	}
}

func securityLevelFromWire(s string) (SecurityLevel, error) {
	switch s {
	case "", wireSecurityPrivileged:
		return SecurityPrivileged, nil
	case wireSecurityNonPrivileged:
		return SecurityNonPrivileged, nil
	case wireSecurityUnauthenticated:
		return SecurityUnauthenticated, nil
	default:
		return 0, permerr.UnsupportedShapef("unknown security level %q", s)
	}
}

func memberKindFromWire(s string) (MemberKind, error) {
	switch s {
	case "", wireMemberUnspecified:
		return MemberNotSpecified, nil
	case wireMemberMethodCall:
		return MemberMethodCall, nil
	case wireMemberSignal:
		return MemberSignal, nil
	case wireMemberProperty:
		return MemberProperty, nil
	default:
		return 0, permerr.UnsupportedShapef("unknown member kind %q", s)
	}
}

// ToWire exports a Policy to its wire form. Round-tripping ToWire then
// FromWire preserves every field except Installed, which the wire form
// does not carry and FromWire always sets to true (spec §8, "round-trip").
func ToWire(p Policy) WirePolicy {
	acls := make([]WireAcl, len(p.Acls))
	for i, a := range p.Acls {
		acls[i] = aclToWire(a)
	}
	return WirePolicy{SpecVersion: p.SpecVersion, Version: p.Version, Acls: acls}
}

func aclToWire(a Acl) WireAcl {
	peers := make([]WirePeer, len(a.Peers))
	for i, p := range a.Peers {
		peers[i] = peerToWire(p)
	}
	rules := make([]WireRule, len(a.Rules))
	for i, r := range a.Rules {
		rules[i] = ruleToWire(r)
	}
	return WireAcl{Peers: peers, Rules: rules}
}

func peerToWire(p Peer) WirePeer {
	w := WirePeer{Kind: p.Kind.String()}
	switch p.Kind {
	case PeerWithPublicKey, PeerFromCertificateAuthority:
		w.KeyDER = p.Key.DER()
	case PeerWithMembership:
		w.GroupID = p.GroupID
		w.KeyDER = p.Key.DER()
	}
	return w
}

func ruleToWire(r Rule) WireRule {
	members := make([]WireMember, len(r.Members))
	for i, m := range r.Members {
		members[i] = memberToWire(m)
	}
	return WireRule{
		ObjPath:                  r.ObjPath,
		InterfaceName:            r.InterfaceName,
		RuleType:                 ruleTypeToWire(r.RuleType),
		RecommendedSecurityLevel: securityLevelToWire(r.RecommendedSecurityLevel),
		Members:                  members,
	}
}

func memberToWire(m Member) WireMember {
	return WireMember{Name: m.Name, Kind: memberKindToWire(m.Kind), ActionMask: uint8(m.ActionMask)}
}

func ruleTypeToWire(t RuleType) string {
	if t == RuleManifestTemplate {
		return wireRuleManifestTemplate
	}
	return wireRuleManifestOrPolicy
}

func securityLevelToWire(l SecurityLevel) string {
	switch l {
	case SecurityNonPrivileged:
		return wireSecurityNonPrivileged
	case SecurityUnauthenticated:
		return wireSecurityUnauthenticated
	default:
		return wireSecurityPrivileged
	}
}

func memberKindToWire(k MemberKind) string {
	switch k {
	case MemberMethodCall:
		return wireMemberMethodCall
	case MemberSignal:
		return wireMemberSignal
	case MemberProperty:
		return wireMemberProperty
	default:
		return wireMemberUnspecified
	}
}

package rulematch

import (
	"github.com/openalljoyn/authzcore/internal/msgdesc"
	"github.com/openalljoyn/authzcore/internal/permpolicy"
)

// Match implements spec §4.3. Given a rule, a message descriptor, the
// required action, and whether this call is scanning for an explicit deny,
// it returns whether the rule matched and whether it contributed a deny.
//
// When denied is true, matched is always false — the caller (ACL Evaluator,
// spec §4.4) treats a deny as an immediate short-circuit, not as "matched
// but also denied".
func Match(rule permpolicy.Rule, desc msgdesc.MsgDesc, required permpolicy.Action, scanForDenied bool) (matched, denied bool) {
	// 1. A rule with zero members never matches (spec §8, "empty-member
	// rule never matches").
	if len(rule.Members) == 0 {
		return false, false
	}

	// 2–3. Object path / interface name filters. Empty means "no filter
	// on this dimension"; non-empty must equal or glob-match.
	if rule.ObjPath != "" && !matchesFilter(rule.ObjPath, desc.ObjPath) {
		return false, false
	}
	if rule.InterfaceName != "" && !matchesFilter(rule.InterfaceName, desc.InterfaceName) {
		return false, false
	}

	// 4. Deny qualification: only a fully-wildcard-filtered rule
	// (objPath == "*" && interfaceName == "*") is eligible to be scanned
	// for an explicit deny.
	if scanForDenied && (rule.ObjPath != "*" || rule.InterfaceName != "*") {
		scanForDenied = false
	}

	if desc.MemberName != "" {
		return matchNamedMember(rule, desc, required, scanForDenied)
	}
	return matchGetAll(rule, desc, required), false
}

// matchesFilter reports whether pattern (a rule's ObjPath or
// InterfaceName) matches subject, accounting for glob wildcards.
func matchesFilter(pattern, subject string) bool {
	return GlobMatch(pattern, subject)
}

// matchNamedMember handles the non-GetAll case (spec §4.3 step 5): iterate
// members, skip non-matching name/kind, watch for the explicit-deny shape,
// otherwise OR in IsActionAllowed.
func matchNamedMember(rule permpolicy.Rule, desc msgdesc.MsgDesc, required permpolicy.Action, scanForDenied bool) (matched, denied bool) {
	for _, m := range rule.Members {
		if m.Name != "" && !GlobMatch(m.Name, desc.MemberName) {
			continue
		}
		if m.Kind != permpolicy.MemberNotSpecified && !kindMatches(m.Kind, desc.Kind) {
			continue
		}

		if scanForDenied && m.Name == "*" && m.ActionMask == permpolicy.ActionNone {
			return false, true
		}

		if !matched && permpolicy.IsActionAllowed(m.ActionMask, required) {
			matched = true
		}
	}
	return matched, false
}

// matchGetAll handles the GetAll case (spec §4.3 step 6): every surviving
// member (after kind filtering) must allow the required action — AND
// semantics, not OR.
func matchGetAll(rule permpolicy.Rule, desc msgdesc.MsgDesc, required permpolicy.Action) bool {
	any := false
	for _, m := range rule.Members {
		if m.Kind != permpolicy.MemberNotSpecified && !kindMatches(m.Kind, desc.Kind) {
			continue
		}
		any = true
		if !permpolicy.IsActionAllowed(m.ActionMask, required) {
			return false
		}
	}
	return any
}

func kindMatches(memberKind permpolicy.MemberKind, descKind msgdesc.Kind) bool {
	switch memberKind {
	case permpolicy.MemberMethodCall:
		return descKind == msgdesc.MethodCall
	case permpolicy.MemberSignal:
		return descKind == msgdesc.Signal
	case permpolicy.MemberProperty:
		return descKind == msgdesc.Property
	default:
		return true
	}
}

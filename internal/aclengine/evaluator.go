// Package aclengine implements the ACL Evaluator (spec §4.4), Peer
// Qualification (spec §4.5), and Policy Authorization (spec §4.6) — the
// three layers that sit between a raw Policy tree and the orchestrator's
// accept/deny verdict.
//
// The control flow here — walk an ordered list, short-circuit on the
// strong signal, OR the rest in — is the same shape as this codebase's
// PolicyEngine.Evaluate cascade (denylist → allowlist → exempt →
// federation membership), generalized from a flat host list to the
// nested Acl → Rule → Member tree the policy model requires.
package aclengine

import (
	"github.com/openalljoyn/authzcore/internal/msgdesc"
	"github.com/openalljoyn/authzcore/internal/permpolicy"
	"github.com/openalljoyn/authzcore/internal/rulematch"
)

// EvaluateAcl walks all rules of an ACL, tracking anyAllow. A rule
// reporting denied short-circuits the remaining rules of this ACL — spec
// §4.4: "Deny always short-circuits the remaining rules of the same ACL."
func EvaluateAcl(acl permpolicy.Acl, desc msgdesc.MsgDesc, required permpolicy.Action, scanForDenied bool) (allowed, denied bool) {
	anyAllow := false
	for _, rule := range acl.Rules {
		matched, ruleDenied := rulematch.Match(rule, desc, required, scanForDenied)
		if ruleDenied {
			return anyAllow, true
		}
		anyAllow = anyAllow || matched
	}
	return anyAllow, false
}

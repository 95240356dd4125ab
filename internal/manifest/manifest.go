// Package manifest implements Peer Manifest Enforcement (spec §4.7): the
// second half of the policy ∩ manifest check run after Policy
// Authorization allows a message. Manifest rules are policy rules, so
// enforcement reuses the same rulematch.Match primitive rather than
// duplicating it.
package manifest

import (
	"github.com/openalljoyn/authzcore/internal/msgdesc"
	"github.com/openalljoyn/authzcore/internal/permpolicy"
	"github.com/openalljoyn/authzcore/internal/rulematch"
)

// Enforce reports whether the peer's manifest grants the required action
// for desc. It walks rules in order with scanForDenied=false; the first
// matched rule allows, any deny short-circuits to disallow, and an empty
// manifest disallows by default.
func Enforce(rules []permpolicy.Rule, desc msgdesc.MsgDesc, required permpolicy.Action) bool {
	if len(rules) == 0 {
		return false
	}
	for _, rule := range rules {
		matched, denied := rulematch.Match(rule, desc, required, false)
		if denied {
			return false
		}
		if matched {
			return true
		}
	}
	return false
}

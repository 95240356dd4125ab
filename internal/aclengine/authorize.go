package aclengine

import (
	"github.com/openalljoyn/authzcore/internal/eckey"
	"github.com/openalljoyn/authzcore/internal/msgdesc"
	"github.com/openalljoyn/authzcore/internal/peerstate"
	"github.com/openalljoyn/authzcore/internal/permpolicy"
)

// Authorize implements Policy Authorization (spec §4.6): for every ACL in
// the policy, qualify the peer, scope deny-scanning to public-key-matched
// peers, run the ACL Evaluator, and OR the results together — short
// circuiting the whole policy the moment any ACL reports a deny.
func Authorize(policy permpolicy.Policy, peer *peerstate.PeerState, desc msgdesc.MsgDesc, required permpolicy.Action, trustedPeer bool, peerPublicKey eckey.Key, issuerChain eckey.Chain) (allowed, denied bool) {
	for _, acl := range policy.Acls {
		qualifies, viaPublicKey := Qualify(acl, peer, trustedPeer, peerPublicKey, issuerChain)
		if !qualifies {
			continue
		}

		scanForDenied := viaPublicKey
		aclAllowed, aclDenied := EvaluateAcl(acl, desc, required, scanForDenied)
		if aclDenied {
			return allowed, true
		}
		allowed = allowed || aclAllowed
	}
	return allowed, false
}

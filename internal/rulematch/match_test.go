package rulematch_test

import (
	"testing"

	"github.com/openalljoyn/authzcore/internal/msgdesc"
	"github.com/openalljoyn/authzcore/internal/permpolicy"
	"github.com/openalljoyn/authzcore/internal/rulematch"
)

func methodDesc(objPath, iface, member string) msgdesc.MsgDesc {
	return msgdesc.MsgDesc{Kind: msgdesc.MethodCall, ObjPath: objPath, InterfaceName: iface, MemberName: member}
}

func TestMatch_EmptyMemberRuleNeverMatches(t *testing.T) {
	rule := permpolicy.NewRule("/app", "org.example.Widget")
	matched, denied := rulematch.Match(rule, methodDesc("/app", "org.example.Widget", "Spin"), permpolicy.ActionModify, false)
	if matched || denied {
		t.Fatalf("matched=%v denied=%v, want false/false for an empty-member rule", matched, denied)
	}
}

func TestMatch_ObjPathAndInterfaceFilters(t *testing.T) {
	rule := permpolicy.NewRule("/app", "org.example.Widget",
		permpolicy.Member{Name: "Spin", Kind: permpolicy.MemberMethodCall, ActionMask: permpolicy.ActionModify})

	matched, _ := rulematch.Match(rule, methodDesc("/app", "org.example.Widget", "Spin"), permpolicy.ActionModify, false)
	if !matched {
		t.Fatal("expected match on exact objPath/interface")
	}
	matched, _ = rulematch.Match(rule, methodDesc("/other", "org.example.Widget", "Spin"), permpolicy.ActionModify, false)
	if matched {
		t.Fatal("expected no match on a differing objPath")
	}
	matched, _ = rulematch.Match(rule, methodDesc("/app", "org.example.Other", "Spin"), permpolicy.ActionModify, false)
	if matched {
		t.Fatal("expected no match on a differing interface")
	}
}

func TestMatch_EmptyFilterMeansNoFilter(t *testing.T) {
	rule := permpolicy.NewRule("", "",
		permpolicy.Member{Name: "Spin", Kind: permpolicy.MemberMethodCall, ActionMask: permpolicy.ActionModify})
	matched, _ := rulematch.Match(rule, methodDesc("/anything", "org.anything", "Spin"), permpolicy.ActionModify, false)
	if !matched {
		t.Fatal("expected an empty ObjPath/InterfaceName rule to match regardless of subject")
	}
}

func TestMatch_ExplicitDenyRequiresFullWildcardScope(t *testing.T) {
	denyRule := permpolicy.NewRule("*", "*",
		permpolicy.Member{Name: "*", Kind: permpolicy.MemberNotSpecified, ActionMask: permpolicy.ActionNone})

	_, denied := rulematch.Match(denyRule, methodDesc("/app", "org.example.Widget", "Spin"), permpolicy.ActionModify, true)
	if !denied {
		t.Fatal("expected a fully-wildcard zero-mask rule to signal denied when scanning for deny")
	}

	scopedDenyRule := permpolicy.NewRule("/app", "*",
		permpolicy.Member{Name: "*", Kind: permpolicy.MemberNotSpecified, ActionMask: permpolicy.ActionNone})
	matched, denied := rulematch.Match(scopedDenyRule, methodDesc("/app", "org.example.Widget", "Spin"), permpolicy.ActionModify, true)
	if denied {
		t.Fatal("a rule scoped to a specific objPath must not qualify as an explicit-deny candidate")
	}
	if matched {
		t.Fatal("a zero-mask member never grants the required action once deny scanning is disqualified")
	}
}

func TestMatch_NamedMemberIsOrSemantics(t *testing.T) {
	rule := permpolicy.NewRule("/app", "org.example.Widget",
		permpolicy.Member{Name: "Spin", Kind: permpolicy.MemberMethodCall, ActionMask: permpolicy.ActionNone},
		permpolicy.Member{Name: "Spin", Kind: permpolicy.MemberMethodCall, ActionMask: permpolicy.ActionModify})

	matched, denied := rulematch.Match(rule, methodDesc("/app", "org.example.Widget", "Spin"), permpolicy.ActionModify, false)
	if denied {
		t.Fatal("did not expect a deny signal outside deny scanning")
	}
	if !matched {
		t.Fatal("expected the second member's grant to satisfy OR semantics")
	}
}

func TestMatch_GetAllIsAndSemantics(t *testing.T) {
	allowAll := permpolicy.NewRule("/app", "org.example.Widget",
		permpolicy.Member{Kind: permpolicy.MemberProperty, ActionMask: permpolicy.ActionObserve})
	desc := msgdesc.MsgDesc{Kind: msgdesc.Property, ObjPath: "/app", InterfaceName: "org.example.Widget"}
	matched, _ := rulematch.Match(allowAll, desc, permpolicy.ActionObserve, false)
	if !matched {
		t.Fatal("expected GetAll to match when every covered member allows the required action")
	}

	mixed := permpolicy.NewRule("/app", "org.example.Widget",
		permpolicy.Member{Kind: permpolicy.MemberProperty, ActionMask: permpolicy.ActionObserve},
		permpolicy.Member{Kind: permpolicy.MemberProperty, ActionMask: permpolicy.ActionNone})
	matched, _ = rulematch.Match(mixed, desc, permpolicy.ActionObserve, false)
	if matched {
		t.Fatal("expected GetAll to fail once any covered member does not allow the required action")
	}
}

func TestMatch_MemberKindFiltersGetAll(t *testing.T) {
	rule := permpolicy.NewRule("/app", "org.example.Widget",
		permpolicy.Member{Kind: permpolicy.MemberMethodCall, ActionMask: permpolicy.ActionNone})
	desc := msgdesc.MsgDesc{Kind: msgdesc.Property, ObjPath: "/app", InterfaceName: "org.example.Widget"}
	matched, _ := rulematch.Match(rule, desc, permpolicy.ActionObserve, false)
	if matched {
		t.Fatal("a method-call-only member should not contribute to a property GetAll and leave nothing to match")
	}
}

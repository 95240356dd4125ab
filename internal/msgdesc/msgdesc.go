// Package msgdesc normalizes a parsed bus message into the shape the rest
// of the authorization core reasons about (spec §3.3), derives the
// required action bit for a message (spec §4.1), and decodes the
// Properties interface's Get/Set/GetAll sub-calls (spec §4.2).
package msgdesc

import "github.com/openalljoyn/authzcore/internal/permpolicy"

// Direction is the message's travel direction relative to the local node.
type Direction uint8

const (
	Incoming Direction = iota
	Outgoing
)

// Kind narrows the message shape.
type Kind uint8

const (
	Other Kind = iota
	MethodCall
	Signal
	Property
)

// PropertiesInterface is the standard D-Bus/AllJoyn Properties interface
// name. Messages on this interface get their descriptor rewritten by
// ParsePropertyCall before rule matching.
const PropertiesInterface = "org.freedesktop.DBus.Properties"

// MsgDesc is a normalized view of the message under evaluation. Created
// per call, never persisted (spec §3.3).
type MsgDesc struct {
	Direction       Direction
	Kind            Kind
	ObjPath         string
	InterfaceName   string
	MemberName      string
	PropertyRequest bool
	IsSetProperty   bool
}

// RequiredAction implements the §4.1 matrix. Returns ActionNone for
// message shapes the matrix does not cover (i.e. Kind == Other, which the
// orchestrator never reaches since it only evaluates method calls and
// signals — see spec §4.8 step 1).
func RequiredAction(d MsgDesc) permpolicy.Action {
	switch d.Kind {
	case Property:
		if d.IsSetProperty {
			if d.Direction == Outgoing {
				return permpolicy.ActionProvide
			}
			return permpolicy.ActionModify
		}
		// Get or GetAll
		if d.Direction == Outgoing {
			return permpolicy.ActionProvide
		}
		return permpolicy.ActionObserve
	case MethodCall:
		if d.Direction == Outgoing {
			return permpolicy.ActionProvide
		}
		return permpolicy.ActionModify
	case Signal:
		if d.Direction == Outgoing {
			return permpolicy.ActionObserve
		}
		return permpolicy.ActionProvide
	default:
		return permpolicy.ActionNone
	}
}

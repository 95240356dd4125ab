package msgdesc

import "github.com/openalljoyn/authzcore/internal/permerr"

// PropertyArgs is the decoded argument list of a Properties sub-call.
// GetAll carries one string (target interface); Get/Set carry two
// (target interface, target property name). Argument decoding itself
// (wire → strings) happens upstream (spec §1 — message serialization is
// out of scope); this package only validates argument *count* and
// *member name*.
type PropertyArgs []string

const (
	memberGet    = "Get"
	memberSet    = "Set"
	memberGetAll = "GetAll"
)

// ParsePropertyCall decodes the Properties sub-call named by d.MemberName
// and rewrites d.InterfaceName/d.MemberName to the target interface and
// property the sub-call names (spec §4.2). d must already have
// InterfaceName == PropertiesInterface.
//
// Returns permerr.ErrInvalidData if the member name is not one of
// Get/Set/GetAll, or if args has fewer entries than the sub-call requires.
func ParsePropertyCall(d MsgDesc, args PropertyArgs) (MsgDesc, error) {
	switch d.MemberName {
	case memberGetAll:
		if len(args) < 1 {
			return MsgDesc{}, permerr.InvalidDataf(permerr.ReasonInvalidPropertyCall,
				"GetAll requires 1 argument, got %d", len(args))
		}
		d.InterfaceName = args[0]
		d.MemberName = ""
		d.Kind = Property
		d.PropertyRequest = true
		d.IsSetProperty = false
		return d, nil

	case memberGet, memberSet:
		if len(args) < 2 {
			return MsgDesc{}, permerr.InvalidDataf(permerr.ReasonInvalidPropertyCall,
				"%s requires 2 arguments, got %d", d.MemberName, len(args))
		}
		d.InterfaceName = args[0]
		targetProperty := args[1]
		d.IsSetProperty = d.MemberName == memberSet
		d.MemberName = targetProperty
		d.Kind = Property
		d.PropertyRequest = true
		return d, nil

	default:
		return MsgDesc{}, permerr.InvalidDataf(permerr.ReasonInvalidPropertyCall,
			"unknown Properties sub-call %q", d.MemberName)
	}
}

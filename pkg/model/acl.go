package model

import (
	"fmt"
	"strconv"
	"strings"
)

// AuthenticatedToken is the well-known ACE identifier granting access to
// any authenticated principal.
const AuthenticatedToken = "AUTHENTICATED@"

// Action is one of the four access-controlled operations on an entry.
type Action int

const (
	ActionRead Action = iota
	ActionWrite
	ActionEdit
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionRead:
		return "read"
	case ActionWrite:
		return "write"
	case ActionEdit:
		return "edit"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Principal is the caller identity supplied by the API/auth layer. The
// engine never constructs principals itself.
type Principal struct {
	Name          string
	Administrator bool
	Groups        []string
}

// AccessLists is the coarse four-list access view carried by collections
// and resources. Each list holds group identifiers allowed the action; an
// empty list means the action is open to all authenticated principals.
type AccessLists struct {
	ReadAccess   []string `json:"read_access"`
	EditAccess   []string `json:"edit_access"`
	WriteAccess  []string `json:"write_access"`
	DeleteAccess []string `json:"delete_access"`
}

// ForAction returns the list guarding the given action.
func (l AccessLists) ForAction(action Action) []string {
	switch action {
	case ActionRead:
		return l.ReadAccess
	case ActionWrite:
		return l.WriteAccess
	case ActionEdit:
		return l.EditAccess
	case ActionDelete:
		return l.DeleteAccess
	default:
		return nil
	}
}

// UserCan decides whether a principal may perform an action against an
// entry's access lists.
//
// Administrators always pass. An empty list means open access. A non-empty
// list with a group-less principal is an outright denial. Otherwise access
// is granted iff at least one of the principal's groups appears in the
// list: subtracting the list from the principal's group set must lose at
// least one member.
//
// Pure function, shared by Collection and Resource (their access-list
// shapes are identical).
func UserCan(p Principal, lists AccessLists, action Action) bool {
	if p.Administrator {
		return true
	}
	allowed := lists.ForAction(action)
	if len(allowed) == 0 {
		return true
	}
	if len(p.Groups) == 0 {
		return false
	}

	inList := make(map[string]bool, len(allowed))
	for _, g := range allowed {
		inList[g] = true
	}
	withoutAccess := make(map[string]bool, len(p.Groups))
	for _, g := range p.Groups {
		if !inList[g] {
			withoutAccess[g] = true
		}
	}
	groups := make(map[string]bool, len(p.Groups))
	for _, g := range p.Groups {
		groups[g] = true
	}
	return len(withoutAccess) < len(groups)
}

// ACE mask bits, following the CDMI ACE mask encoding.
const (
	aceReadObject    uint32 = 0x00000001
	aceWriteObject   uint32 = 0x00000002
	aceAppendData    uint32 = 0x00000004
	aceReadMetadata  uint32 = 0x00000008
	aceWriteMetadata uint32 = 0x00000010
	aceExecute       uint32 = 0x00000020
	aceDeleteObject  uint32 = 0x00000040

	// ACEMaskRead covers object and metadata reads.
	ACEMaskRead = aceReadObject | aceReadMetadata

	// ACEMaskWrite covers object/metadata writes, appends and deletion.
	ACEMaskWrite = aceWriteObject | aceWriteMetadata | aceAppendData | aceDeleteObject
)

// ACE types.
const (
	ACETypeAllow = "ALLOW"
	ACETypeDeny  = "DENY"
)

// ACE is one access-control entry: a rule granting or denying an action
// mask to a group identifier. ACEFlags carries inheritance bits; the engine
// currently writes 0 everywhere ("applies to this entry only").
type ACE struct {
	Identifier string `json:"identifier"`
	ACEType    string `json:"acetype"`
	ACEFlags   uint32 `json:"aceflags"`
	ACEMask    uint32 `json:"acemask"`
}

// ACL is the canonical rich access representation: ACEs keyed by group
// identifier. The coarse four-list view is derived from it, never stored
// alongside it, so there is a single source of truth.
type ACL map[string]ACE

// AccessLists projects the ACL onto the coarse four-list view used by the
// namespace tree. Only ALLOW entries contribute; a read bit places the
// group on the read list, write bits place it on the write, edit and
// delete lists according to the mask.
func (a ACL) AccessLists() AccessLists {
	var lists AccessLists
	for gid, ace := range a {
		if ace.ACEType != ACETypeAllow {
			continue
		}
		if ace.ACEMask&ACEMaskRead != 0 {
			lists.ReadAccess = append(lists.ReadAccess, gid)
		}
		if ace.ACEMask&(aceWriteObject|aceAppendData) != 0 {
			lists.WriteAccess = append(lists.WriteAccess, gid)
		}
		if ace.ACEMask&aceWriteMetadata != 0 {
			lists.EditAccess = append(lists.EditAccess, gid)
		}
		if ace.ACEMask&aceDeleteObject != 0 {
			lists.DeleteAccess = append(lists.DeleteAccess, gid)
		}
	}
	return lists
}

// strToACEMask translates the simplified access strings used by UpdateACL
// ("read", "write", "read/write") into a mask.
func strToACEMask(access string) uint32 {
	switch access {
	case "read":
		return ACEMaskRead
	case "write":
		return ACEMaskWrite
	case "read/write":
		return ACEMaskRead | ACEMaskWrite
	default:
		return 0
	}
}

// cdmiStrToACEMask parses a CDMI acemask string: either a hex/decimal
// literal ("0x09") or a comma-separated list of mask names
// ("READ_OBJECT, READ_METADATA").
func cdmiStrToACEMask(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if v, err := strconv.ParseUint(s, 0, 32); err == nil {
		return uint32(v), nil
	}

	var mask uint32
	for _, part := range strings.Split(s, ",") {
		switch strings.ToUpper(strings.TrimSpace(part)) {
		case "READ_OBJECT":
			mask |= aceReadObject
		case "WRITE_OBJECT":
			mask |= aceWriteObject
		case "APPEND_DATA":
			mask |= aceAppendData
		case "READ_METADATA":
			mask |= aceReadMetadata
		case "WRITE_METADATA":
			mask |= aceWriteMetadata
		case "EXECUTE":
			mask |= aceExecute
		case "DELETE_OBJECT", "DELETE":
			mask |= aceDeleteObject
		case "READ":
			mask |= ACEMaskRead
		case "WRITE":
			mask |= ACEMaskWrite
		case "ALL_PERMS":
			mask |= ACEMaskRead | ACEMaskWrite | aceExecute
		default:
			return 0, fmt.Errorf("unknown acemask element %q", part)
		}
	}
	return mask, nil
}

// cdmiStrToACEFlags parses a CDMI aceflags string. Only NO_FLAGS and
// INHERITED are recognized today; inheritance into sub-collections is not
// applied by the engine.
func cdmiStrToACEFlags(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if v, err := strconv.ParseUint(s, 0, 32); err == nil {
		return uint32(v), nil
	}

	var flags uint32
	for _, part := range strings.Split(s, ",") {
		switch strings.ToUpper(strings.TrimSpace(part)) {
		case "NO_FLAGS":
		case "INHERITED":
			flags |= 0x00000080
		default:
			return 0, fmt.Errorf("unknown aceflags element %q", part)
		}
	}
	return flags, nil
}

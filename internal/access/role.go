package access

import (
	"encoding/json"
	"fmt"
)

// Role is a caller's effective role on a form. Roles are ordered so that
// a higher role implies every capability of the lower ones.
type Role int

const (
	RoleNone Role = iota
	RoleViewer
	RoleEditor
	RoleOwner
)

// ParseRole parses the persisted/wire name of a role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "owner":
		return RoleOwner, nil
	case "editor":
		return RoleEditor, nil
	case "viewer":
		return RoleViewer, nil
	default:
		return RoleNone, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleEditor:
		return "editor"
	case RoleViewer:
		return "viewer"
	default:
		return "none"
	}
}

// MarshalJSON encodes RoleNone as null.
func (r Role) MarshalJSON() ([]byte, error) {
	if r == RoleNone {
		return []byte("null"), nil
	}
	return json.Marshal(r.String())
}

// AtLeast reports whether r is min or higher.
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

// IsGrantable reports whether r may be stored in the grant table.
func (r Role) IsGrantable() bool {
	return r == RoleEditor || r == RoleViewer
}

// Predicate decides whether a role is sufficient for an operation.
type Predicate func(Role) bool

func CanEdit(r Role) bool {
	return r.AtLeast(RoleEditor)
}

func CanManageAccess(r Role) bool {
	return r == RoleOwner
}

func CanViewResponses(r Role) bool {
	return r.AtLeast(RoleViewer)
}

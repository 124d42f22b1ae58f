package entity

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kentalbores/IntProg-sub001/pkg/utilities"
)

// Role determines which profile kinds a user may hold.
type Role string

const (
	RoleGuest     Role = "guest"
	RoleOrganizer Role = "organizer"
	RoleVendor    Role = "vendor"
)

// KnownRoles lists every role a request may name, in canonical order.
var KnownRoles = []Role{RoleGuest, RoleOrganizer, RoleVendor}

var (
	ErrRoleType    = errors.New("role must be a string or an array of strings")
	ErrInvalidRole = errors.New("invalid role value")
)

// Valid reports whether r is one of KnownRoles.
func (r Role) Valid() bool {
	for _, k := range KnownRoles {
		if r == k {
			return true
		}
	}
	return false
}

// allowedRoles renders KnownRoles for error messages.
func allowedRoles() string {
	names := make([]string, len(KnownRoles))
	for i, r := range KnownRoles {
		names[i] = string(r)
	}
	return "(allowed: " + strings.Join(names, ", ") + ")"
}

// RoleSet is an ordered list of roles without duplicates.
type RoleSet []Role

// NewRoleSet keeps the first occurrence of every role.
func NewRoleSet(roles ...Role) RoleSet {
	out := make(RoleSet, 0, len(roles))
	for _, r := range roles {
		out = out.Add(r)
	}
	return out
}

func (s RoleSet) Contains(r Role) bool {
	for _, v := range s {
		if v == r {
			return true
		}
	}
	return false
}

// Add appends r unless it is already present.
func (s RoleSet) Add(r Role) RoleSet {
	if s.Contains(r) {
		return s
	}
	return append(s, r)
}

// Difference returns the roles of s missing from other, in the order of s.
func (s RoleSet) Difference(other RoleSet) RoleSet {
	out := RoleSet{}
	for _, r := range s {
		if !other.Contains(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s RoleSet) Strings() []string {
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = string(r)
	}
	return out
}

// MarshalJSON always produces an array, never null.
func (s RoleSet) MarshalJSON() ([]byte, error) {
	return utilities.JSON.Marshal(s.Strings())
}

// StoredRoles is the roles column as found in the users table. Older rows hold
// a single JSON string instead of an array; List records which form was read.
type StoredRoles struct {
	Roles RoleSet
	List  bool
}

// Scan implements sql.Scanner for JSONB values.
func (s *StoredRoles) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = StoredRoles{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan roles: unsupported type %T", src)
	}
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0, bytes.Equal(raw, []byte("null")):
		*s = StoredRoles{}
	case raw[0] == '"':
		var one string
		if err := utilities.JSON.Unmarshal(raw, &one); err != nil {
			return fmt.Errorf("scan roles: %w", err)
		}
		*s = StoredRoles{Roles: RoleSet{Role(one)}}
	case raw[0] == '[':
		var many []string
		if err := utilities.JSON.Unmarshal(raw, &many); err != nil {
			return fmt.Errorf("scan roles: %w", err)
		}
		roles := make([]Role, len(many))
		for i, v := range many {
			roles[i] = Role(v)
		}
		*s = StoredRoles{Roles: NewRoleSet(roles...), List: true}
	default:
		return fmt.Errorf("scan roles: unexpected value %s", raw)
	}
	return nil
}

// Value implements driver.Valuer; roles are always written in list form.
func (s StoredRoles) Value() (driver.Value, error) {
	b, err := s.Roles.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// RoleRequest is a normalised role value from a client. List is false for the
// legacy single-string form.
type RoleRequest struct {
	Roles RoleSet
	List  bool
}

// ParseRoleRequest accepts a JSON string or a JSON array of strings, each of
// which must be a known role. The error names the first offending value.
func ParseRoleRequest(raw json.RawMessage) (RoleRequest, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return RoleRequest{}, ErrRoleType
	}
	switch raw[0] {
	case '"':
		var one string
		if err := utilities.JSON.Unmarshal(raw, &one); err != nil {
			return RoleRequest{}, ErrRoleType
		}
		r, err := parseRole(one)
		if err != nil {
			return RoleRequest{}, err
		}
		return RoleRequest{Roles: RoleSet{r}}, nil
	case '[':
		var elems []json.RawMessage
		if err := utilities.JSON.Unmarshal(raw, &elems); err != nil {
			return RoleRequest{}, ErrRoleType
		}
		roles := make([]Role, 0, len(elems))
		for _, e := range elems {
			var v string
			if len(e) == 0 || e[0] != '"' || utilities.JSON.Unmarshal(e, &v) != nil {
				return RoleRequest{}, fmt.Errorf("%w %s %s", ErrInvalidRole, e, allowedRoles())
			}
			r, err := parseRole(v)
			if err != nil {
				return RoleRequest{}, err
			}
			roles = append(roles, r)
		}
		return RoleRequest{Roles: NewRoleSet(roles...), List: true}, nil
	}
	return RoleRequest{}, ErrRoleType
}

func parseRole(v string) (Role, error) {
	r := Role(v)
	if !r.Valid() {
		return "", fmt.Errorf("%w %q %s", ErrInvalidRole, v, allowedRoles())
	}
	return r, nil
}

// MergeRoles applies a role request to the roles currently stored for a user.
// A list request replaces the set. A single role is appended when the stored
// value is already a list; a legacy scalar value is replaced by the new role
// alone, so the previous scalar role is not kept.
func MergeRoles(stored StoredRoles, req RoleRequest) RoleSet {
	if req.List {
		return NewRoleSet(req.Roles...)
	}
	if len(req.Roles) == 0 {
		return NewRoleSet(stored.Roles...)
	}
	if stored.List {
		return NewRoleSet(stored.Roles...).Add(req.Roles[0])
	}
	return RoleSet{req.Roles[0]}
}

package domain

import "slices"

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Roles lists every assignable role.
var Roles = []Role{RoleOwner, RoleAdmin, RoleMember}

// ParseRole returns the role named s and whether it exists.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, slices.Contains(Roles, r)
}

// HasCapability reports whether role is one of required. An unknown role has
// no capabilities, and an empty required list grants nothing.
func HasCapability(role Role, required ...Role) bool {
	if _, ok := ParseRole(string(role)); !ok {
		return false
	}
	return slices.Contains(required, role)
}

func (r Role) String() string { return string(r) }

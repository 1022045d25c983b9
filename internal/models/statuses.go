package models

import (
	"sort"
	"strings"
)

// Role - closed set of role tags a user can hold
type Role string

const (
	RoleUser    Role = "user"
	RoleMentor  Role = "mentor"
	RoleAdmin   Role = "admin"
	RoleSupport Role = "support"
)

// AllRoles lists every known role in a stable order.
var AllRoles = []Role{RoleUser, RoleMentor, RoleAdmin, RoleSupport}

// DefaultRoles is assigned at registration when no roles are given.
func DefaultRoles() []Role {
	return []Role{RoleUser}
}

// ParseRole normalizes a raw tag and reports whether it names a known role.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	return role, role.Valid()
}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleMentor, RoleAdmin, RoleSupport:
		return true
	default:
		return false
	}
}

// NormalizeRoles drops unknown tags and duplicates and sorts the result.
// An empty result is replaced by DefaultRoles so a role set is never empty.
func NormalizeRoles(roles []Role) []Role {
	seen := make(map[Role]struct{}, len(roles))
	out := make([]Role, 0, len(roles))
	for _, r := range roles {
		r, ok := ParseRole(string(r))
		if !ok {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	if len(out) == 0 {
		return DefaultRoles()
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RolesFromStrings parses tags coming from storage or token claims.
func RolesFromStrings(raw []string) []Role {
	roles := make([]Role, 0, len(raw))
	for _, s := range raw {
		if r, ok := ParseRole(s); ok {
			roles = append(roles, r)
		}
	}
	return roles
}

// RoleStrings converts roles to plain strings for storage and claims.
func RoleStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// HasAnyRole reports whether held and allowed intersect.
func HasAnyRole(held []Role, allowed ...Role) bool {
	for _, h := range held {
		for _, a := range allowed {
			if h == a {
				return true
			}
		}
	}
	return false
}

package permission

import (
	"fmt"
	"regexp"
	"strings"
)

// Permission is a single "action:resource" grant, e.g. "read:self" or
// "manage:clients". Grants attach to roles, not to individual users.
type Permission struct {
	Action   string
	Resource string
}

var permRegex = regexp.MustCompile(`^[a-z]+:[a-z*]+$`)

func (p Permission) String() string { return p.Action + ":" + p.Resource }

// Parse parses "action:resource" into a Permission.
func Parse(s string) (Permission, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !permRegex.MatchString(s) {
		return Permission{}, fmt.Errorf("invalid permission string: %s", s)
	}
	parts := strings.SplitN(s, ":", 2)
	return Permission{Action: parts[0], Resource: parts[1]}, nil
}

// Role grant tables. The user role can only act on its own record; the
// admin role carries the management surface.
var roleGrants = map[string][]Permission{
	"user": {
		{Action: "read", Resource: "self"},
		{Action: "update", Resource: "self"},
	},
	"admin": {
		{Action: "create", Resource: "user"},
		{Action: "read", Resource: "user"},
		{Action: "update", Resource: "user"},
		{Action: "delete", Resource: "user"},
		{Action: "manage", Resource: "roles"},
		{Action: "manage", Resource: "tenants"},
		{Action: "manage", Resource: "clients"},
	},
}

// Grants returns the permissions attached to a role name. Unknown
// roles have no grants.
func Grants(role string) []Permission {
	return roleGrants[strings.ToLower(strings.TrimSpace(role))]
}

// RoleAllows reports whether the role's grants cover the required
// permission. A grant resource of "*" matches any resource for the
// same action.
func RoleAllows(role string, required Permission) bool {
	for _, g := range Grants(role) {
		if g.Action != required.Action {
			continue
		}
		if g.Resource == required.Resource || g.Resource == "*" {
			return true
		}
	}
	return false
}

// RoleAllowsString is RoleAllows for an "action:resource" literal.
// Malformed strings never match.
func RoleAllowsString(role, required string) bool {
	p, err := Parse(required)
	if err != nil {
		return false
	}
	return RoleAllows(role, p)
}

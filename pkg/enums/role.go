package enums

import "fmt"

// Role is the account role managed from the admin users view.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleClient    Role = "client"
	RoleSEO       Role = "SEO"
	RoleSuperUser Role = "super-user"
)

var validRoles = []Role{RoleAdmin, RoleClient, RoleSEO, RoleSuperUser}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// Roles returns the assignable roles in display order.
func Roles() []Role {
	out := make([]Role, len(validRoles))
	copy(out, validRoles)
	return out
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

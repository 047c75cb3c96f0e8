package entity

// Role represents an authorization role.
// Roles are independent of plans: a builder keeps the builder role even when
// the builder subscription is cancelled.
type Role string

const (
	RoleUser    Role = "user"
	RoleBuilder Role = "builder"
	RoleAdmin   Role = "admin"
)

// ParseRole returns the role named by s.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleUser, RoleBuilder, RoleAdmin:
		return r, true
	}
	return "", false
}

func (r Role) String() string { return string(r) }

// IsAdmin reports whether role is admin.
func IsAdmin(role Role) bool { return role == RoleAdmin }

// IsBuilder reports whether role is builder.
func IsBuilder(role Role) bool { return role == RoleBuilder }

// HasRole reports whether role equals required.
func HasRole(role, required Role) bool { return role == required }

// CanAccessBuilderDashboard allows builders and admins.
func CanAccessBuilderDashboard(role Role) bool { return IsBuilder(role) || IsAdmin(role) }

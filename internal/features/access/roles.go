// Package access holds the role model and the pure authorization tables every
// mutating endpoint consults before acting.
package access

type Role string

const (
	RoleOwner       Role = "owner"
	RoleAdmin       Role = "admin"
	RoleContributor Role = "contributor"
	RoleStudent     Role = "student"
	RoleViewer      Role = "viewer"
)

// DefaultRole is assigned on self-registration.
const DefaultRole = RoleViewer

var allRoles = []Role{RoleOwner, RoleAdmin, RoleContributor, RoleStudent, RoleViewer}

func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

func (r Role) Valid() bool {
	for _, known := range allRoles {
		if r == known {
			return true
		}
	}
	return false
}

// IsAdmin is true for admins and the owner.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleOwner
}

func (r Role) String() string {
	return string(r)
}

// In reports whether r is one of roles.
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID string
	Role   Role
}

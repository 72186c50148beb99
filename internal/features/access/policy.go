package access

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"
	ActionStats  Action = "stats"
)

// CanUpdateRole decides whether actor may assign target as a role, or change
// the role of a user currently holding target.
func CanUpdateRole(actor, target Role) bool {
	switch actor {
	case RoleOwner:
		return true
	case RoleAdmin:
		return target != RoleOwner && target != RoleAdmin
	default:
		return false
	}
}

// CanDeleteUser never allows self-deletion. Admins may only remove viewers
// and contributors.
func CanDeleteUser(actor, target Role, isSelf bool) bool {
	if isSelf {
		return false
	}
	switch actor {
	case RoleOwner:
		return true
	case RoleAdmin:
		return target == RoleViewer || target == RoleContributor
	default:
		return false
	}
}

// CanManageUsers gates user records and anything owned by a user. Admins and
// the owner may do everything; other roles only read, update or delete what
// belongs to them.
func CanManageUsers(actor Role, action Action, actorID, targetID string) bool {
	if actor.IsAdmin() {
		return true
	}
	switch action {
	case ActionCreate, ActionList, ActionStats:
		return false
	case ActionRead, ActionUpdate, ActionDelete:
		return actorID != "" && actorID == targetID
	default:
		return false
	}
}

package authz

// Role represents a named privilege level inside an organization.
//
// Management roles (viewer..owner) form a strict hierarchy and are compared
// by rank. The category roles student and teacher live outside that chain:
// they are matched by set membership only and never rank against anything.
type Role string

const (
	// Management chain, lowest to highest privilege.
	RoleViewer Role = "viewer"
	RoleMember Role = "member"
	RoleCoach  Role = "coach"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"

	// Category roles, outside the management chain.
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// roleRanks maps the management roles to their privilege rank.
// Linear scale (10-50) leaves room for intermediate roles later.
// Category roles are deliberately absent: they have no rank.
var roleRanks = map[Role]int{
	RoleViewer: 10,
	RoleMember: 20,
	RoleCoach:  30,
	RoleAdmin:  40,
	RoleOwner:  50,
}

// ManagementRoles lists the ranked chain, lowest first.
var ManagementRoles = []Role{RoleViewer, RoleMember, RoleCoach, RoleAdmin, RoleOwner}

// rank returns the privilege rank of a management role.
// Unknown and category roles rank as -1 so every comparison fails closed.
func rank(r Role) int {
	if n, ok := roleRanks[r]; ok {
		return n
	}
	return -1
}

// IsManagementRole reports whether r belongs to the ranked chain.
func IsManagementRole(r Role) bool {
	_, ok := roleRanks[r]
	return ok
}

// IsValidRole reports whether r is any role the system knows about.
func IsValidRole(r Role) bool {
	return IsManagementRole(r) || r == RoleStudent || r == RoleTeacher
}

// HasPermission reports whether actor holds at least the privilege of
// required within the management chain. Comparisons involving a role
// outside the chain are never true.
func HasPermission(actor, required Role) bool {
	ar, rr := rank(actor), rank(required)
	if ar < 0 || rr < 0 {
		return false
	}
	return ar >= rr
}

// HasAnyRole reports whether actor appears in allowed. Plain set
// membership, no rank semantics - this is how student/teacher and
// arbitrary allow-lists are checked.
func HasAnyRole(actor Role, allowed ...Role) bool {
	for _, r := range allowed {
		if actor == r {
			return true
		}
	}
	return false
}

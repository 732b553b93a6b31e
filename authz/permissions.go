package authz

import "log"

// Permission names a capability that many routes can share.
// Resolving a key the registry doesn't know is a programmer error, not a
// runtime condition: routes bind keys at startup and the registry is
// verified then.
type Permission string

const (
	PermissionManageTheme      Permission = "MANAGE_THEME"
	PermissionCreateContent    Permission = "CREATE_CONTENT"
	PermissionUpdateContent    Permission = "UPDATE_CONTENT"
	PermissionDeleteContent    Permission = "DELETE_CONTENT"
	PermissionManageMembers    Permission = "MANAGE_MEMBERS"
	PermissionManageModules    Permission = "MANAGE_MODULES"
	PermissionRecordAttendance Permission = "RECORD_ATTENDANCE"
	PermissionManageSchedule   Permission = "MANAGE_SCHEDULE"
	PermissionViewReports      Permission = "VIEW_REPORTS"
	PermissionExportData       Permission = "EXPORT_DATA"
)

// permissionRoles is the permission registry: one source of truth for
// which roles may exercise each capability. Built once, read-only for the
// process lifetime, safe for unlimited concurrent reads.
var permissionRoles = map[Permission][]Role{
	PermissionManageTheme:      {RoleAdmin, RoleOwner},
	PermissionCreateContent:    {RoleCoach, RoleAdmin, RoleOwner},
	PermissionUpdateContent:    {RoleCoach, RoleAdmin, RoleOwner},
	PermissionDeleteContent:    {RoleAdmin, RoleOwner},
	PermissionManageMembers:    {RoleAdmin, RoleOwner},
	PermissionManageModules:    {RoleAdmin, RoleOwner},
	PermissionRecordAttendance: {RoleTeacher, RoleCoach, RoleAdmin, RoleOwner},
	PermissionManageSchedule:   {RoleCoach, RoleAdmin, RoleOwner},
	PermissionViewReports:      {RoleTeacher, RoleCoach, RoleAdmin, RoleOwner},
	PermissionExportData:       {RoleAdmin, RoleOwner},
}

// ResolvePermission returns the roles allowed to exercise key.
// Unknown keys return ErrUnknownPermission - callers binding keys at
// startup should treat that as fatal.
func ResolvePermission(key Permission) ([]Role, error) {
	roles, ok := permissionRoles[key]
	if !ok {
		return nil, ErrUnknownPermission
	}
	return roles, nil
}

// Can reports whether role may exercise the named permission.
// Usable server-side and for advisory UI gating; unknown keys are false.
func Can(role Role, key Permission) bool {
	roles, err := ResolvePermission(key)
	if err != nil {
		return false
	}
	return HasAnyRole(role, roles...)
}

// VerifyRegistry checks the permission registry invariants: every key
// maps to a non-empty set of known roles. Called once from main; a
// violation is a deployment defect, so it aborts the process.
func VerifyRegistry() {
	for key, roles := range permissionRoles {
		if len(roles) == 0 {
			log.Fatalf("permission registry: %s has no allowed roles", key)
		}
		for _, r := range roles {
			if !IsValidRole(r) {
				log.Fatalf("permission registry: %s allows unknown role %q", key, r)
			}
		}
	}
}

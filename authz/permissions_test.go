package authz

import (
	"errors"
	"testing"
)

func TestResolvePermission(t *testing.T) {
	t.Run("known key returns roles", func(t *testing.T) {
		roles, err := ResolvePermission(PermissionManageTheme)
		if err != nil {
			t.Fatalf("ResolvePermission() error = %v", err)
		}
		if len(roles) == 0 {
			t.Fatal("ResolvePermission() returned empty role set")
		}
	})

	t.Run("unknown key returns ErrUnknownPermission", func(t *testing.T) {
		_, err := ResolvePermission(Permission("LAUNCH_ROCKETS"))
		if !errors.Is(err, ErrUnknownPermission) {
			t.Errorf("ResolvePermission() error = %v, want ErrUnknownPermission", err)
		}
	})

	t.Run("every registered key has roles", func(t *testing.T) {
		for key, roles := range permissionRoles {
			if len(roles) == 0 {
				t.Errorf("permission %s has no allowed roles", key)
			}
			for _, r := range roles {
				if !IsValidRole(r) {
					t.Errorf("permission %s allows unknown role %q", key, r)
				}
			}
		}
	})
}

func TestCan(t *testing.T) {
	tests := []struct {
		name string
		role Role
		key  Permission
		want bool
	}{
		{"owner can manage theme", RoleOwner, PermissionManageTheme, true},
		{"admin can manage theme", RoleAdmin, PermissionManageTheme, true},
		{"coach cannot manage theme", RoleCoach, PermissionManageTheme, false},
		{"coach can create content", RoleCoach, PermissionCreateContent, true},
		{"member cannot create content", RoleMember, PermissionCreateContent, false},
		{"teacher can record attendance", RoleTeacher, PermissionRecordAttendance, true},
		{"student cannot record attendance", RoleStudent, PermissionRecordAttendance, false},
		{"teacher can view reports", RoleTeacher, PermissionViewReports, true},
		{"teacher cannot manage members", RoleTeacher, PermissionManageMembers, false},
		{"admin can manage modules", RoleAdmin, PermissionManageModules, true},
		{"viewer cannot export data", RoleViewer, PermissionExportData, false},
		{"unknown key is false", RoleOwner, Permission("NOPE"), false},
		{"unknown role is false", Role("invalid"), PermissionViewReports, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Can(tt.role, tt.key)
			if got != tt.want {
				t.Errorf("Can(%s, %s) = %v, want %v", tt.role, tt.key, got, tt.want)
			}
		})
	}
}

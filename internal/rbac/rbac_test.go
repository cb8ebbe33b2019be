package rbac

import "testing"

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role       string
		permission string
		expected   bool
	}{
		{RoleOwner, PermDeleteOrg, true},
		{RoleOwner, PermTransferOwnership, true},
		{RoleOwner, PermViewAuditLogs, true},
		{RoleAdmin, PermManageMembers, true},
		{RoleAdmin, PermInviteMembers, true},
		{RoleAdmin, PermDeleteOrg, false},
		{RoleAdmin, PermTransferOwnership, false},
		{RoleMember, PermViewOrg, true},
		{RoleMember, PermManageOrg, false},
		{RoleMember, PermViewAuditLogs, false},
		{"nonexistent", PermViewOrg, false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.permission, func(t *testing.T) {
			if got := HasPermission(tt.role, tt.permission); got != tt.expected {
				t.Errorf("HasPermission(%q, %q) = %v, want %v", tt.role, tt.permission, got, tt.expected)
			}
		})
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range []string{RoleOwner, RoleAdmin, RoleMember} {
		if !IsValidRole(role) {
			t.Errorf("IsValidRole(%q) = false", role)
		}
	}
	if IsValidRole("superuser") {
		t.Error("IsValidRole accepted an unknown role")
	}
}

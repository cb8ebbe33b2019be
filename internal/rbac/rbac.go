package rbac

// Role constants
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Permission constants
const (
	PermManageOrg         = "manage_org"
	PermDeleteOrg         = "delete_org"
	PermTransferOwnership = "transfer_ownership"
	PermManageMembers     = "manage_members"
	PermInviteMembers     = "invite_members"
	PermViewAuditLogs     = "view_audit_logs"
	PermViewOrg           = "view_org"
)

// RolePermissions defines what each role can do.
var RolePermissions = map[string][]string{
	RoleOwner: {
		PermManageOrg, PermDeleteOrg, PermTransferOwnership,
		PermManageMembers, PermInviteMembers, PermViewAuditLogs, PermViewOrg,
	},
	RoleAdmin: {
		PermManageOrg, PermManageMembers, PermInviteMembers,
		PermViewAuditLogs, PermViewOrg,
		// Admin CANNOT: PermDeleteOrg, PermTransferOwnership
	},
	RoleMember: {
		PermViewOrg,
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}

// IsValidRole reports whether role is one of the assignable roles.
func IsValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}

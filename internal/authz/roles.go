package authz

import "strings"

// Role is one of the portal's fixed role enumeration. A session carries
// exactly one role, immutable for the session's lifetime.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleGRC        Role = "GRC"
	RoleHR         Role = "HR"
	RoleEA         Role = "EA"
	RoleEmployeeL1 Role = "EMPLOYEE_L1"
	RoleEmployeeL2 Role = "EMPLOYEE_L2"
	RoleEmployeeL3 Role = "EMPLOYEE_L3"
)

// PermissionWildcard grants every permission.
const PermissionWildcard = "*"

// PermissionOwnResource allows access to records the actor owns,
// independent of role-based grants.
const PermissionOwnResource = "resource:own"

// rolePermissions is the static grant table. Permissions are opaque
// "module:action" tokens; evaluation is set membership, nothing more.
var rolePermissions = map[Role][]string{
	RoleSuperAdmin: {PermissionWildcard},
	RoleGRC: {
		"audit:read",
		"security:read",
		"security:manage",
		"exports:generate",
		"employees:read",
		PermissionOwnResource,
	},
	RoleHR: {
		"employees:read",
		"employees:write",
		"lifecycle:manage",
		"attendance:manage",
		"exports:generate",
		"templates:manage",
		PermissionOwnResource,
	},
	RoleEA: {
		"employees:read",
		"attendance:manage",
		"templates:manage",
		PermissionOwnResource,
	},
	RoleEmployeeL1: {
		"attendance:submit",
		PermissionOwnResource,
	},
	RoleEmployeeL2: {
		"attendance:submit",
		"employees:read",
		PermissionOwnResource,
	},
	RoleEmployeeL3: {
		"attendance:submit",
		"employees:read",
		"exports:generate",
		PermissionOwnResource,
	},
}

// roleModules lists the portal modules each role may open. A module may
// additionally require a permission (see moduleRequiredPermission).
var roleModules = map[Role][]string{
	RoleSuperAdmin: {"employees", "lifecycle", "attendance", "exports", "templates", "audit", "security", "settings"},
	RoleGRC:        {"employees", "exports", "audit", "security"},
	RoleHR:         {"employees", "lifecycle", "attendance", "exports", "templates"},
	RoleEA:         {"employees", "attendance", "templates"},
	RoleEmployeeL1: {"attendance"},
	RoleEmployeeL2: {"employees", "attendance"},
	RoleEmployeeL3: {"employees", "attendance", "exports"},
}

// moduleRequiredPermission names the permission a module demands on top of
// role membership. Modules absent from this table only require membership.
var moduleRequiredPermission = map[string]string{
	"audit":    "audit:read",
	"security": "security:read",
	"exports":  "exports:generate",
	"settings": "settings:manage",
}

// Normalize maps an arbitrary role string onto the fixed enumeration.
// Unknown or empty roles resolve to EMPLOYEE_L1, the least-privileged role,
// rather than failing.
func Normalize(role string) Role {
	r := Role(strings.ToUpper(strings.TrimSpace(role)))
	if _, ok := rolePermissions[r]; ok {
		return r
	}
	return RoleEmployeeL1
}

// Roles returns the complete role enumeration.
func Roles() []Role {
	return []Role{
		RoleSuperAdmin, RoleGRC, RoleHR, RoleEA,
		RoleEmployeeL1, RoleEmployeeL2, RoleEmployeeL3,
	}
}

package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	t.Run("wildcard grants everything", func(t *testing.T) {
		assert.True(t, HasPermission(RoleSuperAdmin, "employees:write"))
		assert.True(t, HasPermission(RoleSuperAdmin, "anything:at-all"))
	})

	t.Run("exact grant matches", func(t *testing.T) {
		assert.True(t, HasPermission(RoleGRC, "audit:read"))
		assert.True(t, HasPermission(RoleHR, "lifecycle:manage"))
	})

	t.Run("absent grant denies", func(t *testing.T) {
		assert.False(t, HasPermission(RoleGRC, "employees:write"))
		assert.False(t, HasPermission(RoleEmployeeL1, "audit:read"))
		assert.False(t, HasPermission(RoleEA, "security:read"))
	})

	t.Run("every non-granted pair denies", func(t *testing.T) {
		for _, role := range Roles() {
			if role == RoleSuperAdmin {
				continue
			}
			assert.False(t, HasPermission(role, "settings:manage"),
				"role %s should not manage settings", role)
		}
	})

	t.Run("unknown role gets least privilege", func(t *testing.T) {
		assert.False(t, HasPermission(Role("AUDITOR"), "audit:read"))
		assert.True(t, HasPermission(Role("AUDITOR"), PermissionOwnResource))
	})
}

func TestCanAccessResource(t *testing.T) {
	allowRoles := []Role{RoleSuperAdmin, RoleGRC, RoleHR, RoleEA}

	t.Run("allow-listed role passes without ownership", func(t *testing.T) {
		assert.True(t, CanAccessResource(RoleHR, "hr@x.com", "someone@x.com", allowRoles))
	})

	t.Run("employee denied on another employee's record", func(t *testing.T) {
		assert.False(t, CanAccessResource(RoleEmployeeL1, "a@x.com", "b@x.com", allowRoles))
	})

	t.Run("owner passes via resource:own", func(t *testing.T) {
		assert.True(t, CanAccessResource(RoleEmployeeL1, "a@x.com", "a@x.com", allowRoles))
	})

	t.Run("ownership is case-insensitive and trimmed", func(t *testing.T) {
		assert.True(t, CanAccessResource(RoleEmployeeL2, "  A@X.com ", "a@x.com", allowRoles))
	})

	t.Run("empty identifiers deny regardless of role", func(t *testing.T) {
		assert.False(t, CanAccessResource(RoleSuperAdmin, "", "a@x.com", allowRoles))
		assert.False(t, CanAccessResource(RoleSuperAdmin, "a@x.com", "  ", allowRoles))
	})
}

func TestCanAccessModule(t *testing.T) {
	t.Run("member without required permission denied", func(t *testing.T) {
		// EMPLOYEE_L3 may open exports and holds exports:generate.
		assert.True(t, CanAccessModule(RoleEmployeeL3, "exports"))
		// EMPLOYEE_L1 is not a member of exports at all.
		assert.False(t, CanAccessModule(RoleEmployeeL1, "exports"))
	})

	t.Run("module without required permission needs membership only", func(t *testing.T) {
		assert.True(t, CanAccessModule(RoleEmployeeL1, "attendance"))
		assert.False(t, CanAccessModule(RoleEmployeeL1, "employees"))
	})

	t.Run("grc reads audit and security", func(t *testing.T) {
		assert.True(t, CanAccessModule(RoleGRC, "audit"))
		assert.True(t, CanAccessModule(RoleGRC, "security"))
		assert.False(t, CanAccessModule(RoleHR, "audit"))
	})

	t.Run("unknown module denied", func(t *testing.T) {
		assert.False(t, CanAccessModule(RoleSuperAdmin, "payroll"))
	})
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, RoleGRC, Normalize("grc"))
	assert.Equal(t, RoleHR, Normalize(" HR "))
	assert.Equal(t, RoleEmployeeL1, Normalize("CONTRACTOR"))
	assert.Equal(t, RoleEmployeeL1, Normalize(""))
}

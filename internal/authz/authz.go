// Package authz implements the portal's role-permission evaluator.
//
// Every check is a pure function over static tables: no stores, no I/O, no
// hidden state. The request-authorization middleware calls these on every
// API request before any business handler runs.
package authz

import "strings"

// HasPermission reports whether the role's grant set contains the wildcard
// or the exact permission token.
func HasPermission(role Role, permission string) bool {
	grants, ok := rolePermissions[Normalize(string(role))]
	if !ok {
		return false
	}
	for _, g := range grants {
		if g == PermissionWildcard || g == permission {
			return true
		}
	}
	return false
}

// CanAccessResource decides record-level access. Roles listed in allowRoles
// pass outright. Any other role passes only when it holds "resource:own" and
// the actor is the record's owner (compared case-insensitively, trimmed).
// Empty identifiers always deny.
func CanAccessResource(role Role, actorID, ownerID string, allowRoles []Role) bool {
	actor := strings.ToLower(strings.TrimSpace(actorID))
	owner := strings.ToLower(strings.TrimSpace(ownerID))
	if actor == "" || owner == "" {
		return false
	}

	normalized := Normalize(string(role))
	for _, allowed := range allowRoles {
		if normalized == Normalize(string(allowed)) {
			return true
		}
	}

	return HasPermission(normalized, PermissionOwnResource) && actor == owner
}

// CanAccessModule reports whether the role may open the given portal module.
// Membership in the role's module set is required; if the module demands a
// permission, the role must hold it too.
func CanAccessModule(role Role, moduleID string) bool {
	normalized := Normalize(string(role))
	modules, ok := roleModules[normalized]
	if !ok {
		return false
	}

	member := false
	for _, m := range modules {
		if m == moduleID {
			member = true
			break
		}
	}
	if !member {
		return false
	}

	required, ok := moduleRequiredPermission[moduleID]
	if !ok {
		return true
	}
	return HasPermission(normalized, required)
}

package alert

import (
	"hrcore/internal/authz"
	platformstrings "hrcore/pkg/platform/strings"
)

// securityRoles are the roles whose members receive every security incident
// alert regardless of explicit recipients.
var securityRoles = []authz.Role{authz.RoleSuperAdmin, authz.RoleGRC}

// ContactDirectory resolves role-scoped contact lists.
type ContactDirectory interface {
	EmailsByRole(roles ...authz.Role) []string
	PhonesByRole(roles ...authz.Role) []string
}

// resolveEmailRecipients merges explicit recipients with the role-derived
// distribution list, deduplicated and lowercased.
func resolveEmailRecipients(directory ContactDirectory, explicit []string) []string {
	merged := append([]string{}, explicit...)
	if directory != nil {
		merged = append(merged, directory.EmailsByRole(securityRoles...)...)
	}
	return platformstrings.DedupeAndTrimLower(merged)
}

// resolvePhoneRecipients merges explicit phone numbers with the role-derived
// list. Phone numbers keep their case but are deduplicated and trimmed.
func resolvePhoneRecipients(directory ContactDirectory, explicit []string) []string {
	merged := append([]string{}, explicit...)
	if directory != nil {
		merged = append(merged, directory.PhonesByRole(securityRoles...)...)
	}
	return platformstrings.DedupeAndTrim(merged)
}

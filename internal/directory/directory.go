// Package directory holds the static identity directory for the portal. The
// real deployment sources this from the employee document store; the core
// only needs identity lookup and role-scoped contact lists.
package directory

import (
	"strings"

	"hrcore/internal/authz"
	platformstrings "hrcore/pkg/platform/strings"
)

// Identity is one portal account.
type Identity struct {
	Email string
	Phone string
	Role  authz.Role
}

// Directory resolves identities and role-scoped contact lists.
type Directory struct {
	byEmail map[string]Identity
}

// New creates a directory over the given identities. Emails are normalized
// to lowercase for lookup.
func New(identities []Identity) *Directory {
	byEmail := make(map[string]Identity, len(identities))
	for _, id := range identities {
		byEmail[strings.ToLower(strings.TrimSpace(id.Email))] = id
	}
	return &Directory{byEmail: byEmail}
}

// Default returns the seed directory used until the employee store is wired
// as the identity source.
func Default() *Directory {
	return New([]Identity{
		{Email: "root@corp.example", Phone: "+15550100", Role: authz.RoleSuperAdmin},
		{Email: "grc@corp.example", Phone: "+15550101", Role: authz.RoleGRC},
		{Email: "hr@corp.example", Phone: "+15550102", Role: authz.RoleHR},
		{Email: "ea@corp.example", Phone: "+15550103", Role: authz.RoleEA},
		{Email: "alice@corp.example", Phone: "+15550104", Role: authz.RoleEmployeeL1},
		{Email: "bob@corp.example", Phone: "+15550105", Role: authz.RoleEmployeeL2},
		{Email: "carol@corp.example", Phone: "+15550106", Role: authz.RoleEmployeeL3},
	})
}

// Lookup returns the identity for an email, if known.
func (d *Directory) Lookup(email string) (Identity, bool) {
	id, ok := d.byEmail[strings.ToLower(strings.TrimSpace(email))]
	return id, ok
}

// Phone returns the phone number registered for an email.
func (d *Directory) Phone(email string) (string, bool) {
	id, ok := d.Lookup(email)
	if !ok || id.Phone == "" {
		return "", false
	}
	return id.Phone, true
}

// EmailsByRole returns the deduplicated, lowercased email list for all
// accounts holding any of the given roles.
func (d *Directory) EmailsByRole(roles ...authz.Role) []string {
	var out []string
	for _, id := range d.byEmail {
		for _, role := range roles {
			if id.Role == role {
				out = append(out, id.Email)
				break
			}
		}
	}
	return platformstrings.DedupeAndTrimLower(out)
}

// PhonesByRole returns the deduplicated phone list for all accounts holding
// any of the given roles. Accounts without a phone are skipped.
func (d *Directory) PhonesByRole(roles ...authz.Role) []string {
	var out []string
	for _, id := range d.byEmail {
		if id.Phone == "" {
			continue
		}
		for _, role := range roles {
			if id.Role == role {
				out = append(out, id.Phone)
				break
			}
		}
	}
	return platformstrings.DedupeAndTrim(out)
}

package alert

import "strings"

// providerRule is one step of the ordered provider resolution chain. It
// returns the chosen provider and whether the rule applies.
type providerRule struct {
	name  string
	apply func() (string, bool)
}

// ResolveProvider picks a channel's provider by walking an ordered rule
// chain: explicit per-alert override, then the environment-configured
// default, then disabled. The chain is explicit so each decision can be
// tested in isolation.
func ResolveProvider(override, configured string) (provider, rule string) {
	rules := []providerRule{
		{name: "override", apply: func() (string, bool) {
			p := strings.TrimSpace(override)
			return p, p != ""
		}},
		{name: "configured", apply: func() (string, bool) {
			p := strings.TrimSpace(configured)
			return p, p != ""
		}},
		{name: "disabled", apply: func() (string, bool) {
			return ProviderNone, true
		}},
	}

	for _, r := range rules {
		if p, ok := r.apply(); ok {
			return strings.ToLower(p), r.name
		}
	}
	return ProviderNone, "disabled"
}

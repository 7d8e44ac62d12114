package alert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveProvider(t *testing.T) {
	tests := []struct {
		name         string
		override     string
		configured   string
		wantProvider string
		wantRule     string
	}{
		{"override wins", "resend", "console", "resend", "override"},
		{"configured default", "", "twilio", "twilio", "configured"},
		{"nothing configured", "", "", "none", "disabled"},
		{"whitespace override ignored", "  ", "console", "console", "configured"},
		{"case normalized", "Resend", "", "resend", "override"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, rule := ResolveProvider(tt.override, tt.configured)
			assert.Equal(t, tt.wantProvider, provider)
			assert.Equal(t, tt.wantRule, rule)
		})
	}
}

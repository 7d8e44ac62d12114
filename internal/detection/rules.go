package detection

import (
	"strings"
	"time"

	"hrcore/internal/audit"
)

func actorKey(event audit.Event) string {
	return strings.ToLower(strings.TrimSpace(event.PerformedBy))
}

func sourceIPKey(event audit.Event) string {
	return event.SourceIP()
}

func activityContains(event audit.Event, needle string) bool {
	return strings.Contains(strings.ToLower(event.ActivityName), needle)
}

// DefaultRules returns the built-in detection rule set.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:        "otp-failure-burst",
			Code:      "OTP_BRUTE_FORCE",
			Title:     "Repeated one-time-passcode failures",
			Severity:  SeverityHigh,
			Threshold: 5,
			Window:    10 * time.Minute,
			Match: func(e audit.Event) bool {
				return e.Status == audit.StatusFailed && activityContains(e, "passcode")
			},
			Key: actorKey,
		},
		{
			ID:        "login-failure-burst",
			Code:      "LOGIN_BRUTE_FORCE",
			Title:     "Repeated failed logins from one address",
			Severity:  SeverityMedium,
			Threshold: 10,
			Window:    15 * time.Minute,
			Match: func(e audit.Event) bool {
				return e.Status == audit.StatusFailed && activityContains(e, "login")
			},
			Key: sourceIPKey,
		},
		{
			ID:        "export-spike",
			Code:      "EXPORT_SPIKE",
			Title:     "Unusual volume of data exports",
			Severity:  SeverityMedium,
			Threshold: 10,
			Window:    time.Hour,
			Match: func(e audit.Event) bool {
				return e.Module == "exports" && activityContains(e, "export")
			},
			Key: actorKey,
		},
		{
			ID:        "sensitive-access-burst",
			Code:      "SENSITIVE_ACCESS_BURST",
			Title:     "Rapid access to sensitive records",
			Severity:  SeverityLow,
			Threshold: 30,
			Window:    10 * time.Minute,
			Match: func(e audit.Event) bool {
				return e.Sensitivity == audit.Sensitive
			},
			Key: actorKey,
		},
	}
}

package audit

import (
	"strings"

	"github.com/mssola/useragent"
)

// clientInfo is the request-derived context merged into event metadata.
type clientInfo struct {
	Browser     string
	OS          string
	DeviceClass string
}

// parseUserAgent classifies a User-Agent header into browser, OS and a
// coarse device class. Missing pieces fall back to "unknown" so the audit
// trail never shows empty fields.
func parseUserAgent(userAgentString string) clientInfo {
	info := clientInfo{Browser: "unknown", OS: "unknown", DeviceClass: "desktop"}
	if userAgentString == "" {
		info.DeviceClass = "unknown"
		return info
	}

	ua := useragent.New(userAgentString)

	if browser, _ := ua.Browser(); browser != "" {
		info.Browser = strings.ToLower(strings.TrimSpace(browser))
	}
	if os := ua.OS(); os != "" {
		info.OS = strings.ToLower(strings.TrimSpace(os))
	}
	switch {
	case ua.Bot():
		info.DeviceClass = "bot"
	case ua.Mobile():
		info.DeviceClass = "mobile"
	}

	return info
}

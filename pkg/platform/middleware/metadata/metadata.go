// Package metadata extracts client metadata (source IP, User-Agent) from
// incoming requests and places it on the request context for handlers,
// the rate limiter, and audit enrichment.
package metadata

import (
	"net/http"
	"net/netip"
	"strings"

	"hrcore/pkg/requestcontext"
)

// MaxForwardedHeaderLength is the maximum accepted length for proxy-set
// IP headers, to prevent header injection attacks.
const MaxForwardedHeaderLength = 500

// proxyHeaders are consulted in order when X-Forwarded-For is absent.
var proxyHeaders = []string{"X-Real-IP", "CF-Connecting-IP", "True-Client-IP"}

// Handler extracts the client IP address and User-Agent from the request
// and adds them to the context for use by handlers and services.
func Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)
		userAgent := r.Header.Get("User-Agent")

		ctx := requestcontext.WithClientMetadata(r.Context(), ip, userAgent)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIP resolves the request's source IP. The first X-Forwarded-For entry
// wins, then the alternate proxy headers in order, then RemoteAddr. Returns
// "unknown" when nothing usable is present.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" && len(xff) <= MaxForwardedHeaderLength {
		first := xff
		if before, _, ok := strings.Cut(xff, ","); ok {
			first = before
		}
		if ip := validIP(first); ip != "" {
			return ip
		}
	}

	for _, header := range proxyHeaders {
		if v := r.Header.Get(header); v != "" && len(v) <= MaxForwardedHeaderLength {
			if ip := validIP(v); ip != "" {
				return ip
			}
		}
	}

	if ip := parseRemoteAddr(r.RemoteAddr); ip != "" {
		return ip
	}
	return "unknown"
}

// validIP trims and validates a candidate IP string, returning "" if unusable.
func validIP(s string) string {
	s = strings.TrimSpace(s)
	if _, err := netip.ParseAddr(s); err != nil {
		return ""
	}
	return s
}

// parseRemoteAddr extracts the IP from RemoteAddr (strips port).
func parseRemoteAddr(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}

	// Handle IPv6 with brackets: [::1]:port
	if strings.HasPrefix(remoteAddr, "[") {
		if idx := strings.LastIndex(remoteAddr, "]:"); idx != -1 {
			return remoteAddr[1:idx]
		}
		return strings.Trim(strings.Split(remoteAddr, "]:")[0], "[]")
	}

	// Handle IPv4: 127.0.0.1:port
	if idx := strings.LastIndex(remoteAddr, ":"); idx != -1 {
		return remoteAddr[:idx]
	}

	return remoteAddr
}

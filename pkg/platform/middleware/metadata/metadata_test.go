package metadata

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"hrcore/pkg/requestcontext"
)

func newRequest(remoteAddr string, headers map[string]string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/employees", nil)
	r.RemoteAddr = remoteAddr
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	return r
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "first forwarded-for entry wins",
			remoteAddr: "10.0.0.1:5000",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"},
			want:       "203.0.113.7",
		},
		{
			name:       "single forwarded-for entry",
			remoteAddr: "10.0.0.1:5000",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7"},
			want:       "203.0.113.7",
		},
		{
			name:       "falls back to real-ip",
			remoteAddr: "10.0.0.1:5000",
			headers:    map[string]string{"X-Real-IP": "198.51.100.3"},
			want:       "198.51.100.3",
		},
		{
			name:       "falls back to cf-connecting-ip",
			remoteAddr: "10.0.0.1:5000",
			headers:    map[string]string{"CF-Connecting-IP": "198.51.100.9"},
			want:       "198.51.100.9",
		},
		{
			name:       "invalid forwarded value ignored",
			remoteAddr: "10.0.0.2:443",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip"},
			want:       "10.0.0.2",
		},
		{
			name:       "oversized header ignored",
			remoteAddr: "10.0.0.2:443",
			headers:    map[string]string{"X-Forwarded-For": strings.Repeat("1", MaxForwardedHeaderLength+1)},
			want:       "10.0.0.2",
		},
		{
			name:       "ipv6 remote addr",
			remoteAddr: "[::1]:8080",
			want:       "::1",
		},
		{
			name:       "no usable source",
			remoteAddr: "",
			want:       "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClientIP(newRequest(tt.remoteAddr, tt.headers))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandler_PopulatesContext(t *testing.T) {
	var gotIP, gotUA string
	h := Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIP = requestcontext.ClientIP(r.Context())
		gotUA = requestcontext.UserAgent(r.Context())
	}))

	r := newRequest("10.1.2.3:1234", map[string]string{"User-Agent": "Mozilla/5.0"})
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "10.1.2.3", gotIP)
	assert.Equal(t, "Mozilla/5.0", gotUA)
}

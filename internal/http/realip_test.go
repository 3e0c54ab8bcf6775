package http

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	proxies := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	tests := []struct {
		name    string
		trusted []netip.Prefix
		remote  string
		xff     []string
		xri     string
		want    string
	}{
		{"no proxies ignores headers", nil, "198.51.100.9:5000", []string{"10.9.9.1"}, "10.9.9.2", "198.51.100.9"},
		{"untrusted peer ignores headers", proxies, "198.51.100.9:5000", []string{"203.0.113.7"}, "", "198.51.100.9"},
		{"trusted peer takes rightmost untrusted hop", proxies, "10.0.0.2:5000", []string{"1.2.3.4, 203.0.113.7, 10.0.0.5"}, "", "203.0.113.7"},
		{"multiple headers are concatenated", proxies, "10.0.0.2:5000", []string{"1.2.3.4", "203.0.113.7"}, "", "203.0.113.7"},
		{"all hops trusted uses leftmost", proxies, "10.0.0.2:5000", []string{"10.1.1.1, 10.0.0.5"}, "", "10.1.1.1"},
		{"malformed hop falls back to peer", proxies, "10.0.0.2:5000", []string{"1.2.3.4, garbage"}, "", "10.0.0.2"},
		{"trusted peer with x-real-ip", proxies, "10.0.0.2:5000", nil, "203.0.113.8", "203.0.113.8"},
		{"trusted peer without headers", proxies, "10.0.0.2:5000", nil, "", "10.0.0.2"},
		{"ipv6 peer", nil, "[2001:db8::1]:443", nil, "", "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", nil)
			req.RemoteAddr = tt.remote
			for _, v := range tt.xff {
				req.Header.Add("X-Forwarded-For", v)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}

			assert.Equal(t, tt.want, ClientIP(req, tt.trusted))
		})
	}
}

func TestRealIP_RewritesRemoteAddr(t *testing.T) {
	var seen string
	h := RealIP(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.RemoteAddr
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.9:5000"
	req.Header.Set("X-Forwarded-For", "10.9.9.1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "198.51.100.9", seen)
}

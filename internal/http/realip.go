package http

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// RealIP rewrites RemoteAddr to the client address. Forwarding headers are only honoured when the
// TCP peer is a trusted proxy; requests from any other peer keep their socket address.
func RealIP(trustedProxies []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := ClientIP(r, trustedProxies); ip != "" {
				r.RemoteAddr = ip
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP resolves the client address for r. Behind trusted proxies it walks X-Forwarded-For from the
// right and returns the first hop that is not itself a trusted proxy.
func ClientIP(r *http.Request, trustedProxies []netip.Prefix) string {
	peer, ok := parseAddr(r.RemoteAddr)
	if !ok {
		return r.RemoteAddr
	}
	if !isTrusted(peer, trustedProxies) {
		return peer.String()
	}

	hops := forwardedFor(r)
	for i := len(hops) - 1; i >= 0; i-- {
		hop, ok := parseAddr(hops[i])
		if !ok {
			// Anything left of a malformed entry is unverifiable
			return peer.String()
		}
		if !isTrusted(hop, trustedProxies) {
			return hop.String()
		}
	}
	if len(hops) > 0 {
		// Every hop is a trusted proxy; the leftmost is the closest we have to the client
		if hop, ok := parseAddr(hops[0]); ok {
			return hop.String()
		}
	}

	if xri, ok := parseAddr(r.Header.Get("X-Real-IP")); ok {
		return xri.String()
	}

	return peer.String()
}

// forwardedFor flattens every X-Forwarded-For header into a single left-to-right hop list
func forwardedFor(r *http.Request) []string {
	var hops []string
	for _, header := range r.Header.Values("X-Forwarded-For") {
		for _, hop := range strings.Split(header, ",") {
			if hop = strings.TrimSpace(hop); hop != "" {
				hops = append(hops, hop)
			}
		}
	}
	return hops
}

// parseAddr accepts "ip", "ip:port" and "[ipv6]:port"
func parseAddr(s string) (netip.Addr, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return netip.Addr{}, false
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

func isTrusted(addr netip.Addr, trustedProxies []netip.Prefix) bool {
	for _, prefix := range trustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

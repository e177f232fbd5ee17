package http

import (
	"net"
	"net/http"
	"strings"
	"sync/atomic"
)

// securityMetrics counts rejected traffic for operational visibility.
type securityMetrics struct {
	rateLimitHits      int64
	suspiciousRequests int64
}

// trustedProxyNets lists networks allowed to set forwarding headers.
// Anything else claiming X-Forwarded-For is ignored.
var trustedProxyNets = func() []*net.IPNet {
	cidrs := []string{
		"127.0.0.0/8",
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"::1/128",
	}
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		if _, n, err := net.ParseCIDR(cidr); err == nil {
			nets = append(nets, n)
		}
	}
	return nets
}()

func isTrustedProxy(ip net.IP) bool {
	for _, n := range trustedProxyNets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// extractClientIP resolves the real client address. Forwarding headers
// are honored only when the direct peer is a trusted proxy.
func extractClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	peer := net.ParseIP(host)
	if peer == nil || !isTrustedProxy(peer) {
		return host
	}

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// First hop is the originating client
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if ip := net.ParseIP(first); ip != nil {
			return first
		}
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		if ip := net.ParseIP(real); ip != nil {
			return real
		}
	}

	return host
}

// suspiciousFragments are substrings that never appear in legitimate
// requests to this application.
var suspiciousFragments = []string{
	"../",
	"..\\",
	"<script",
	"javascript:",
	"data:text/html",
	"/etc/passwd",
	"union select",
	"'; drop",
}

// detectSuspiciousRequest flags obviously hostile requests before they
// reach a handler. Counted on metrics when triggered.
func detectSuspiciousRequest(r *http.Request, metrics *securityMetrics) bool {
	// The UI never sends URLs anywhere near this long
	if len(r.URL.Path) > 512 || len(r.URL.RawQuery) > 2048 {
		if metrics != nil {
			atomic.AddInt64(&metrics.suspiciousRequests, 1)
		}
		return true
	}

	probe := strings.ToLower(r.URL.Path + "?" + r.URL.RawQuery)
	for _, frag := range suspiciousFragments {
		if strings.Contains(probe, frag) {
			if metrics != nil {
				atomic.AddInt64(&metrics.suspiciousRequests, 1)
			}
			return true
		}
	}

	return false
}

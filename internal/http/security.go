package http

import (
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"sync/atomic"
)

// threatReason names why a request looks hostile rather than like API use.
type threatReason string

const (
	reasonTraversal    threatReason = "path_traversal"
	reasonDotfile      threatReason = "dotfile"
	reasonForeignApp   threatReason = "foreign_app"
	reasonInjection    threatReason = "injection"
	reasonScanner      threatReason = "scanner_agent"
	reasonMethod       threatReason = "unusual_method"
	reasonOversizedURL threatReason = "oversized_url"
	reasonProxyChain   threatReason = "proxy_chain"
)

var threatReasons = []threatReason{
	reasonTraversal, reasonDotfile, reasonForeignApp, reasonInjection,
	reasonScanner, reasonMethod, reasonOversizedURL, reasonProxyChain,
}

// Markers are matched against the lowercased, unescaped path and query.
var (
	traversalMarkers  = []string{"../", "..\\"}
	dotfileMarkers    = []string{"/.env", "/.git", "/.ssh", "/.aws", "/.htaccess"}
	foreignAppMarkers = []string{".php", "wp-admin", "wp-login", "phpmyadmin", "cgi-bin", "/actuator"}
	injectionMarkers  = []string{"union select", "<script", "javascript:", "eval(", "etc/passwd", "cmd.exe", "' or '1'='1"}
	scannerAgents     = []string{"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan", "zgrab", "nuclei", "scanner"}
)

const (
	maxURLLength     = 2048
	maxForwardedHops = 5
)

// securityMetrics counts rate-limited requests and suspicious requests by reason.
// The reason map is fixed at construction, so it is read without locking.
type securityMetrics struct {
	rateLimited atomic.Int64
	byReason    map[threatReason]*atomic.Int64
}

func newSecurityMetrics() *securityMetrics {
	m := &securityMetrics{byReason: make(map[threatReason]*atomic.Int64, len(threatReasons))}
	for _, r := range threatReasons {
		m.byReason[r] = new(atomic.Int64)
	}
	return m
}

func (m *securityMetrics) recordRateLimit() {
	if m != nil {
		m.rateLimited.Add(1)
	}
}

func (m *securityMetrics) recordSuspicious(reason threatReason) {
	if m == nil {
		return
	}
	if c, ok := m.byReason[reason]; ok {
		c.Add(1)
	}
}

type securitySnapshot struct {
	RateLimited int64            `json:"rate_limited"`
	Suspicious  int64            `json:"suspicious"`
	ByReason    map[string]int64 `json:"by_reason"`
}

func (m *securityMetrics) snapshot() securitySnapshot {
	snap := securitySnapshot{RateLimited: m.rateLimited.Load(), ByReason: make(map[string]int64, len(m.byReason))}
	for r, c := range m.byReason {
		n := c.Load()
		snap.ByReason[string(r)] = n
		snap.Suspicious += n
	}
	return snap
}

// trustedProxies may set X-Forwarded-For and X-Real-IP.
var trustedProxies = []netip.Prefix{
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
}

func isTrustedProxy(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range trustedProxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// extractClientIP returns the peer address, or the forwarded client address
// when the peer is a trusted proxy. Rate limiting is keyed by it.
func extractClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	direct, err := netip.ParseAddr(host)
	if err != nil || !isTrustedProxy(direct) {
		return host
	}

	if first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); first != "" {
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.String()
		}
	}
	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.String()
	}
	return host
}

// classifyRequest reports why r looks suspicious, or "" for ordinary
// traffic. Flagged requests are counted and logged, never rejected.
func classifyRequest(r *http.Request) threatReason {
	switch r.Method {
	case "TRACE", "TRACK", "DEBUG", http.MethodConnect:
		return reasonMethod
	}
	if len(r.URL.String()) > maxURLLength {
		return reasonOversizedURL
	}

	target := strings.ToLower(r.URL.Path)
	if q, err := url.QueryUnescape(r.URL.RawQuery); err == nil {
		target += "?" + strings.ToLower(q)
	} else {
		target += "?" + strings.ToLower(r.URL.RawQuery)
	}
	for _, group := range []struct {
		reason  threatReason
		markers []string
	}{
		{reasonTraversal, traversalMarkers},
		{reasonDotfile, dotfileMarkers},
		{reasonForeignApp, foreignAppMarkers},
		{reasonInjection, injectionMarkers},
	} {
		for _, m := range group.markers {
			if strings.Contains(target, m) {
				return group.reason
			}
		}
	}

	agent := strings.ToLower(r.Header.Get("User-Agent"))
	for _, a := range scannerAgents {
		if strings.Contains(agent, a) {
			return reasonScanner
		}
	}

	if strings.Count(r.Header.Get("X-Forwarded-For"), ",") >= maxForwardedHops {
		return reasonProxyChain
	}
	return ""
}

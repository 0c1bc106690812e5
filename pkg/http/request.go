package http

import (
	"net/http"
	"net/netip"
	"strings"
)

// IPConfig lists the CIDR ranges of proxies whose forwarding headers are
// believed. Headers from anywhere else are ignored to prevent spoofed IPs
// from reaching the ban machinery.
type IPConfig struct {
	TrustedProxies []string
}

// ExtractClientIP resolves the client address a request originated from.
// X-Forwarded-For and X-Real-IP are honoured only when the direct peer is a
// trusted proxy; otherwise the socket address wins.
func ExtractClientIP(r *http.Request, config *IPConfig) string {
	remoteIP := remoteAddr(r)

	if config != nil && isTrustedProxy(remoteIP, config.TrustedProxies) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			for _, part := range strings.Split(xff, ",") {
				candidate := strings.TrimSpace(part)
				if _, err := netip.ParseAddr(candidate); err == nil {
					return candidate
				}
			}
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			if _, err := netip.ParseAddr(xri); err == nil {
				return xri
			}
		}
	}

	return remoteIP
}

func remoteAddr(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if addrPort, err := netip.ParseAddrPort(r.RemoteAddr); err == nil {
		return addrPort.Addr().String()
	}
	return r.RemoteAddr
}

func isTrustedProxy(ip string, trustedProxies []string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}

	for _, cidr := range trustedProxies {
		prefix, err := netip.ParsePrefix(cidr)
		if err != nil {
			continue
		}
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

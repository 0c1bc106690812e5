package http_test

import (
	"net/http/httptest"
	"testing"

	pkghttp "github.com/coreforge/bnetrest/pkg/http"
	"github.com/stretchr/testify/assert"
)

// Forwarding headers feed the auto-ban machinery, so spoofed values must
// never win over the socket address.

func TestExtractClientIP_DirectConnection_IgnoresHeaders(t *testing.T) {
	req := httptest.NewRequest("POST", "/login/", nil)
	req.RemoteAddr = "203.0.113.10:54321"

	req.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")
	req.Header.Set("X-Real-IP", "192.168.1.1")

	config := &pkghttp.IPConfig{
		TrustedProxies: []string{"10.0.0.0/8", "127.0.0.1/32"},
	}

	ip := pkghttp.ExtractClientIP(req, config)
	assert.Equal(t, "203.0.113.10", ip, "headers from an untrusted peer must be ignored")
}

func TestExtractClientIP_TrustedProxy_UsesXForwardedFor(t *testing.T) {
	req := httptest.NewRequest("POST", "/login/", nil)
	req.RemoteAddr = "10.0.0.5:54321"

	req.Header.Set("X-Forwarded-For", "203.0.113.42, 10.0.0.5")
	req.Header.Set("X-Real-IP", "203.0.113.42")

	config := &pkghttp.IPConfig{
		TrustedProxies: []string{"10.0.0.0/8", "127.0.0.1/32"},
	}

	ip := pkghttp.ExtractClientIP(req, config)
	assert.Equal(t, "203.0.113.42", ip)
}

func TestExtractClientIP_TrustedProxy_FallsBackToXRealIP(t *testing.T) {
	req := httptest.NewRequest("POST", "/login/", nil)
	req.RemoteAddr = "10.0.0.5:54321"

	req.Header.Set("X-Real-IP", "203.0.113.42")

	config := &pkghttp.IPConfig{
		TrustedProxies: []string{"10.0.0.0/8"},
	}

	ip := pkghttp.ExtractClientIP(req, config)
	assert.Equal(t, "203.0.113.42", ip)
}

func TestExtractClientIP_IPv6_TrustedProxy(t *testing.T) {
	req := httptest.NewRequest("POST", "/login/", nil)
	req.RemoteAddr = "[::1]:54321"

	req.Header.Set("X-Forwarded-For", "2001:db8::1")

	config := &pkghttp.IPConfig{
		TrustedProxies: []string{"::1/128"},
	}

	ip := pkghttp.ExtractClientIP(req, config)
	assert.Equal(t, "2001:db8::1", ip)
}

func TestExtractClientIP_NoConfig_DefaultsToRemoteAddr(t *testing.T) {
	req := httptest.NewRequest("POST", "/login/", nil)
	req.RemoteAddr = "203.0.113.10:54321"

	req.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")

	ip := pkghttp.ExtractClientIP(req, nil)
	assert.Equal(t, "203.0.113.10", ip)
}

func TestExtractClientIP_InvalidCIDR_Ignored(t *testing.T) {
	req := httptest.NewRequest("POST", "/login/", nil)
	req.RemoteAddr = "203.0.113.10:54321"

	req.Header.Set("X-Forwarded-For", "1.2.3.4")

	config := &pkghttp.IPConfig{
		TrustedProxies: []string{"invalid-cidr-range", "also-invalid"},
	}

	ip := pkghttp.ExtractClientIP(req, config)
	assert.Equal(t, "203.0.113.10", ip)
}

func TestExtractClientIP_MultipleForwardedIPs_UsesFirst(t *testing.T) {
	req := httptest.NewRequest("POST", "/login/", nil)
	req.RemoteAddr = "10.0.0.5:54321"

	req.Header.Set("X-Forwarded-For", "203.0.113.42, 203.0.113.43, 10.0.0.5")

	config := &pkghttp.IPConfig{
		TrustedProxies: []string{"10.0.0.0/8"},
	}

	ip := pkghttp.ExtractClientIP(req, config)
	assert.Equal(t, "203.0.113.42", ip)
}

func TestExtractClientIP_StripsPort(t *testing.T) {
	req := httptest.NewRequest("POST", "/login/", nil)
	req.RemoteAddr = "203.0.113.10:54321"

	ip := pkghttp.ExtractClientIP(req, &pkghttp.IPConfig{})
	assert.Equal(t, "203.0.113.10", ip)
}

func TestExtractClientIP_LocalhostSpoofPrevented(t *testing.T) {
	req := httptest.NewRequest("POST", "/login/", nil)
	req.RemoteAddr = "203.0.113.10:54321"

	// A client claiming to be localhost must not dodge an IP ban.
	req.Header.Set("X-Forwarded-For", "127.0.0.1, 203.0.113.10")

	config := &pkghttp.IPConfig{
		TrustedProxies: []string{"10.0.0.0/8"},
	}

	ip := pkghttp.ExtractClientIP(req, config)
	assert.Equal(t, "203.0.113.10", ip)
}

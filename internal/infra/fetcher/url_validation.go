// Package fetcher provides HTTP fetching for listing pages and full article
// content, with SSRF guarding, size limits, retry, and circuit breaking.
package fetcher

import (
	"fmt"
	"net"
	"net/url"

	"medfeed/internal/usecase/refresh"
)

// validateURL validates a URL before making an HTTP request. Only http and
// https schemes are allowed; when denyPrivateIPs is set, the hostname is
// resolved and every resulting address must be public. Blocked ranges are
// loopback, RFC 1918/4193 private, and link-local for both IP families.
func validateURL(urlStr string, denyPrivateIPs bool) error {
	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: parse error: %v", refresh.ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme '%s' not allowed (only http/https)", refresh.ErrInvalidURL, u.Scheme)
	}

	hostname := u.Hostname()
	if hostname == "" {
		return fmt.Errorf("%w: empty hostname", refresh.ErrInvalidURL)
	}

	if !denyPrivateIPs {
		return nil
	}

	// Resolve before connecting so attacker-supplied hostnames pointing at
	// internal addresses are rejected up front.
	ips, err := net.LookupIP(hostname)
	if err != nil {
		return fmt.Errorf("%w: DNS lookup failed for %s: %v", refresh.ErrInvalidURL, hostname, err)
	}

	for _, ip := range ips {
		if isPrivateIP(ip) {
			return fmt.Errorf("%w: hostname '%s' resolves to %s", refresh.ErrPrivateIP, hostname, ip.String())
		}
	}

	return nil
}

// isPrivateIP reports whether an address is loopback, private, or link-local.
// Both IPv4 and IPv6 are covered.
func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() {
		return true
	}
	if ip.IsPrivate() {
		return true
	}
	if ip.IsLinkLocalUnicast() {
		return true
	}
	return false
}

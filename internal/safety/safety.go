/*
Package safety vets a candidate feed URL before it is added to the registry.
*/
package safety

import (
	"context"
	"fmt"
	"net/netip"
	"net/url"
	"strings"
)

const MaxURLLength = 2048

var shorteners = map[string]bool{
	"bit.ly": true, "tinyurl.com": true, "t.co": true, "goo.gl": true,
	"ow.ly": true, "is.gd": true, "buff.ly": true, "rebrand.ly": true,
	"cutt.ly": true, "shorturl.at": true,
}

var suspiciousTLDs = []string{".zip", ".mov", ".xyz", ".top", ".tk", ".gq", ".ml", ".cf", ".click", ".country"}

// Resolver is satisfied by *net.Resolver.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

type Verdict struct {
	Safe     bool
	Errors   []string
	Warnings []string
}

func (v *Verdict) fail(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

func (v *Verdict) warn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}

// Checker runs the checks. A nil Resolver skips DNS resolution, leaving only literal
// IP hosts subject to the address checks.
type Checker struct {
	Resolver Resolver
}

func (c *Checker) Check(ctx context.Context, raw string) Verdict {
	v := Verdict{}

	raw = strings.TrimSpace(raw)
	if len(raw) > MaxURLLength {
		v.fail("URL is longer than %d characters", MaxURLLength)
	}

	u, err := url.Parse(raw)
	if err != nil {
		v.fail("URL could not be parsed: %v", err)
		v.Safe = false
		return v
	}

	switch strings.ToLower(u.Scheme) {
	case "https":
	case "http":
		v.warn("URL uses plain http; prefer https")
	default:
		v.fail("scheme %q is not allowed; use http or https", u.Scheme)
	}

	if u.User != nil {
		v.fail("URL must not embed credentials")
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		v.fail("URL has no host")
		v.Safe = len(v.Errors) == 0
		return v
	}

	if port := u.Port(); port != "" && port != "80" && port != "443" {
		v.warn("URL uses non-default port %s", port)
	}
	if strings.HasPrefix(host, "xn--") || strings.Contains(host, ".xn--") {
		v.warn("host %s is punycode encoded", host)
	}
	if shorteners[host] {
		v.warn("host %s is a URL shortener", host)
	}
	for _, tld := range suspiciousTLDs {
		if strings.HasSuffix(host, tld) {
			v.warn("host %s uses a frequently abused top-level domain", host)
			break
		}
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		v.fail("host %s is local", host)
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		v.warn("host is a literal IP address")
		checkAddr(&v, addr)
	} else if c.Resolver != nil {
		addrs, err := c.Resolver.LookupNetIP(ctx, "ip", host)
		if err != nil {
			v.warn("host %s could not be resolved: %v", host, err)
		}
		for _, addr := range addrs {
			checkAddr(&v, addr)
		}
	}

	v.Safe = len(v.Errors) == 0
	return v
}

func checkAddr(v *Verdict, addr netip.Addr) {
	addr = addr.Unmap()
	switch {
	case addr.IsLoopback():
		v.fail("address %s is loopback", addr)
	case addr.IsPrivate():
		v.fail("address %s is private", addr)
	case addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast():
		v.fail("address %s is link-local", addr)
	case addr.IsUnspecified():
		v.fail("address %s is unspecified", addr)
	}
}

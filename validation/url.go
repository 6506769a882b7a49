// Package validation enforces shape, size and safety constraints on catalog
// payloads, including the SSRF guard for every URL accepted into the catalog.
package validation

import (
	"errors"
	"net/netip"
	"net/url"
	"strconv"
	"strings"
)

// MaxURLLength bounds an accepted href
const MaxURLLength = 2048

var (
	ErrUnparseableURL = errors.New("URL could not be parsed")
	ErrURLScheme      = errors.New("URL scheme must be http or https")
	ErrURLTooLong     = errors.New("URL is too long")
	ErrInternalHost   = errors.New("URL targets a private or internal address (SSRF protection)")
)

var blockedHostnames = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
	"0.0.0.0":   true,
}

var blockedSuffixes = []string{".local", ".internal", ".localhost"}

// NormalizeURL parses raw, defaulting to https:// when no scheme is given,
// and returns the normalised URL if it is safe to store.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrUnparseableURL
	}
	if len(raw) > MaxURLLength {
		return "", ErrURLTooLong
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + strings.TrimPrefix(raw, "//")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrUnparseableURL
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", ErrURLScheme
	}
	if u.User != nil {
		// userinfo lets "http://safe.com@10.0.0.1" style tricks through naive checks
		return "", ErrUnparseableURL
	}
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if host == "" {
		return "", ErrUnparseableURL
	}
	if isInternalHost(host) {
		return "", ErrInternalHost
	}
	u.Scheme = scheme
	return u.String(), nil
}

// IsSafeURL reports whether raw may be stored in the catalog
func IsSafeURL(raw string) bool {
	_, err := NormalizeURL(raw)
	return err == nil
}

func isInternalHost(host string) bool {
	if blockedHostnames[host] {
		return true
	}
	for _, suffix := range blockedSuffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		if !isNumericHost(host) {
			return false
		}
		// resolvers accept inet_aton forms such as 127.1, 0x7f000001 and 0177.0.0.1
		var ok bool
		if addr, ok = parseLegacyIPv4(host); !ok {
			return true
		}
	}
	addr = addr.Unmap()
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsUnspecified()
}

// isNumericHost reports whether every label of host is a decimal, octal or
// 0x-prefixed hex number, which resolvers treat as an IPv4 literal.
func isNumericHost(host string) bool {
	for _, part := range strings.Split(host, ".") {
		if part == "" {
			return false
		}
		digits, base := numberDigits(part)
		for _, c := range digits {
			if base == 16 && !strings.ContainsRune("0123456789abcdef", c) {
				return false
			}
			if base != 16 && (c < '0' || c > '9') {
				return false
			}
		}
	}
	return true
}

func numberDigits(part string) (string, int) {
	switch {
	case strings.HasPrefix(part, "0x"):
		return part[2:], 16
	case len(part) > 1 && part[0] == '0':
		return part[1:], 8
	default:
		return part, 10
	}
}

// parseLegacyIPv4 decodes host with inet_aton rules: one to four parts, the
// last part filling the remaining low-order bytes.
func parseLegacyIPv4(host string) (netip.Addr, bool) {
	parts := strings.Split(host, ".")
	if len(parts) > 4 {
		return netip.Addr{}, false
	}

	values := make([]uint64, len(parts))
	for i, part := range parts {
		digits, base := numberDigits(part)
		if digits == "" {
			if base == 16 {
				return netip.Addr{}, false
			}
			digits = "0"
		}
		v, err := strconv.ParseUint(digits, base, 32)
		if err != nil {
			return netip.Addr{}, false
		}
		values[i] = v
	}

	var ip uint64
	for _, v := range values[:len(values)-1] {
		if v > 0xff {
			return netip.Addr{}, false
		}
		ip = ip<<8 | v
	}
	last := values[len(values)-1]
	shift := 8 * uint(5-len(values))
	if last >= 1<<shift {
		return netip.Addr{}, false
	}
	ip = ip<<shift | last

	return netip.AddrFrom4([4]byte{byte(ip >> 24), byte(ip >> 16), byte(ip >> 8), byte(ip)}), true
}

package security

import "strings"

// IPAllowList restricts admin access to a set of IPs. Each entry is either an
// exact address or a glob with a single '*' (e.g. "10.0.0.*").
type IPAllowList struct {
	entries []string
}

// NewIPAllowList builds an allow-list; an empty list allows everyone
func NewIPAllowList(entries []string) *IPAllowList {
	cleaned := make([]string, 0, len(entries))
	for _, e := range entries {
		if e = strings.TrimSpace(e); e != "" {
			cleaned = append(cleaned, e)
		}
	}
	return &IPAllowList{entries: cleaned}
}

// Enabled reports whether any entries are configured
func (l *IPAllowList) Enabled() bool {
	return l != nil && len(l.entries) > 0
}

// Allows reports whether ip matches an entry
func (l *IPAllowList) Allows(ip string) bool {
	if !l.Enabled() {
		return true
	}
	for _, pattern := range l.entries {
		if matchIPPattern(pattern, ip) {
			return true
		}
	}
	return false
}

func matchIPPattern(pattern, ip string) bool {
	prefix, suffix, found := strings.Cut(pattern, "*")
	if !found {
		return pattern == ip
	}
	// more than one wildcard is not a valid entry
	if strings.Contains(suffix, "*") {
		return false
	}
	return len(ip) >= len(prefix)+len(suffix) &&
		strings.HasPrefix(ip, prefix) &&
		strings.HasSuffix(ip, suffix)
}

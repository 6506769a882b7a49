package clientsession

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	logoKeyPrefix = "toolshelf.logo."
	logoTTL       = 7 * 24 * time.Hour
)

type logoEntry struct {
	URL      string    `json:"url"`
	CachedAt time.Time `json:"cachedAt"`
}

// LogoCache remembers the logo found for a domain
type LogoCache struct {
	kv  KV
	now func() time.Time
}

// NewLogoCache creates a logo cache over kv
func NewLogoCache(kv KV) *LogoCache {
	return &LogoCache{kv: kv, now: time.Now}
}

// SetClock replaces the time source, used by tests
func (c *LogoCache) SetClock(now func() time.Time) {
	c.now = now
}

// Get returns the cached logo URL for domain
func (c *LogoCache) Get(domain string) (string, bool) {
	key := logoKey(domain)
	raw, ok, err := c.kv.Get(key)
	if err != nil || !ok {
		return "", false
	}
	var entry logoEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil || c.now().Sub(entry.CachedAt) >= logoTTL {
		_ = c.kv.Remove(key)
		return "", false
	}
	return entry.URL, true
}

// Put caches logoURL for domain
func (c *LogoCache) Put(domain, logoURL string) error {
	data, err := json.Marshal(logoEntry{URL: logoURL, CachedAt: c.now()})
	if err != nil {
		return err
	}
	return c.kv.Set(logoKey(domain), string(data))
}

func logoKey(domain string) string {
	return logoKeyPrefix + strings.ToLower(strings.TrimSpace(domain))
}

package security

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/blogem/toolshelf/models"
)

const (
	// userAgentPrefixLen is how much of the user agent contributes to a client key
	userAgentPrefixLen = 50
	// staleGrace is how long after its window an entry survives a sweep
	staleGrace = 60 * time.Second
	// burstWindow and burstThreshold drive the rapid-request signal
	burstWindow    = 10 * time.Second
	burstThreshold = 20
)

// Policy is a per-endpoint fixed-window limit
type Policy struct {
	Name        string
	MaxRequests int
	Window      time.Duration
}

// Decision is the outcome of a single rate-limit check
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter int
	ResetAt    time.Time
}

// EventRecorder receives audit events
type EventRecorder interface {
	Log(kind models.EventKind, ip string, details map[string]string)
}

type limitEntry struct {
	count     int
	resetTime time.Time
	recent    []time.Time
}

// RateLimiter counts requests per (policy, client key) in fixed windows and
// remembers IPs that exceeded a limit.
type RateLimiter struct {
	mu         sync.Mutex
	entries    map[string]*limitEntry
	suspicious map[string]time.Time
	audit      EventRecorder
	now        func() time.Time
}

// NewRateLimiter creates a rate limiter; audit may be nil
func NewRateLimiter(audit EventRecorder) *RateLimiter {
	return &RateLimiter{
		entries:    make(map[string]*limitEntry),
		suspicious: make(map[string]time.Time),
		audit:      audit,
		now:        time.Now,
	}
}

// SetClock replaces the time source, used by tests
func (rl *RateLimiter) SetClock(now func() time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.now = now
}

// ClientKey derives the client identity from IP and a truncated user agent
func ClientKey(ip, userAgent string) string {
	if len(userAgent) > userAgentPrefixLen {
		userAgent = userAgent[:userAgentPrefixLen]
	}
	return ip + "|" + userAgent
}

// Check counts one request for ip/userAgent against policy
func (rl *RateLimiter) Check(policy Policy, ip, userAgent string) Decision {
	var events []pendingEvent

	rl.mu.Lock()
	now := rl.now()
	key := policy.Name + "#" + ClientKey(ip, userAgent)

	entry, ok := rl.entries[key]
	if !ok || now.After(entry.resetTime) {
		if !ok {
			entry = &limitEntry{}
			rl.entries[key] = entry
		}
		entry.count = 1
		entry.resetTime = now.Add(policy.Window)
	} else {
		entry.count++
	}

	entry.recent = trimBefore(append(entry.recent, now), now.Add(-burstWindow))
	if len(entry.recent) > burstThreshold {
		events = append(events, pendingEvent{models.EventRapidRequests, map[string]string{
			"policy": policy.Name,
			"count":  strconv.Itoa(len(entry.recent)),
			"window": burstWindow.String(),
		}})
	}

	decision := Decision{
		Allowed:   entry.count <= policy.MaxRequests,
		Limit:     policy.MaxRequests,
		Remaining: max(policy.MaxRequests-entry.count, 0),
		ResetAt:   entry.resetTime,
	}
	if !decision.Allowed {
		decision.RetryAfter = int(math.Ceil(entry.resetTime.Sub(now).Seconds()))
		if _, flagged := rl.suspicious[ip]; !flagged {
			rl.suspicious[ip] = now
			events = append(events, pendingEvent{models.EventSuspiciousIP, map[string]string{
				"policy": policy.Name,
			}})
		}
		events = append(events, pendingEvent{models.EventRateLimitExceeded, map[string]string{
			"policy":     policy.Name,
			"count":      strconv.Itoa(entry.count),
			"retryAfter": strconv.Itoa(decision.RetryAfter),
		}})
	}
	rl.mu.Unlock()

	if rl.audit != nil {
		for _, e := range events {
			rl.audit.Log(e.kind, ip, e.details)
		}
	}
	return decision
}

type pendingEvent struct {
	kind    models.EventKind
	details map[string]string
}

// IsSuspicious reports whether ip has exceeded a limit during this process lifetime
func (rl *RateLimiter) IsSuspicious(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	_, ok := rl.suspicious[ip]
	return ok
}

// ClearSuspicious lifts the suspicious flag for ip
func (rl *RateLimiter) ClearSuspicious(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.suspicious, ip)
}

// Sweep removes entries whose window ended more than a minute ago and returns
// how many were removed.
func (rl *RateLimiter) Sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-staleGrace)
	removed := 0
	for key, entry := range rl.entries {
		if entry.resetTime.Before(cutoff) {
			delete(rl.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked client entries
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.entries)
}

// trimBefore drops timestamps older than cutoff; ts is in ascending order
func trimBefore(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && ts[i].Before(cutoff) {
		i++
	}
	if i == 0 {
		return ts
	}
	return append(ts[:0], ts[i:]...)
}

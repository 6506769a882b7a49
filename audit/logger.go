// Package audit keeps a bounded, in-order trail of security-relevant events.
package audit

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/blogem/toolshelf/models"
)

// DefaultCapacity is the number of entries kept before the oldest is evicted
const DefaultCapacity = 1000

// Sink receives a durable copy of each entry
type Sink interface {
	Create(entry *models.AuditLogEntry) error
}

// Logger is an append-only ring buffer of audit entries
type Logger struct {
	mu      sync.Mutex
	buf     []models.AuditLogEntry
	start   int
	size    int
	sink    Sink
	now     func() time.Time
	pending sync.WaitGroup
}

// NewLogger creates a logger holding at most capacity entries; sink may be nil
func NewLogger(capacity int, sink Sink) *Logger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Logger{
		buf:  make([]models.AuditLogEntry, capacity),
		sink: sink,
		now:  time.Now,
	}
}

// SetClock replaces the time source, used by tests
func (l *Logger) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// Log appends an event, evicting the oldest entry when full
func (l *Logger) Log(kind models.EventKind, ip string, details map[string]string) {
	l.mu.Lock()
	entry := models.AuditLogEntry{
		ID:        uuid.NewString(),
		Timestamp: l.now().UTC(),
		Kind:      kind,
		Details:   redact(details),
		IPAddress: ip,
	}
	idx := (l.start + l.size) % len(l.buf)
	l.buf[idx] = entry
	if l.size < len(l.buf) {
		l.size++
	} else {
		l.start = (l.start + 1) % len(l.buf)
	}
	l.mu.Unlock()

	if l.sink == nil {
		return
	}
	// Persist asynchronously to avoid blocking the request
	l.pending.Add(1)
	go func() {
		defer l.pending.Done()
		if err := l.sink.Create(&entry); err != nil {
			slog.Error("failed to persist audit entry", "kind", kind, "error", err)
		}
	}()
}

// Flush waits for in-flight sink writes
func (l *Logger) Flush() {
	l.pending.Wait()
}

// RecentLogs returns up to limit of the newest entries, oldest first
func (l *Logger) RecentLogs(limit int) []models.AuditLogEntry {
	return l.collect(limit, func(models.AuditLogEntry) bool { return true })
}

// LogsByEventKind returns up to limit of the newest entries of kind, oldest first
func (l *Logger) LogsByEventKind(kind models.EventKind, limit int) []models.AuditLogEntry {
	return l.collect(limit, func(e models.AuditLogEntry) bool { return e.Kind == kind })
}

// Len returns the number of buffered entries
func (l *Logger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

func (l *Logger) collect(limit int, keep func(models.AuditLogEntry) bool) []models.AuditLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	matched := make([]models.AuditLogEntry, 0, l.size)
	for i := 0; i < l.size; i++ {
		entry := l.buf[(l.start+i)%len(l.buf)]
		if keep(entry) {
			matched = append(matched, entry)
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return matched
}

var sensitiveKeys = []string{"secret", "token", "password", "passphrase", "authorization", "credential"}

// redact copies details, dropping values whose key names credential material
func redact(details map[string]string) map[string]string {
	if len(details) == 0 {
		return nil
	}
	out := make(map[string]string, len(details))
	for k, v := range details {
		lower := strings.ToLower(k)
		for _, s := range sensitiveKeys {
			if strings.Contains(lower, s) {
				v = "[redacted]"
				break
			}
		}
		out[k] = v
	}
	return out
}

package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

const tokenBytes = 32

// TokenStore holds short-lived admin session tokens issued after a successful
// login. Only digests of tokens are kept.
type TokenStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenStore creates a token store issuing tokens valid for ttl
func NewTokenStore(ttl time.Duration) *TokenStore {
	return &TokenStore{
		tokens: make(map[string]time.Time),
		ttl:    ttl,
		now:    time.Now,
	}
}

// SetClock replaces the time source, used by tests
func (s *TokenStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Issue creates a new random token and returns it with its expiry
func (s *TokenStore) Issue() (string, time.Time, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate session token: %w", err)
	}
	token := hex.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt := s.now().Add(s.ttl)
	s.tokens[Digest(token)] = expiresAt
	return token, expiresAt, nil
}

// Valid reports whether token was issued here and has not expired
func (s *TokenStore) Valid(token string) bool {
	if token == "" {
		return false
	}
	key := Digest(token)

	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt, ok := s.tokens[key]
	if !ok {
		return false
	}
	if !s.now().Before(expiresAt) {
		delete(s.tokens, key)
		return false
	}
	return true
}

// Revoke removes token; it reports whether the token existed
func (s *TokenStore) Revoke(token string) bool {
	key := Digest(token)

	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[key]
	delete(s.tokens, key)
	return ok
}

// Sweep drops expired tokens and returns how many were removed
func (s *TokenStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for key, expiresAt := range s.tokens {
		if !now.Before(expiresAt) {
			delete(s.tokens, key)
			removed++
		}
	}
	return removed
}

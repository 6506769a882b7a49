package clientsession

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/blogem/toolshelf/models"
	"github.com/blogem/toolshelf/security"
)

const sessionKey = "toolshelf.session"

// ErrProofMismatch is returned when the passphrase does not match the server's proof
var ErrProofMismatch = errors.New("passphrase does not match the server secret")

// SessionStore keeps the login proof across restarts for at most 24 hours.
// Any record that is expired, mismatched or unreadable is cleared on sight.
type SessionStore struct {
	kv  KV
	now func() time.Time
}

// NewSessionStore creates a session store over kv
func NewSessionStore(kv KV) *SessionStore {
	return &SessionStore{kv: kv, now: time.Now}
}

// SetClock replaces the time source, used by tests
func (s *SessionStore) SetClock(now func() time.Time) {
	s.now = now
}

// Login stores a session if digest(passphrase) matches serverProof, the digest
// returned by a successful login round-trip.
func (s *SessionStore) Login(passphrase, serverProof, token string, expiresAt time.Time) error {
	proof := security.Digest(passphrase)
	if !security.ConstantTimeEqual(proof, serverProof) {
		return ErrProofMismatch
	}

	record := models.SessionRecord{
		ProofDigest:    proof,
		LoginTimestamp: s.now(),
		Token:          token,
		ExpiresAt:      expiresAt,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return s.kv.Set(sessionKey, string(data))
}

// IsValid reports whether the stored proof matches serverProof and the
// session is younger than 24 hours. Invalid sessions are removed.
func (s *SessionStore) IsValid(serverProof string) bool {
	record, ok := s.load()
	if !ok {
		return false
	}
	if !security.ConstantTimeEqual(record.ProofDigest, serverProof) {
		s.clear()
		return false
	}
	return true
}

// Current returns the stored session if it has not expired
func (s *SessionStore) Current() (*models.SessionRecord, bool) {
	return s.load()
}

// Logout clears the stored session unconditionally
func (s *SessionStore) Logout() error {
	return s.kv.Remove(sessionKey)
}

// load reads the record, clearing it when unreadable, stamped in the future
// or expired
func (s *SessionStore) load() (*models.SessionRecord, bool) {
	raw, ok, err := s.kv.Get(sessionKey)
	if err != nil || !ok {
		return nil, false
	}

	var record models.SessionRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil || record.ProofDigest == "" || record.LoginTimestamp.IsZero() {
		s.clear()
		return nil, false
	}

	now := s.now()
	if now.Before(record.LoginTimestamp) || now.Sub(record.LoginTimestamp) >= models.SessionLifetime {
		s.clear()
		return nil, false
	}
	if !record.ExpiresAt.IsZero() && !now.Before(record.ExpiresAt) {
		s.clear()
		return nil, false
	}
	return &record, true
}

func (s *SessionStore) clear() {
	_ = s.kv.Remove(sessionKey)
}

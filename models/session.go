package models

import "time"

// SessionLifetime bounds how long a client-held login proof stays valid
const SessionLifetime = 24 * time.Hour

// SessionRecord is the login proof held on the admin's device.
// It never contains the passphrase itself.
type SessionRecord struct {
	ProofDigest    string    `json:"proofDigest"`
	LoginTimestamp time.Time `json:"loginTimestamp"`
	Token          string    `json:"token,omitempty"`
	ExpiresAt      time.Time `json:"expiresAt,omitempty"`
}

// LoginResponse is returned by POST /api/login
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Proof     string    `json:"proof"`
}

// SaveResponse is returned by a successful POST /api/catalog
type SaveResponse struct {
	Success   bool         `json:"success"`
	Timestamp time.Time    `json:"timestamp"`
	Stats     CatalogStats `json:"stats"`
}

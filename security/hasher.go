// Package security implements the admin write-path controls: credential digests,
// constant-time comparison, fixed-window rate limiting, the request authorizer
// and server-issued session tokens.
package security

import (
	"crypto/sha256"
	"encoding/hex"
)

// DigestLength is the length of every Digest output (hex encoded SHA-256)
const DigestLength = sha256.Size * 2

// Digest returns the lowercase hex SHA-256 of input
func Digest(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// ConstantTimeEqual compares a and b without returning early on the first
// differing byte. Only the lengths are allowed to short-circuit, and callers
// compare fixed-length digests.
func ConstantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := 0; i < len(a); i++ {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}

package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/blogem/toolshelf/clientctx"
	"github.com/blogem/toolshelf/models"
	"github.com/blogem/toolshelf/security"
)

// AuthController issues and revokes admin session tokens
type AuthController struct {
	authorizer *security.Authorizer
	tokens     *security.TokenStore
	audit      security.EventRecorder
}

// NewAuthController creates a new auth controller
func NewAuthController(authorizer *security.Authorizer, tokens *security.TokenStore, audit security.EventRecorder) *AuthController {
	return &AuthController{
		authorizer: authorizer,
		tokens:     tokens,
		audit:      audit,
	}
}

// Login handles POST /api/login. The request has already been authorized
// with the server secret; the response carries a short-lived token and the
// proof digest the client keeps instead of the passphrase.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	token, expiresAt, err := c.tokens.Issue()
	if err != nil {
		slog.Error("failed to issue session token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	c.audit.Log(models.EventSessionIssued, clientctx.GetClientIP(r.Context()), map[string]string{
		"expiresAt": expiresAt.UTC().Format(time.RFC3339),
	})

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC(),
		Proof:     c.authorizer.SecretDigest(),
	})
}

// Logout handles POST /api/logout
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	revoked := false
	if clientctx.GetAuthMethod(r.Context()) == "session" {
		revoked = c.tokens.Revoke(clientctx.GetAuthToken(r.Context()))
	}
	if revoked {
		c.audit.Log(models.EventSessionRevoked, clientctx.GetClientIP(r.Context()), nil)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"revoked": revoked,
	})
}

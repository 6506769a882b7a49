package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/blogem/toolshelf/clientctx"
	"github.com/blogem/toolshelf/models"
	"github.com/blogem/toolshelf/security"
)

// RequireAdmin runs the authorizer before mutating handlers. acceptSession
// controls whether server-issued session tokens are accepted in place of the
// secret.
func RequireAdmin(authorizer *security.Authorizer, acceptSession bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			grant, err := authorizer.Authorize(r.Context(), security.AuthRequest{
				IP:                clientctx.GetClientIP(r.Context()),
				Path:              r.URL.Path,
				Authorization:     r.Header.Get("Authorization"),
				AllowSessionToken: acceptSession,
			})
			if err != nil {
				var authErr *models.AuthenticationError
				if !errors.As(err, &authErr) {
					slog.Error("authorizer failed", "error", err)
					writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
					return
				}
				if authErr.Reason == models.RejectServerMisconfigured {
					slog.Error("rejecting admin request: ADMIN_SECRET is not configured", "path", r.URL.Path)
				}
				if authErr.Reason == models.RejectMissingCredential {
					w.Header().Set("WWW-Authenticate", `Bearer realm="catalog"`)
				}
				writeJSON(w, authErr.StatusCode(), map[string]any{
					"error":  "unauthorized",
					"reason": authErr.Reason,
				})
				return
			}

			ctx := clientctx.SetAuthMethod(r.Context(), grant.Method, grant.Token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

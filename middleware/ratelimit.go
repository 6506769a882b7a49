package middleware

import (
	"net/http"
	"strconv"

	"github.com/blogem/toolshelf/clientctx"
	"github.com/blogem/toolshelf/models"
	"github.com/blogem/toolshelf/security"
)

// RateLimit rejects requests beyond policy with 429 and a retryAfter hint
func RateLimit(limiter *security.RateLimiter, policy security.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientctx.GetClientIP(r.Context())
			decision := limiter.Check(policy, ip, r.UserAgent())

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

			if !decision.Allowed {
				rlErr := &models.RateLimitError{RetryAfter: decision.RetryAfter}
				w.Header().Set("Retry-After", strconv.Itoa(rlErr.RetryAfter))
				writeJSON(w, http.StatusTooManyRequests, map[string]any{
					"error":      rlErr.Error(),
					"retryAfter": rlErr.RetryAfter,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

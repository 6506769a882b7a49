package middleware

import (
	"net/http"
	"strconv"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/blogem/toolshelf/clientctx"
	"github.com/blogem/toolshelf/models"
	"github.com/blogem/toolshelf/security"
)

// AuditRequests records method, path and status of every mutating request
func AuditRequests(recorder security.EventRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Only log mutation operations
			if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodDelete {
				next.ServeHTTP(w, r)
				return
			}

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			recorder.Log(models.EventAdminRequest, clientctx.GetClientIP(r.Context()), map[string]string{
				"method":    r.Method,
				"path":      r.URL.Path,
				"status":    strconv.Itoa(status),
				"userAgent": truncate(r.UserAgent(), 100),
			})
		})
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

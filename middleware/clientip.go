package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/blogem/toolshelf/clientctx"
)

// ClientIP resolves the client address once per request and stores it in the
// context. Forwarding headers are only honoured behind a trusted proxy.
func ClientIP(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getIPAddress(r, trustProxy)
			next.ServeHTTP(w, r.WithContext(clientctx.SetClientIP(r.Context(), ip)))
		})
	}
}

// getIPAddress extracts the IP address from the request, checking
// X-Forwarded-For first when trustProxy is set
func getIPAddress(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			// Take first IP if multiple
			first, _, _ := strings.Cut(forwarded, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
			return realIP
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

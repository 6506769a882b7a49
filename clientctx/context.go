package clientctx

import "context"

// Context key type
type contextKey string

const clientIPKey contextKey = "client_ip"
const grantKey contextKey = "auth_grant"

// SetClientIP adds the resolved client IP to the request context
func SetClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// GetClientIP retrieves the client IP from the request context
func GetClientIP(ctx context.Context) string {
	ip, ok := ctx.Value(clientIPKey).(string)
	if !ok {
		return "unknown"
	}
	return ip
}

// SetAuthMethod records how an admin request was authorized ("secret" or "session")
func SetAuthMethod(ctx context.Context, method string, token string) context.Context {
	return context.WithValue(ctx, grantKey, authGrant{method: method, token: token})
}

// GetAuthMethod returns the authorization method, or "" for anonymous requests
func GetAuthMethod(ctx context.Context) string {
	if g, ok := ctx.Value(grantKey).(authGrant); ok {
		return g.method
	}
	return ""
}

// GetAuthToken returns the accepted bearer token
func GetAuthToken(ctx context.Context) string {
	if g, ok := ctx.Value(grantKey).(authGrant); ok {
		return g.token
	}
	return ""
}

type authGrant struct {
	method string
	token  string
}

package auth

import (
	"context"
	"net/http"
	"strings"
)

// SecConfig drives CORS, IP filtering and rate limiting in the gateway.
type SecConfig struct {
	AllowedOrigins []string
	RPS            float64
	Burst          int
	IPWhitelist    []string
}

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID int64
	Name   string
	Token  string
}

type ctxIdentityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxIdentityKey{}, id)
}

// IdentityFromContext returns the caller identity stored by RequireSession.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxIdentityKey{}).(Identity)
	return id, ok
}

// BearerToken extracts the token of an "Authorization: Bearer <token>"
// header, falling back to X-API-Key.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

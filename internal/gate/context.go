package gate

import (
	"context"

	"github.com/radiorabe/supersaas-auth-connector/internal/identity"
)

type contextKey struct{}

var identityKey contextKey

// WithIdentity returns a context carrying the authenticated user's
// claims.
func WithIdentity(ctx context.Context, claims identity.Claims) context.Context {
	return context.WithValue(ctx, identityKey, claims)
}

// IdentityFrom returns the authenticated user's claims, if the gate
// established any for this request.
func IdentityFrom(ctx context.Context) (identity.Claims, bool) {
	claims, ok := ctx.Value(identityKey).(identity.Claims)
	return claims, ok
}

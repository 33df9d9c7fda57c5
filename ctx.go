package identity

import (
	"context"

	"github.com/goliatone/go-router"
)

var authCtxKey = &contextKey{"auth"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// AuthContext is the request scoped authentication result. It is built once
// per request by the gate and threaded through the call chain explicitly;
// there is no ambient or global authentication state.
type AuthContext struct {
	Principal     *User
	Authorities   []string
	Authenticated bool
}

// WithAuthContext sets the AuthContext in the given context
func WithAuthContext(r context.Context, auth *AuthContext) context.Context {
	return context.WithValue(r, authCtxKey, auth)
}

// AuthFromContext finds the authentication result in the context
func AuthFromContext(ctx context.Context) (*AuthContext, bool) {
	raw, ok := ctx.Value(authCtxKey).(*AuthContext)
	return raw, ok
}

// WithClaimsContext sets the TokenClaims in the given context
func WithClaimsContext(r context.Context, claims *TokenClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// ClaimsFromContext extracts the TokenClaims from the standard context
func ClaimsFromContext(ctx context.Context) (*TokenClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(*TokenClaims)
	return raw, ok
}

// GetRouterAuth extracts the authentication result from a router context. It
// prefers the enriched request context and falls back to the claims the gate
// stores in locals.
func GetRouterAuth(ctx router.Context, key string) (*AuthContext, bool) {
	if auth, ok := AuthFromContext(ctx.Context()); ok {
		return auth, true
	}

	if key == "" {
		key = "auth"
	}

	if claims, ok := ctx.Locals(key).(*TokenClaims); ok {
		return &AuthContext{
			Authorities:   claims.Authorities(),
			Authenticated: true,
		}, true
	}

	return nil, false
}

// HasAuthority is a convenience check against the authenticated authorities
func HasAuthority(ctx context.Context, authority string) bool {
	auth, ok := AuthFromContext(ctx)
	if !ok || !auth.Authenticated {
		return false
	}
	for _, a := range auth.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

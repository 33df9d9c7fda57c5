package identity

import (
	"context"

	"github.com/goliatone/go-router"
	"github.com/souzalabs/go-identity/middleware/jwtware"
)

// gateValidator adapts TokenService to the middleware's validator surface
type gateValidator struct {
	tokens TokenService
}

func (g gateValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := g.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// NewAuthenticationGate wires the per-request authentication middleware: it
// extracts a bearer token, verifies it against the token service, resolves
// the identity for the subject, and attaches an AuthContext to the request
// context. Requests without an Authorization header proceed anonymously.
func NewAuthenticationGate(tokens TokenService, repo RepositoryManager, cfg Config) router.MiddlewareFunc {
	return jwtware.New(jwtware.Config{
		TokenValidator: gateValidator{tokens: tokens},
		ContextKey:     cfg.GetContextKey(),
		AuthScheme:     cfg.GetAuthScheme(),
		IdentityResolver: func(ctx context.Context, subject string) (any, error) {
			return repo.Users().FindByEmail(ctx, subject)
		},
		ContextEnricher: func(ctx context.Context, principal any, claims jwtware.AuthClaims) context.Context {
			auth := &AuthContext{
				// an absent roles claim is an empty authority set, never a failure
				Authorities:   claims.Authorities(),
				Authenticated: true,
			}

			if user, ok := principal.(*User); ok {
				auth.Principal = user
			}

			if tc, ok := claims.(*TokenClaims); ok {
				ctx = WithClaimsContext(ctx, tc)
			}

			return WithAuthContext(ctx, auth)
		},
	})
}

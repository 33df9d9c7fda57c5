package jwtware

import (
	"context"
	"strings"

	"github.com/goliatone/go-router"
)

// Fixed gate rejection messages. These are part of the behavioral contract
// and must not change between releases.
const (
	MsgTokenExpired   = "Token expirado"
	MsgTokenInvalid   = "Token inválido"
	MsgTokenBadFormat = "Formato do token incorreto"
	MsgInternalError  = "Erro interno"
)

// ErrorResponse is the JSON body sent with every gate rejection
type ErrorResponse struct {
	Error string `json:"error"`
}

// AuthClaims is the claims surface the gate needs, mirrored here from the
// root package to avoid import cycles.
type AuthClaims interface {
	Subject() string
	Authorities() []string
}

// TokenValidator validates tokens and extracts claims without tying the
// middleware to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// IdentityResolver loads the principal for a verified subject. Returning a
// not-found error lets the request proceed unauthenticated.
type IdentityResolver func(ctx context.Context, subject string) (any, error)

// ContextEnricher propagates the authentication result to the standard
// request context after a successful validation.
type ContextEnricher func(ctx context.Context, principal any, claims AuthClaims) context.Context

type Config struct {
	// Filter skips the middleware when it returns true
	Filter func(router.Context) bool
	// TokenValidator is required for token validation
	TokenValidator TokenValidator
	// IdentityResolver is optional; without it the gate attaches claims only
	IdentityResolver IdentityResolver
	// ContextEnricher is optional
	ContextEnricher ContextEnricher
	// ContextKey is the locals key holding the authentication result
	ContextKey string
	// AuthScheme is the expected Authorization scheme, Bearer by default
	AuthScheme string
	// ErrorWriter renders a rejection; defaults to a 401 JSON error body
	ErrorWriter func(ctx router.Context, status int, message string) error
}

// New builds the authentication gate. Per request:
//
//   - no Authorization header: proceed unauthenticated, path enforcement is
//     the authorization layer's job
//   - header present but not "<scheme> <token>": reject with MsgTokenBadFormat
//   - expired token: reject with MsgTokenExpired
//   - malformed token or signature mismatch: reject with MsgTokenInvalid
//   - any other failure: reject with MsgInternalError
//   - valid token: resolve the principal, attach claims to locals and to the
//     request context, proceed
//
// All rejections are 401 with a JSON {"error": message} body. The gate keeps
// no state between invocations beyond its immutable collaborators.
func New(config ...Config) router.MiddlewareFunc {
	cfg := GetDefaultConfig(config...)

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			header := strings.TrimSpace(ctx.GetString(router.HeaderAuthorization, ""))
			if header == "" {
				return next(ctx)
			}

			raw, ok := tokenFromHeader(header, cfg.AuthScheme)
			if !ok {
				return cfg.ErrorWriter(ctx, router.StatusUnauthorized, MsgTokenBadFormat)
			}

			claims, err := cfg.TokenValidator.Validate(raw)
			if err != nil {
				switch {
				case isExpiredError(err):
					return cfg.ErrorWriter(ctx, router.StatusUnauthorized, MsgTokenExpired)
				case isInvalidTokenError(err):
					return cfg.ErrorWriter(ctx, router.StatusUnauthorized, MsgTokenInvalid)
				default:
					return cfg.ErrorWriter(ctx, router.StatusUnauthorized, MsgInternalError)
				}
			}

			// respect an authentication already set for this request
			if ctx.Locals(cfg.ContextKey) == nil {
				var principal any
				if cfg.IdentityResolver != nil {
					principal, err = cfg.IdentityResolver(ctx.Context(), claims.Subject())
					if err != nil {
						if isNotFoundError(err) {
							return next(ctx)
						}
						return cfg.ErrorWriter(ctx, router.StatusUnauthorized, MsgInternalError)
					}
				}

				ctx.Locals(cfg.ContextKey, claims)

				if cfg.ContextEnricher != nil {
					ctx.SetContext(cfg.ContextEnricher(ctx.Context(), principal, claims))
				}
			}

			return next(ctx)
		}
	}
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.TokenValidator == nil {
		panic("IDENTITY: JWT middleware configuration: TokenValidator is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "auth"
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.ErrorWriter == nil {
		cfg.ErrorWriter = func(ctx router.Context, status int, message string) error {
			return ctx.JSON(status, ErrorResponse{Error: message})
		}
	}

	return cfg
}

// tokenFromHeader extracts the raw token from an Authorization header value.
// The header must be exactly "<scheme> <token>".
func tokenFromHeader(header, authScheme string) (string, bool) {
	l := len(authScheme)
	if len(header) <= l+1 || !strings.EqualFold(header[:l], authScheme) {
		return "", false
	}
	if header[l] != ' ' {
		return "", false
	}
	token := strings.TrimSpace(header[l+1:])
	if token == "" {
		return "", false
	}
	return token, true
}

// The helpers below match against error text instead of sentinel values so
// this package does not import the root package. The strings mirror the
// sentinels in errors.go and the golang-jwt library messages.

func isExpiredError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "token is expired")
}

func isInvalidTokenError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "signature is invalid")
}

func isNotFoundError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "identity not found")
}

package identity

import (
	"context"
	"fmt"
)

// Logger is the narrow logging surface the package depends on. Callers wire
// their own implementation; defLogger writes to stdout.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Authenticator implements the token lifecycle: login mints an access/refresh
// pair, refresh trades a still-valid refresh token for a new access token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

// CredentialVerifier checks a raw password against a stored identity
type CredentialVerifier interface {
	Verify(ctx context.Context, email, rawPassword string) error
}

// AccountRegistrar creates new identities
type AccountRegistrar interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetAccessTokenTTL() int
	GetRefreshTokenTTL() int
	GetContextKey() string
	GetAuthScheme() string
	GetTokenLookup() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] IDENTITY "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] IDENTITY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] IDENTITY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] IDENTITY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

package identity

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService issues and verifies signed bearer tokens. Implementations are
// pure functions of (signing key, input) and safe for concurrent use.
type TokenService interface {
	Issue(subject string, roles []string, ttl time.Duration) (string, error)
	Validate(tokenString string) (*TokenClaims, error)
	Subject(tokenString string) (string, error)
	Expiration(tokenString string) (time.Time, error)
	IsExpired(tokenString string) (bool, error)
	ValidateFor(tokenString string, identity *User) bool
}

// TokenServiceImpl implements the TokenService interface with HMAC-SHA256
type TokenServiceImpl struct {
	signingKey []byte
	logger     Logger
	now        func() time.Time
}

// NewTokenService creates a new TokenService instance. The signing key is
// loaded once at process start and must not change for the process lifetime.
func NewTokenService(signingKey []byte, logger Logger) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey: signingKey,
		logger:     logger,
		now:        time.Now,
	}
}

// WithTimeFunc overrides the clock used for issuance and expiry checks
func (ts *TokenServiceImpl) WithTimeFunc(now func() time.Time) *TokenServiceImpl {
	if now != nil {
		ts.now = now
	}
	return ts
}

// DecodeSigningKey decodes the configured base64 signing secret
func DecodeSigningKey(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, ErrNoEmptyString
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("signing key is not valid base64: %w", err)
	}
	return key, nil
}

// Issue signs a token with {sub, iat, exp, roles}. A non positive ttl is
// valid input and yields an already expired token.
func (ts *TokenServiceImpl) Issue(subject string, roles []string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", ErrNoEmptyString
	}

	now := ts.now()
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	if len(roles) > 0 {
		claims.Roles = append([]string(nil), roles...)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Validate parses a token string, re-verifying the signature on every call.
// Failures map to exactly one of ErrTokenExpired, ErrTokenMalformed, or
// ErrTokenSignatureInvalid; the three outcomes are never merged.
func (ts *TokenServiceImpl) Validate(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token validate encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, jwt.WithTimeFunc(ts.now))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		case errors.Is(err, jwt.ErrTokenUnverifiable):
			// the keyfunc rejected the alg header
			return nil, ErrTokenSignatureInvalid
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		}
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("token validate could not decode claims")
	return nil, ErrTokenMalformed
}

// Subject returns the subject claim of a verified token
func (ts *TokenServiceImpl) Subject(tokenString string) (string, error) {
	claims, err := ts.Validate(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject(), nil
}

// Expiration returns the expiry of a verified token
func (ts *TokenServiceImpl) Expiration(tokenString string) (time.Time, error) {
	claims, err := ts.Validate(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	return claims.Expires(), nil
}

// IsExpired reports whether a well signed token has an exp in the past. An
// expired token is the expected true case, not a failure; only malformed or
// forged input yields an error.
func (ts *TokenServiceImpl) IsExpired(tokenString string) (bool, error) {
	if _, err := ts.Validate(tokenString); err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// ValidateFor reports whether a token belongs to the given identity: the
// subject must equal the identity email and the token must not be expired.
func (ts *TokenServiceImpl) ValidateFor(tokenString string, identity *User) bool {
	if identity == nil {
		return false
	}

	claims, err := ts.Validate(tokenString)
	if err != nil {
		return false
	}

	return claims.Subject() == identity.Email
}

var _ TokenService = (*TokenServiceImpl)(nil)

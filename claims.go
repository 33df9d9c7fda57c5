package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the payload we sign into every token: the registered claims
// plus an ordered roles sequence. Roles may be absent on tokens minted by
// older issuers; Authorities treats that as an empty set.
type TokenClaims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

// Subject returns the subject claim
func (c *TokenClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Expires returns the expiration time
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *TokenClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// Authorities returns the roles claim as a defensive copy, never nil
func (c *TokenClaims) Authorities() []string {
	if len(c.Roles) == 0 {
		return []string{}
	}
	out := make([]string, len(c.Roles))
	copy(out, c.Roles)
	return out
}

// HasAuthority checks the roles claim for a given role
func (c *TokenClaims) HasAuthority(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role, carried on tokens as an authority
type UserRole = string

const (
	// RoleUser is the default role for registered identities
	RoleUser UserRole = "USER"
	// RoleAdmin marks administrative identities
	RoleAdmin UserRole = "ADMIN"
)

// User is the identity model. The email is unique and is the token subject;
// the password hash never leaves the store layer in responses.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	CPF           string     `bun:"cpf,notnull" json:"cpf,omitempty"`
	Token         string     `bun:"token,nullzero,unique" json:"-"`
	Role          UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	Disabled      bool       `bun:"disabled" json:"disabled,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Roles returns the authorities minted into this user's tokens
func (u *User) Roles() []string {
	if u == nil || u.Role == "" {
		return nil
	}
	return []string{u.Role}
}

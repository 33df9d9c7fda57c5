package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// RegisterInput is what a new identity is created from. The raw password is
// hashed before anything is persisted and is never stored or logged.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	CPF      string `json:"cpf"`
	Role     string `json:"role,omitempty"`
}

// Credentials verifies passwords and registers identities against the store.
// Store access honors the caller's context and is never retried on failure.
type Credentials struct {
	repo             RepositoryManager
	hasher           PasswordAuthenticator
	logger           Logger
	deterministicIDs bool
}

// NewCredentials returns a new credential service backed by the given store
func NewCredentials(repo RepositoryManager) *Credentials {
	return &Credentials{
		repo:   repo,
		hasher: BcryptHasher{},
		logger: defLogger{},
	}
}

func (c *Credentials) WithLogger(logger Logger) *Credentials {
	if logger != nil {
		c.logger = logger
	}
	return c
}

func (c *Credentials) WithPasswordAuthenticator(hasher PasswordAuthenticator) *Credentials {
	if hasher != nil {
		c.hasher = hasher
	}
	return c
}

// WithDeterministicIDs derives the identity ID from the email so repeated
// environments produce stable IDs
func (c *Credentials) WithDeterministicIDs(enabled bool) *Credentials {
	c.deterministicIDs = enabled
	return c
}

// Verify checks a raw password against the stored hash. It returns
// ErrIdentityNotFound for unknown emails, ErrUserDisabled for disabled
// accounts, and ErrMismatchedHashAndPassword on a failed comparison. The
// stored hash is never exposed to callers.
func (c *Credentials) Verify(ctx context.Context, email, rawPassword string) error {
	user, err := c.repo.Users().FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	if user.Disabled {
		return ErrUserDisabled
	}

	return c.hasher.ComparePasswordAndHash(rawPassword, user.PasswordHash)
}

// Register creates a new identity with a hashed password. The email existence
// check is a best-effort fast path; the store's unique constraint is the
// authoritative conflict detector and also surfaces as ErrAlreadyExists.
func (c *Credentials) Register(ctx context.Context, input RegisterInput) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user := &User{}

	err := c.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := c.repo.Users().FindByEmailTx(ctx, tx, input.Email); err == nil {
			return ErrAlreadyExists
		} else if !IsNotFoundError(err) {
			return fmt.Errorf("registration lookup failed: %w", err)
		}

		hash, err := c.hasher.HashPassword(input.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		user.Email = input.Email
		user.PasswordHash = hash
		user.CPF = input.CPF
		user.Role = input.Role

		if c.deterministicIDs {
			if id, err := hashid.NewUUID(input.Email); err == nil {
				user.ID = id
			}
		}

		if user, err = c.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return user, nil
}

var (
	_ CredentialVerifier = (*Credentials)(nil)
	_ AccountRegistrar   = (*Credentials)(nil)
)

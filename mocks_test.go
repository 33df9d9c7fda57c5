package identity_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"

	identity "github.com/souzalabs/go-identity"
)

func newClaims(subject string, roles []string, ttl time.Duration) *identity.TokenClaims {
	now := time.Now()
	return &identity.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Roles: roles,
	}
}

// MockLogger implements identity.Logger
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) { m.Called(format, args) }
func (m *MockLogger) Info(format string, args ...any)  { m.Called(format, args) }
func (m *MockLogger) Warn(format string, args ...any)  { m.Called(format, args) }
func (m *MockLogger) Error(format string, args ...any) { m.Called(format, args) }

// testLogger swallows everything; used where log output is not under test
type testLogger struct{}

func (testLogger) Debug(format string, args ...any) {}
func (testLogger) Info(format string, args ...any)  {}
func (testLogger) Warn(format string, args ...any)  {}
func (testLogger) Error(format string, args ...any) {}

// MockVerifier implements identity.CredentialVerifier
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, email, rawPassword string) error {
	args := m.Called(ctx, email, rawPassword)
	return args.Error(0)
}

// MockUsers implements identity.Users for the methods the tests exercise.
// The embedded interface covers the generic repository surface; calling an
// unexpected method panics, which is what we want in a test.
type MockUsers struct {
	mock.Mock
	identity.Users
}

func (m *MockUsers) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*identity.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*identity.User, error) {
	args := m.Called(ctx, tx, email)
	if user, ok := args.Get(0).(*identity.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) FindByToken(ctx context.Context, token string) (*identity.User, error) {
	args := m.Called(ctx, token)
	if user, ok := args.Get(0).(*identity.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) Register(ctx context.Context, user *identity.User) (*identity.User, error) {
	args := m.Called(ctx, user)
	if created, ok := args.Get(0).(*identity.User); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *identity.User) (*identity.User, error) {
	args := m.Called(ctx, tx, user)
	if created, ok := args.Get(0).(*identity.User); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) StoreToken(ctx context.Context, id uuid.UUID, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockUsers) StoreTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string) error {
	args := m.Called(ctx, tx, id, token)
	return args.Error(0)
}

// stubRepoManager wires a MockUsers behind the RepositoryManager surface.
// RunInTx invokes the callback directly; the store methods are mocked so no
// real transaction is needed.
type stubRepoManager struct {
	users identity.Users
}

func (s stubRepoManager) Validate() error { return nil }
func (s stubRepoManager) MustValidate()   {}

func (s stubRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return f(ctx, bun.Tx{})
	}
}

func (s stubRepoManager) Users() identity.Users { return s.users }

// MockTokenService implements identity.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(subject string, roles []string, ttl time.Duration) (string, error) {
	args := m.Called(subject, roles, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Validate(tokenString string) (*identity.TokenClaims, error) {
	args := m.Called(tokenString)
	if claims, ok := args.Get(0).(*identity.TokenClaims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenService) Subject(tokenString string) (string, error) {
	args := m.Called(tokenString)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Expiration(tokenString string) (time.Time, error) {
	args := m.Called(tokenString)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockTokenService) IsExpired(tokenString string) (bool, error) {
	args := m.Called(tokenString)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenService) ValidateFor(tokenString string, user *identity.User) bool {
	args := m.Called(tokenString, user)
	return args.Bool(0)
}

// testConfig satisfies identity.Config
type testConfig struct {
	signingKey string
	accessTTL  int
	refreshTTL int
}

func (c testConfig) GetSigningKey() string   { return c.signingKey }
func (c testConfig) GetAccessTokenTTL() int  { return c.accessTTL }
func (c testConfig) GetRefreshTokenTTL() int { return c.refreshTTL }
func (c testConfig) GetContextKey() string   { return "auth" }
func (c testConfig) GetAuthScheme() string   { return "Bearer" }
func (c testConfig) GetTokenLookup() string  { return "header:Authorization" }

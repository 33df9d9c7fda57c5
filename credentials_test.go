package identity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	identity "github.com/souzalabs/go-identity"
)

// plainHasher keeps registration tests fast; bcrypt itself is covered in
// bcrypt_test.go
type plainHasher struct{}

func (plainHasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", identity.ErrNoEmptyString
	}
	return "hashed:" + password, nil
}

func (plainHasher) ComparePasswordAndHash(password, hash string) error {
	if "hashed:"+password != hash {
		return identity.ErrMismatchedHashAndPassword
	}
	return nil
}

func TestCredentials_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("matching password", func(t *testing.T) {
		users := &MockUsers{}
		users.On("FindByEmail", ctx, "alice@example.com").
			Return(&identity.User{Email: "alice@example.com", PasswordHash: "hashed:password"}, nil)

		credentials := identity.NewCredentials(stubRepoManager{users: users}).
			WithLogger(testLogger{}).
			WithPasswordAuthenticator(plainHasher{})

		assert.NoError(t, credentials.Verify(ctx, "alice@example.com", "password"))
	})

	t.Run("wrong password", func(t *testing.T) {
		users := &MockUsers{}
		users.On("FindByEmail", ctx, "alice@example.com").
			Return(&identity.User{Email: "alice@example.com", PasswordHash: "hashed:password"}, nil)

		credentials := identity.NewCredentials(stubRepoManager{users: users}).
			WithLogger(testLogger{}).
			WithPasswordAuthenticator(plainHasher{})

		err := credentials.Verify(ctx, "alice@example.com", "wrong")
		assert.ErrorIs(t, err, identity.ErrMismatchedHashAndPassword)
	})

	t.Run("unknown identity", func(t *testing.T) {
		users := &MockUsers{}
		users.On("FindByEmail", ctx, "ghost@example.com").
			Return(nil, identity.ErrIdentityNotFound)

		credentials := identity.NewCredentials(stubRepoManager{users: users}).
			WithLogger(testLogger{})

		err := credentials.Verify(ctx, "ghost@example.com", "password")
		assert.ErrorIs(t, err, identity.ErrIdentityNotFound)
	})

	t.Run("disabled identity", func(t *testing.T) {
		users := &MockUsers{}
		users.On("FindByEmail", ctx, "alice@example.com").
			Return(&identity.User{Email: "alice@example.com", Disabled: true}, nil)

		credentials := identity.NewCredentials(stubRepoManager{users: users}).
			WithLogger(testLogger{})

		err := credentials.Verify(ctx, "alice@example.com", "password")
		assert.ErrorIs(t, err, identity.ErrUserDisabled)
	})
}

func TestCredentials_Register(t *testing.T) {
	input := identity.RegisterInput{
		Email:    "alice@example.com",
		Password: "password",
		CPF:      "52998224725",
	}

	t.Run("hashes the password before persisting", func(t *testing.T) {
		users := &MockUsers{}
		users.On("FindByEmailTx", mock.Anything, mock.Anything, input.Email).
			Return(nil, identity.ErrIdentityNotFound)
		users.On("RegisterTx", mock.Anything, mock.Anything, mock.AnythingOfType("*identity.User")).
			Run(func(args mock.Arguments) {
				user := args.Get(2).(*identity.User)
				assert.Equal(t, "hashed:password", user.PasswordHash)
				assert.Equal(t, input.CPF, user.CPF)
			}).
			Return(&identity.User{Email: input.Email, PasswordHash: "hashed:password"}, nil)

		credentials := identity.NewCredentials(stubRepoManager{users: users}).
			WithLogger(testLogger{}).
			WithPasswordAuthenticator(plainHasher{})

		user, err := credentials.Register(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, input.Email, user.Email)
		assert.NotEqual(t, input.Password, user.PasswordHash)
		users.AssertExpectations(t)
	})

	t.Run("registration then verification round trips", func(t *testing.T) {
		var persisted *identity.User

		users := &MockUsers{}
		users.On("FindByEmailTx", mock.Anything, mock.Anything, input.Email).
			Return(nil, identity.ErrIdentityNotFound)
		users.On("RegisterTx", mock.Anything, mock.Anything, mock.AnythingOfType("*identity.User")).
			Run(func(args mock.Arguments) {
				persisted = args.Get(2).(*identity.User)
			}).
			Return(&identity.User{}, nil)

		credentials := identity.NewCredentials(stubRepoManager{users: users}).
			WithLogger(testLogger{}).
			WithPasswordAuthenticator(plainHasher{})

		_, err := credentials.Register(context.Background(), input)
		require.NoError(t, err)
		require.NotNil(t, persisted)

		users.On("FindByEmail", mock.Anything, input.Email).Return(persisted, nil)
		assert.NoError(t, credentials.Verify(context.Background(), input.Email, input.Password))
	})

	t.Run("existing email is a conflict", func(t *testing.T) {
		users := &MockUsers{}
		users.On("FindByEmailTx", mock.Anything, mock.Anything, input.Email).
			Return(&identity.User{Email: input.Email}, nil)

		credentials := identity.NewCredentials(stubRepoManager{users: users}).
			WithLogger(testLogger{})

		_, err := credentials.Register(context.Background(), input)
		assert.ErrorIs(t, err, identity.ErrAlreadyExists)
		users.AssertNotCalled(t, "RegisterTx", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unique violation during insert is a conflict", func(t *testing.T) {
		users := &MockUsers{}
		users.On("FindByEmailTx", mock.Anything, mock.Anything, input.Email).
			Return(nil, identity.ErrIdentityNotFound)
		users.On("RegisterTx", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, identity.ErrAlreadyExists)

		credentials := identity.NewCredentials(stubRepoManager{users: users}).
			WithLogger(testLogger{}).
			WithPasswordAuthenticator(plainHasher{})

		_, err := credentials.Register(context.Background(), input)
		assert.ErrorIs(t, err, identity.ErrAlreadyExists)
	})

	t.Run("lookup failure aborts without writing", func(t *testing.T) {
		users := &MockUsers{}
		users.On("FindByEmailTx", mock.Anything, mock.Anything, input.Email).
			Return(nil, errors.New("connection reset"))

		credentials := identity.NewCredentials(stubRepoManager{users: users}).
			WithLogger(testLogger{})

		_, err := credentials.Register(context.Background(), input)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, identity.ErrAlreadyExists)
		users.AssertNotCalled(t, "RegisterTx", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cancelled context stops the registration", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		credentials := identity.NewCredentials(stubRepoManager{users: &MockUsers{}}).
			WithLogger(testLogger{})

		_, err := credentials.Register(ctx, input)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("deterministic ids derive from the email", func(t *testing.T) {
		var first, second *identity.User

		run := func(out **identity.User) {
			users := &MockUsers{}
			users.On("FindByEmailTx", mock.Anything, mock.Anything, input.Email).
				Return(nil, identity.ErrIdentityNotFound)
			users.On("RegisterTx", mock.Anything, mock.Anything, mock.Anything).
				Run(func(args mock.Arguments) {
					*out = args.Get(2).(*identity.User)
				}).
				Return(&identity.User{}, nil)

			credentials := identity.NewCredentials(stubRepoManager{users: users}).
				WithLogger(testLogger{}).
				WithPasswordAuthenticator(plainHasher{}).
				WithDeterministicIDs(true)

			_, err := credentials.Register(context.Background(), input)
			require.NoError(t, err)
		}

		run(&first)
		run(&second)

		require.NotNil(t, first)
		require.NotNil(t, second)
		assert.Equal(t, first.ID, second.ID)
	})
}

package identity

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TokenPair is the login and refresh response payload
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Auther orchestrates login and refresh. All collaborators are immutable
// after construction; nothing is shared across requests.
type Auther struct {
	verifier      CredentialVerifier
	repo          RepositoryManager
	tokens        TokenService
	accessTTL     time.Duration
	refreshTTL    time.Duration
	persistTokens bool
	logger        Logger
}

// NewAuthenticator returns a new Authenticator. TTLs come from configuration
// in seconds; the access token is short lived, the refresh token long lived.
func NewAuthenticator(verifier CredentialVerifier, repo RepositoryManager, tokens TokenService, cfg Config) *Auther {
	return &Auther{
		verifier:   verifier,
		repo:       repo,
		tokens:     tokens,
		accessTTL:  time.Duration(cfg.GetAccessTokenTTL()) * time.Second,
		refreshTTL: time.Duration(cfg.GetRefreshTokenTTL()) * time.Second,
		logger:     defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenPersistence stores the latest refresh token on the identity row so
// it can be looked up by token. Persistence is best effort and never fails a
// login.
func (s *Auther) WithTokenPersistence(enabled bool) *Auther {
	s.persistTokens = enabled
	return s
}

// Login verifies the credentials and issues an access plus refresh token,
// both with the identity's email as subject.
func (s *Auther) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	if err := s.verifier.Verify(ctx, username, password); err != nil {
		switch {
		case errors.Is(err, ErrUserDisabled):
			s.logger.Warn("login rejected, user disabled: %s", username)
			return nil, ErrUserDisabled
		case errors.Is(err, ErrIdentityNotFound), errors.Is(err, ErrMismatchedHashAndPassword):
			s.logger.Warn("login rejected, bad credentials: %s", username)
			return nil, ErrBadCredentials
		default:
			s.logger.Error("login verify error: %v", err)
			return nil, fmt.Errorf("%w: credential check failed", ErrInternal)
		}
	}

	user, err := s.repo.Users().FindByEmail(ctx, username)
	if err != nil {
		// the identity verified a moment ago, absence now is unexpected
		s.logger.Error("login identity lookup error: %v", err)
		return nil, fmt.Errorf("%w: identity lookup failed", ErrInternal)
	}

	access, err := s.tokens.Issue(user.Email, user.Roles(), s.accessTTL)
	if err != nil {
		s.logger.Error("login access token error: %v", err)
		return nil, fmt.Errorf("%w: token issuance failed", ErrInternal)
	}

	refresh, err := s.tokens.Issue(user.Email, user.Roles(), s.refreshTTL)
	if err != nil {
		s.logger.Error("login refresh token error: %v", err)
		return nil, fmt.Errorf("%w: token issuance failed", ErrInternal)
	}

	if s.persistTokens {
		if err := s.repo.Users().StoreToken(ctx, user.ID, refresh); err != nil {
			s.logger.Warn("unable to persist refresh token: %v", err)
		}
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh validates a refresh token and issues a new access token for the
// same subject. The refresh token is not rotated: the caller gets the same
// refresh token back alongside the new access token.
func (s *Auther) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Validate(refreshToken)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, ErrRefreshExpired
		}
		s.logger.Warn("refresh token rejected: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	user, err := s.repo.Users().FindByEmail(ctx, claims.Subject())
	if err != nil {
		s.logger.Warn("refresh identity lookup error: %v", err)
		return nil, fmt.Errorf("%w: unknown subject", ErrRefreshFailed)
	}

	if !s.tokens.ValidateFor(refreshToken, user) {
		return nil, ErrRefreshInvalid
	}

	access, err := s.tokens.Issue(user.Email, user.Roles(), s.accessTTL)
	if err != nil {
		s.logger.Error("refresh access token error: %v", err)
		return nil, fmt.Errorf("%w: token issuance failed", ErrRefreshFailed)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refreshToken}, nil
}

var _ Authenticator = (*Auther)(nil)

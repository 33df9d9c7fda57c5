package identity

import (
	"errors"
	"strings"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found")

// ErrAlreadyExists signals a registration against an email that is taken
var ErrAlreadyExists = errors.New("identity already registered")

// ErrBadCredentials covers both unknown identities and wrong passwords so the
// caller cannot probe which emails are registered
var ErrBadCredentials = errors.New("bad credentials")

// ErrUserDisabled rejects logins for disabled accounts
var ErrUserDisabled = errors.New("user is disabled")

// ErrTokenExpired means the signature checked out but exp is in the past
var ErrTokenExpired = errors.New("token is expired")

// ErrTokenMalformed means the token is structurally invalid
var ErrTokenMalformed = errors.New("token is malformed")

// ErrTokenSignatureInvalid means the signature does not match the recomputed value
var ErrTokenSignatureInvalid = errors.New("token signature is invalid")

// ErrRefreshExpired rejects refresh calls with an expired refresh token
var ErrRefreshExpired = errors.New("refresh token is expired")

// ErrRefreshInvalid rejects refresh tokens that no longer match their identity
var ErrRefreshInvalid = errors.New("refresh token is invalid")

// ErrRefreshFailed is the catch-all for refresh calls we could not serve
var ErrRefreshFailed = errors.New("unable to refresh token")

// ErrInternal hides implementation detail from callers
var ErrInternal = errors.New("internal error")

// ErrNoEmptyString rejects empty required values
var ErrNoEmptyString = errors.New("value should not be an empty string")

// ErrMismatchedHashAndPassword is returned when a password comparison fails
var ErrMismatchedHashAndPassword = errors.New("hash does not match password")

// IsTokenExpiredError will check for expired tokens, ours or the jwt library's
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenExpired) ||
		strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for structurally invalid tokens
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenMalformed) ||
		strings.Contains(err.Error(), "token is malformed")
}

// IsSignatureError will check for signature mismatches
func IsSignatureError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenSignatureInvalid) ||
		strings.Contains(err.Error(), "signature is invalid")
}

// IsNotFoundError will check for missing identities
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrIdentityNotFound) ||
		strings.Contains(err.Error(), "identity not found")
}

// Package identity provides stateless JWT authentication primitives: token
// issuance and validation, credential verification, account registration, and
// HTTP helpers for a bearer-token identity service.
//
// Tokens:
//   - TokenService signs HS256 tokens carrying the identity email as subject
//     and its roles as an authorities claim. Validation re-verifies the
//     signature on every call and classifies failures as expired, malformed,
//     or signature mismatch so callers can react to each distinctly.
//
// Authentication:
//   - Auther orchestrates login (credential check plus access and refresh
//     token issuance) and refresh (a new access token for a still-valid
//     refresh token, which is never rotated).
//   - The jwtware middleware authenticates inbound requests from the
//     Authorization header and threads an AuthContext through the request
//     context. Requests without a header proceed anonymously; enforcement is
//     left to the authorization layer.
//
// Storage:
//   - Users is a Bun-backed repository keyed by unique email. The unique
//     constraint is the authoritative registration conflict arbiter, so
//     concurrent registrations of the same email cannot both succeed.
package identity

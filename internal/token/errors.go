package token

import "errors"

// Validation failure kinds. Callers branch with errors.Is to pick the right
// client remediation (renew vs re-login); the HTTP layer maps every kind to
// the same unauthorized status so the wire exposes no verification oracle.
var (
	// ErrInvalidSignature covers malformed, mis-signed and wrong-algorithm
	// tokens alike, indistinguishably.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrExpired marks a well-signed token past its expiry.
	ErrExpired = errors.New("token expired")
	// ErrWrongTokenKind marks a refresh token presented where an access
	// token is required, or vice versa.
	ErrWrongTokenKind = errors.New("wrong token kind")
	// ErrRevoked marks a refresh token whose version snapshot is stale;
	// the caller must re-authenticate, not merely renew.
	ErrRevoked = errors.New("token revoked")
	// ErrMissingCredential marks a request with no bearer token at all.
	ErrMissingCredential = errors.New("missing bearer credential")
)

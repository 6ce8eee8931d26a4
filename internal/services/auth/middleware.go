package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/classtab/classtab/internal/token"
)

type ctxKey int

const claimsKey ctxKey = 1

// errWrongSubject marks a caller identity the endpoint does not admit,
// e.g. the bot identity on a human-only route.
var errWrongSubject = errors.New("subject not permitted")

// ClaimsFromCtx returns the validated claims stashed by Authenticator.
func ClaimsFromCtx(ctx context.Context) (*token.Claims, bool) {
	cl, ok := ctx.Value(claimsKey).(*token.Claims)
	return cl, ok
}

// SubjectPolicy states which caller identities an endpoint admits.
type SubjectPolicy int

const (
	// HumanOnly rejects the reserved bot identity.
	HumanOnly SubjectPolicy = iota
	// ServiceOnly admits only the reserved bot identity.
	ServiceOnly
	// AnySubject admits both.
	AnySubject
)

// Authenticator requires a valid, unexpired access token whose subject
// matches the policy, and stashes the claims in the request context.
// Refresh tokens are rejected here: they renew sessions, nothing else.
func Authenticator(v *token.Validator, policy SubjectPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearer(r)
			if err != nil {
				WriteAuthError(w, err)
				return
			}
			cl, err := v.Validate(raw)
			if err != nil {
				WriteAuthError(w, err)
				return
			}
			if cl.Refresh {
				WriteAuthError(w, token.ErrWrongTokenKind)
				return
			}
			if (policy == HumanOnly && cl.IsService()) ||
				(policy == ServiceOnly && !cl.IsService()) {
				WriteAuthError(w, errWrongSubject)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, cl)))
		})
	}
}

func bearer(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", token.ErrMissingCredential
	}
	raw, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || raw == "" {
		return "", token.ErrMissingCredential
	}
	return raw, nil
}

// reason maps an internal failure kind to the machine-readable reason the
// client uses to pick its recovery path. The HTTP status stays uniform so
// the wire never distinguishes a forged token from an expired one.
func reason(err error) string {
	switch {
	case errors.Is(err, token.ErrMissingCredential):
		return "no-token"
	case errors.Is(err, token.ErrExpired):
		return "expired-token"
	case errors.Is(err, token.ErrWrongTokenKind):
		return "wrong-token-kind"
	case errors.Is(err, token.ErrRevoked):
		return "stale-token"
	case errors.Is(err, errWrongSubject):
		return "wrong-subject"
	default:
		return "invalid-token"
	}
}

// IsAuthKind reports whether err is one of the validation failure kinds,
// as opposed to an internal fault that must surface as a server error.
func IsAuthKind(err error) bool {
	for _, kind := range []error{
		token.ErrInvalidSignature, token.ErrExpired, token.ErrWrongTokenKind,
		token.ErrRevoked, token.ErrMissingCredential, errWrongSubject,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// WriteAuthError renders every validation failure as 401 with a reason.
func WriteAuthError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":  "unauthorized",
		"reason": reason(err),
	})
}

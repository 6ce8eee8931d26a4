package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Codec signs and verifies claims as compact JWT strings. The algorithm is
// pinned to HS512; tokens signed any other way fail verification.
type Codec struct {
	key []byte
}

func NewCodec(secret []byte) Codec { return Codec{key: secret} }

// Encode serializes and signs the claims. Failures here are internal,
// never caller-induced.
func (c Codec) Encode(cl *Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, cl).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and returns the embedded claims. Every
// failure collapses into ErrInvalidSignature: a forged token and a
// structurally broken one must be indistinguishable to the caller.
func (c Codec) Decode(raw string) (*Claims, error) {
	var cl Claims
	parsed, err := jwt.ParseWithClaims(raw, &cl,
		func(*jwt.Token) (any, error) { return c.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSignature
	}
	return &cl, nil
}

// Package token implements the signed bearer tokens used to authenticate
// API callers: a claims model, an HS512 codec, an issuer and a validator.
//
// Two token kinds exist. Access tokens are short-lived and validated by
// signature alone. Refresh tokens are long-lived and additionally carry a
// snapshot of the owner's revocation version; they stay valid only while
// that snapshot matches the version stored with the user record.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ServiceUID is the reserved subject for the non-human bot identity.
// Endpoints restricted to human users must reject it.
var ServiceUID = uuid.Nil

// Claims is the signed token payload. Field names and units are part of the
// wire contract shared with the frontend and the bot: exp is milliseconds
// since epoch, uid is the canonical UUID text form.
type Claims struct {
	Exp     int64     `json:"exp"`
	UID     uuid.UUID `json:"uid"`
	Refresh bool      `json:"refresh"`
	Ver     int64     `json:"ver,omitempty"`
}

// IsService reports whether the token belongs to the reserved bot identity.
func (c *Claims) IsService() bool { return c.UID == ServiceUID }

// ExpiresAt converts the millisecond expiry into a time.Time.
func (c *Claims) ExpiresAt() time.Time { return time.UnixMilli(c.Exp) }

// jwt.Claims implementation. Expiry is tracked in milliseconds, which the
// library would misread as seconds, so all library-level time checks are
// disabled here; the Validator enforces exp itself.

func (c *Claims) GetExpirationTime() (*jwt.NumericDate, error) { return nil, nil }
func (c *Claims) GetIssuedAt() (*jwt.NumericDate, error)       { return nil, nil }
func (c *Claims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c *Claims) GetIssuer() (string, error)                   { return "", nil }
func (c *Claims) GetSubject() (string, error)                  { return c.UID.String(), nil }
func (c *Claims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

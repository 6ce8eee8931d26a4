package token

import (
	"time"

	"github.com/google/uuid"
)

// IssuerConfig carries the lifetime policy. Durations are explicit
// configuration, never derived from build flags, so issuance stays
// deterministic and testable.
type IssuerConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time
}

// Issuer mints signed tokens for a user identity.
type Issuer struct {
	codec Codec
	cfg   IssuerConfig
}

func NewIssuer(secret []byte, cfg IssuerConfig) *Issuer {
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Issuer{codec: NewCodec(secret), cfg: cfg}
}

// IssueAccess mints a short-lived access token and returns it with its
// absolute expiry in milliseconds, for client-side display.
func (i *Issuer) IssueAccess(uid uuid.UUID) (string, int64, error) {
	return i.issue(uid, false, 0, i.cfg.AccessTTL)
}

// IssueRefresh mints a long-lived refresh token embedding the user's
// current revocation version. The expiry is not surfaced; refresh tokens
// live until explicitly revoked.
func (i *Issuer) IssueRefresh(uid uuid.UUID, ver int64) (string, error) {
	tok, _, err := i.issue(uid, true, ver, i.cfg.RefreshTTL)
	return tok, err
}

// IssueCustom mints a token with an explicit lifetime, used for the bot
// identity. The result is never a refresh token.
func (i *Issuer) IssueCustom(uid uuid.UUID, lifetime time.Duration) (string, error) {
	tok, _, err := i.issue(uid, false, 0, lifetime)
	return tok, err
}

func (i *Issuer) issue(uid uuid.UUID, refresh bool, ver int64, lifetime time.Duration) (string, int64, error) {
	exp := i.cfg.Now().Add(lifetime).UnixMilli()
	tok, err := i.codec.Encode(&Claims{Exp: exp, UID: uid, Refresh: refresh, Ver: ver})
	if err != nil {
		return "", 0, err
	}
	return tok, exp, nil
}

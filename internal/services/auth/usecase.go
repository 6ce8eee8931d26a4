// Package auth implements the authentication endpoints: login, access-token
// renewal and bot-token issuance, plus the bearer middleware protecting the
// rest of the API.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/classtab/classtab/internal/domain/user"
	"github.com/classtab/classtab/internal/repository/postgres"
	"github.com/classtab/classtab/internal/token"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrBotSecretMismatch  = errors.New("bot token secret mismatch")
)

type Config struct {
	// BotTokenSecret gates the bot-token endpoint; empty disables it.
	BotTokenSecret  string
	ServiceTokenTTL time.Duration
}

// Tokens is a freshly minted credential pair. AccessExpires is absolute,
// in milliseconds, for client-side display.
type Tokens struct {
	Access        string
	AccessExpires int64
	Refresh       string
}

type Usecase struct {
	users  user.Repo
	issuer *token.Issuer
	valid  *token.Validator
	cfg    Config
}

func NewUsecase(users user.Repo, issuer *token.Issuer, valid *token.Validator, cfg Config) *Usecase {
	return &Usecase{users: users, issuer: issuer, valid: valid, cfg: cfg}
}

// Login verifies the credentials and mints an access/refresh pair. The
// refresh token snapshots the user's current revocation version.
func (u *Usecase) Login(ctx context.Context, email, password string) (*user.User, Tokens, error) {
	rec, err := u.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, Tokens{}, ErrInvalidCredentials
		}
		return nil, Tokens{}, fmt.Errorf("lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword(rec.PasswordHash, []byte(password)) != nil {
		return nil, Tokens{}, ErrInvalidCredentials
	}

	pair, err := u.IssuePair(rec.ID, rec.TokenVersion)
	if err != nil {
		return nil, Tokens{}, err
	}
	return rec, pair, nil
}

// IssuePair mints both token kinds for an already-authenticated user.
func (u *Usecase) IssuePair(id uuid.UUID, ver int64) (Tokens, error) {
	access, exp, err := u.issuer.IssueAccess(id)
	if err != nil {
		return Tokens{}, fmt.Errorf("issue access: %w", err)
	}
	refresh, err := u.issuer.IssueRefresh(id, ver)
	if err != nil {
		return Tokens{}, fmt.Errorf("issue refresh: %w", err)
	}
	return Tokens{Access: access, AccessExpires: exp, Refresh: refresh}, nil
}

// Renew exchanges a refresh token for a new access token. This is the one
// validation path that touches storage: the token's version snapshot must
// still equal the user's current counter, otherwise the token was revoked
// by a later password change and the caller must log in again.
func (u *Usecase) Renew(ctx context.Context, raw string) (string, int64, error) {
	cl, err := u.valid.Validate(raw)
	if err != nil {
		return "", 0, err
	}
	if !cl.Refresh {
		return "", 0, token.ErrWrongTokenKind
	}
	if cl.IsService() {
		// Refresh tokens are never issued for the bot identity.
		return "", 0, token.ErrRevoked
	}

	ver, err := u.users.TokenVersion(ctx, cl.UID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return "", 0, token.ErrRevoked
		}
		return "", 0, fmt.Errorf("read token version: %w", err)
	}
	if ver != cl.Ver {
		return "", 0, token.ErrRevoked
	}

	access, exp, err := u.issuer.IssueAccess(cl.UID)
	if err != nil {
		return "", 0, fmt.Errorf("issue access: %w", err)
	}
	return access, exp, nil
}

// BotToken issues a long-lived non-refresh token for the reserved service
// identity when the presented secret matches the configured one.
func (u *Usecase) BotToken(secret string) (string, error) {
	if u.cfg.BotTokenSecret == "" ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(u.cfg.BotTokenSecret)) != 1 {
		return "", ErrBotSecretMismatch
	}
	tok, err := u.issuer.IssueCustom(token.ServiceUID, u.cfg.ServiceTokenTTL)
	if err != nil {
		return "", fmt.Errorf("issue bot token: %w", err)
	}
	return tok, nil
}

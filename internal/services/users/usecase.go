// Package users implements account management: signup, own-profile CRUD and
// the password change that drives refresh-token revocation.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/classtab/classtab/internal/domain/user"
	"github.com/classtab/classtab/internal/repository/postgres"
	"github.com/classtab/classtab/internal/services/auth"
	"github.com/classtab/classtab/internal/token"
)

var (
	ErrEmailExists   = errors.New("email already registered")
	ErrWeakPassword  = errors.New("password is too weak")
	ErrWrongPassword = errors.New("wrong password")
	ErrNotFound      = errors.New("user not found")
)

const minPasswordLen = 8

type Usecase struct {
	users  user.Repo
	issuer *token.Issuer
	authUC *auth.Usecase
}

func NewUsecase(users user.Repo, issuer *token.Issuer, authUC *auth.Usecase) *Usecase {
	return &Usecase{users: users, issuer: issuer, authUC: authUC}
}

// SignUp registers an account and, like login, hands back a full token pair
// so the fresh user is immediately authenticated.
func (u *Usecase) SignUp(ctx context.Context, email, password, description string) (*user.User, auth.Tokens, error) {
	if len(password) < minPasswordLen {
		return nil, auth.Tokens{}, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, auth.Tokens{}, fmt.Errorf("hash password: %w", err)
	}

	rec := &user.User{Email: email, Description: description, PasswordHash: hash}
	if err := u.users.Create(ctx, rec); err != nil {
		if errors.Is(err, postgres.ErrConflict) {
			return nil, auth.Tokens{}, ErrEmailExists
		}
		return nil, auth.Tokens{}, fmt.Errorf("create user: %w", err)
	}

	pair, err := u.authUC.IssuePair(rec.ID, rec.TokenVersion)
	if err != nil {
		return nil, auth.Tokens{}, err
	}
	return rec, pair, nil
}

func (u *Usecase) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	rec, err := u.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return rec, nil
}

func (u *Usecase) Update(ctx context.Context, id uuid.UUID, email, description string) (*user.User, error) {
	rec := &user.User{ID: id, Email: email, Description: description}
	if err := u.users.Update(ctx, rec); err != nil {
		switch {
		case errors.Is(err, postgres.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, postgres.ErrConflict):
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return rec, nil
}

func (u *Usecase) Delete(ctx context.Context, id uuid.UUID) error {
	if err := u.users.Delete(ctx, id); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// ChangePassword verifies the old password, then swaps the hash and bumps
// the revocation version in one atomic write. Every refresh token minted
// before this moment dies on its next renewal; the returned replacement,
// minted at the new version, keeps the acting session alive.
func (u *Usecase) ChangePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) (string, error) {
	if len(newPassword) < minPasswordLen {
		return "", ErrWeakPassword
	}

	rec, err := u.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword(rec.PasswordHash, []byte(oldPassword)) != nil {
		return "", ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	ver, err := u.users.UpdatePassword(ctx, id, hash)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("update password: %w", err)
	}

	refresh, err := u.issuer.IssueRefresh(id, ver)
	if err != nil {
		return "", fmt.Errorf("issue refresh: %w", err)
	}
	return refresh, nil
}

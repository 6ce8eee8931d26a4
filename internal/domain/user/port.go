package user

import (
	"context"

	"github.com/google/uuid"
)

// Repo is the persistence port for user accounts.
//
// TokenVersion is the single storage read the refresh flow performs.
// UpdatePassword must apply the new hash and bump the revocation counter in
// one atomic write and report the counter's new value; it is not required to
// serialize against concurrent TokenVersion readers.
type Repo interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	TokenVersion(ctx context.Context, id uuid.UUID) (int64, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash []byte) (int64, error)
}

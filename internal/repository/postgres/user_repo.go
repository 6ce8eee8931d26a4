package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/classtab/classtab/internal/domain/user"
)

var _ user.Repo = (*UserRepo)(nil)

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const (
	qUserInsert = `
INSERT INTO users (email, password_hash, description)
VALUES ($1, $2, $3)
RETURNING id, token_version, created_at, updated_at;`

	qUserByID = `
SELECT id, email, password_hash, description, token_version, created_at, updated_at
FROM users
WHERE id = $1;`

	qUserByEmail = `
SELECT id, email, password_hash, description, token_version, created_at, updated_at
FROM users
WHERE email = $1;`

	qUserUpdate = `
UPDATE users
SET email       = $2,
    description = $3,
    updated_at  = NOW()
WHERE id = $1
RETURNING id, email, password_hash, description, token_version, created_at, updated_at;`

	qUserDelete = `
DELETE FROM users WHERE id = $1;`

	qUserTokenVersion = `
SELECT token_version FROM users WHERE id = $1;`

	// The hash swap and the version bump ride one statement: everything
	// signed against the old version goes stale atomically.
	qUserSetPassword = `
UPDATE users
SET password_hash = $2,
    token_version = token_version + 1,
    updated_at    = NOW()
WHERE id = $1
RETURNING token_version;`
)

func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qUserInsert, u.Email, u.PasswordHash, u.Description).
		Scan(&u.ID, &u.TokenVersion, &u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("user insert: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var u user.User
	if err := scanUser(r.db.Pool.QueryRow(ctx, qUserByID, id), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var u user.User
	if err := scanUser(r.db.Pool.QueryRow(ctx, qUserByEmail, email), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Update(ctx context.Context, u *user.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := scanUser(r.db.Pool.QueryRow(ctx, qUserUpdate, u.ID, u.Email, u.Description), u); err != nil {
		return err
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Pool.Exec(ctx, qUserDelete, id)
	if err != nil {
		return fmt.Errorf("user delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) TokenVersion(ctx context.Context, id uuid.UUID) (int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var ver int64
	if err := r.db.Pool.QueryRow(ctx, qUserTokenVersion, id).Scan(&ver); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("token version: %w", err)
	}
	return ver, nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash []byte) (int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var ver int64
	if err := r.db.Pool.QueryRow(ctx, qUserSetPassword, id, hash).Scan(&ver); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("update password: %w", err)
	}
	return ver, nil
}

func scanUser(row pgx.Row, out *user.User) error {
	if err := row.Scan(&out.ID, &out.Email, &out.PasswordHash, &out.Description,
		&out.TokenVersion, &out.CreatedAt, &out.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan user: %w", err)
	}
	return nil
}

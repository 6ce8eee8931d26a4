package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the account record owned by this service. TokenVersion is the
// per-user revocation counter: it starts at 1 and only ever increments, and
// a refresh token is honored only while its embedded snapshot equals the
// current value.
type User struct {
	ID           uuid.UUID
	Email        string
	Description  string
	PasswordHash []byte
	TokenVersion int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/classtab/classtab/internal/domain/user"
	"github.com/classtab/classtab/internal/repository/postgres"
	"github.com/classtab/classtab/internal/token"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// memRepo is an in-memory user.Repo for tests.
type memRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
}

func newMemRepo() *memRepo { return &memRepo{users: map[uuid.UUID]*user.User{}} }

func (m *memRepo) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.users {
		if rec.Email == u.Email {
			return postgres.ErrConflict
		}
	}
	u.ID = uuid.New()
	u.TokenVersion = 1
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.users[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.users {
		if rec.Email == email {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, postgres.ErrNotFound
}

func (m *memRepo) Update(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.users[u.ID]
	if !ok {
		return postgres.ErrNotFound
	}
	rec.Email = u.Email
	rec.Description = u.Description
	rec.UpdatedAt = time.Now()
	*u = *rec
	return nil
}

func (m *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return postgres.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memRepo) TokenVersion(_ context.Context, id uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.users[id]
	if !ok {
		return 0, postgres.ErrNotFound
	}
	return rec.TokenVersion, nil
}

func (m *memRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash []byte) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.users[id]
	if !ok {
		return 0, postgres.ErrNotFound
	}
	rec.PasswordHash = hash
	rec.TokenVersion++
	rec.UpdatedAt = time.Now()
	return rec.TokenVersion, nil
}

var _ user.Repo = (*memRepo)(nil)

func seedUser(t *testing.T, repo *memRepo, email, password string) *user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &user.User{Email: email, PasswordHash: hash}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func newTestUsecase(t *testing.T, repo *memRepo) (*Usecase, *token.Validator) {
	t.Helper()
	issuer := token.NewIssuer(testSecret, token.IssuerConfig{
		AccessTTL:  time.Hour,
		RefreshTTL: 1000 * time.Hour,
	})
	valid := token.NewValidator(testSecret, nil)
	uc := NewUsecase(repo, issuer, valid, Config{
		BotTokenSecret:  "bot-secret",
		ServiceTokenTTL: 1000 * time.Hour,
	})
	return uc, valid
}

func TestLogin(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	seeded := seedUser(t, repo, "alice@example.com", "password123")
	uc, valid := newTestUsecase(t, repo)

	rec, pair, err := uc.Login(context.Background(), "alice@example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, seeded.ID, rec.ID)

	access, err := valid.Validate(pair.Access)
	require.NoError(t, err)
	require.Equal(t, seeded.ID, access.UID)
	require.False(t, access.Refresh)
	require.Equal(t, pair.AccessExpires, access.Exp)

	refresh, err := valid.Validate(pair.Refresh)
	require.NoError(t, err)
	require.True(t, refresh.Refresh)
	require.EqualValues(t, 1, refresh.Ver)
}

func TestLogin_BadCredentials(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	seedUser(t, repo, "alice@example.com", "password123")
	uc, _ := newTestUsecase(t, repo)

	_, _, err := uc.Login(context.Background(), "alice@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = uc.Login(context.Background(), "nobody@example.com", "password123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRenew(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	seeded := seedUser(t, repo, "alice@example.com", "password123")
	uc, valid := newTestUsecase(t, repo)

	_, pair, err := uc.Login(context.Background(), "alice@example.com", "password123")
	require.NoError(t, err)

	access, exp, err := uc.Renew(context.Background(), pair.Refresh)
	require.NoError(t, err)
	require.Greater(t, exp, time.Now().UnixMilli())

	cl, err := valid.Validate(access)
	require.NoError(t, err)
	require.Equal(t, seeded.ID, cl.UID)
	require.False(t, cl.Refresh)
}

func TestRenew_AccessTokenRejected(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	seedUser(t, repo, "alice@example.com", "password123")
	uc, _ := newTestUsecase(t, repo)

	_, pair, err := uc.Login(context.Background(), "alice@example.com", "password123")
	require.NoError(t, err)

	_, _, err = uc.Renew(context.Background(), pair.Access)
	require.ErrorIs(t, err, token.ErrWrongTokenKind)
}

func TestRenew_StaleVersionRevoked(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	seeded := seedUser(t, repo, "alice@example.com", "password123")
	uc, _ := newTestUsecase(t, repo)

	_, pair, err := uc.Login(context.Background(), "alice@example.com", "password123")
	require.NoError(t, err)

	// A password change elsewhere bumps the counter; the old refresh token
	// is now permanently dead while a fresh one at the new version works.
	newVer, err := repo.UpdatePassword(context.Background(), seeded.ID, []byte("new-hash"))
	require.NoError(t, err)
	require.EqualValues(t, 2, newVer)

	_, _, err = uc.Renew(context.Background(), pair.Refresh)
	require.ErrorIs(t, err, token.ErrRevoked)

	fresh, err := token.NewIssuer(testSecret, token.IssuerConfig{RefreshTTL: time.Hour}).
		IssueRefresh(seeded.ID, newVer)
	require.NoError(t, err)
	_, _, err = uc.Renew(context.Background(), fresh)
	require.NoError(t, err)
}

func TestRenew_UnknownUserRevoked(t *testing.T) {
	t.Parallel()

	uc, _ := newTestUsecase(t, newMemRepo())

	raw, err := token.NewIssuer(testSecret, token.IssuerConfig{RefreshTTL: time.Hour}).
		IssueRefresh(uuid.New(), 1)
	require.NoError(t, err)

	_, _, err = uc.Renew(context.Background(), raw)
	require.ErrorIs(t, err, token.ErrRevoked)
}

func TestRenew_ExpiredRefresh(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	seeded := seedUser(t, repo, "alice@example.com", "password123")
	uc, _ := newTestUsecase(t, repo)

	raw, err := token.NewCodec(testSecret).Encode(&token.Claims{
		Exp:     time.Now().Add(-time.Minute).UnixMilli(),
		UID:     seeded.ID,
		Refresh: true,
		Ver:     1,
	})
	require.NoError(t, err)

	_, _, err = uc.Renew(context.Background(), raw)
	require.ErrorIs(t, err, token.ErrExpired)
}

func TestRenew_ServiceIdentityRejected(t *testing.T) {
	t.Parallel()

	uc, _ := newTestUsecase(t, newMemRepo())

	raw, err := token.NewCodec(testSecret).Encode(&token.Claims{
		Exp:     time.Now().Add(time.Hour).UnixMilli(),
		UID:     token.ServiceUID,
		Refresh: true,
		Ver:     1,
	})
	require.NoError(t, err)

	_, _, err = uc.Renew(context.Background(), raw)
	require.ErrorIs(t, err, token.ErrRevoked)
}

func TestBotToken(t *testing.T) {
	t.Parallel()

	uc, valid := newTestUsecase(t, newMemRepo())

	raw, err := uc.BotToken("bot-secret")
	require.NoError(t, err)

	cl, err := valid.Validate(raw)
	require.NoError(t, err)
	require.True(t, cl.IsService())
	require.False(t, cl.Refresh)

	_, err = uc.BotToken("wrong")
	require.ErrorIs(t, err, ErrBotSecretMismatch)
}

func TestBotToken_DisabledWhenUnconfigured(t *testing.T) {
	t.Parallel()

	issuer := token.NewIssuer(testSecret, token.IssuerConfig{AccessTTL: time.Hour})
	valid := token.NewValidator(testSecret, nil)
	uc := NewUsecase(newMemRepo(), issuer, valid, Config{})

	_, err := uc.BotToken("")
	require.ErrorIs(t, err, ErrBotSecretMismatch)
}

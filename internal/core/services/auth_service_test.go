package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"bioponto/internal/adapters/persistence/models"
	"bioponto/internal/adapters/persistence/repositories"
	"bioponto/internal/config"
	"bioponto/internal/core/domain"
	"bioponto/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memUsers struct {
	mu     sync.Mutex
	rows   map[uint]*models.User
	nextID uint
}

func newMemUsers(t *testing.T, users ...models.User) *memUsers {
	t.Helper()
	m := &memUsers{rows: map[uint]*models.User{}, nextID: 100}
	for i := range users {
		u := users[i]
		hash, err := password.Hash(u.Password)
		require.NoError(t, err)
		u.Password = hash
		m.rows[u.ID] = &u
	}
	return m
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u.ID = m.nextID
	cp := *u
	m.rows[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUsers) Update(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.rows[u.ID] = &cp
	return nil
}

func (m *memUsers) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memUsers) List(_ context.Context, offset, limit int, _ string) ([]*models.User, int64, error) {
	return nil, int64(len(m.rows)), nil
}

func (m *memUsers) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := m.GetByUsername(ctx, username)
	return err == nil, nil
}

func (m *memUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) CountActiveAdmins(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.rows {
		if u.IsActive && u.Role == string(domain.RoleAdmin) {
			n++
		}
	}
	return n, nil
}

type memTokens struct {
	mu     sync.Mutex
	rows   []*models.RefreshToken
	nextID uint
}

func (m *memTokens) Create(_ context.Context, tok *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	tok.ID = m.nextID
	m.rows = append(m.rows, tok)
	return nil
}

func (m *memTokens) FindActive(_ context.Context, hash string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tok := range m.rows {
		if tok.TokenHash == hash && tok.RevokedAt == nil {
			cp := *tok
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memTokens) Rotate(ctx context.Context, oldID uint, next *models.RefreshToken) error {
	m.mu.Lock()
	var found bool
	for _, tok := range m.rows {
		if tok.ID == oldID && tok.RevokedAt == nil {
			tok.RevokedAt = &tok.ExpiresAt
			found = true
		}
	}
	m.mu.Unlock()
	if !found {
		return gorm.ErrRecordNotFound
	}
	return m.Create(ctx, next)
}

func (m *memTokens) revoke(match func(*models.RefreshToken) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tok := range m.rows {
		if tok.RevokedAt == nil && match(tok) {
			tok.RevokedAt = &tok.ExpiresAt
		}
	}
}

func (m *memTokens) RevokeByTokenHash(_ context.Context, hash string) error {
	m.revoke(func(tok *models.RefreshToken) bool { return tok.TokenHash == hash })
	return nil
}

func (m *memTokens) RevokeAllByUserID(_ context.Context, userID uint) error {
	m.revoke(func(tok *models.RefreshToken) bool { return tok.UserID == userID })
	return nil
}

func (m *memTokens) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (m *memTokens) active(userID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, tok := range m.rows {
		if tok.UserID == userID && tok.RevokedAt == nil {
			n++
		}
	}
	return n
}

var (
	_ repositories.UserRepository         = (*memUsers)(nil)
	_ repositories.RefreshTokenRepository = (*memTokens)(nil)
)

func testAuthConfig() *config.Config {
	return &config.Config{JWT: config.JWTConfig{
		Secret:           "access-secret",
		RefreshSecret:    "refresh-secret",
		AccessTokenMins:  15,
		RefreshTokenDays: 7,
	}}
}

func newAuthFixture(t *testing.T) (*AuthService, *memUsers, *memTokens, *fakeClock) {
	users := newMemUsers(t,
		models.User{ID: 1, Username: "rh.maria", Email: "maria@example.org", Password: "segredo123", Role: string(domain.RoleAdmin), IsActive: true},
		models.User{ID: 2, Username: "old.joao", Email: "joao@example.org", Password: "segredo123", Role: string(domain.RoleOperator), IsActive: false},
	)
	tokens := &memTokens{}
	clock := &fakeClock{now: at("2025-03-10", "09:00:00")}
	return NewAuthService(users, tokens, testAuthConfig(), clock.Now), users, tokens, clock
}

func TestAuthService_Login(t *testing.T) {
	svc, _, tokens, _ := newAuthFixture(t)
	ctx := context.Background()

	sess, err := svc.Login(ctx, &LoginInput{Username: "rh.maria", Password: "segredo123"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.AccessToken)
	assert.NotEmpty(t, sess.RefreshToken)
	assert.Equal(t, "rh.maria", sess.User.Username)
	assert.Equal(t, 1, tokens.active(1))

	tests := []struct {
		name  string
		input LoginInput
		want  error
	}{
		{"wrong password", LoginInput{Username: "rh.maria", Password: "errada123"}, ErrInvalidCredentials},
		{"unknown operator", LoginInput{Username: "ninguem", Password: "segredo123"}, ErrInvalidCredentials},
		{"inactive operator", LoginInput{Username: "old.joao", Password: "segredo123"}, ErrUserInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, &tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthService_RefreshRotates(t *testing.T) {
	svc, _, tokens, _ := newAuthFixture(t)
	ctx := context.Background()

	first, err := svc.Login(ctx, &LoginInput{Username: "rh.maria", Password: "segredo123"})
	require.NoError(t, err)

	second, err := svc.RefreshToken(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Equal(t, 1, tokens.active(1))

	// the rotated token cannot be replayed
	_, err = svc.RefreshToken(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = svc.RefreshToken(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

func TestAuthService_RefreshRejections(t *testing.T) {
	svc, users, _, clock := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.RefreshToken(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	sess, err := svc.Login(ctx, &LoginInput{Username: "rh.maria", Password: "segredo123"})
	require.NoError(t, err)

	clock.Set(at("2025-03-18", "09:00:00"))
	_, err = svc.RefreshToken(ctx, sess.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenExpired)

	clock.Set(at("2025-03-10", "10:00:00"))
	admin, err := users.GetByID(ctx, 1)
	require.NoError(t, err)
	admin.IsActive = false
	require.NoError(t, users.Update(ctx, admin))
	_, err = svc.RefreshToken(ctx, sess.RefreshToken)
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, tokens, _ := newAuthFixture(t)
	ctx := context.Background()

	a, err := svc.Login(ctx, &LoginInput{Username: "rh.maria", Password: "segredo123"})
	require.NoError(t, err)
	b, err := svc.Login(ctx, &LoginInput{Username: "rh.maria", Password: "segredo123"})
	require.NoError(t, err)
	require.Equal(t, 2, tokens.active(1))

	require.NoError(t, svc.Logout(ctx, a.RefreshToken))
	_, err = svc.RefreshToken(ctx, a.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	assert.Equal(t, 1, tokens.active(1))

	require.NoError(t, svc.LogoutAll(ctx, 1))
	_, err = svc.RefreshToken(ctx, b.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

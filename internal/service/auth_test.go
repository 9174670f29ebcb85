package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/vionex/auth-service/internal/models"
	"github.com/vionex/auth-service/internal/storage"
	redisstorage "github.com/vionex/auth-service/internal/storage/redis"
	"github.com/vionex/auth-service/internal/util"
)

// fakeAccounts satisfies storage.AccountRepository for tests; the account
// lookup contract is owned by the user subsystem and mocked here.
type fakeAccounts struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeAccounts) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == identifier || u.Email == identifier {
			copied := *u
			return &copied, nil
		}
	}
	return nil, storage.ErrAccountNotFound
}

func (f *fakeAccounts) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, storage.ErrAccountNotFound
}

func (f *fakeAccounts) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return storage.ErrAccountExists
		}
	}
	copied := *user
	copied.CreatedAt = time.Now().UTC()
	user.CreatedAt = copied.CreatedAt
	f.users[user.ID] = &copied
	return nil
}

type authHarness struct {
	svc      *AuthService
	accounts *fakeAccounts
	mr       *miniredis.Miniredis
	user     *models.User
	now      *time.Time
}

const testPassword = "correct-horse-battery"

func newAuthHarness(t *testing.T, maxAttempts int) (*authHarness, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	window := redisstorage.NewWindowCounter(client)
	sessions := redisstorage.NewSessionStore(client)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }

	tokens := newTestTokenService("test-secret", time.Hour, 24*time.Hour)
	tokens.now = clock
	hasher := NewPasswordHasher(&util.HasherConfig{Cost: bcrypt.MinCost})
	attempts := NewLoginAttemptTracker(window, &util.LoginAttemptConfig{
		MaxAttempts: maxAttempts,
		Window:      15 * time.Minute,
	})
	attempts.now = clock

	accounts := newFakeAccounts()
	hash, err := hasher.Hash(testPassword)
	require.NoError(t, err)

	user := &models.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsActive:     true,
	}
	accounts.users[user.ID] = user

	svc := NewAuthService(accounts, sessions, tokens, hasher, attempts, zap.NewNop().Sugar())

	h := &authHarness{svc: svc, accounts: accounts, mr: mr, user: user, now: &current}
	return h, func() {
		_ = client.Close()
		mr.Close()
	}
}

func TestLoginSuccess(t *testing.T) {
	h, cleanup := newAuthHarness(t, 5)
	defer cleanup()

	result, err := h.svc.Login(context.Background(), "alice", testPassword)
	require.NoError(t, err)

	assert.Equal(t, h.user.ID, result.User.ID)
	assert.Equal(t, h.user.ID.String(), result.Claims.Subject)
	assert.Equal(t, "alice", result.Claims.Username)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.NotEqual(t, result.AccessToken, result.RefreshToken)
}

func TestLoginByEmail(t *testing.T) {
	h, cleanup := newAuthHarness(t, 5)
	defer cleanup()

	_, err := h.svc.Login(context.Background(), "alice@example.com", testPassword)
	require.NoError(t, err)
}

func TestLoginUnknownAccount(t *testing.T) {
	h, cleanup := newAuthHarness(t, 5)
	defer cleanup()

	_, err := h.svc.Login(context.Background(), "nobody", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWrongPassword(t *testing.T) {
	h, cleanup := newAuthHarness(t, 5)
	defer cleanup()

	_, err := h.svc.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRepeatedCorrectLoginsNeverBlock(t *testing.T) {
	h, cleanup := newAuthHarness(t, 5)
	defer cleanup()

	for i := 0; i < 4; i++ {
		_, err := h.svc.Login(context.Background(), "alice", testPassword)
		require.NoError(t, err, "login %d", i+1)
	}
}

func TestLockoutAfterMaxFailures(t *testing.T) {
	h, cleanup := newAuthHarness(t, 5)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := h.svc.Login(ctx, "alice", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials, "attempt %d", i+1)
	}

	// Even the correct password is rejected with the lockout error,
	// before the hasher runs.
	_, err := h.svc.Login(ctx, "alice", testPassword)
	assert.ErrorIs(t, err, ErrTooManyAttempts)
}

func TestSuccessBeforeThresholdResetsCounter(t *testing.T) {
	h, cleanup := newAuthHarness(t, 5)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := h.svc.Login(ctx, "alice", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err := h.svc.Login(ctx, "alice", testPassword)
	require.NoError(t, err)

	// The slate is clean: four more failures still stay under the limit.
	for i := 0; i < 4; i++ {
		_, err := h.svc.Login(ctx, "alice", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	h, cleanup := newAuthHarness(t, 5)
	defer cleanup()
	ctx := context.Background()

	result, err := h.svc.Login(ctx, "alice", testPassword)
	require.NoError(t, err)

	pair, err := h.svc.Refresh(ctx, result.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Equal(t, result.RefreshToken, pair.RefreshToken, "refresh token is not rotated")
}

func TestRefreshWithGarbageToken(t *testing.T) {
	h, cleanup := newAuthHarness(t, 5)
	defer cleanup()

	_, err := h.svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestRefreshAfterLogout(t *testing.T) {
	h, cleanup := newAuthHarness(t, 5)
	defer cleanup()
	ctx := context.Background()

	result, err := h.svc.Login(ctx, "alice", testPassword)
	require.NoError(t, err)

	_, err = h.svc.Refresh(ctx, result.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, h.svc.Logout(ctx, result.RefreshToken))

	_, err = h.svc.Refresh(ctx, result.RefreshToken)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestReloginSupersedesOldSession(t *testing.T) {
	h, cleanup := newAuthHarness(t, 5)
	defer cleanup()
	ctx := context.Background()

	first, err := h.svc.Login(ctx, "alice", testPassword)
	require.NoError(t, err)

	// Token timestamps are second-granular; step the clock so the second
	// refresh token differs from the first.
	*h.now = h.now.Add(time.Second)

	second, err := h.svc.Login(ctx, "alice", testPassword)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = h.svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrSessionInvalid, "new login overwrites the prior session")

	_, err = h.svc.Refresh(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

func TestLogoutWithGarbageTokenIsNoop(t *testing.T) {
	h, cleanup := newAuthHarness(t, 5)
	defer cleanup()

	assert.NoError(t, h.svc.Logout(context.Background(), "garbage"))
	assert.NoError(t, h.svc.Logout(context.Background(), ""))
}

func TestRegisterAndAutoLogin(t *testing.T) {
	h, cleanup := newAuthHarness(t, 5)
	defer cleanup()
	ctx := context.Background()

	result, err := h.svc.Register(ctx, models.RegisterRequest{
		Username: "bob",
		Email:    "Bob@Example.com",
		Password: "long-enough-pw",
	})
	require.NoError(t, err)
	assert.Equal(t, "bob", result.User.Username)
	assert.Equal(t, "bob@example.com", result.User.Email, "email is normalized")
	assert.Equal(t, models.RoleUser, result.User.Role)

	_, err = h.svc.Refresh(ctx, result.RefreshToken)
	assert.NoError(t, err)
}

func TestRegisterDuplicate(t *testing.T) {
	h, cleanup := newAuthHarness(t, 5)
	defer cleanup()

	_, err := h.svc.Register(context.Background(), models.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "long-enough-pw",
	})
	assert.ErrorIs(t, err, storage.ErrAccountExists)
}

func TestRegisterStructuralValidation(t *testing.T) {
	h, cleanup := newAuthHarness(t, 5)
	defer cleanup()

	cases := []models.RegisterRequest{
		{Username: "", Email: "x@example.com", Password: "long-enough-pw"},
		{Username: "x", Email: "", Password: "long-enough-pw"},
		{Username: "x", Email: "not-an-email", Password: "long-enough-pw"},
		{Username: "x", Email: "x@example.com", Password: "short"},
	}
	for _, req := range cases {
		_, err := h.svc.Register(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidInput, "request %+v", req)
	}
}

func TestAuthenticateAccessToken(t *testing.T) {
	h, cleanup := newAuthHarness(t, 5)
	defer cleanup()
	ctx := context.Background()

	result, err := h.svc.Login(ctx, "alice", testPassword)
	require.NoError(t, err)

	user, err := h.svc.Authenticate(ctx, result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, h.user.ID, user.ID)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	h, cleanup := newAuthHarness(t, 5)
	defer cleanup()
	ctx := context.Background()

	result, err := h.svc.Login(ctx, "alice", testPassword)
	require.NoError(t, err)

	h.accounts.users[h.user.ID].IsActive = false

	_, err = h.svc.Authenticate(ctx, result.AccessToken)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestLoginFailsClosedOnStoreOutage(t *testing.T) {
	h, cleanup := newAuthHarness(t, 5)
	defer cleanup()

	h.mr.Close()

	_, err := h.svc.Login(context.Background(), "alice", testPassword)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

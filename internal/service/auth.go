package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vionex/auth-service/internal/models"
	"github.com/vionex/auth-service/internal/storage"
)

const minPasswordLength = 8

// AuthResult is what a successful login or registration hands to the HTTP
// layer: the account, the decoded claims and both tokens.
type AuthResult struct {
	User         *models.User
	Claims       *Claims
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// AuthService composes the hasher, token codec, attempt tracker and session
// store into the login/refresh/logout protocol.
type AuthService struct {
	accounts storage.AccountRepository
	sessions storage.SessionStore
	tokens   *TokenService
	hasher   *PasswordHasher
	attempts *LoginAttemptTracker
	log      *zap.SugaredLogger
}

func NewAuthService(
	accounts storage.AccountRepository,
	sessions storage.SessionStore,
	tokens *TokenService,
	hasher *PasswordHasher,
	attempts *LoginAttemptTracker,
	log *zap.SugaredLogger,
) *AuthService {
	return &AuthService{
		accounts: accounts,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
		attempts: attempts,
		log:      log,
	}
}

// Login authenticates by username or email. Unknown account and wrong
// password both come back as ErrInvalidCredentials; a locked account fails
// with ErrTooManyAttempts before the hasher is ever reached.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	user, err := s.accounts.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			// No account key to charge an attempt against.
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("account lookup: %w", err)
	}

	accountID := user.ID.String()

	blocked, err := s.attempts.IsBlocked(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("lockout check: %w", err)
	}
	if blocked {
		return nil, ErrTooManyAttempts
	}

	match, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("password verify: %w", err)
	}
	if !match {
		if err := s.attempts.RecordAttempt(ctx, accountID, false); err != nil {
			return nil, fmt.Errorf("record failed attempt: %w", err)
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.attempts.RecordAttempt(ctx, accountID, true); err != nil {
		return nil, fmt.Errorf("clear attempt history: %w", err)
	}

	return s.issueSession(ctx, user)
}

// Register creates the account and logs it in. Validation is structural
// only; password-policy depth belongs to the user subsystem.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*AuthResult, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(strings.ToLower(req.Email))

	if username == "" || email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidInput
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrInvalidInput
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if err := s.accounts.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.log.Infow("account registered", "user_id", user.ID, "username", user.Username)

	return s.issueSession(ctx, user)
}

// Refresh exchanges a live refresh token for a new access token. The stored
// refresh token is not rotated; it stays valid until logout or expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPairResponse, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return nil, err
	}

	valid, err := s.sessions.Verify(ctx, claims.Subject, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("session verify: %w", err)
	}
	if !valid {
		return nil, ErrSessionInvalid
	}

	accessToken, err := s.tokens.IssueAccessToken(claims.Subject, claims.Username, claims.Role)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &models.TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

// Logout invalidates the user's session. A token that fails verification is
// a no-op success: logging out with garbage input never errors.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		s.log.Debugw("logout with unverifiable token", "error", err)
		return nil
	}

	if err := s.sessions.Invalidate(ctx, claims.Subject); err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer access token to its account. Used by the
// HTTP middleware; validation is self-contained except for the user fetch.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.tokens.Verify(accessToken)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrTokenMalformed
	}

	user, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, fmt.Errorf("account lookup: %w", err)
	}
	if !user.IsActive {
		return nil, ErrSessionInvalid
	}

	return user, nil
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User) (*AuthResult, error) {
	accessToken, err := s.tokens.IssueForUser(user, s.tokens.AccessTTL())
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, err := s.tokens.IssueForUser(user, s.tokens.RefreshTTL())
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	if err := s.sessions.Create(ctx, user.ID.String(), refreshToken, s.tokens.RefreshTTL()); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	claims, err := s.tokens.Verify(accessToken)
	if err != nil {
		return nil, fmt.Errorf("decode issued token: %w", err)
	}

	return &AuthResult{
		User:         user,
		Claims:       claims,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

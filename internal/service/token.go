package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vionex/auth-service/internal/models"
	"github.com/vionex/auth-service/internal/util"
)

// Claims is the signed payload embedded in both access and refresh tokens.
// The two token kinds share one shape and one verification path; callers
// distinguish purpose by context, not by a tag in the token.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256-signed, time-bounded claims.
// Access tokens are self-contained: validating one never touches the store.
type TokenService struct {
	jwtSecretKey []byte
	accessTTL    time.Duration
	refreshTTL   time.Duration
	now          func() time.Time
}

func NewTokenService(cfg *util.TokenConfig) *TokenService {
	return &TokenService{
		jwtSecretKey: cfg.JwtSecretKey,
		accessTTL:    cfg.AccessTTL,
		refreshTTL:   cfg.RefreshTTL,
		now:          time.Now,
	}
}

func (ts *TokenService) AccessTTL() time.Duration  { return ts.accessTTL }
func (ts *TokenService) RefreshTTL() time.Duration { return ts.refreshTTL }

func (ts *TokenService) IssueAccessToken(subject, username, role string) (string, error) {
	return ts.issue(subject, username, role, ts.accessTTL)
}

func (ts *TokenService) IssueRefreshToken(subject, username, role string) (string, error) {
	return ts.issue(subject, username, role, ts.refreshTTL)
}

func (ts *TokenService) IssueForUser(user *models.User, ttl time.Duration) (string, error) {
	return ts.issue(user.ID.String(), user.Username, user.Role, ttl)
}

func (ts *TokenService) issue(subject, username, role string, ttl time.Duration) (string, error) {
	now := ts.now()
	claims := &Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(ts.jwtSecretKey)
	if err != nil {
		return "", fmt.Errorf("signed string: %w", err)
	}

	return signedToken, nil
}

// Verify checks signature and expiry and returns the embedded claims
// unchanged. Expired and malformed tokens fail with distinct errors.
func (ts *TokenService) Verify(token string) (*Claims, error) {
	parsedToken, err := jwt.ParseWithClaims(
		token,
		&Claims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, ErrTokenMalformed
			}
			return ts.jwtSecretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	claims, ok := parsedToken.Claims.(*Claims)
	if !ok || !parsedToken.Valid || claims.Subject == "" {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

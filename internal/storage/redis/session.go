package redis

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vionex/auth-service/internal/storage"
)

const sessionKeyPrefix = "session:"

// SessionStore persists the single live refresh-token session per user under
// session:<user_id>. The shared store is the sole source of truth; nothing is
// cached in process.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Create stores the refresh token for the user, replacing any prior session.
func (s *SessionStore) Create(ctx context.Context, userID, refreshToken string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKeyPrefix+userID, refreshToken, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStoreUnavailable, err)
	}
	return nil
}

// Verify reports whether the stored token for the user exactly matches and
// has not expired. A missing key is a plain false; a store failure is an
// error, never a boolean.
func (s *SessionStore) Verify(ctx context.Context, userID, refreshToken string) (bool, error) {
	stored, err := s.client.Get(ctx, sessionKeyPrefix+userID).Result()
	if err == redis.Nil {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("%w: %v", storage.ErrStoreUnavailable, err)
	}

	if len(stored) != len(refreshToken) {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(refreshToken)) == 1, nil
}

// Invalidate deletes the stored session immediately. Deleting a session that
// does not exist is not an error.
func (s *SessionStore) Invalidate(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStoreUnavailable, err)
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vionex/auth-service/internal/models"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")

	// ErrStoreUnavailable marks infrastructure failures reaching the shared
	// key/value store. Callers must fail closed on it instead of treating it
	// as "no session" or "not blocked".
	ErrStoreUnavailable = errors.New("shared store unavailable")
)

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// AccountRepository is the lookup contract owned by the user CRUD subsystem.
type AccountRepository interface {
	GetByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// SessionStore holds at most one live refresh-token session per user.
// Create unconditionally replaces any previous session for the user.
type SessionStore interface {
	Create(ctx context.Context, userID, refreshToken string, ttl time.Duration) error
	Verify(ctx context.Context, userID, refreshToken string) (bool, error)
	Invalidate(ctx context.Context, userID string) error
}

// EventWindow counts events for a key within a trailing window. It makes no
// admit/deny decision of its own; that belongs to the components on top.
type EventWindow interface {
	Record(ctx context.Context, key string, at time.Time, retention time.Duration) error
	CountInWindow(ctx context.Context, key string, now time.Time, window time.Duration) (int64, error)
	Clear(ctx context.Context, key string) error
}

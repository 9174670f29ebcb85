package service

import (
	"context"
	"time"

	"github.com/vionex/auth-service/internal/storage"
	"github.com/vionex/auth-service/internal/util"
)

const loginAttemptKeyPrefix = "login_attempts:"

// LoginAttemptTracker counts failed logins per account over a sliding window.
// Lockout is purely a function of recent failure history: there is no
// explicit unblock, an account clears once its failures age out or a correct
// login wipes them.
type LoginAttemptTracker struct {
	window      storage.EventWindow
	maxAttempts int64
	dur         time.Duration
	now         func() time.Time
}

func NewLoginAttemptTracker(window storage.EventWindow, cfg *util.LoginAttemptConfig) *LoginAttemptTracker {
	return &LoginAttemptTracker{
		window:      window,
		maxAttempts: int64(cfg.MaxAttempts),
		dur:         cfg.Window,
		now:         time.Now,
	}
}

// RecordAttempt records one failure, or on success deletes the whole failure
// history for the account.
func (t *LoginAttemptTracker) RecordAttempt(ctx context.Context, accountID string, success bool) error {
	key := loginAttemptKeyPrefix + accountID

	if success {
		return t.window.Clear(ctx, key)
	}
	return t.window.Record(ctx, key, t.now(), t.dur)
}

// IsBlocked is a read-only check; it never records an attempt. The caller
// runs it before password verification so a blocked account never reaches
// the hasher.
func (t *LoginAttemptTracker) IsBlocked(ctx context.Context, accountID string) (bool, error) {
	count, err := t.window.CountInWindow(ctx, loginAttemptKeyPrefix+accountID, t.now(), t.dur)
	if err != nil {
		return false, err
	}
	return count >= t.maxAttempts, nil
}

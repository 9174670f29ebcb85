package service

import (
	"context"
	"time"

	"github.com/vionex/auth-service/internal/storage"
	"github.com/vionex/auth-service/internal/util"
)

// RateLimiter throttles arbitrary request keys over a sliding window. The
// key scheme (ip, ip+endpoint, user id) is the caller's responsibility.
type RateLimiter struct {
	window storage.EventWindow
	limit  int64
	dur    time.Duration
	now    func() time.Time
}

func NewRateLimiter(window storage.EventWindow, cfg *util.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		window: window,
		limit:  int64(cfg.Limit),
		dur:    cfg.Window,
		now:    time.Now,
	}
}

// Allow admits and records the event in one step when under the limit. A
// denied call records nothing, so denials never count toward future windows.
// The count and the record are separate store round-trips: two racing
// requests can both be admitted one event over the limit, a deliberate soft
// bound.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := rl.now()

	count, err := rl.window.CountInWindow(ctx, key, now, rl.dur)
	if err != nil {
		return false, err
	}
	if count >= rl.limit {
		return false, nil
	}

	if err := rl.window.Record(ctx, key, now, rl.dur); err != nil {
		return false, err
	}
	return true, nil
}

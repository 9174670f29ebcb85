package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/vionex/auth-service/internal/storage"
)

// WindowCounter keeps one sorted-set entry per event, scored by the event's
// unix-millisecond timestamp. A trailing window is evaluated by trimming
// members older than now-window and counting what remains. Members are keyed
// by a random uuid so two events in the same millisecond never collapse.
//
// The trim/count/record sequence spans independent round-trips, so two
// requests racing on the same key can both observe "under limit". The
// components on top treat their thresholds as a soft bound.
type WindowCounter struct {
	client *redis.Client
}

func NewWindowCounter(client *redis.Client) *WindowCounter {
	return &WindowCounter{client: client}
}

// Record adds one event and refreshes the key's idle expiry so unused keys
// do not accumulate forever.
func (c *WindowCounter) Record(ctx context.Context, key string, at time.Time, retention time.Duration) error {
	member := strconv.FormatInt(at.UnixMilli(), 10) + ":" + uuid.NewString()
	if err := c.client.ZAdd(ctx, key, redis.Z{
		Score:  float64(at.UnixMilli()),
		Member: member,
	}).Err(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStoreUnavailable, err)
	}

	if err := c.client.Expire(ctx, key, retention).Err(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStoreUnavailable, err)
	}

	return nil
}

// CountInWindow evicts entries that have aged out of the trailing window,
// then counts the rest. An entry recorded exactly window ago no longer counts.
func (c *WindowCounter) CountInWindow(ctx context.Context, key string, now time.Time, window time.Duration) (int64, error) {
	cutoff := strconv.FormatInt(now.Add(-window).UnixMilli(), 10)
	if err := c.client.ZRemRangeByScore(ctx, key, "-inf", cutoff).Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", storage.ErrStoreUnavailable, err)
	}

	count, err := c.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", storage.ErrStoreUnavailable, err)
	}

	return count, nil
}

// Clear drops all recorded events for the key.
func (c *WindowCounter) Clear(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStoreUnavailable, err)
	}
	return nil
}

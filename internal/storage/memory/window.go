package memory

import (
	"context"
	"sync"
	"time"
)

// WindowCounter is a single-process variant of the Redis-backed counter,
// useful for development and for deployments with exactly one worker. It is
// not authoritative once multiple processes are involved: each process counts
// only its own events.
type WindowCounter struct {
	mu     sync.Mutex
	events map[string][]time.Time
}

func NewWindowCounter() *WindowCounter {
	return &WindowCounter{events: make(map[string][]time.Time)}
}

func (c *WindowCounter) Record(ctx context.Context, key string, at time.Time, retention time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events[key] = append(c.events[key], at)
	return nil
}

func (c *WindowCounter) CountInWindow(ctx context.Context, key string, now time.Time, window time.Duration) (int64, error) {
	cutoff := now.Add(-window)

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.events[key][:0]
	for _, at := range c.events[key] {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}

	if len(kept) == 0 {
		delete(c.events, key)
		return 0, nil
	}
	c.events[key] = kept
	return int64(len(kept)), nil
}

func (c *WindowCounter) Clear(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.events, key)
	return nil
}

// Package velocity implements short-window, per-key request counters
// backed by a fast key/value store. The contract is intentionally small
// (spec.md §4.4 / §9): Bump atomically increments a counter scoped to a
// kind/key/window triple and sets its TTL to the window length on first
// write, so expiry is self-managing and needs no coordination.
package velocity

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Window is a velocity bucket width.
type Window string

const (
	Minute Window = "minute"
	Hour   Window = "hour"
	Day    Window = "day"
)

// TTL returns the duration a counter in this window lives for.
func (w Window) TTL() time.Duration {
	switch w {
	case Minute:
		return time.Minute
	case Hour:
		return time.Hour
	case Day:
		return 24 * time.Hour
	default:
		return time.Hour
	}
}

// Counters bumps atomic, self-expiring counters in Redis.
type Counters struct {
	client *redis.Client
}

// New wraps an existing Redis client. The velocity store is deliberately
// a thin wrapper — spec.md §9 notes the same Bump contract could as well
// be backed by an in-process store for single-node deployments.
func New(client *redis.Client) *Counters {
	return &Counters{client: client}
}

func key(kind, key string, window Window) string {
	return fmt.Sprintf("velocity:%s:%s:%s", kind, key, window)
}

// Bump atomically increments the counter for (kind, key, window) and
// returns the post-increment value. The TTL is set to the window length
// only on the first write (i.e. when the counter was just created),
// matching spec.md's "no eviction logic beyond TTL" rule: a counter that
// is still alive keeps counting down to its original expiry rather than
// having its window pushed back on every hit.
func (c *Counters) Bump(ctx context.Context, kind, id string, window Window) (int64, error) {
	k := key(kind, id, window)

	count, err := c.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, fmt.Errorf("velocity: incrementing %s: %w", k, err)
	}

	if count == 1 {
		if err := c.client.Expire(ctx, k, window.TTL()).Err(); err != nil {
			return count, fmt.Errorf("velocity: setting ttl on %s: %w", k, err)
		}
	}

	return count, nil
}

// Peek reads the current counter value without incrementing it. A
// missing key reports zero, not an error.
func (c *Counters) Peek(ctx context.Context, kind, id string, window Window) (int64, error) {
	k := key(kind, id, window)

	val, err := c.client.Get(ctx, k).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("velocity: reading %s: %w", k, err)
	}
	return val, nil
}

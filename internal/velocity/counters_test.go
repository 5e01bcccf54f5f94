package velocity

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCounters(t *testing.T) (*Counters, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	return New(client), srv
}

func TestBumpIncrementsAndReturnsCount(t *testing.T) {
	c, _ := newTestCounters(t)
	ctx := context.Background()

	first, err := c.Bump(ctx, "ip", "deadbeef", Hour)
	require.NoError(t, err)
	require.Equal(t, int64(1), first)

	second, err := c.Bump(ctx, "ip", "deadbeef", Hour)
	require.NoError(t, err)
	require.Equal(t, int64(2), second)
}

func TestBumpSetsTTLOnlyOnFirstWrite(t *testing.T) {
	c, srv := newTestCounters(t)
	ctx := context.Background()

	_, err := c.Bump(ctx, "card", "abc123", Hour)
	require.NoError(t, err)
	require.Equal(t, time.Hour, srv.TTL("velocity:card:abc123:hour"))

	srv.FastForward(10 * time.Minute)
	_, err = c.Bump(ctx, "card", "abc123", Hour)
	require.NoError(t, err)

	remaining := srv.TTL("velocity:card:abc123:hour")
	require.Greater(t, remaining, time.Duration(0))
	require.LessOrEqual(t, remaining, 50*time.Minute)
}

func TestBumpIsolatesWindows(t *testing.T) {
	c, _ := newTestCounters(t)
	ctx := context.Background()

	_, err := c.Bump(ctx, "phone", "xyz", Hour)
	require.NoError(t, err)

	dayCount, err := c.Peek(ctx, "phone", "xyz", Day)
	require.NoError(t, err)
	require.Equal(t, int64(0), dayCount)
}

func TestPeekMissingKeyIsZero(t *testing.T) {
	c, _ := newTestCounters(t)
	count, err := c.Peek(context.Background(), "email", "nope", Minute)
	require.NoError(t, err)
	require.Equal(t, int64(0), count)
}

package refdata

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	return NewCache(client)
}

func TestCacheSetAndGetRoundTrips(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	node := TorExitNode{IP: "198.51.100.7", RiskWeight: 90}
	require.NoError(t, c.Set(ctx, KindTorNode, "198.51.100.7", node))

	var out TorExitNode
	hit, err := c.Get(ctx, KindTorNode, "198.51.100.7", &out)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, node.IP, out.IP)
	require.Equal(t, node.RiskWeight, out.RiskWeight)
}

func TestCacheGetMissIsNotError(t *testing.T) {
	c := newTestCache(t)
	var out TorExitNode
	hit, err := c.Get(context.Background(), KindTorNode, "nowhere", &out)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestCacheInvalidateRemovesEntry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, KindASN, "15169", ASN{Number: 15169}))
	require.NoError(t, c.Invalidate(ctx, KindASN, "15169"))

	var out ASN
	hit, err := c.Get(ctx, KindASN, "15169", &out)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestLookupCachesPositiveResult(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	calls := 0

	load := func() (*ASN, error) {
		calls++
		return &ASN{Number: 15169, Organization: "Example Networks"}, nil
	}

	rec, found, err := Lookup(ctx, c, KindASN, "15169", load)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Example Networks", rec.Organization)

	rec2, found2, err := Lookup(ctx, c, KindASN, "15169", load)
	require.NoError(t, err)
	require.True(t, found2)
	require.Equal(t, "Example Networks", rec2.Organization)
	require.Equal(t, 1, calls, "second lookup must be served from cache, not load")
}

func TestLookupCachesNegativeResult(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	calls := 0

	load := func() (*ASN, error) {
		calls++
		return nil, nil
	}

	_, found, err := Lookup(ctx, c, KindASN, "64512", load)
	require.NoError(t, err)
	require.False(t, found)

	_, found2, err := Lookup(ctx, c, KindASN, "64512", load)
	require.NoError(t, err)
	require.False(t, found2)
	require.Equal(t, 1, calls, "negative result must also be cached")
}

func TestLookupPropagatesLoadError(t *testing.T) {
	c := newTestCache(t)
	boom := errors.New("boom")
	load := func() (*ASN, error) { return nil, boom }

	_, _, err := Lookup(context.Background(), c, KindASN, "1", load)
	require.ErrorIs(t, err, boom)
}

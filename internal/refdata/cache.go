package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Kind identifies which reference table a cache entry belongs to, so each
// gets its own TTL per spec.md §4.3.
type Kind string

const (
	KindBlacklist    Kind = "blacklist"
	KindDisposable   Kind = "disposable_domain"
	KindTorNode      Kind = "tor_node"
	KindASN          Kind = "asn_info"
	KindGeolocation  Kind = "geolocation"
	KindUserAgent    Kind = "user_agent"
)

// defaultTTLs are the cache-aside expirations spec.md §4.3 assigns per
// reference kind. Blacklists churn fastest (an operator can add an entry
// at any time) so they get the shortest TTL; geolocation is looked up
// from a slow-moving collaborator and can sit the longest.
var defaultTTLs = map[Kind]time.Duration{
	KindBlacklist:   5 * time.Minute,
	KindDisposable:  time.Hour,
	KindTorNode:     time.Hour,
	KindASN:         time.Hour,
	KindGeolocation: 24 * time.Hour,
	KindUserAgent:   time.Hour,
}

// Cache is a cache-aside layer in front of the reference repository: a
// miss fetches from load, populates Redis, and returns the fresh value;
// a hit never touches the database.
type Cache struct {
	client *redis.Client
	ttls   map[Kind]time.Duration
}

// NewCache wraps a Redis client with the default per-kind TTL table.
// Overrides can be supplied via WithTTL after construction.
func NewCache(client *redis.Client) *Cache {
	ttls := make(map[Kind]time.Duration, len(defaultTTLs))
	for k, v := range defaultTTLs {
		ttls[k] = v
	}
	return &Cache{client: client, ttls: ttls}
}

// WithTTL overrides the TTL for a single kind, returning the same Cache
// for chaining.
func (c *Cache) WithTTL(kind Kind, ttl time.Duration) *Cache {
	c.ttls[kind] = ttl
	return c
}

func (c *Cache) key(kind Kind, id string) string {
	return fmt.Sprintf("refdata:%s:%s", kind, id)
}

// Get fetches a cached value, unmarshalling it into dest. It reports
// whether the key was present; a miss is not an error.
func (c *Cache) Get(ctx context.Context, kind Kind, id string, dest interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, c.key(kind, id)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("refdata cache: reading %s/%s: %w", kind, id, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("refdata cache: decoding %s/%s: %w", kind, id, err)
	}
	return true, nil
}

// Set writes a value under the kind's configured TTL.
func (c *Cache) Set(ctx context.Context, kind Kind, id string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("refdata cache: encoding %s/%s: %w", kind, id, err)
	}
	ttl := c.ttls[kind]
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	if err := c.client.Set(ctx, c.key(kind, id), raw, ttl).Err(); err != nil {
		return fmt.Errorf("refdata cache: writing %s/%s: %w", kind, id, err)
	}
	return nil
}

// Invalidate removes a cached entry together with its negative-lookup
// sentinel, so the next Lookup calls load again instead of serving a
// stale miss.
func (c *Cache) Invalidate(ctx context.Context, kind Kind, id string) error {
	if err := c.client.Del(ctx, c.key(kind, id), c.key(kind, id+":miss")).Err(); err != nil {
		return fmt.Errorf("refdata cache: invalidating %s/%s: %w", kind, id, err)
	}
	return nil
}

// cacheMiss is a small sentinel cached in place of a negative lookup, so
// "looked up and confirmed absent" does not re-hit the database on every
// subsequent evaluation within the TTL window.
type cacheMiss struct {
	Absent bool `json:"absent"`
}

// Lookup runs the cache-aside sequence for a single reference lookup:
// check the cache, and on miss call load, cache whatever it returns
// (including an explicit negative result), and return it. found reports
// whether a record exists; it can be false with a nil error.
func Lookup[T any](ctx context.Context, c *Cache, kind Kind, id string, load func() (*T, error)) (*T, bool, error) {
	var cached T
	hit, err := c.Get(ctx, kind, id, &cached)
	if err != nil {
		return nil, false, err
	}
	if hit {
		return &cached, true, nil
	}

	var miss cacheMiss
	hitMiss, err := c.Get(ctx, kind, id+":miss", &miss)
	if err != nil {
		return nil, false, err
	}
	if hitMiss && miss.Absent {
		return nil, false, nil
	}

	record, err := load()
	if err != nil {
		return nil, false, err
	}
	if record == nil {
		if err := c.Set(ctx, kind, id+":miss", cacheMiss{Absent: true}); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}

	if err := c.Set(ctx, kind, id, record); err != nil {
		return nil, false, err
	}
	return record, true, nil
}

package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// mapCacheEntry pairs a cached analysis with its absolute expiry.
type mapCacheEntry struct {
	analysis  *TelemetryAnalysis
	expiresAt time.Time
}

// MapCache is an in-process AnalysisCache backed by sync.Map, adequate
// for the "≤30s, single process" requirement without pulling in an
// external dependency — the same concurrent-map idiom the teacher's own
// execution state uses rather than a shared cache, since one process's
// cache need not be visible to another.
type MapCache struct {
	entries sync.Map // string -> mapCacheEntry
	now     func() time.Time
}

// NewMapCache constructs an empty MapCache. A nil clock defaults to
// time.Now.
func NewMapCache(clock func() time.Time) *MapCache {
	if clock == nil {
		clock = time.Now
	}
	return &MapCache{now: clock}
}

func (c *MapCache) Get(_ context.Context, key string) (*TelemetryAnalysis, bool, error) {
	v, ok := c.entries.Load(key)
	if !ok {
		return nil, false, nil
	}
	entry := v.(mapCacheEntry)
	if c.now().After(entry.expiresAt) {
		c.entries.Delete(key)
		return nil, false, nil
	}
	return entry.analysis, true, nil
}

func (c *MapCache) Set(_ context.Context, key string, analysis *TelemetryAnalysis, ttl time.Duration) error {
	c.entries.Store(key, mapCacheEntry{analysis: analysis, expiresAt: c.now().Add(ttl)})
	return nil
}

// RedisCache is an AnalysisCache backed by Redis, for deployments that
// share the analysis cache across multiple engine processes. Grounded
// on the teacher's internal/infrastructure/cache.RedisCache: analyses
// are JSON-encoded and stored with native TTL via SET...EX, so eviction
// is Redis's own responsibility rather than a lazy check on read.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps an already-constructed *redis.Client. Connection
// setup (URL parsing, pool sizing, the startup Ping) is the caller's
// responsibility, mirroring the teacher's NewRedisCache constructor.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*TelemetryAnalysis, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis cache get %q: %w", key, err)
	}
	var analysis TelemetryAnalysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, false, fmt.Errorf("redis cache decode %q: %w", key, err)
	}
	return &analysis, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, analysis *TelemetryAnalysis, ttl time.Duration) error {
	raw, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("redis cache encode %q: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis cache set %q: %w", key, err)
	}
	return nil
}

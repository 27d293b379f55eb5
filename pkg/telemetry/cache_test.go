package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAnalysis() *TelemetryAnalysis {
	return &TelemetryAnalysis{
		Metrics: map[string]MetricAnalysis{
			"temp": {Min: 1, Max: 2, Avg: 1.5, StdDev: 0.5, Count: 2, Percentiles: map[int]float64{50: 1.5}},
		},
		Trends: map[string]TrendDirection{"temp": TrendUp},
	}
}

func TestMapCache_SetAndGet(t *testing.T) {
	now := time.Now()
	c := NewMapCache(func() time.Time { return now })
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	analysis := sampleAnalysis()
	require.NoError(t, c.Set(ctx, "key", analysis, 30*time.Second))

	got, ok, err := c.Get(ctx, "key")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, analysis, got)
}

func TestMapCache_ExpiresEntries(t *testing.T) {
	now := time.Now()
	c := NewMapCache(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", sampleAnalysis(), 10*time.Second))

	now = now.Add(11 * time.Second)
	_, ok, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, ok)
}

func newTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRedisCache_SetAndGet(t *testing.T) {
	client := newTestRedisClient(t)
	c := NewRedisCache(client)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	analysis := sampleAnalysis()
	require.NoError(t, c.Set(ctx, "key", analysis, 30*time.Second))

	got, ok, err := c.Get(ctx, "key")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, analysis, got)
}

func TestRedisCache_ExpiresViaRedisTTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCache(client)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", sampleAnalysis(), 10*time.Second))
	mr.FastForward(11 * time.Second)

	_, ok, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, ok)
}

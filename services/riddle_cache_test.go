package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisRiddleCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	cache := NewRedisRiddleCache(client, time.Minute)

	_, ok := cache.Get(ctx, 7)
	assert.False(t, ok)

	cache.Set(ctx, 7, "What am I?")
	text, ok := cache.Get(ctx, 7)
	require.True(t, ok)
	assert.Equal(t, "What am I?", text)
	assert.True(t, mr.Exists("riddle:7"))

	mr.FastForward(2 * time.Minute)
	_, ok = cache.Get(ctx, 7)
	assert.False(t, ok)
}

func TestRedisRiddleCacheIgnoresCorruptEntries(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewRedisRiddleCache(client, time.Minute)
	require.NoError(t, mr.Set("riddle:3", "not json"))

	_, ok := cache.Get(context.Background(), 3)
	assert.False(t, ok)
}

func TestRedisRiddleCacheUnavailable(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewRedisRiddleCache(client, time.Minute)
	mr.Close()

	cache.Set(context.Background(), 1, "lost")
	_, ok := cache.Get(context.Background(), 1)
	assert.False(t, ok)
}

package services

import (
	"context"
	"fmt"
	"time"

	"riddlehunt/metrics"
	"riddlehunt/utils"

	"github.com/redis/go-redis/v9"
)

const RiddleCacheKey = "riddle:"

// RiddleCache keeps riddle texts, which never change once imported
type RiddleCache interface {
	Get(ctx context.Context, riddleID uint) (text string, ok bool)
	Set(ctx context.Context, riddleID uint, text string)
}

type cachedRiddle struct {
	Text string `json:"text"`
}

// RedisRiddleCache stores riddle texts in redis. A cache failure never fails a request.
type RedisRiddleCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRiddleCache(client *redis.Client, ttl time.Duration) *RedisRiddleCache {
	return &RedisRiddleCache{client: client, ttl: ttl}
}

func (c *RedisRiddleCache) Get(ctx context.Context, riddleID uint) (string, bool) {
	// redis.Nil and connection errors both count as a miss
	data, err := c.client.Get(ctx, riddleKey(riddleID)).Bytes()
	if err != nil {
		metrics.RiddleCacheMisses.Inc()
		return "", false
	}

	var cached cachedRiddle
	if err := utils.UnmarshalJSON(data, &cached); err != nil {
		metrics.RiddleCacheMisses.Inc()
		return "", false
	}
	metrics.RiddleCacheHits.Inc()
	return cached.Text, true
}

func (c *RedisRiddleCache) Set(ctx context.Context, riddleID uint, text string) {
	data, err := utils.MarshalJSON(cachedRiddle{Text: text})
	if err != nil {
		return
	}
	c.client.Set(ctx, riddleKey(riddleID), data, c.ttl)
}

func riddleKey(id uint) string {
	return fmt.Sprintf("%s%d", RiddleCacheKey, id)
}

// NoopRiddleCache is used when redis is not configured
type NoopRiddleCache struct{}

func (NoopRiddleCache) Get(context.Context, uint) (string, bool) { return "", false }

func (NoopRiddleCache) Set(context.Context, uint, string) {}

// Package cache keeps ranked leaderboards in Redis, one key per limit.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lifeline/internal/leaderboard"
)

const keyPrefix = "leaderboard:limit:"

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func key(limit int) string {
	return fmt.Sprintf("%s%d", keyPrefix, limit)
}

// Get returns (nil, false, nil) on a miss.
func (c *RedisCache) Get(ctx context.Context, limit int) (*leaderboard.Board, bool, error) {
	raw, err := c.client.Get(ctx, key(limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var board leaderboard.Board
	if err := json.Unmarshal(raw, &board); err != nil {
		return nil, false, fmt.Errorf("decode cached leaderboard: %w", err)
	}
	return &board, true, nil
}

func (c *RedisCache) Set(ctx context.Context, limit int, board *leaderboard.Board) error {
	raw, err := json.Marshal(board)
	if err != nil {
		return fmt.Errorf("encode leaderboard: %w", err)
	}
	return c.client.Set(ctx, key(limit), raw, c.ttl).Err()
}

// Invalidate drops every cached limit. Limits are bounded by MaxLimit so the
// key set is known up front.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	keys := make([]string, 0, leaderboard.MaxLimit)
	for limit := 1; limit <= leaderboard.MaxLimit; limit++ {
		keys = append(keys, key(limit))
	}
	return c.client.Del(ctx, keys...).Err()
}

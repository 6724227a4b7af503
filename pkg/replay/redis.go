package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "replay:"

// RedisGuard is a Guard backed by Redis, for deployments with more than one
// process. SET NX with a TTL gives atomic consume semantics and automatic
// expiry without any cleanup job.
type RedisGuard struct {
	client *redis.Client
}

// NewRedisGuard creates a guard over an established Redis client.
func NewRedisGuard(client *redis.Client) *RedisGuard {
	return &RedisGuard{client: client}
}

// Consume implements Guard.
func (g *RedisGuard) Consume(ctx context.Context, id string, ttl time.Duration) error {
	ok, err := g.client.SetNX(ctx, redisKeyPrefix+id, 1, ttl).Result()
	if err != nil {
		return fmt.Errorf("replay: failed to consume token id: %w", err)
	}
	if !ok {
		return ErrAlreadyUsed
	}
	return nil
}

// Release implements Guard.
func (g *RedisGuard) Release(ctx context.Context, id string) error {
	if err := g.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("replay: failed to release token id: %w", err)
	}
	return nil
}

package embedding

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces cache entries so a shared Redis instance can
// host other workloads alongside the embedding cache.
const redisKeyPrefix = "clausecheck:embedding:"

// RedisCache shares requirement embeddings across engine instances.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache builds a cache over an existing Redis client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// DialRedisCache connects to Redis at addr and builds a cache on it.
func DialRedisCache(addr, password string, db int) *RedisCache {
	return NewRedisCache(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}))
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("embedding cache get %s: %w", key, err)
	}

	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil {
		return nil, false, fmt.Errorf("embedding cache decode %s: %w", key, err)
	}
	return vec, true, nil
}

func (c *RedisCache) Put(ctx context.Context, key string, vec []float32) error {
	raw, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("embedding cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, raw, 0).Err(); err != nil {
		return fmt.Errorf("embedding cache put %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Len(ctx context.Context) (int, error) {
	keys, err := c.client.Keys(ctx, redisKeyPrefix+"*").Result()
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (c *RedisCache) Clear(ctx context.Context) error {
	keys, err := c.client.Keys(ctx, redisKeyPrefix+"*").Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

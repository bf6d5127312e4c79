package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// LiveMatchesKey is where the scheduler keeps the current live-match
// snapshot for other processes to read.
const LiveMatchesKey = "live:matches"

// RedisCache holds hot live-match state shared across processes. It is
// optional at runtime; the file cache is the durable tier.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects and verifies the connection.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{client: client}, nil
}

// Close closes the Redis connection.
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client returns the underlying Redis client.
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}

// HealthCheck pings Redis to verify the connection.
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// SetJSON marshals value and stores it with TTL.
func (rc *RedisCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	blob, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rc.client.Set(ctx, key, blob, ttl).Err()
}

// GetJSON retrieves and unmarshals a value by key.
func (rc *RedisCache) GetJSON(ctx context.Context, key string, out interface{}) error {
	blob, err := rc.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(blob, out)
}

// Delete removes keys.
func (rc *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return rc.client.Del(ctx, keys...).Err()
}

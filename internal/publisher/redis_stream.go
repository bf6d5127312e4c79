// Package publisher emits match and player events onto Redis streams
// for downstream consumers.
package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Stream names, one per event family.
const (
	StreamLiveMatches  = "matches.live.cricket"
	StreamMatchResults = "matches.results.cricket"
	StreamPlayerStats  = "players.stats.cricket"
)

// RedisPublisher publishes events to Redis streams
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher creates a publisher from an existing client.
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// PublishLiveMatchUpdate publishes a live match snapshot to the stream.
func (rp *RedisPublisher) PublishLiveMatchUpdate(ctx context.Context, matchData interface{}) error {
	return rp.publish(ctx, StreamLiveMatches, matchData)
}

// PublishMatchResult publishes a completed match to the stream.
func (rp *RedisPublisher) PublishMatchResult(ctx context.Context, matchData interface{}) error {
	return rp.publish(ctx, StreamMatchResults, matchData)
}

// PublishPlayerStats publishes a refreshed player record to the stream.
func (rp *RedisPublisher) PublishPlayerStats(ctx context.Context, playerData interface{}) error {
	return rp.publish(ctx, StreamPlayerStats, playerData)
}

func (rp *RedisPublisher) publish(ctx context.Context, stream string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return rp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: 1000,
		Approx: true,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}

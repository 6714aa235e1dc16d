// Package publisher announces completed games on Redis streams so downstream
// services can react without polling the destination tables.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/albapepper/scoracle-ingest/internal/provider"
)

// StreamAdder is the subset of *redis.Client the publisher uses.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// StreamPublisher publishes completed games to per-sport streams. It
// implements ingest.Observer.
type StreamPublisher struct {
	client StreamAdder
	maxLen int64
}

// NewStreamPublisher creates a stream publisher. maxLen caps each stream
// (approximate trimming); 0 leaves streams untrimmed.
func NewStreamPublisher(client StreamAdder, maxLen int64) *StreamPublisher {
	return &StreamPublisher{client: client, maxLen: maxLen}
}

// StreamKey returns the stream a sport's completed games go to.
func StreamKey(sport string) string {
	return fmt.Sprintf("ingest.games.final.%s", sport)
}

// GameCompleted publishes a written terminal game row.
func (p *StreamPublisher) GameCompleted(ctx context.Context, sport string, row provider.Row) error {
	data, err := json.Marshal(row.Values)
	if err != nil {
		return fmt.Errorf("marshaling game row: %w", err)
	}

	gameID, _ := provider.ExtractString(row.Values["game_id"])
	if gameID == "" {
		gameID, _ = provider.ExtractString(row.Values["tournament_id"])
	}

	args := &redis.XAddArgs{
		Stream: StreamKey(sport),
		Values: map[string]interface{}{
			"game_id": gameID,
			"table":   row.Table.Name,
			"data":    string(data),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	return p.client.XAdd(ctx, args).Err()
}

// Connect parses a redis:// URL and verifies the server is reachable.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

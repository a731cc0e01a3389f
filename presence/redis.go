package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// presenceTTL bounds how long a stale entry survives a crashed node.
// Joins refresh it.
const presenceTTL = 4 * time.Hour

// RedisTracker implements Tracker on Redis sets, one set per document.
type RedisTracker struct {
	client *redis.Client
	prefix string
}

// NewRedisTracker connects to Redis and verifies the connection.
func NewRedisTracker(redisURL string) (*RedisTracker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisTracker{client: client, prefix: "collab:presence:"}, nil
}

// NewRedisTrackerWithClient wraps an existing Redis client.
func NewRedisTrackerWithClient(client *redis.Client) *RedisTracker {
	return &RedisTracker{client: client, prefix: "collab:presence:"}
}

func (t *RedisTracker) key(docID string) string {
	return t.prefix + docID
}

func (t *RedisTracker) Join(ctx context.Context, docID, userID string) error {
	key := t.key(docID)
	if err := t.client.SAdd(ctx, key, userID).Err(); err != nil {
		return fmt.Errorf("presence join: %w", err)
	}
	if err := t.client.Expire(ctx, key, presenceTTL).Err(); err != nil {
		return fmt.Errorf("presence expire: %w", err)
	}
	return nil
}

func (t *RedisTracker) Leave(ctx context.Context, docID, userID string) error {
	if err := t.client.SRem(ctx, t.key(docID), userID).Err(); err != nil {
		return fmt.Errorf("presence leave: %w", err)
	}
	return nil
}

func (t *RedisTracker) List(ctx context.Context, docID string) ([]string, error) {
	users, err := t.client.SMembers(ctx, t.key(docID)).Result()
	if err != nil {
		return nil, fmt.Errorf("presence list: %w", err)
	}
	return users, nil
}

func (t *RedisTracker) Count(ctx context.Context, docID string) (int, error) {
	n, err := t.client.SCard(ctx, t.key(docID)).Result()
	if err != nil {
		return 0, fmt.Errorf("presence count: %w", err)
	}
	return int(n), nil
}

// Ping checks if Redis is reachable.
func (t *RedisTracker) Ping(ctx context.Context) error {
	return t.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (t *RedisTracker) Close() error {
	return t.client.Close()
}

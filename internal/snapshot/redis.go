package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	"nateiva/internal/config"

	"github.com/redis/go-redis/v9"
)

const redisKey = "nateiva:snapshot"

// RedisStore keeps the snapshot in a single Redis key, for deployments
// where several processes share one durable view.
type RedisStore struct {
	client *redis.Client
}

// NewRedisClient builds a Redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, snap *Snapshot) error {
	if s.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, redisKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot to redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (*Snapshot, error) {
	if s.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	raw, err := s.client.Get(ctx, redisKey).Result()
	if err == redis.Nil {
		return &Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot from redis: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Ping verifies the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

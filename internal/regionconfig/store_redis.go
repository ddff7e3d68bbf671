package regionconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/MegaphoneJon/com.aghstrategies.statelegemail/pkg/errors"

	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/domain"
)

const keyPrefix = "regionconfig:"

// RedisStore implements Store using Redis. A zero TTL means configs never
// expire, matching the historical behavior of the settings store.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed region config store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves the config for a region from Redis.
func (s *RedisStore) Get(ctx context.Context, region string) (domain.RegionConfig, error) {
	key := keyPrefix + region

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return domain.RegionConfig{}, apperrors.NotFound("region config", region)
		}
		return domain.RegionConfig{}, fmt.Errorf("redis get region config: %w", err)
	}

	var cfg domain.RegionConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return domain.RegionConfig{}, fmt.Errorf("unmarshal region config: %w", err)
	}

	return cfg, nil
}

// Put persists the config to Redis. The write replaces the whole value, so
// readers always see a complete config.
func (s *RedisStore) Put(ctx context.Context, cfg domain.RegionConfig) error {
	key := keyPrefix + cfg.Region

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal region config: %w", err)
	}

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set region config: %w", err)
	}

	return nil
}

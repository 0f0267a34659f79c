package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/storefront/backend/internal/domain/notification"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// RedisPreferencesCache caches notification preferences in Redis so
// multiple instances share the same view of a user's opt-ins.
type RedisPreferencesCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisPreferencesCache creates a new Redis-backed preferences cache
func NewRedisPreferencesCache(cfg config.RedisConfig, ttl time.Duration) (*RedisPreferencesCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisPreferencesCacheWithClient(client, "", ttl), nil
}

// NewRedisPreferencesCacheWithClient creates a cache with an existing Redis
// client. Useful for testing or when sharing a client across components.
func NewRedisPreferencesCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisPreferencesCache {
	if keyPrefix == "" {
		keyPrefix = "notification:prefs:"
	}
	if ttl <= 0 {
		ttl = DefaultPreferencesTTL
	}
	return &RedisPreferencesCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Get returns the cached preferences for a user, if present
func (c *RedisPreferencesCache) Get(ctx context.Context, userID uuid.UUID) (notification.Preferences, bool, error) {
	data, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err == redis.Nil {
		return notification.Preferences{}, false, nil
	}
	if err != nil {
		return notification.Preferences{}, false, fmt.Errorf("failed to read cached preferences: %w", err)
	}

	var prefs notification.Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		// A corrupt entry is treated as a miss; the next Set overwrites it
		return notification.Preferences{}, false, nil
	}
	return prefs, true, nil
}

// Set stores the preferences with the configured TTL
func (c *RedisPreferencesCache) Set(ctx context.Context, prefs notification.Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	if err := c.client.Set(ctx, c.key(prefs.UserID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache preferences: %w", err)
	}
	return nil
}

// Invalidate removes the cached entry for a user
func (c *RedisPreferencesCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached preferences: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client
func (c *RedisPreferencesCache) Close() error {
	return c.client.Close()
}

func (c *RedisPreferencesCache) key(userID uuid.UUID) string {
	return c.keyPrefix + userID.String()
}

// Ensure RedisPreferencesCache implements PreferencesCache
var _ PreferencesCache = (*RedisPreferencesCache)(nil)

package cache

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/config"
)

// PreferencesCacheFactory creates preferences caches based on configuration
type PreferencesCacheFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// PreferencesCacheFactoryOption is a functional option for configuring the factory
type PreferencesCacheFactoryOption func(*PreferencesCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) PreferencesCacheFactoryOption {
	return func(f *PreferencesCacheFactory) {
		f.logger = logger
	}
}

// WithTTL sets the cache entry TTL
func WithTTL(ttl time.Duration) PreferencesCacheFactoryOption {
	return func(f *PreferencesCacheFactory) {
		f.ttl = ttl
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) PreferencesCacheFactoryOption {
	return func(f *PreferencesCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewPreferencesCacheFactory creates a new factory
func NewPreferencesCacheFactory(cfg config.RedisConfig, opts ...PreferencesCacheFactoryOption) *PreferencesCacheFactory {
	f := &PreferencesCacheFactory{
		redisConfig:           cfg,
		ttl:                   DefaultPreferencesTTL,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateCache creates a preferences cache based on the Redis configuration.
// With Redis disabled it returns an in-memory cache. With Redis enabled it
// tries Redis first and falls back to in-memory when allowed.
func (f *PreferencesCacheFactory) CreateCache() (PreferencesCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory preferences cache")
		return NewInMemoryPreferencesCache(f.ttl), nil
	}

	cache, err := NewRedisPreferencesCache(f.redisConfig, f.ttl)
	if err == nil {
		f.logger.Info("using Redis preferences cache")
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for preferences cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory preferences cache. "+
		"Instances will not share cached preferences.",
		zap.Error(err),
	)
	return NewInMemoryPreferencesCache(f.ttl), nil
}

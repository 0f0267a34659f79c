package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/notification"
)

type cachedPrefs struct {
	prefs     notification.Preferences
	expiresAt time.Time
}

// InMemoryPreferencesCache is a TTL-bounded map cache. Suitable for
// single-instance deployments and testing; entries are not shared across
// process instances.
type InMemoryPreferencesCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]cachedPrefs
	ttl     time.Duration
}

// NewInMemoryPreferencesCache creates a new in-memory cache with the given TTL
func NewInMemoryPreferencesCache(ttl time.Duration) *InMemoryPreferencesCache {
	if ttl <= 0 {
		ttl = DefaultPreferencesTTL
	}
	return &InMemoryPreferencesCache{
		entries: make(map[uuid.UUID]cachedPrefs),
		ttl:     ttl,
	}
}

// Get returns the cached preferences for a user, if present and unexpired
func (c *InMemoryPreferencesCache) Get(ctx context.Context, userID uuid.UUID) (notification.Preferences, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()

	if !ok {
		return notification.Preferences{}, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, userID)
		c.mu.Unlock()
		return notification.Preferences{}, false, nil
	}
	return entry.prefs, true, nil
}

// Set stores the preferences with the configured TTL
func (c *InMemoryPreferencesCache) Set(ctx context.Context, prefs notification.Preferences) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[prefs.UserID] = cachedPrefs{
		prefs:     prefs,
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}

// Invalidate removes the cached entry for a user
func (c *InMemoryPreferencesCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	return nil
}

// Ensure InMemoryPreferencesCache implements PreferencesCache
var _ PreferencesCache = (*InMemoryPreferencesCache)(nil)

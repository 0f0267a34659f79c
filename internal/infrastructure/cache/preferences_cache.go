package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appnotification "github.com/storefront/backend/internal/application/notification"
	"github.com/storefront/backend/internal/domain/notification"
)

// DefaultPreferencesTTL bounds how long a cached preferences record may lag
// behind a write made by another process instance.
const DefaultPreferencesTTL = 5 * time.Minute

// PreferencesCache is the read-through cache used in front of the
// preferences store. Get reports a miss with ok=false, not an error.
type PreferencesCache interface {
	Get(ctx context.Context, userID uuid.UUID) (notification.Preferences, bool, error)
	Set(ctx context.Context, prefs notification.Preferences) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// CachedPreferencesStore wraps a PreferencesStore with a read-through cache.
// Cache failures degrade to the inner store; they never fail the request.
type CachedPreferencesStore struct {
	inner  appnotification.PreferencesStore
	cache  PreferencesCache
	logger *zap.Logger
}

// NewCachedPreferencesStore creates a new CachedPreferencesStore
func NewCachedPreferencesStore(inner appnotification.PreferencesStore, cache PreferencesCache, logger *zap.Logger) *CachedPreferencesStore {
	return &CachedPreferencesStore{
		inner:  inner,
		cache:  cache,
		logger: logger,
	}
}

// Get returns cached preferences when present, loading and caching them
// from the inner store on a miss.
func (s *CachedPreferencesStore) Get(ctx context.Context, userID uuid.UUID) (notification.Preferences, error) {
	prefs, ok, err := s.cache.Get(ctx, userID)
	if err != nil {
		s.logger.Warn("preferences cache read failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	} else if ok {
		return prefs, nil
	}

	prefs, err = s.inner.Get(ctx, userID)
	if err != nil {
		return notification.Preferences{}, err
	}

	if err := s.cache.Set(ctx, prefs); err != nil {
		s.logger.Warn("preferences cache write failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}
	return prefs, nil
}

// Save writes through to the inner store and invalidates the cached entry
func (s *CachedPreferencesStore) Save(ctx context.Context, prefs notification.Preferences) error {
	if err := s.inner.Save(ctx, prefs); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, prefs.UserID); err != nil {
		s.logger.Warn("preferences cache invalidation failed",
			zap.String("user_id", prefs.UserID.String()),
			zap.Error(err))
	}
	return nil
}

// Ensure CachedPreferencesStore implements PreferencesStore
var _ appnotification.PreferencesStore = (*CachedPreferencesStore)(nil)

package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/notification"
	"github.com/storefront/backend/internal/domain/shared"
)

// PreferencesStore is the persistence port for per-user notification
// preferences. Get returns a NOT_FOUND domain error for users who never
// saved preferences.
type PreferencesStore interface {
	Get(ctx context.Context, userID uuid.UUID) (notification.Preferences, error)
	Save(ctx context.Context, prefs notification.Preferences) error
}

// PreferencesService resolves and updates user notification preferences.
// Users without a stored record get the opt-in defaults.
type PreferencesService struct {
	store PreferencesStore
}

// NewPreferencesService creates a new PreferencesService
func NewPreferencesService(store PreferencesStore) *PreferencesService {
	return &PreferencesService{store: store}
}

// Resolve returns the user's preferences, falling back to defaults when
// none are stored
func (s *PreferencesService) Resolve(ctx context.Context, userID uuid.UUID) (notification.Preferences, error) {
	prefs, err := s.store.Get(ctx, userID)
	if err != nil {
		if shared.IsCode(err, shared.CodeNotFound) {
			return notification.DefaultPreferences(userID), nil
		}
		return notification.Preferences{}, err
	}
	return prefs, nil
}

// Update replaces the user's stored preferences
func (s *PreferencesService) Update(ctx context.Context, prefs notification.Preferences) error {
	if prefs.UserID == uuid.Nil {
		return shared.NewValidationError("user id is required")
	}
	return s.store.Save(ctx, prefs)
}

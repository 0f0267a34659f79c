package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storefront/backend/internal/domain/notification"
	"github.com/storefront/backend/internal/domain/shared"
)

// PreferencesRecord is the stored form of a user's notification preferences
type PreferencesRecord struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Email bool `gorm:"not null;default:false"`
	SMS   bool `gorm:"not null;default:false"`
	Push  bool `gorm:"not null;default:false"`

	OrderConfirmation    bool `gorm:"not null;default:false"`
	StatusUpdates        bool `gorm:"not null;default:false"`
	ShippingUpdates      bool `gorm:"not null;default:false"`
	DeliveryConfirmation bool `gorm:"not null;default:false"`
	IssueResolution      bool `gorm:"not null;default:false"`

	EmailAddress string `gorm:"type:varchar(320)"`
	PhoneNumber  string `gorm:"type:varchar(32)"`
	PushToken    string `gorm:"type:varchar(512)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (PreferencesRecord) TableName() string {
	return "notification_preferences"
}

// ToDomain converts the stored record to the domain value
func (m PreferencesRecord) ToDomain() notification.Preferences {
	return notification.Preferences{
		UserID:               m.UserID,
		Email:                m.Email,
		SMS:                  m.SMS,
		Push:                 m.Push,
		OrderConfirmation:    m.OrderConfirmation,
		StatusUpdates:        m.StatusUpdates,
		ShippingUpdates:      m.ShippingUpdates,
		DeliveryConfirmation: m.DeliveryConfirmation,
		IssueResolution:      m.IssueResolution,
		EmailAddress:         m.EmailAddress,
		PhoneNumber:          m.PhoneNumber,
		PushToken:            m.PushToken,
	}
}

func recordFromDomain(p notification.Preferences) PreferencesRecord {
	return PreferencesRecord{
		UserID:               p.UserID,
		Email:                p.Email,
		SMS:                  p.SMS,
		Push:                 p.Push,
		OrderConfirmation:    p.OrderConfirmation,
		StatusUpdates:        p.StatusUpdates,
		ShippingUpdates:      p.ShippingUpdates,
		DeliveryConfirmation: p.DeliveryConfirmation,
		IssueResolution:      p.IssueResolution,
		EmailAddress:         p.EmailAddress,
		PhoneNumber:          p.PhoneNumber,
		PushToken:            p.PushToken,
	}
}

// GormPreferencesRepository stores notification preferences using GORM
type GormPreferencesRepository struct {
	db *gorm.DB
}

// NewGormPreferencesRepository creates a new GormPreferencesRepository
func NewGormPreferencesRepository(db *gorm.DB) *GormPreferencesRepository {
	return &GormPreferencesRepository{db: db}
}

// Get loads the preferences for a user. Users who never saved preferences
// get a NOT_FOUND domain error.
func (r *GormPreferencesRepository) Get(ctx context.Context, userID uuid.UUID) (notification.Preferences, error) {
	var record PreferencesRecord
	if err := r.db.WithContext(ctx).First(&record, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notification.Preferences{}, shared.ErrNotFound
		}
		return notification.Preferences{}, err
	}
	return record.ToDomain(), nil
}

// Save upserts the preferences for a user
func (r *GormPreferencesRepository) Save(ctx context.Context, prefs notification.Preferences) error {
	record := recordFromDomain(prefs)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(&record).Error
}

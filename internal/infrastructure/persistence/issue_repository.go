package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/issue"
	"github.com/storefront/backend/internal/domain/shared"
)

// GormIssueRepository implements issue.Repository using GORM
type GormIssueRepository struct {
	db *gorm.DB
}

// NewGormIssueRepository creates a new GormIssueRepository
func NewGormIssueRepository(db *gorm.DB) *GormIssueRepository {
	return &GormIssueRepository{db: db}
}

// FindByID finds an issue by its ID
func (r *GormIssueRepository) FindByID(ctx context.Context, id uuid.UUID) (*issue.Issue, error) {
	var is issue.Issue
	if err := r.db.WithContext(ctx).First(&is, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &is, nil
}

// FindByOrder finds all issues reported against an order, newest first
func (r *GormIssueRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]*issue.Issue, error) {
	var issues []*issue.Issue
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("reported_at DESC").
		Find(&issues).Error; err != nil {
		return nil, err
	}
	return issues, nil
}

// FindAll finds issues matching the filter
func (r *GormIssueRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*issue.Issue, error) {
	var issues []*issue.Issue
	query := r.applyConditions(r.db.WithContext(ctx).Model(&issue.Issue{}), filter)

	query = query.Offset(filter.Offset()).Limit(filter.Limit())
	field := ValidateSortField(filter.OrderBy, IssueSortFields, "created_at")
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&issues).Error; err != nil {
		return nil, err
	}
	return issues, nil
}

// Count counts issues matching the filter
func (r *GormIssueRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyConditions(r.db.WithContext(ctx).Model(&issue.Issue{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an issue
func (r *GormIssueRepository) Save(ctx context.Context, is *issue.Issue) error {
	return r.db.WithContext(ctx).Save(is).Error
}

func (r *GormIssueRepository) applyConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "order_id":
			query = query.Where("order_id = ?", value)
		case "user_id":
			query = query.Where("user_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "priority":
			query = query.Where("priority = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("reported_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("reported_at <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormIssueRepository implements issue.Repository
var _ issue.Repository = (*GormIssueRepository)(nil)

package issue

import (
	"context"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// Repository is the persistence port for issues
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Issue, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]*Issue, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Issue, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, issue *Issue) error
}

package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// Repository defines persistence operations for the Order aggregate.
// SaveWithLock must reject a save whose in-memory version no longer matches
// the stored version, so two writers cannot interleave on the same order.
type Repository interface {
	// FindByID finds an order by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindByUser finds orders belonging to a user
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Order, error)
	// FindAll finds orders matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)
	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// CountByStatus counts orders in a given status
	CountByStatus(ctx context.Context, status Status) (int64, error)
	// Save creates a new order
	Save(ctx context.Context, o *Order) error
	// SaveWithLock updates an existing order with optimistic locking
	SaveWithLock(ctx context.Context, o *Order) error
}

package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// AvailabilityCheck is one product line to verify before confirming an order
type AvailabilityCheck struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
}

// AvailabilityResult reports the outcome of an inventory check. Reachable
// is false when the inventory system could not be consulted at all, which
// the caller treats as a soft failure.
type AvailabilityResult struct {
	Reachable   bool
	Unavailable []AvailabilityCheck
}

// InventoryGate is consulted before an order moves to confirmed. An
// unreachable gate does not block confirmation; unavailable items do.
type InventoryGate interface {
	CheckAvailability(ctx context.Context, checks []AvailabilityCheck) AvailabilityResult
}

// PermissiveInventoryGate treats every item as available. Used until a
// real inventory integration is configured.
type PermissiveInventoryGate struct{}

func (PermissiveInventoryGate) CheckAvailability(_ context.Context, _ []AvailabilityCheck) AvailabilityResult {
	return AvailabilityResult{Reachable: true}
}

// inventoryConflictError builds the rejection carrying the blocked items
func inventoryConflictError(unavailable []AvailabilityCheck) error {
	names := make([]string, len(unavailable))
	for i, u := range unavailable {
		names[i] = fmt.Sprintf("%s (x%d)", u.ProductName, u.Quantity)
	}
	return shared.NewDomainError(shared.CodeInventoryConflict,
		"Insufficient inventory for: "+strings.Join(names, ", "))
}

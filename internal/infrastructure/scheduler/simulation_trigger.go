package scheduler

import (
	"context"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// SimulationTrigger subscribes to order creation and hands newly placed
// orders to the workflow simulator.
type SimulationTrigger struct {
	simulator *WorkflowSimulator
	logger    *zap.Logger
}

// NewSimulationTrigger creates a new simulation trigger
func NewSimulationTrigger(simulator *WorkflowSimulator, logger *zap.Logger) *SimulationTrigger {
	return &SimulationTrigger{
		simulator: simulator,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler subscribes to
func (t *SimulationTrigger) EventTypes() []string {
	return []string{order.EventTypeOrderCreated}
}

// Handle starts a simulated lifecycle walk when an order is placed
func (t *SimulationTrigger) Handle(ctx context.Context, event shared.DomainEvent) error {
	created, ok := event.(*order.CreatedEvent)
	if !ok {
		return nil
	}

	if t.simulator.SimulateOrder(created.OrderID) {
		t.logger.Debug("lifecycle simulation scheduled",
			zap.String("order_id", created.OrderID.String()))
	}
	return nil
}

// Ensure SimulationTrigger implements EventHandler
var _ shared.EventHandler = (*SimulationTrigger)(nil)

package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// StatusAdvancer applies one status transition to an order
type StatusAdvancer interface {
	UpdateStatus(ctx context.Context, orderID uuid.UUID, req apporder.UpdateStatusRequest) (*apporder.Response, error)
}

// OrderLookup re-reads an order's current state between simulation steps
type OrderLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
}

// WorkflowSimulator walks newly placed orders through the lifecycle on a
// timer: CONFIRMED, then PROCESSING, then SHIPPED, then DELIVERED, one
// step per delay interval. It exists for demo and development environments
// where no real fulfilment system drives the order forward.
type WorkflowSimulator struct {
	advancer  StatusAdvancer
	orders    OrderLookup
	stepDelay time.Duration
	logger    *zap.Logger

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewWorkflowSimulator creates a new workflow simulator
func NewWorkflowSimulator(advancer StatusAdvancer, orders OrderLookup, stepDelay time.Duration, logger *zap.Logger) *WorkflowSimulator {
	if stepDelay <= 0 {
		stepDelay = 30 * time.Second
	}
	return &WorkflowSimulator{
		advancer:  advancer,
		orders:    orders,
		stepDelay: stepDelay,
		logger:    logger,
	}
}

// Start marks the simulator as running. Orders are handed to it through
// SimulateOrder; there is no polling loop.
func (s *WorkflowSimulator) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.stop = make(chan struct{})
	s.running = true
	s.logger.Info("workflow simulator started",
		zap.Duration("step_delay", s.stepDelay))
	return nil
}

// Stop stops the simulator and waits for in-flight walks to finish
func (s *WorkflowSimulator) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.logger.Info("workflow simulator stopped")
	return nil
}

// SimulateOrder schedules the lifecycle walk for a pending order.
// Returns false when the simulator is not running.
func (s *WorkflowSimulator) SimulateOrder(orderID uuid.UUID) bool {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return false
	}
	stop := s.stop
	s.wg.Add(1)
	s.mu.Unlock()

	go s.walk(orderID, stop)
	return true
}

// walk advances the order one status per step delay, re-reading the order
// before each step and aborting as soon as its state diverges from the
// simulated path. A cancelled or manually advanced order is left alone.
func (s *WorkflowSimulator) walk(orderID uuid.UUID, stop <-chan struct{}) {
	defer s.wg.Done()

	steps := []struct {
		from order.Status
		to   order.Status
	}{
		{order.StatusPending, order.StatusConfirmed},
		{order.StatusConfirmed, order.StatusProcessing},
		{order.StatusProcessing, order.StatusShipped},
		{order.StatusShipped, order.StatusDelivered},
	}

	for _, step := range steps {
		timer := time.NewTimer(s.stepDelay)
		select {
		case <-timer.C:
		case <-stop:
			timer.Stop()
			return
		}

		if !s.advance(orderID, step.from, step.to) {
			return
		}
	}
}

// advance performs one verified status transition, reporting whether the
// walk should continue
func (s *WorkflowSimulator) advance(orderID uuid.UUID, from, to order.Status) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		s.logger.Warn("simulation aborted, order lookup failed",
			zap.String("order_id", orderID.String()),
			zap.Error(err))
		return false
	}
	if o.Status != from {
		s.logger.Info("simulation aborted, order diverged from simulated path",
			zap.String("order_id", orderID.String()),
			zap.String("status", o.Status.String()))
		return false
	}

	if _, err := s.advancer.UpdateStatus(ctx, orderID, apporder.UpdateStatusRequest{
		Status: to.String(),
	}); err != nil {
		// A concurrent writer beat the simulator to this order
		if shared.IsCode(err, shared.CodeConcurrencyConflict) || shared.IsCode(err, shared.CodeInvalidTransition) {
			s.logger.Info("simulation aborted, order advanced concurrently",
				zap.String("order_id", orderID.String()))
			return false
		}
		s.logger.Warn("simulation step failed",
			zap.String("order_id", orderID.String()),
			zap.String("target_status", to.String()),
			zap.Error(err))
		return false
	}

	s.logger.Debug("simulated fulfilment step",
		zap.String("order_id", orderID.String()),
		zap.String("status", to.String()))
	return true
}

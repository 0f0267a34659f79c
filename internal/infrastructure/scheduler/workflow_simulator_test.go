package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// fakeOrderWorld backs both the lookup and the advancer with one mutable order
type fakeOrderWorld struct {
	mu     sync.Mutex
	status order.Status
	steps  []order.Status
}

func newFakeOrderWorld(status order.Status) *fakeOrderWorld {
	return &fakeOrderWorld{status: status}
}

func (w *fakeOrderWorld) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	o := &order.Order{Status: w.status}
	o.ID = id
	return o, nil
}

func (w *fakeOrderWorld) UpdateStatus(ctx context.Context, orderID uuid.UUID, req apporder.UpdateStatusRequest) (*apporder.Response, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	target := order.Status(req.Status)
	if !w.status.CanTransitionTo(target) {
		return nil, shared.NewInvalidTransitionError("cannot transition")
	}
	w.status = target
	w.steps = append(w.steps, target)
	return &apporder.Response{ID: orderID, Status: string(target)}, nil
}

func (w *fakeOrderWorld) currentStatus() order.Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

func (w *fakeOrderWorld) recordedSteps() []order.Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]order.Status(nil), w.steps...)
}

func startSimulator(t *testing.T, world *fakeOrderWorld, delay time.Duration) *WorkflowSimulator {
	sim := NewWorkflowSimulator(world, world, delay, zap.NewNop())
	require.NoError(t, sim.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = sim.Stop(ctx)
	})
	return sim
}

func TestWorkflowSimulator_WalksPendingOrderToDelivered(t *testing.T) {
	world := newFakeOrderWorld(order.StatusPending)
	sim := startSimulator(t, world, 5*time.Millisecond)

	require.True(t, sim.SimulateOrder(uuid.New()))

	assert.Eventually(t, func() bool {
		return world.currentStatus() == order.StatusDelivered
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []order.Status{
		order.StatusConfirmed,
		order.StatusProcessing,
		order.StatusShipped,
		order.StatusDelivered,
	}, world.recordedSteps())
}

func TestWorkflowSimulator_AbortsWhenOrderDiverges(t *testing.T) {
	world := newFakeOrderWorld(order.StatusCancelled)
	sim := startSimulator(t, world, 5*time.Millisecond)

	require.True(t, sim.SimulateOrder(uuid.New()))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, order.StatusCancelled, world.currentStatus())
	assert.Empty(t, world.recordedSteps())
}

func TestWorkflowSimulator_AbortsAfterManualConfirmation(t *testing.T) {
	// An operator confirmed the order before the first simulated step
	world := newFakeOrderWorld(order.StatusConfirmed)
	sim := startSimulator(t, world, 5*time.Millisecond)

	require.True(t, sim.SimulateOrder(uuid.New()))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, order.StatusConfirmed, world.currentStatus())
	assert.Empty(t, world.recordedSteps())
}

func TestWorkflowSimulator_RejectsWhenStopped(t *testing.T) {
	world := newFakeOrderWorld(order.StatusPending)
	sim := NewWorkflowSimulator(world, world, time.Millisecond, zap.NewNop())

	assert.False(t, sim.SimulateOrder(uuid.New()))
}

func TestWorkflowSimulator_StopHaltsWalks(t *testing.T) {
	world := newFakeOrderWorld(order.StatusPending)
	sim := NewWorkflowSimulator(world, world, time.Hour, zap.NewNop())
	require.NoError(t, sim.Start(context.Background()))

	require.True(t, sim.SimulateOrder(uuid.New()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, sim.Stop(ctx))
	assert.Empty(t, world.recordedSteps())
}

func TestSimulationTrigger_SchedulesOnOrderCreation(t *testing.T) {
	world := newFakeOrderWorld(order.StatusPending)
	sim := startSimulator(t, world, 5*time.Millisecond)
	trigger := NewSimulationTrigger(sim, zap.NewNop())

	o := &order.Order{Status: order.StatusPending}
	o.ID = uuid.New()
	event := order.NewCreatedEvent(o)

	require.NoError(t, trigger.Handle(context.Background(), event))
	assert.Eventually(t, func() bool {
		return world.currentStatus() == order.StatusDelivered
	}, time.Second, 5*time.Millisecond)
}

func TestSimulationTrigger_IgnoresStatusChanges(t *testing.T) {
	world := newFakeOrderWorld(order.StatusProcessing)
	sim := startSimulator(t, world, time.Millisecond)
	trigger := NewSimulationTrigger(sim, zap.NewNop())

	o := &order.Order{Status: order.StatusProcessing}
	o.ID = uuid.New()
	event := order.NewStatusChangedEvent(o, order.StatusConfirmed)

	require.NoError(t, trigger.Handle(context.Background(), event))
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, world.recordedSteps())
}

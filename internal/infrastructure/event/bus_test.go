package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
)

type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New()),
		Data:            "test data",
	}
}

type testHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panics     bool
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) handledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_PublishDispatchesToSubscribers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	defer bus.Stop(context.Background())

	handler := newTestHandler("order.created")
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("order.created"))
	require.NoError(t, err)
	assert.Equal(t, 1, handler.handledCount())
}

func TestInMemoryEventBus_PublishSkipsUnrelatedTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("order.created")
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("order.status_changed"))
	require.NoError(t, err)
	assert.Equal(t, 0, handler.handledCount())
}

func TestInMemoryEventBus_PublishMultipleEvents(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("order.created", "order.status_changed")
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(),
		newTestEvent("order.created"),
		newTestEvent("order.status_changed"),
	)
	require.NoError(t, err)
	assert.Equal(t, 2, handler.handledCount())
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := newTestHandler("order.created")
	failing.err = errors.New("handler failure")
	healthy := newTestHandler("order.created")

	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("order.created"))
	require.NoError(t, err)
	assert.Equal(t, 1, healthy.handledCount())
}

func TestInMemoryEventBus_HandlerPanicIsContained(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	panicking := newTestHandler("order.created")
	panicking.panics = true
	healthy := newTestHandler("order.created")

	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("order.created"))
	require.NoError(t, err)
	assert.Equal(t, 1, healthy.handledCount())
}

func TestInMemoryEventBus_StopDropsNewEvents(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))

	handler := newTestHandler("order.created")
	bus.Subscribe(handler)

	require.NoError(t, bus.Stop(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.created")))
	assert.Equal(t, 0, handler.handledCount())

	// Start accepts events again
	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.created")))
	assert.Equal(t, 1, handler.handledCount())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("order.created")
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("order.created"))
	require.NoError(t, err)
	assert.Equal(t, 0, handler.handledCount())
}

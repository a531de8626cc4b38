package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, uuid.New(), uuid.New())}
}

type testHandler struct {
	eventTypes []string
	err        error
	panics     bool

	mu      sync.Mutex
	handled []shared.DomainEvent
}

func (h *testHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event)
	h.mu.Unlock()
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *testHandler) EventTypes() []string { return h.eventTypes }

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestPublishRoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	sales := &testHandler{eventTypes: []string{"trade.sale_created"}}
	all := &testHandler{}
	bus.Subscribe(sales)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("trade.sale_created"),
		newTestEvent("inventory.stock_below_threshold"),
	))

	assert.Equal(t, 1, sales.count())
	assert.Equal(t, 2, all.count())
}

func TestExplicitTypesOverrideHandlerTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &testHandler{eventTypes: []string{"a"}}
	bus.Subscribe(h, "b")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("a"), newTestEvent("b")))
	assert.Equal(t, 1, h.count())
}

func TestFailingHandlersAreLoggedAndIsolated(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := &testHandler{eventTypes: []string{"x"}, err: errors.New("handler error")}
	panicking := &testHandler{eventTypes: []string{"x"}, panics: true}
	healthy := &testHandler{eventTypes: []string{"x"}}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("x")))

	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, 2, logs.FilterMessage("Event handler failed").Len())
}

func TestUnsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &testHandler{eventTypes: []string{"x"}}
	bus.Subscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("x")))
	bus.Unsubscribe(h)
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("x")))

	assert.Equal(t, 1, h.count())
}

func TestConcurrentPublish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &testHandler{eventTypes: []string{"x"}}
	bus.Subscribe(h)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = bus.Publish(context.Background(), newTestEvent("x"))
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, h.count())
}

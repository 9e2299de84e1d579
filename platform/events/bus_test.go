package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

type countingHandler struct {
	mu    sync.Mutex
	calls int
	err   error
	done  chan struct{}
}

func (h *countingHandler) Handle(ctx context.Context, event Event) error {
	h.mu.Lock()
	h.calls++
	h.mu.Unlock()
	if h.done != nil {
		h.done <- struct{}{}
	}
	return h.err
}

func (h *countingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

func TestPublish_DispatchesToSubscribedHandlers(t *testing.T) {
	bus := NewInMemoryBus(nil)
	handler := &countingHandler{done: make(chan struct{}, 1)}
	bus.Subscribe("client.updated", handler)

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "client.updated"})

	select {
	case <-handler.done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}
	if handler.count() != 1 {
		t.Fatalf("expected 1 call, got %d", handler.count())
	}
}

func TestPublish_IgnoresUnsubscribedEvents(t *testing.T) {
	bus := NewInMemoryBus(nil)
	handler := &countingHandler{done: make(chan struct{}, 1)}
	bus.Subscribe("client.updated", handler)

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "client.deleted"})

	select {
	case <-handler.done:
		t.Fatal("handler invoked for an event it never subscribed to")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPublishSync_CollectsHandlerErrors(t *testing.T) {
	bus := NewInMemoryBus(nil)
	failing := errors.New("handler failed")
	bus.Subscribe("client.updated", &countingHandler{err: failing})
	ok := &countingHandler{}
	bus.Subscribe("client.updated", ok)

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "client.updated"})
	if !errors.Is(err, failing) {
		t.Fatalf("expected handler error, got %v", err)
	}
	if ok.count() != 1 {
		t.Fatalf("expected remaining handlers to still run, got %d calls", ok.count())
	}
}

func TestPublishSync_NoHandlersIsNoop(t *testing.T) {
	bus := NewInMemoryBus(nil)

	if err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "client.updated"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHandlerFunc_AdaptsFunctions(t *testing.T) {
	bus := NewInMemoryBus(nil)
	calls := 0
	bus.Subscribe("client.updated", HandlerFunc(func(ctx context.Context, event Event) error {
		calls++
		return nil
	}))

	if err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "client.updated"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

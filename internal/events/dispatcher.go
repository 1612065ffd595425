package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// inMemoryDispatcher is a simple synchronous dispatcher, used in tests where
// side effects must be observable immediately after the call.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
}

// NewInMemoryDispatcher creates a synchronous dispatcher instance.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{
		listeners: make(map[EventType][]EventHandler),
	}
}

// Publish synchronously invokes handlers for the given event.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		// handler errors never propagate to the publisher
		_ = handler(ctx, event)
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

// asyncDispatcher queues events onto a buffered channel consumed by a single
// worker goroutine. Publishing never blocks the mutating request beyond the
// enqueue; handler failures are logged and never propagate to the publisher.
type asyncDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	queue     chan Event
	done      chan struct{}
	logger    *zap.Logger
	closeOnce sync.Once
}

// NewAsyncDispatcher creates the production dispatcher with the given queue size.
func NewAsyncDispatcher(queueSize int, logger *zap.Logger) *AsyncDispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	d := &asyncDispatcher{
		listeners: make(map[EventType][]EventHandler),
		queue:     make(chan Event, queueSize),
		done:      make(chan struct{}),
		logger:    logger,
	}
	go d.run()
	return &AsyncDispatcher{inner: d}
}

// AsyncDispatcher is the exported handle over the async dispatcher, adding
// lifecycle control for shutdown.
type AsyncDispatcher struct {
	inner *asyncDispatcher
}

// Publish enqueues the event; a full queue drops the event with a warning
// rather than blocking the request.
func (a *AsyncDispatcher) Publish(ctx context.Context, event Event) error {
	select {
	case a.inner.queue <- event:
	default:
		a.inner.logger.Warn("event queue full, dropping event",
			zap.String("event_type", string(event.Type)),
			zap.String("incident_id", event.IncidentID))
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (a *AsyncDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	a.inner.mu.Lock()
	defer a.inner.mu.Unlock()
	a.inner.listeners[eventType] = append(a.inner.listeners[eventType], handler)
}

// Close stops the worker after draining queued events.
func (a *AsyncDispatcher) Close() {
	a.inner.closeOnce.Do(func() {
		close(a.inner.queue)
		<-a.inner.done
	})
}

func (d *asyncDispatcher) run() {
	defer close(d.done)
	for event := range d.queue {
		d.mu.RLock()
		handlers := append([]EventHandler{}, d.listeners[event.Type]...)
		d.mu.RUnlock()

		for _, handler := range handlers {
			if err := handler(context.Background(), event); err != nil {
				d.logger.Warn("event handler failed",
					zap.String("event_type", string(event.Type)),
					zap.String("incident_id", event.IncidentID),
					zap.Error(err))
			}
		}
	}
}

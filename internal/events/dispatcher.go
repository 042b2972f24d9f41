package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// EventHandler reacts to a query or account event.
type EventHandler func(context.Context, Event) error

// Dispatcher fans query and account events out to subscribers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// HandlerError reports which subscriber failed for which event.
type HandlerError struct {
	EventID   string
	EventType EventType
	Position  int
	Err       error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s handler #%d (event %s): %v", e.EventType, e.Position, e.EventID, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// ErrHandlerPanic marks a subscriber that panicked instead of returning.
var ErrHandlerPanic = errors.New("event handler panicked")

type syncDispatcher struct {
	mu          sync.RWMutex
	subscribers map[EventType][]EventHandler
}

// NewInMemoryDispatcher returns a dispatcher that runs subscribers inline,
// in subscription order, on the publishing goroutine.
func NewInMemoryDispatcher() Dispatcher {
	return &syncDispatcher{subscribers: make(map[EventType][]EventHandler)}
}

// Publish runs every subscriber even when earlier ones fail or panic, and
// joins their failures. Subscribers not yet reached when ctx is cancelled are
// skipped.
func (d *syncDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := d.subscribers[event.Type]
	d.mu.RUnlock()

	var errs []error
	for i, handler := range handlers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("publish %s: %w", event.Type, err))
			break
		}
		if err := invoke(ctx, handler, event); err != nil {
			errs = append(errs, &HandlerError{EventID: event.ID, EventType: event.Type, Position: i, Err: err})
		}
	}
	return errors.Join(errs...)
}

func invoke(ctx context.Context, handler EventHandler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return handler(ctx, event)
}

// Subscribe appends handler to the subscribers of eventType.
func (d *syncDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	// copy on write so Publish can iterate a snapshot without holding the lock
	current := d.subscribers[eventType]
	next := make([]EventHandler, len(current), len(current)+1)
	copy(next, current)
	d.subscribers[eventType] = append(next, handler)
}

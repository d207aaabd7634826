package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aussiebroadwan/licensing/pkg/slogx"
)

// EventType names an order status transition.
type EventType string

const (
	EventOrderCompleted EventType = "order.completed"
	EventOrderRefunded  EventType = "order.refunded"
	EventOrderCancelled EventType = "order.cancelled"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventOrderCompleted, EventOrderRefunded, EventOrderCancelled:
		return true
	}
	return false
}

// Status returns the order status the event moves the order into.
func (t EventType) Status() string {
	switch t {
	case EventOrderCompleted:
		return StatusCompleted
	case EventOrderRefunded:
		return StatusRefunded
	case EventOrderCancelled:
		return StatusCancelled
	}
	return ""
}

// EventForStatus is the inverse of EventType.Status.
func EventForStatus(status string) (EventType, bool) {
	for _, t := range []EventType{EventOrderCompleted, EventOrderRefunded, EventOrderCancelled} {
		if t.Status() == status {
			return t, true
		}
	}
	return "", false
}

// Event is an order status transition delivered to listeners.
type Event struct {
	ID      string
	Type    EventType
	OrderID string
}

// Listener handles one event.
type Listener func(ctx context.Context, e Event) error

// Dispatcher fans events out to the listeners subscribed to their type.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]Listener
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[EventType][]Listener)}
}

// Subscribe registers l for events of type t.
func (d *Dispatcher) Subscribe(t EventType, l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[t] = append(d.listeners[t], l)
}

// Dispatch runs every listener for e.Type in subscription order. A failing
// or panicking listener does not stop the others; their errors are joined.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) error {
	d.mu.RLock()
	listeners := append([]Listener(nil), d.listeners[e.Type]...)
	d.mu.RUnlock()

	ctx = slogx.With(ctx, "event_id", e.ID, "event_type", string(e.Type), "order_id", e.OrderID)
	log := slogx.FromContext(ctx)

	if len(listeners) == 0 {
		log.Debug("no listeners for order event")
		return nil
	}

	var errs []error
	for i, l := range listeners {
		if err := runListener(ctx, l, e); err != nil {
			log.Error("order event listener failed", "listener", i, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func runListener(ctx context.Context, l Listener, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panic: %v", r)
		}
	}()
	return l(ctx, e)
}

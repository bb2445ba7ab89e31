package domain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"managerh.io/managerh/internal/pkg/logger"
)

// EventHandler processes a domain event.
type EventHandler func(ctx context.Context, event *DomainEvent) error

// EventDispatcher routes committed domain events to in-process subscribers
// (metrics, structured logs). Handlers never influence the outcome of the
// operation that raised the event.
type EventDispatcher struct {
	handlers map[EventType][]EventHandler
	mu       sync.RWMutex
}

// NewEventDispatcher creates a new EventDispatcher.
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{
		handlers: make(map[EventType][]EventHandler),
	}
}

// Register registers a handler for the given event types.
func (d *EventDispatcher) Register(handler EventHandler, eventTypes ...EventType) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, et := range eventTypes {
		d.handlers[et] = append(d.handlers[et], handler)
	}
}

// Dispatch calls every handler registered for the event type in order.
// A failing handler is logged and the rest still run; the first error is returned.
// A nil dispatcher is valid and drops events.
func (d *EventDispatcher) Dispatch(ctx context.Context, event *DomainEvent) error {
	if d == nil || event == nil {
		return nil
	}

	d.mu.RLock()
	handlers := d.handlers[event.EventType]
	d.mu.RUnlock()

	var firstErr error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			logger.FromContext(ctx).Error("Event handler failed",
				zap.String("event_type", string(event.EventType)),
				zap.String("event_id", event.EventID),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = fmt.Errorf("handler for %s failed: %w", event.EventType, err)
			}
		}
	}

	return firstErr
}

// NewEvent builds an event with a fresh UUIDv7 id.
func NewEvent(eventType EventType, tenantID, aggregateType, aggregateID string, payload []byte) *DomainEvent {
	return &DomainEvent{
		EventID:       uuid.Must(uuid.NewV7()).String(),
		EventType:     eventType,
		TenantID:      tenantID,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	}
}

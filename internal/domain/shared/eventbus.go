package shared

import "context"

// EventHandler consumes domain events after the producing transaction commits.
// Handlers with an empty EventTypes receive every event.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventPublisher is what application services depend on. Publishing never
// undoes a committed state change; handler failures are logged by the bus.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus routes published events to subscribed handlers.
type EventBus interface {
	EventPublisher
	// Subscribe registers handler for eventTypes, or for the handler's own
	// EventTypes when none are given.
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

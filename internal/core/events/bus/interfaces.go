package bus

import "time"

// EventBus is a thread-safe, in-process pub/sub bus.
//
// Handlers subscribe by Event.Type(). Publish calls them synchronously in the
// caller goroutine, in subscription order, and joins their errors. Handlers
// should be quick or offload heavy work to avoid blocking publishers.
type EventBus interface {
	// Publish delivers the event to all active subscribers of event.Type().
	Publish(event Event) error
	// Subscribe registers a handler for a specific event type.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. It is safe to call with nil.
	Unsubscribe(Subscription) error
	// PublishAsync publishes in a separate goroutine. The returned channel
	// receives the joined handler error (or nil) and is then closed.
	PublishAsync(event Event) <-chan error
	// Subscribers returns the number of active subscriptions for eventType.
	Subscribers(eventType string) int
}

// Event is an immutable message transported by the EventBus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
	Metadata() map[string]any
}

// EventHandler is invoked per delivered event. Returned errors are joined and
// returned from Publish.
type EventHandler func(event Event) error

// Subscription is a registered handler bound to an event type.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

package bus

import "time"

// EventBus is a synchronous, in-process pub/sub bus used to fan out
// constraint notifications (collisions) and simulation frames.
//
// Delivery happens on the publisher's goroutine, in the same tick that
// produced the event. Handlers must be quick; anything slow (network writes)
// belongs on the subscriber's own goroutine.
type EventBus interface {
	// Publish delivers the event to all subscribers of event.Type() in the
	// default topic. Handler errors are joined and returned.
	Publish(event Event) error
	// PublishToTopic publishes within a named topic.
	PublishToTopic(topic string, event Event) error
	// Subscribe registers a handler for an event type in the default topic.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// SubscribeTopic registers a handler for an event type within a topic.
	SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels a subscription. Nil is a no-op.
	Unsubscribe(Subscription) error

	AddObserver(obs Observer)
	RemoveObserver(obs Observer)
	// Metrics is only collected while at least one observer is registered.
	Metrics() Metrics
	Topics() []TopicInfo
}

// Event is an immutable message carried by the bus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type EventHandler func(event Event) error

// Subscription is a handle to a registered handler.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// Observer is told about every publish and its outcome.
type Observer interface {
	OnPublish(topic, eventType string, event Event)
	OnDelivered(topic, eventType string, handlers int, err error, duration time.Duration)
}

type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
}

type TopicInfo struct {
	Name       string
	EventTypes int
	Subs       int
}

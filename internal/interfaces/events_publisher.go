package interfaces

// EventPublisher delivers domain events to external observers. Publish
// failures never fail the operation that produced the event.
type EventPublisher interface {
	Publish(topic string, event any) error
}

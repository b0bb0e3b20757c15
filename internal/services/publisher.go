package services

import "context"

// EventPublisher delivers serialized product events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Product event types, also used as the routing key suffix.
const (
	EventProductCreated   = "created"
	EventProductUpdated   = "updated"
	EventProductVoided    = "voided"
	EventProductDispensed = "dispensed"
	EventProductRestocked = "restocked"
)

// ProductEvent is published after a product write succeeds.
type ProductEvent struct {
	Type       string    `json:"type"`
	ProductID  uuid.UUID `json:"productId"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	Delta      int       `json:"delta,omitempty"`
	Voided     bool      `json:"voided"`
	OccurredAt time.Time `json:"occurredAt"`
}

// RoutingKey returns the broker routing key for the event.
func (e ProductEvent) RoutingKey() string {
	return "product." + e.Type
}

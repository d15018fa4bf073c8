package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"order-analytics/internal/models"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrdersIngested publishes an ORDERS_INGESTED event for a finished
// ingestion run.
func (ep *EventPublisher) PublishOrdersIngested(ctx context.Context, source string, result *models.IngestResult) error {
	event := &models.OrdersIngestedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrdersIngested,
			Timestamp: time.Now(),
		},
		Source:  source,
		Created: result.Created,
		Updated: result.Updated,
		Total:   result.Total,
	}
	key := fmt.Sprintf("ingest-%s", event.EventID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming events to registered callbacks
type EventHandler struct {
	onOrdersIngested func(context.Context, *models.OrdersIngestedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnOrdersIngested registers a handler for ORDERS_INGESTED events
func (eh *EventHandler) OnOrdersIngested(handler func(context.Context, *models.OrdersIngestedEvent) error) {
	eh.onOrdersIngested = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeOrdersIngested:
		if eh.onOrdersIngested != nil {
			var event models.OrdersIngestedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrdersIngested event: %w", err)
			}
			return eh.onOrdersIngested(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}

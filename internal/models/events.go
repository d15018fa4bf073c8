package models

import "time"

// Event types
const (
	EventTypeOrdersIngested = "ORDERS_INGESTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrdersIngestedEvent is published after a successful ingestion run so
// downstream consumers (cache invalidation, audit) see fresh data.
type OrdersIngestedEvent struct {
	BaseEvent
	Source  string `json:"source"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	Total   int    `json:"total"`
}

package worker

import (
	"context"
	"log"

	"order-analytics/internal/broker"
	"order-analytics/internal/models"
)

// SummaryInvalidator drops derived analytics state after fresh data lands.
type SummaryInvalidator interface {
	InvalidateSummary(ctx context.Context) error
}

// CacheWorker consumes ingest events and invalidates the cached analytics
// summary so dashboards and LLM answers see fresh data right after a run.
type CacheWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
}

// NewCacheWorker creates a new cache invalidation worker
func NewCacheWorker(consumer *broker.Consumer, analytics SummaryInvalidator) *CacheWorker {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnOrdersIngested(func(ctx context.Context, event *models.OrdersIngestedEvent) error {
		log.Printf("Orders ingested (source=%s, total=%d), invalidating summary cache",
			event.Source, event.Total)
		return analytics.InvalidateSummary(ctx)
	})

	return &CacheWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
	}
}

// Start starts the worker
func (w *CacheWorker) Start(ctx context.Context) error {
	log.Println("Starting cache invalidation worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *CacheWorker) Stop() error {
	log.Println("Stopping cache invalidation worker...")
	return w.consumer.Close()
}

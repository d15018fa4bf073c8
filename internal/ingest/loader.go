package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"order-analytics/internal/models"
	"order-analytics/internal/util"

	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"
)

// OrderUpserter is the slice of the store the loader needs.
type OrderUpserter interface {
	UpsertOrders(ctx context.Context, orders []models.Order, batchSize int) (*models.IngestResult, error)
}

// Loader maps raw feed records into orders and reconciles them against the
// store as one all-or-nothing batch.
type Loader struct {
	store     OrderUpserter
	batchSize int
	logger    *zap.Logger
}

// NewLoader creates a new loader. batchSize bounds the bulk-insert chunks.
func NewLoader(store OrderUpserter, batchSize int) *Loader {
	return &Loader{
		store:     store,
		batchSize: batchSize,
		logger:    util.GetLogger(),
	}
}

// sourceRecord covers the feed fields the schema extracts; everything else
// rides along untouched in raw_data.
type sourceRecord struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	CreatedAt struct {
		ISO string `json:"iso"`
	} `json:"createdAt"`
	Customer struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	} `json:"customer"`
	TotalPrice     int64  `json:"totalPrice"`
	SubtotalPrice  *int64 `json:"subtotal_price"`
	TotalDiscounts int64  `json:"total_discounts"`
}

// LoadFile ingests a feed file. The file holds either a JSON array of order
// records or an object with the array under "orders".
func (l *Loader) LoadFile(ctx context.Context, path string) (*models.IngestResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read order feed %s: %w", path, err)
	}

	return l.LoadJSON(ctx, data)
}

// LoadJSON ingests a feed document already held in memory.
func (l *Loader) LoadJSON(ctx context.Context, data []byte) (*models.IngestResult, error) {
	records, err := decodeFeed(data)
	if err != nil {
		return nil, err
	}

	return l.LoadRecords(ctx, records)
}

// decodeFeed accepts a bare array or an object wrapping it under "orders".
func decodeFeed(data []byte) ([]json.RawMessage, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var wrapped struct {
		Orders []json.RawMessage `json:"orders"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("malformed order feed: %w", err)
	}
	return wrapped.Orders, nil
}

// LoadRecords ingests a batch of raw order records inside one transaction
// and reports how many rows were created and updated.
func (l *Loader) LoadRecords(ctx context.Context, records []json.RawMessage) (*models.IngestResult, error) {
	ctx, span := util.StartSpan(ctx, "Loader.LoadRecords")
	defer span.End()

	start := time.Now()
	defer func() {
		util.IngestDuration.Observe(time.Since(start).Seconds())
	}()

	candidates := make([]models.Order, 0, len(records))
	for i, raw := range records {
		order, err := l.prepareOrder(raw)
		if err != nil {
			util.IngestRunsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		candidates = append(candidates, order)
	}

	candidates = dedupeLastWins(candidates)

	result, err := l.store.UpsertOrders(ctx, candidates, l.batchSize)
	if err != nil {
		util.IngestRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	util.IngestRunsTotal.WithLabelValues("success").Inc()
	util.OrdersCreatedTotal.Add(float64(result.Created))
	util.OrdersUpdatedTotal.Add(float64(result.Updated))

	l.logger.Info("Ingest run finished",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("total", result.Total))

	return result, nil
}

// prepareOrder builds a candidate order from one raw feed record.
func (l *Loader) prepareOrder(raw json.RawMessage) (models.Order, error) {
	var rec sourceRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return models.Order{}, fmt.Errorf("malformed order record: %w", err)
	}

	createdAt, parsed := ParseFlexibleTime(rec.CreatedAt.ISO)
	if !parsed {
		util.DateParseFallbacksTotal.Inc()
		l.logger.Warn("Unparseable createdAt, falling back to current time",
			zap.String("order_id", rec.ID),
			zap.String("value", rec.CreatedAt.ISO))
	}

	status := rec.Status
	if status == "" {
		status = models.OrderStatusDefault
	}

	total := CentsToDecimal(rec.TotalPrice)
	subtotal := total
	if rec.SubtotalPrice != nil {
		subtotal = CentsToDecimal(*rec.SubtotalPrice)
	}

	return models.Order{
		OrderID:        rec.ID,
		CustomerID:     rec.Customer.ID,
		CustomerName:   rec.Customer.Name,
		CreatedAt:      createdAt,
		Date:           DateOf(createdAt),
		Status:         status,
		TotalAmount:    total,
		SubtotalAmount: subtotal,
		DiscountAmount: CentsToDecimal(rec.TotalDiscounts),
		RawData:        types.JSONText(raw),
	}, nil
}

// dedupeLastWins keeps the last occurrence of every non-empty order_id so a
// batch repeating an id resolves deterministically. Records without an id
// are passed through untouched; the unique constraint rejects them if more
// than one shows up.
func dedupeLastWins(orders []models.Order) []models.Order {
	last := make(map[string]int, len(orders))
	for i := range orders {
		if orders[i].OrderID != "" {
			last[orders[i].OrderID] = i
		}
	}

	out := make([]models.Order, 0, len(orders))
	for i := range orders {
		if orders[i].OrderID != "" && last[orders[i].OrderID] != i {
			continue
		}
		out = append(out, orders[i])
	}
	return out
}

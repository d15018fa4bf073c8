package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"order-analytics/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const defaultInsertBatchSize = 1000

const insertOrdersQuery = `
	INSERT INTO orders (order_id, customer_id, customer_name, created_at, date, status,
	                    total_amount, subtotal_amount, discount_amount, raw_data)
	VALUES (:order_id, :customer_id, :customer_name, :created_at, :date, :status,
	        :total_amount, :subtotal_amount, :discount_amount, :raw_data)`

const replaceOrderQuery = `
	UPDATE orders SET
		customer_id = :customer_id,
		customer_name = :customer_name,
		created_at = :created_at,
		date = :date,
		status = :status,
		total_amount = :total_amount,
		subtotal_amount = :subtotal_amount,
		discount_amount = :discount_amount,
		raw_data = :raw_data
	WHERE order_id = :order_id`

// UpsertOrders reconciles a batch of candidate orders against the table in a
// single transaction. Candidates whose order_id already exists get every
// mutable field replaced; the rest are written with chunked bulk inserts.
// Any failure rolls back the whole run.
func (s *Store) UpsertOrders(ctx context.Context, orders []models.Order, batchSize int) (*models.IngestResult, error) {
	if batchSize <= 0 {
		batchSize = defaultInsertBatchSize
	}

	result := &models.IngestResult{}
	if len(orders) == 0 {
		return result, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin ingest transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := existingOrderIDs(ctx, tx, orders)
	if err != nil {
		return nil, err
	}

	inserts := make([]models.Order, 0, len(orders))
	for i := range orders {
		o := orders[i]
		if _, found := existing[o.OrderID]; found && o.OrderID != "" {
			if _, err := tx.NamedExecContext(ctx, replaceOrderQuery, o); err != nil {
				return nil, fmt.Errorf("failed to update order %s: %w", o.OrderID, err)
			}
			result.Updated++
		} else {
			inserts = append(inserts, o)
		}
	}

	for start := 0; start < len(inserts); start += batchSize {
		end := start + batchSize
		if end > len(inserts) {
			end = len(inserts)
		}
		if _, err := tx.NamedExecContext(ctx, insertOrdersQuery, inserts[start:end]); err != nil {
			return nil, fmt.Errorf("failed to bulk insert orders: %w", err)
		}
	}
	result.Created = len(inserts)
	result.Total = result.Created + result.Updated

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit ingest transaction: %w", err)
	}
	return result, nil
}

// existingOrderIDs returns the subset of the candidates' order ids already
// present in the table.
func existingOrderIDs(ctx context.Context, tx *sqlx.Tx, orders []models.Order) (map[string]struct{}, error) {
	ids := make([]string, 0, len(orders))
	for i := range orders {
		if orders[i].OrderID != "" {
			ids = append(ids, orders[i].OrderID)
		}
	}

	existing := make(map[string]struct{}, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	query, args, err := sqlx.In("SELECT order_id FROM orders WHERE order_id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = tx.Rebind(query)

	var found []string
	if err := tx.SelectContext(ctx, &found, query, args...); err != nil {
		return nil, fmt.Errorf("failed to look up existing orders: %w", err)
	}
	for _, id := range found {
		existing[id] = struct{}{}
	}
	return existing, nil
}

// GetOrderByOrderID retrieves an order by its external identifier
func (s *Store) GetOrderByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE order_id = $1", orderID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order not found: %s", orderID)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetDailyAggregates returns per-day order counts and totals, newest first.
func (s *Store) GetDailyAggregates(ctx context.Context) ([]models.DailyAggregate, error) {
	var rows []models.DailyAggregate
	err := s.db.SelectContext(ctx, &rows, `
		SELECT date, COUNT(*) AS order_count, COALESCE(SUM(total_amount), 0) AS total_amount
		FROM orders
		GROUP BY date
		ORDER BY date DESC`)
	return rows, err
}

// GetDailyAggregatesSince is GetDailyAggregates restricted to dates on or
// after the cutoff.
func (s *Store) GetDailyAggregatesSince(ctx context.Context, cutoff time.Time) ([]models.DailyAggregate, error) {
	var rows []models.DailyAggregate
	err := s.db.SelectContext(ctx, &rows, `
		SELECT date, COUNT(*) AS order_count, COALESCE(SUM(total_amount), 0) AS total_amount
		FROM orders
		WHERE date >= $1
		GROUP BY date
		ORDER BY date DESC`, cutoff)
	return rows, err
}

// GetStatusAggregates returns order counts per status.
func (s *Store) GetStatusAggregates(ctx context.Context) ([]models.StatusAggregate, error) {
	var rows []models.StatusAggregate
	err := s.db.SelectContext(ctx, &rows, `
		SELECT status, COUNT(*) AS count
		FROM orders
		GROUP BY status`)
	return rows, err
}

// GetTopCustomers returns the biggest customers by total spend.
func (s *Store) GetTopCustomers(ctx context.Context, limit int) ([]models.CustomerAggregate, error) {
	var rows []models.CustomerAggregate
	err := s.db.SelectContext(ctx, &rows, `
		SELECT customer_name, COUNT(*) AS order_count, COALESCE(SUM(total_amount), 0) AS total_spent
		FROM orders
		GROUP BY customer_name
		ORDER BY total_spent DESC
		LIMIT $1`, limit)
	return rows, err
}

// CountOrders returns the total number of stored orders.
func (s *Store) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM orders")
	return count, err
}

// TotalRevenue returns the sum of total_amount over all orders.
func (s *Store) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var revenue decimal.Decimal
	err := s.db.GetContext(ctx, &revenue, "SELECT COALESCE(SUM(total_amount), 0) FROM orders")
	return revenue, err
}

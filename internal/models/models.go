package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// Order represents an ingested restaurant order. OrderID is the external
// identifier from the feed and the reconciliation key for upserts.
type Order struct {
	ID             int64           `db:"id" json:"id"`
	OrderID        string          `db:"order_id" json:"order_id"`
	CustomerID     string          `db:"customer_id" json:"customer_id"`
	CustomerName   string          `db:"customer_name" json:"customer_name"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	Date           time.Time       `db:"date" json:"date"`
	Status         string          `db:"status" json:"status"`
	TotalAmount    decimal.Decimal `db:"total_amount" json:"total_amount"`
	SubtotalAmount decimal.Decimal `db:"subtotal_amount" json:"subtotal_amount"`
	DiscountAmount decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	RawData        types.JSONText  `db:"raw_data" json:"raw_data"`
}

// OrderStatusDefault is applied when the source record has no status.
const OrderStatusDefault = "pending"

// IngestResult summarizes one ingestion run.
type IngestResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Total   int `json:"total"`
}

// DailyAggregate is one row of the per-day rollup.
type DailyAggregate struct {
	Date        time.Time       `db:"date" json:"date"`
	OrderCount  int64           `db:"order_count" json:"order_count"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
}

// StatusAggregate is one row of the per-status rollup.
type StatusAggregate struct {
	Status string `db:"status" json:"status"`
	Count  int64  `db:"count" json:"count"`
}

// CustomerAggregate is one row of the top-customer rollup.
type CustomerAggregate struct {
	CustomerName string          `db:"customer_name" json:"customer_name"`
	OrderCount   int64           `db:"order_count" json:"order_count"`
	TotalSpent   decimal.Decimal `db:"total_spent" json:"total_spent"`
}

// Summary bundles everything the dashboard and the LLM context need.
type Summary struct {
	TotalOrders   int64               `json:"total_orders"`
	TotalRevenue  decimal.Decimal     `json:"total_revenue"`
	AverageTicket decimal.Decimal     `json:"average_ticket"`
	Daily         []DailyAggregate    `json:"daily"`
	ByStatus      []StatusAggregate   `json:"by_status"`
	TopCustomers  []CustomerAggregate `json:"top_customers"`
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"order-analytics/internal/models"
	"order-analytics/internal/redisclient"
	"order-analytics/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	summaryCacheKey   = "analytics:summary"
	topCustomersLimit = 10
)

// AnalyticsStore is the read side of the order store.
type AnalyticsStore interface {
	GetDailyAggregates(ctx context.Context) ([]models.DailyAggregate, error)
	GetDailyAggregatesSince(ctx context.Context, cutoff time.Time) ([]models.DailyAggregate, error)
	GetStatusAggregates(ctx context.Context) ([]models.StatusAggregate, error)
	GetTopCustomers(ctx context.Context, limit int) ([]models.CustomerAggregate, error)
	CountOrders(ctx context.Context) (int64, error)
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
}

// SummaryCache holds the assembled summary between ingest runs.
type SummaryCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// AnalyticsService assembles the aggregation summary consumed by the
// dashboard and the LLM context builder. A nil cache disables caching.
type AnalyticsService struct {
	store  AnalyticsStore
	cache  SummaryCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(store AnalyticsStore, cache SummaryCache, ttl time.Duration) *AnalyticsService {
	return &AnalyticsService{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: util.GetLogger(),
	}
}

// Summary returns the full aggregation summary, served from cache when warm.
func (s *AnalyticsService) Summary(ctx context.Context) (*models.Summary, error) {
	if s.cache != nil {
		var cached models.Summary
		err := s.cache.GetJSON(ctx, summaryCacheKey, &cached)
		if err == nil {
			util.SummaryCacheHits.WithLabelValues("hit").Inc()
			return &cached, nil
		}
		if !errors.Is(err, redisclient.ErrCacheMiss) {
			s.logger.Warn("Summary cache read failed", zap.Error(err))
		}
		util.SummaryCacheHits.WithLabelValues("miss").Inc()
	}

	summary, err := s.buildSummary(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, summaryCacheKey, summary, s.ttl); err != nil {
			s.logger.Warn("Summary cache write failed", zap.Error(err))
		}
	}
	return summary, nil
}

func (s *AnalyticsService) buildSummary(ctx context.Context) (*models.Summary, error) {
	count, err := s.store.CountOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	revenue, err := s.store.TotalRevenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	daily, err := s.store.GetDailyAggregates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by day: %w", err)
	}

	byStatus, err := s.store.GetStatusAggregates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by status: %w", err)
	}

	topCustomers, err := s.store.GetTopCustomers(ctx, topCustomersLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by customer: %w", err)
	}

	return &models.Summary{
		TotalOrders:   count,
		TotalRevenue:  revenue,
		AverageTicket: AverageTicket(revenue, count),
		Daily:         daily,
		ByStatus:      byStatus,
		TopCustomers:  topCustomers,
	}, nil
}

// RecentDaily returns the per-day rollup for the trailing window, newest
// first. Used for the LLM context; not cached.
func (s *AnalyticsService) RecentDaily(ctx context.Context, days int) ([]models.DailyAggregate, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	cutoff = time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 0, 0, time.UTC)
	return s.store.GetDailyAggregatesSince(ctx, cutoff)
}

// InvalidateSummary drops the cached summary so the next read rebuilds it.
func (s *AnalyticsService) InvalidateSummary(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, summaryCacheKey)
}

// AverageTicket is revenue divided by order count, 0 when there are no
// orders.
func AverageTicket(revenue decimal.Decimal, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return revenue.DivRound(decimal.NewFromInt(count), 2)
}

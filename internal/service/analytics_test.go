package service

import (
	"context"
	"testing"
	"time"

	"order-analytics/internal/models"
	"order-analytics/internal/redisclient"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyticsStore struct {
	count   int64
	revenue decimal.Decimal
	daily   []models.DailyAggregate
}

func (f *fakeAnalyticsStore) GetDailyAggregates(context.Context) ([]models.DailyAggregate, error) {
	return f.daily, nil
}

func (f *fakeAnalyticsStore) GetDailyAggregatesSince(context.Context, time.Time) ([]models.DailyAggregate, error) {
	return f.daily, nil
}

func (f *fakeAnalyticsStore) GetStatusAggregates(context.Context) ([]models.StatusAggregate, error) {
	return []models.StatusAggregate{{Status: "pending", Count: f.count}}, nil
}

func (f *fakeAnalyticsStore) GetTopCustomers(context.Context, int) ([]models.CustomerAggregate, error) {
	return nil, nil
}

func (f *fakeAnalyticsStore) CountOrders(context.Context) (int64, error) {
	return f.count, nil
}

func (f *fakeAnalyticsStore) TotalRevenue(context.Context) (decimal.Decimal, error) {
	return f.revenue, nil
}

type fakeCache struct {
	data map[string][]byte
	sets int
}

func (f *fakeCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	if _, ok := f.data[key]; !ok {
		return redisclient.ErrCacheMiss
	}
	return nil
}

func (f *fakeCache) SetJSON(_ context.Context, key string, _ interface{}, _ time.Duration) error {
	f.sets++
	f.data[key] = []byte("cached")
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func TestAverageTicket(t *testing.T) {
	revenue := decimal.RequireFromString("100.00")
	assert.Equal(t, "25.00", AverageTicket(revenue, 4).StringFixed(2))
	assert.Equal(t, "33.33", AverageTicket(revenue, 3).StringFixed(2))
}

func TestAverageTicketNoOrders(t *testing.T) {
	assert.Equal(t, "0.00", AverageTicket(decimal.Zero, 0).StringFixed(2))
}

func TestSummary(t *testing.T) {
	store := &fakeAnalyticsStore{
		count:   2,
		revenue: decimal.RequireFromString("117.80"),
		daily: []models.DailyAggregate{
			{Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), OrderCount: 2, TotalAmount: decimal.RequireFromString("117.80")},
		},
	}

	svc := NewAnalyticsService(store, nil, 0)
	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), summary.TotalOrders)
	assert.Equal(t, "117.80", summary.TotalRevenue.StringFixed(2))
	assert.Equal(t, "58.90", summary.AverageTicket.StringFixed(2))
	require.Len(t, summary.Daily, 1)
}

func TestSummaryEmptyStore(t *testing.T) {
	svc := NewAnalyticsService(&fakeAnalyticsStore{}, nil, 0)
	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(0), summary.TotalOrders)
	assert.Equal(t, "0.00", summary.AverageTicket.StringFixed(2))
}

func TestSummaryCacheRoundTrip(t *testing.T) {
	cache := &fakeCache{data: map[string][]byte{}}
	svc := NewAnalyticsService(&fakeAnalyticsStore{count: 1}, cache, time.Minute)

	_, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// Served from cache, no second write.
	_, err = svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	require.NoError(t, svc.InvalidateSummary(context.Background()))
	_, err = svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, cache.sets)
}

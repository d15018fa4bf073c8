package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"order-analytics/internal/models"
	"order-analytics/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalytics struct {
	summary *models.Summary
	err     error
}

func (s *stubAnalytics) Summary(context.Context) (*models.Summary, error) {
	return s.summary, s.err
}

func (s *stubAnalytics) RecentDaily(context.Context, int) ([]models.DailyAggregate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.summary.Daily, nil
}

type stubCompleter struct {
	answer string
	err    error
}

func (s *stubCompleter) Complete(context.Context, string, string) (string, error) {
	return s.answer, s.err
}

type stubIngester struct {
	result *models.IngestResult
	err    error
}

func (s *stubIngester) LoadJSON(context.Context, []byte) (*models.IngestResult, error) {
	return s.result, s.err
}

func dashboardSummary() *models.Summary {
	return &models.Summary{
		TotalOrders:   2,
		TotalRevenue:  decimal.RequireFromString("117.80"),
		AverageTicket: decimal.RequireFromString("58.90"),
		Daily: []models.DailyAggregate{
			{Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), OrderCount: 2, TotalAmount: decimal.RequireFromString("117.80")},
		},
		ByStatus: []models.StatusAggregate{{Status: "pending", Count: 2}},
	}
}

func setupRouter(t *testing.T, completer service.ChatCompleter, analytics *stubAnalytics, loader FeedIngester) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	llm := service.NewLLMService(analytics, completer)
	router := gin.New()
	NewHandler(analytics, llm, loader, nil).SetupRoutes(router)
	return router
}

func TestQueryLLMEmptyQuery(t *testing.T) {
	router := setupRouter(t, &stubCompleter{}, &stubAnalytics{summary: dashboardSummary()}, &stubIngester{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/query-llm", strings.NewReader(`{"query": ""}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "error")
}

func TestQueryLLMUnparseableBody(t *testing.T) {
	router := setupRouter(t, &stubCompleter{}, &stubAnalytics{summary: dashboardSummary()}, &stubIngester{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/query-llm", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryLLMCompleterFailure(t *testing.T) {
	completer := &stubCompleter{err: errors.New("api unreachable")}
	router := setupRouter(t, completer, &stubAnalytics{summary: dashboardSummary()}, &stubIngester{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/query-llm", strings.NewReader(`{"query": "how much revenue?"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body, "error")
}

func TestQueryLLMSuccess(t *testing.T) {
	completer := &stubCompleter{answer: "Revenue is 117.80."}
	router := setupRouter(t, completer, &stubAnalytics{summary: dashboardSummary()}, &stubIngester{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/query-llm", strings.NewReader(`{"query": "how much revenue?"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Revenue is 117.80.", body["answer"])
}

func TestDashboard(t *testing.T) {
	router := setupRouter(t, &stubCompleter{}, &stubAnalytics{summary: dashboardSummary()}, &stubIngester{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "2024-01-15")
	assert.Contains(t, rec.Body.String(), "117.80")
}

func TestGetSummary(t *testing.T) {
	router := setupRouter(t, &stubCompleter{}, &stubAnalytics{summary: dashboardSummary()}, &stubIngester{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body models.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(2), body.TotalOrders)
}

func TestIngestOrders(t *testing.T) {
	loader := &stubIngester{result: &models.IngestResult{Created: 2, Updated: 1, Total: 3}}
	router := setupRouter(t, &stubCompleter{}, &stubAnalytics{summary: dashboardSummary()}, loader)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/ingest", strings.NewReader(`[{"id": "a"}]`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body models.IngestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Total)
}

func TestIngestOrdersFailure(t *testing.T) {
	loader := &stubIngester{err: errors.New("duplicate order_id")}
	router := setupRouter(t, &stubCompleter{}, &stubAnalytics{summary: dashboardSummary()}, loader)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/ingest", strings.NewReader(`[]`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

package api

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"time"

	"order-analytics/internal/broker"
	"order-analytics/internal/models"
	"order-analytics/internal/service"
	"order-analytics/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Summarizer provides the dashboard aggregation data.
type Summarizer interface {
	Summary(ctx context.Context) (*models.Summary, error)
}

// QueryAnswerer answers free-text questions over the stored orders.
type QueryAnswerer interface {
	Ask(ctx context.Context, question string) (string, error)
}

// FeedIngester runs a batch ingest over a raw JSON feed document.
type FeedIngester interface {
	LoadJSON(ctx context.Context, data []byte) (*models.IngestResult, error)
}

// Handler contains HTTP handlers
type Handler struct {
	analytics Summarizer
	llm       QueryAnswerer
	loader    FeedIngester
	publisher *broker.EventPublisher
	logger    *zap.Logger
}

// NewHandler creates a new HTTP handler. publisher may be nil when no broker
// is configured.
func NewHandler(analytics Summarizer, llm QueryAnswerer, loader FeedIngester, publisher *broker.EventPublisher) *Handler {
	return &Handler{
		analytics: analytics,
		llm:       llm,
		loader:    loader,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/", h.dashboard)
	router.POST("/api/query-llm", h.queryLLM)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/summary", h.getSummary)
		v1.POST("/orders/ingest", h.ingestOrders)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

type dailyRow struct {
	Date        string
	OrderCount  int64
	TotalAmount string
}

// dashboard renders per-day order counts and totals, most recent first.
func (h *Handler) dashboard(c *gin.Context) {
	summary, err := h.analytics.Summary(c.Request.Context())
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to load dashboard: %s", err.Error())
		return
	}

	rows := make([]dailyRow, 0, len(summary.Daily))
	for _, d := range summary.Daily {
		rows = append(rows, dailyRow{
			Date:        d.Date.Format("2006-01-02"),
			OrderCount:  d.OrderCount,
			TotalAmount: d.TotalAmount.StringFixed(2),
		})
	}

	c.HTML(http.StatusOK, "home.html", gin.H{
		"TotalOrders":   summary.TotalOrders,
		"TotalRevenue":  summary.TotalRevenue.StringFixed(2),
		"AverageTicket": summary.AverageTicket.StringFixed(2),
		"Daily":         rows,
	})
}

// getSummary returns the full aggregation summary as JSON
func (h *Handler) getSummary(c *gin.Context) {
	summary, err := h.analytics.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to build summary",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}

type llmQueryRequest struct {
	Query string `json:"query"`
}

// queryLLM forwards a natural-language question to the language model with
// the current aggregation data as context.
func (h *Handler) queryLLM(c *gin.Context) {
	var req llmQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	answer, err := h.llm.Ask(c.Request.Context(), req.Query)
	if errors.Is(err, service.ErrEmptyQuery) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "query must not be empty",
		})
		return
	}
	if err != nil {
		h.logger.Error("LLM query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"answer":  answer,
	})
}

// ingestOrders runs a batch ingest over a feed document posted as the
// request body. Same shape as the feed file: an array, or {"orders": [...]}.
func (h *Handler) ingestOrders(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read request body",
		})
		return
	}

	result, err := h.loader.LoadJSON(c.Request.Context(), data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Ingest failed",
			"details": err.Error(),
		})
		return
	}

	if h.publisher != nil {
		if err := h.publisher.PublishOrdersIngested(c.Request.Context(), "http", result); err != nil {
			h.logger.Error("Failed to publish OrdersIngested event", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, result)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

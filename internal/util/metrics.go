package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IngestRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_runs_total",
		Help: "Total number of ingestion runs",
	}, []string{"status"})

	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders inserted by ingestion",
	})

	OrdersUpdatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_updated_total",
		Help: "Total number of orders updated by ingestion",
	})

	DateParseFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_date_fallbacks_total",
		Help: "Total number of order timestamps that fell back to the current time",
	})

	IngestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ingest_duration_seconds",
		Help:    "Duration of ingestion runs",
		Buckets: prometheus.DefBuckets,
	})

	LLMQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_queries_total",
		Help: "Total number of LLM analytic queries",
	}, []string{"status"})

	LLMQueryLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "llm_query_latency_seconds",
		Help:    "Latency of LLM analytic queries",
		Buckets: prometheus.DefBuckets,
	})

	SummaryCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "summary_cache_requests_total",
		Help: "Analytics summary cache lookups",
	}, []string{"result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)

// Package metrics Prometheus 指標
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recipe_collector"

// Registry 服務專用的 registry
var Registry = prometheus.NewRegistry()

var (
	stepTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "extraction_step_total",
		Help:      "Extraction steps by state and outcome.",
	}, []string{"state", "outcome"})

	stepDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "extraction_step_duration_seconds",
		Help:      "Duration of extraction steps.",
		Buckets:   []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"state"})

	extractionTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "extraction_total",
		Help:      "Finished extractions by input class and result.",
	}, []string{"class", "result"})

	inferenceDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "inference_duration_seconds",
		Help:      "Duration of model calls.",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
	}, []string{"model", "outcome"})

	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Cache lookups by cache and result.",
	}, []string{"cache", "result"})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		stepTotal,
		stepDuration,
		extractionTotal,
		inferenceDuration,
		cacheLookups,
		httpRequests,
		httpDuration,
	)
}

// Handler /metrics 端點
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveStep 記錄一個狀態的結果與耗時
func ObserveStep(state, outcome string, d time.Duration) {
	stepTotal.WithLabelValues(state, outcome).Inc()
	stepDuration.WithLabelValues(state).Observe(d.Seconds())
}

// ObserveExtraction 記錄一次擷取的最終結果
func ObserveExtraction(class, result string) {
	extractionTotal.WithLabelValues(class, result).Inc()
}

// ObserveInference 記錄模型呼叫
func ObserveInference(model string, err error, d time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	inferenceDuration.WithLabelValues(model, outcome).Observe(d.Seconds())
}

// CacheLookup 記錄快取查詢
func CacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(cache, result).Inc()
}

// ObserveHTTP 記錄 HTTP 請求
func ObserveHTTP(method, route, status string, d time.Duration) {
	httpRequests.WithLabelValues(method, route, status).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

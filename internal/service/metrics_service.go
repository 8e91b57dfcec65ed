package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation. A nil *MetricsService
// is valid and records nothing, which keeps the CLI path free of metrics.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	cacheWrite      prometheus.Observer
	recordCount     prometheus.Gauge
	mutations       *prometheus.CounterVec
	persistDuration *prometheus.HistogramVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marks_view_cache_lookups_total",
		Help: "View cache lookups by result",
	}, []string{"result"})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "marks_view_cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	recordCount := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "marks_student_records",
		Help: "Number of student records held in memory",
	})

	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marks_record_mutations_total",
		Help: "Record store mutations by operation and outcome",
	}, []string{"operation", "outcome"})

	persistDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marks_persist_duration_seconds",
		Help:    "Time spent rewriting the record store",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLookups, cacheWrite, recordCount, mutations, persistDuration, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLookups:    cacheLookups,
		cacheWrite:      cacheWrite,
		recordCount:     recordCount,
		mutations:       mutations,
		persistDuration: persistDuration,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheLookup counts a view cache hit or miss.
func (m *MetricsService) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// SetRecordCount publishes the in-memory record count.
func (m *MetricsService) SetRecordCount(n int) {
	if m == nil {
		return
	}
	m.recordCount.Set(float64(n))
}

// ObserveMutation counts a store mutation attempt.
func (m *MetricsService) ObserveMutation(operation string, ok bool) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(operation, outcome(ok)).Inc()
}

// ObservePersist records how long a full rewrite of the store took.
func (m *MetricsService) ObservePersist(duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.persistDuration.WithLabelValues(outcome(err == nil)).Observe(duration.Seconds())
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

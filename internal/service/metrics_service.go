package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Validation outcomes recorded by schedule_validation_total.
const (
	ValidationAccepted = "accepted"
	ValidationParse    = "parse_error"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheLookups    *prometheus.CounterVec
	validations     *prometheus.CounterVec
	timetableBuild  *prometheus.HistogramVec
	warmerJobs      *prometheus.CounterVec
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

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by outcome",
	}, []string{"outcome"})

	validations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_validation_total",
		Help: "Schedule validations by result",
	}, []string{"result"})

	timetableBuild := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_build_seconds",
		Help:    "Time spent projecting schedules onto a timetable grid",
		Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5},
	}, []string{"owner", "source"})

	warmerJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_warmer_jobs_total",
		Help: "Timetable cache warm jobs by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheLookups, validations, timetableBuild, warmerJobs, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheLookups:    cacheLookups,
		validations:     validations,
		timetableBuild:  timetableBuild,
		warmerJobs:      warmerJobs,
	}
}

// Registry exposes the underlying registry for tests and extra collectors.
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
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup outcome.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookups.WithLabelValues(outcome).Inc()
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordValidation counts a validation outcome: ValidationAccepted,
// ValidationParse, or the rejection kind.
func (m *MetricsService) RecordValidation(result string) {
	if m == nil {
		return
	}
	m.validations.WithLabelValues(result).Inc()
}

// ObserveTimetableBuild records grid build time; source is "cache" or "db".
func (m *MetricsService) ObserveTimetableBuild(owner, source string, duration time.Duration) {
	if m == nil {
		return
	}
	m.timetableBuild.WithLabelValues(owner, source).Observe(duration.Seconds())
}

// RecordWarmerJob counts a warm job outcome.
func (m *MetricsService) RecordWarmerJob(outcome string) {
	if m == nil {
		return
	}
	m.warmerJobs.WithLabelValues(outcome).Inc()
}

package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP surface
// and the attendance-inference engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	checksTotal     *prometheus.CounterVec
	marksTotal      *prometheus.CounterVec
	onCampusGauge   prometheus.Gauge
	locationErrors  prometheus.Counter
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	checkCount uint64
	markCount  uint64
}

// MetricsSnapshot is a lightweight counters view for the API.
type MetricsSnapshot struct {
	InferenceChecks uint64 `json:"inference_checks"`
	ClassesMarked   uint64 `json:"classes_marked"`
}

// NewMetricsService registers the collectors.
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

	checksTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_checks_total",
		Help: "Location samples processed by the inference engine",
	}, []string{"result"})

	marksTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_marks_total",
		Help: "Attendance records written by the inference engine",
	}, []string{"status"})

	onCampusGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "on_campus",
		Help: "Whether the most recent location sample resolved on campus",
	})

	locationErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "location_errors_total",
		Help: "Failed device location acquisitions",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, checksTotal, marksTotal, onCampusGauge, locationErrors, cacheHits, cacheMisses, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		checksTotal:     checksTotal,
		marksTotal:      marksTotal,
		onCampusGauge:   onCampusGauge,
		locationErrors:  locationErrors,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
	}
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

// ObserveInference records one processed location sample.
func (m *MetricsService) ObserveInference(onCampus *bool) {
	if m == nil {
		return
	}
	result := "unconfigured"
	if onCampus != nil {
		if *onCampus {
			result = "on_campus"
			m.onCampusGauge.Set(1)
		} else {
			result = "off_campus"
			m.onCampusGauge.Set(0)
		}
	}
	m.checksTotal.WithLabelValues(result).Inc()
	atomic.AddUint64(&m.checkCount, 1)
}

// ObserveMark records one attendance record write.
func (m *MetricsService) ObserveMark(status string) {
	if m == nil {
		return
	}
	m.marksTotal.WithLabelValues(status).Inc()
	atomic.AddUint64(&m.markCount, 1)
}

// ObserveLocationError counts a failed location acquisition.
func (m *MetricsService) ObserveLocationError() {
	if m == nil {
		return
	}
	m.locationErrors.Inc()
}

// RecordCacheOperation records a cache hit or miss.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// Snapshot returns aggregated counters for the API.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		InferenceChecks: atomic.LoadUint64(&m.checkCount),
		ClassesMarked:   atomic.LoadUint64(&m.markCount),
	}
}

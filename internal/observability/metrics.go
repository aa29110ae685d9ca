package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grid",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "grid",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)
	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grid",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Calls from the grid frontend to the record service.",
		},
		[]string{"op", "outcome"},
	)
	upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "grid",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Record service call duration in seconds, retries included.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op", "outcome"},
	)
	storedRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "grid",
			Subsystem: "store",
			Name:      "records",
			Help:      "Records currently held by the in-memory store.",
		},
	)
)

// RegisterMetrics registers the grid collectors with the default registry. Safe to call repeatedly.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, upstreamRequests, upstreamDuration, storedRecords)
	})
}

func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(service, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(service, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordUpstream records one logical record-service call. outcome is "ok" or an error kind.
func RecordUpstream(op, outcome string, duration time.Duration) {
	RegisterMetrics()
	upstreamRequests.WithLabelValues(op, outcome).Inc()
	upstreamDuration.WithLabelValues(op, outcome).Observe(duration.Seconds())
}

func SetStoredRecords(n int) {
	RegisterMetrics()
	storedRecords.Set(float64(n))
}

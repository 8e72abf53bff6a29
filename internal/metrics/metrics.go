// Package metrics provides Prometheus instrumentation for the mortgage
// engine service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SimulationsTotal counts simulation runs, partitioned by outcome
	// (ok, empty, unavailable, invalid).
	SimulationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mortgage_simulations_total",
		Help: "Total number of simulation runs",
	}, []string{"outcome"})

	// SimulationDuration tracks end-to-end simulation latency.
	SimulationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mortgage_simulation_duration_seconds",
		Help:    "Simulation latency in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})

	// ScheduleMonths observes the length of produced schedules.
	ScheduleMonths = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mortgage_schedule_months",
		Help:    "Number of months in produced schedules",
		Buckets: []float64{12, 60, 120, 240, 360, 480, 600},
	})

	// WarningsTotal counts simulation warnings by type.
	WarningsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mortgage_simulation_warnings_total",
		Help: "Simulation warnings emitted",
	}, []string{"type"})

	// ResultCacheHits counts fingerprint-cache hits and misses.
	ResultCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mortgage_result_cache_hits_total",
		Help: "Simulation result cache lookups",
	}, []string{"result"})

	// WebSocketClients tracks connected live-recalculation clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mortgage_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mortgage_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mortgage_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wricardo/maze-puzzle-game/game/engine"
)

// Metrics with bounded cardinality (no per-session labels)
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "maze_tick_duration_seconds",
		Help:    "Time spent serving a tick request",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	})

	ticksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "maze_ticks_total",
		Help: "Total simulation ticks executed",
	})

	levelOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "maze_level_outcomes_total",
		Help: "Door and terminal outcomes raised by ticks",
	}, []string{"outcome"}) // Bounded: "door_rejected", "level_advanced", "won", "player_died"

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "maze_active_sessions",
		Help: "Current number of live sessions",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Requests rejected by the rate limiter",
	}, []string{"reason"})

	// HTTP metrics with bounded labels
	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // endpoint is the route template, not the full URL

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})
)

// RecordTicks records one tick request executing n simulation steps
func RecordTicks(n int, duration time.Duration) {
	tickDuration.Observe(duration.Seconds())
	ticksTotal.Add(float64(n))
}

// RecordOutcome counts door and terminal events. Other event types are ignored.
func RecordOutcome(eventType string) {
	switch engine.EventType(eventType) {
	case engine.EventDoorRejected, engine.EventLevelAdvanced, engine.EventWon, engine.EventPlayerDied:
		levelOutcomes.WithLabelValues(eventType).Inc()
	}
}

// UpdateActiveSessions updates the session gauge
func UpdateActiveSessions(count int) {
	activeSessions.Set(float64(count))
}

// UpdateWSConnections updates WebSocket connection count
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// RecordConnectionRejected increments the rejection counter
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records HTTP request metrics
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
}

// MetricsHandler serves the prometheus registry
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware records latency and status per route template
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint := "unknown"
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tmpl
			}
		}
		// The upgraded connection needs the raw writer for hijacking
		if endpoint == "/ws" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		RecordRequest(r.Method, endpoint, rec.status, time.Since(start))
	})
}

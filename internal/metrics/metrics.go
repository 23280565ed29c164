package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dispatch"

// Metrics holds Prometheus metrics for the dispatch service
type Metrics struct {
	Transitions         *prometheus.CounterVec
	StorageRetries      *prometheus.CounterVec
	StorageReconnects   prometheus.Counter
	ArrivalWriteStages  *prometheus.CounterVec
	EffectFailures      *prometheus.CounterVec
	RealtimeConnections prometheus.Gauge
	RequestCounter      *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	DBPoolStats         *prometheus.GaugeVec
}

// New registers all collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_total",
				Help:      "Emergency lifecycle transitions by outcome",
			},
			[]string{"transition", "result"},
		),
		StorageRetries: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "storage",
				Name:      "retries_total",
				Help:      "Units of work retried after a stale session",
			},
			[]string{"operation"},
		),
		StorageReconnects: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "storage",
				Name:      "reconnects_total",
				Help:      "Forced reconnect cycles of the primary pool",
			},
		),
		ArrivalWriteStages: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "arrival_write_stage_total",
				Help:      "Arrival pipeline stages executed",
			},
			[]string{"stage", "result"},
		),
		EffectFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "effect_failures_total",
				Help:      "Best-effort side effects that failed",
			},
			[]string{"kind"},
		),
		RealtimeConnections: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "realtime",
				Name:      "connections",
				Help:      "Open websocket connections",
			},
		),
		RequestCounter: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of requests",
			},
			[]string{"route", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		DBPoolStats: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_pool",
				Help:      "Database connection pool statistics",
			},
			[]string{"pool", "stat"},
		),
	}
}

// ObserveTransition is nil-safe so components can run without metrics
func (m *Metrics) ObserveTransition(transition string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Transitions.WithLabelValues(transition, result).Inc()
}

func (m *Metrics) ObserveRetry(operation string) {
	if m == nil {
		return
	}
	m.StorageRetries.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveReconnect() {
	if m == nil {
		return
	}
	m.StorageReconnects.Inc()
}

func (m *Metrics) ObserveArrivalStage(stage string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ArrivalWriteStages.WithLabelValues(stage, result).Inc()
}

func (m *Metrics) ObserveEffectFailure(kind string) {
	if m == nil {
		return
	}
	m.EffectFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.RealtimeConnections.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.RealtimeConnections.Dec()
}

// GinMiddleware records request count and latency per route template
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.RequestCounter.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// RecordSQLPoolStats records database/sql pool statistics
func (m *Metrics) RecordSQLPoolStats(pool string, s sql.DBStats) {
	m.DBPoolStats.WithLabelValues(pool, "open").Set(float64(s.OpenConnections))
	m.DBPoolStats.WithLabelValues(pool, "in_use").Set(float64(s.InUse))
	m.DBPoolStats.WithLabelValues(pool, "idle").Set(float64(s.Idle))
	m.DBPoolStats.WithLabelValues(pool, "wait_count").Set(float64(s.WaitCount))
	m.DBPoolStats.WithLabelValues(pool, "wait_duration_ms").Set(float64(s.WaitDuration.Milliseconds()))
}

// RecordPgxPoolStats records pgxpool statistics
func (m *Metrics) RecordPgxPoolStats(pool string, s *pgxpool.Stat) {
	m.DBPoolStats.WithLabelValues(pool, "open").Set(float64(s.TotalConns()))
	m.DBPoolStats.WithLabelValues(pool, "in_use").Set(float64(s.AcquiredConns()))
	m.DBPoolStats.WithLabelValues(pool, "idle").Set(float64(s.IdleConns()))
	m.DBPoolStats.WithLabelValues(pool, "wait_count").Set(float64(s.EmptyAcquireCount()))
	m.DBPoolStats.WithLabelValues(pool, "wait_duration_ms").Set(float64(s.AcquireDuration().Milliseconds()))
}

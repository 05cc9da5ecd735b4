package metrics

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	DispatcherReasonDeadlineExceeded = "deadline_exceeded"
	DispatcherReasonNetwork          = "network"
	DispatcherReasonDBLockTimeout    = "db_lock_timeout"
	DispatcherReasonDB               = "db"
	DispatcherReasonUnknown          = "unknown"
)

// DispatcherMetrics captures notification outbox health.
type DispatcherMetrics struct {
	runs        prometheus.Counter
	runDuration prometheus.Histogram
	delivered   *prometheus.CounterVec
	failures    *prometheus.CounterVec
	backlog     prometheus.Gauge
}

var (
	dispatcherMetricsOnce sync.Once
	dispatcherMetrics     *DispatcherMetrics
)

// Dispatcher returns the singleton dispatcher metrics registry.
func Dispatcher() *DispatcherMetrics {
	return DispatcherWithConfig(Config{})
}

// DispatcherWithConfig returns the singleton dispatcher metrics registry using config labels.
func DispatcherWithConfig(cfg Config) *DispatcherMetrics {
	dispatcherMetricsOnce.Do(func() {
		dispatcherMetrics = newDispatcherMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return dispatcherMetrics
}

// ResetDispatcherMetricsForTest resets the singleton for tests.
func ResetDispatcherMetricsForTest() {
	dispatcherMetricsOnce = sync.Once{}
	dispatcherMetrics = nil
}

func newDispatcherMetrics(registerer prometheus.Registerer, cfg Config) *DispatcherMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "obtain"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &DispatcherMetrics{
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "obtain_notification_dispatch_runs_total",
			Help:        "Notification dispatcher polling runs.",
			ConstLabels: constLabels,
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "obtain_notification_dispatch_duration_seconds",
			Help:        "Notification dispatcher batch latency.",
			Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			ConstLabels: constLabels,
		}),
		delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "obtain_notification_delivered_total",
			Help:        "Notifications delivered by kind.",
			ConstLabels: constLabels,
		}, []string{"kind"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "obtain_notification_failures_total",
			Help:        "Notification delivery failures by kind and reason.",
			ConstLabels: constLabels,
		}, []string{"kind", "reason"}),
		backlog: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "obtain_notification_backlog",
			Help:        "Pending notifications claimed in the last batch.",
			ConstLabels: constLabels,
		}),
	}

	registerer.MustRegister(m.runs, m.runDuration, m.delivered, m.failures, m.backlog)
	return m
}

func (m *DispatcherMetrics) ObserveRun(duration time.Duration, batchSize int) {
	if m == nil {
		return
	}
	m.runs.Inc()
	m.runDuration.Observe(duration.Seconds())
	m.backlog.Set(float64(batchSize))
}

func (m *DispatcherMetrics) IncDelivered(kind string) {
	if m == nil {
		return
	}
	m.delivered.WithLabelValues(kind).Inc()
}

func (m *DispatcherMetrics) IncFailure(kind string, err error) {
	if m == nil || err == nil {
		return
	}
	m.failures.WithLabelValues(kind, ClassifyDispatchReason(err)).Inc()
}

// ClassifyDispatchReason maps delivery errors to low-cardinality reasons.
func ClassifyDispatchReason(err error) string {
	if err == nil {
		return DispatcherReasonUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return DispatcherReasonDeadlineExceeded
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return DispatcherReasonNetwork
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "55P03" {
			return DispatcherReasonDBLockTimeout
		}
		return DispatcherReasonDB
	}
	if errors.Is(err, gorm.ErrInvalidDB) || errors.Is(err, gorm.ErrInvalidTransaction) {
		return DispatcherReasonDB
	}
	return DispatcherReasonUnknown
}

package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the business counters of the money-movement core.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	operations    *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	gateDecisions *prometheus.CounterVec
	notifications *prometheus.CounterVec
	expired       prometheus.Counter
}

// NewMetrics registers the collectors on reg (prometheus.DefaultRegisterer when nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payflow_operations_total",
			Help: "Money-movement operations by kind and outcome.",
		}, []string{"operation", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "payflow_operation_duration_seconds",
			Help:    "Latency of money-movement operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		gateDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payflow_authorization_decisions_total",
			Help: "Authorization gate decisions.",
		}, []string{"decision"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payflow_notifications_total",
			Help: "Notification delivery results.",
		}, []string{"result"}),
		expired: factory.NewCounter(prometheus.CounterOpts{
			Name: "payflow_pending_expired_total",
			Help: "Pending transfers failed by the sweeper.",
		}),
	}
}

func (m *Metrics) observeOperation(operation string, err error, started time.Time) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcomeOf(err)).Inc()
	m.duration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// ObserveGateDecision counts one authorization gate decision.
func (m *Metrics) ObserveGateDecision(decision string) {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues(decision).Inc()
}

func (m *Metrics) observeNotification(result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result).Inc()
}

func (m *Metrics) observeExpired(n int) {
	if m == nil || n == 0 {
		return
	}
	m.expired.Add(float64(n))
}

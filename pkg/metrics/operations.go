package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const outcomeOK = "ok"

// OperationMetrics records latency and outcome of coordinator operations.
type OperationMetrics struct {
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
	stockLow *prometheus.CounterVec
}

// NewOperationMetrics registers the operation metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewOperationMetrics(reg prometheus.Registerer) *OperationMetrics {
	if reg == nil {
		return &OperationMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hotelops",
		Name:      "operation_duration_seconds",
		Help:      "Duration of coordinator operations in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hotelops",
		Name:      "operation_total",
		Help:      "Coordinator operations by outcome (ok or error code).",
	}, []string{"operation", "outcome"})
	stockLow := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hotelops",
		Name:      "stock_below_minimum_total",
		Help:      "Debits that moved an item from above its minimum threshold to at or below it.",
	}, []string{"item"})
	reg.MustRegister(duration, outcomes, stockLow)
	return &OperationMetrics{
		duration: duration,
		outcomes: outcomes,
		stockLow: stockLow,
	}
}

// Observe records one finished operation. An empty code means success.
func (m *OperationMetrics) Observe(op string, code string, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	op = normalizeLabel(op)
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	if code == "" {
		code = outcomeOK
	}
	m.outcomes.WithLabelValues(op, code).Inc()
}

// IncStockBelowMinimum counts an item crossing its restock threshold.
func (m *OperationMetrics) IncStockBelowMinimum(item string) {
	if m == nil || m.stockLow == nil {
		return
	}
	m.stockLow.WithLabelValues(normalizeLabel(item)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

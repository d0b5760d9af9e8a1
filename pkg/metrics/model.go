package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ModelMetrics records namespace-engine operation outcomes.
type ModelMetrics interface {
	// ObserveOperation records one engine operation with its duration and
	// error outcome.
	ObserveOperation(op string, duration time.Duration, err error)
}

// NewModelMetrics creates a Prometheus-backed ModelMetrics instance, or a
// no-op implementation if metrics are not enabled.
func NewModelMetrics() ModelMetrics {
	if !IsEnabled() {
		return NewNoopModelMetrics()
	}

	reg := GetRegistry()

	return &modelMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coral_model_operations_total",
				Help: "Total number of namespace-engine operations by operation and status",
			},
			[]string{"op", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coral_model_operation_duration_milliseconds",
				Help:    "Duration of namespace-engine operations in milliseconds",
				Buckets: []float64{1, 10, 100, 1000, 10000},
			},
			[]string{"op"},
		),
	}
}

type modelMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
}

func (m *modelMetrics) ObserveOperation(op string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.operationsTotal.WithLabelValues(op, status).Inc()
	m.operationDuration.WithLabelValues(op).Observe(float64(duration.Milliseconds()))
}

// NewNoopModelMetrics returns a ModelMetrics that records nothing.
func NewNoopModelMetrics() ModelMetrics {
	return noopModelMetrics{}
}

type noopModelMetrics struct{}

func (noopModelMetrics) ObserveOperation(string, time.Duration, error) {}

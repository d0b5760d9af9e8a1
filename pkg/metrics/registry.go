// Package metrics provides optional Prometheus instrumentation for Coral.
//
// Metrics are disabled until InitRegistry is called; constructors return
// no-op implementations while disabled, so instrumented code never has to
// check a flag.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	mu       sync.RWMutex
	registry *prometheus.Registry
)

// InitRegistry creates the process-wide metrics registry and enables
// metrics collection. Call once during bootstrap, before constructing any
// instrumented component.
func InitRegistry() {
	mu.Lock()
	defer mu.Unlock()
	if registry != nil {
		return
	}
	registry = prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return registry != nil
}

// GetRegistry returns the process-wide registry. Panics if metrics are
// disabled; guard with IsEnabled.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	if registry == nil {
		panic("metrics: registry not initialized")
	}
	return registry
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

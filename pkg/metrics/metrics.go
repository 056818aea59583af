package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry wraps a prometheus registry carrying the go/process collectors
// and every ingest collector.
type Registry struct {
	registry *prometheus.Registry
}

func NewRegistry() *Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	setupTaskMetrics(registry)
	return &Registry{registry: registry}
}

func (r *Registry) GetRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the OpenMetrics exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process wide registry.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = NewRegistry()
	})
	return defaultReg
}

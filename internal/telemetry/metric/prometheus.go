package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bucketmap"

// Registry holds all application metrics on a private Prometheus registry.
type Registry struct {
	registry *prometheus.Registry

	// Benchmark metrics
	OpsTotal      *prometheus.CounterVec
	OpDuration    *prometheus.HistogramVec
	WorkersActive prometheus.Gauge
	RunsTotal     *prometheus.CounterVec
}

var (
	globalOnce     sync.Once
	globalRegistry *Registry
)

// NewRegistry creates a registry with Go runtime and process collectors
// plus the benchmark metrics.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		OpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ops_total",
			Help:      "Table operations performed, by implementation and operation.",
		}, []string{"impl", "op"}),
		OpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "op_duration_seconds",
			Help:      "Sampled latency of table operations.",
			// 50ns .. ~13ms
			Buckets: prometheus.ExponentialBuckets(50e-9, 4, 10),
		}, []string{"impl", "op"}),
		WorkersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bench_workers_active",
			Help:      "Benchmark workers currently running.",
		}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bench_runs_total",
			Help:      "Completed benchmark runs, by implementation.",
		}, []string{"impl"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.OpsTotal,
		r.OpDuration,
		r.WorkersActive,
		r.RunsTotal,
	)

	return r
}

// Global returns the process-wide registry, creating it on first use.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Handler returns an HTTP handler for the global registry's /metrics endpoint.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler returns an HTTP handler exposing this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		Registry: r.registry,
	})
}

// Register adds extra collectors, such as a TableCollector.
func (r *Registry) Register(cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := r.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Unregister removes a collector added with Register.
func (r *Registry) Unregister(c prometheus.Collector) bool {
	return r.registry.Unregister(c)
}

// AddOps adds n completed operations of kind op for impl.
func (r *Registry) AddOps(impl, op string, n int) {
	r.OpsTotal.WithLabelValues(impl, op).Add(float64(n))
}

// ObserveOp records one sampled operation latency in seconds.
func (r *Registry) ObserveOp(impl, op string, seconds float64) {
	r.OpDuration.WithLabelValues(impl, op).Observe(seconds)
}

// IncWorkers marks a worker as started.
func (r *Registry) IncWorkers() {
	r.WorkersActive.Inc()
}

// DecWorkers marks a worker as finished.
func (r *Registry) DecWorkers() {
	r.WorkersActive.Dec()
}

// RecordRun counts a completed run for impl.
func (r *Registry) RecordRun(impl string) {
	r.RunsTotal.WithLabelValues(impl).Inc()
}

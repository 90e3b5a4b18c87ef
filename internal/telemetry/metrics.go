// Package telemetry exposes Prometheus counters, histograms, and gauges
// shared across the pipeline's stages and the worker pool (spec.md §5's
// backpressure requirement that callers can observe active queue depth).
// Grounded on cryptorun/internal/interfaces/http/metrics.go's MetricsRegistry.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every Prometheus collector KeywordScout registers.
type Registry struct {
	StageDuration  *prometheus.HistogramVec
	StageErrors    *prometheus.CounterVec
	BatchesTotal   prometheus.Counter
	KeywordsTotal  *prometheus.CounterVec
	WorkerPoolDepth prometheus.Gauge
	OptimizerCycles *prometheus.CounterVec
	NicheCacheHits  *prometheus.CounterVec
	NicheCacheMisses *prometheus.CounterVec
}

// NewRegistry builds and registers every KeywordScout collector against reg.
// Pass prometheus.NewRegistry() in tests to avoid colliding with the
// process-wide default registry across parallel test packages.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "keywordscout_stage_duration_seconds",
				Help:    "Duration of each pipeline stage in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"stage", "strategy"},
		),
		StageErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keywordscout_stage_errors_total",
				Help: "Count of stage computations that returned a degraded or fatal outcome.",
			},
			[]string{"stage"},
		),
		BatchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keywordscout_batches_total",
			Help: "Total batches processed by the orchestrator.",
		}),
		KeywordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keywordscout_keywords_total",
				Help: "Count of keywords by terminal validation status.",
			},
			[]string{"status"},
		),
		WorkerPoolDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "keywordscout_worker_pool_depth",
			Help: "Current number of in-flight keywords in the bounded worker pool.",
		}),
		OptimizerCycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keywordscout_optimizer_cycles_total",
				Help: "ParameterOptimizer cycle outcomes by status.",
			},
			[]string{"niche", "status"},
		),
		NicheCacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keywordscout_niche_cache_hits_total",
				Help: "NicheConfig cache hits, by niche.",
			},
			[]string{"niche"},
		),
		NicheCacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keywordscout_niche_cache_misses_total",
				Help: "NicheConfig cache misses, by niche.",
			},
			[]string{"niche"},
		),
	}

	reg.MustRegister(
		r.StageDuration,
		r.StageErrors,
		r.BatchesTotal,
		r.KeywordsTotal,
		r.WorkerPoolDepth,
		r.OptimizerCycles,
		r.NicheCacheHits,
		r.NicheCacheMisses,
	)

	return r
}

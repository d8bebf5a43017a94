// Package metrics holds Prometheus instruments used across the validator.
// All collectors are registered with the global registry, so mounting
// promhttp.Handler() on /metrics is enough to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ValidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reqschema_validations_total",
			Help: "Completed validations by schema source and outcome (valid, invalid).",
		}, []string{"source", "result"})

	ValidationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reqschema_validation_failures_total",
			Help: "Validation calls aborted by an error, by error kind.",
		}, []string{"kind"})

	ValidationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reqschema_validation_duration_seconds",
			Help:    "Wall time of one validation call, including schema load and compile.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		})

	SchemaCompilesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reqschema_schema_compiles_total",
			Help: "Cumulative number of schema compilations.",
		})

	SchemaCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reqschema_schema_cache_hits_total",
			Help: "Cumulative number of compiled-schema cache hits.",
		})

	SchemaCacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reqschema_schema_cache_entries",
			Help: "Number of compiled schemas currently cached.",
		})
)

func init() {
	prometheus.MustRegister(
		ValidationsTotal,
		ValidationFailuresTotal,
		ValidationDuration,
		SchemaCompilesTotal,
		SchemaCacheHitsTotal,
		SchemaCacheEntries,
	)
}

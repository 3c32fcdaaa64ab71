// Package metrics provides Prometheus metrics for the formroute engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResolutionsTotal tracks field resolutions by semantic key and the
	// pipeline stage that produced the answer.
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "formroute",
			Subsystem: "resolver",
			Name:      "resolutions_total",
			Help:      "Total number of field resolutions by key and source stage",
		},
		[]string{"key", "source"},
	)

	// FuzzyScore tracks the similarity scores of accepted fuzzy matches
	FuzzyScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "formroute",
			Subsystem: "resolver",
			Name:      "fuzzy_score",
			Help:      "Similarity scores of accepted fuzzy matches",
			Buckets:   []float64{0.5, 0.6, 0.7, 0.75, 0.8, 0.85, 0.9, 0.95, 1.0},
		},
	)

	// CacheHitsTotal tracks resolver cache hits by cache name
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "formroute",
			Subsystem: "resolver",
			Name:      "cache_hits_total",
			Help:      "Total number of resolver cache hits by cache",
		},
		[]string{"cache"},
	)

	// MapperCallsTotal tracks external mapping service calls by outcome
	MapperCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "formroute",
			Subsystem: "mapper",
			Name:      "calls_total",
			Help:      "Total number of external mapping service calls by status",
		},
		[]string{"status"},
	)

	// MapperCallDuration tracks external mapping call duration
	MapperCallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "formroute",
			Subsystem: "mapper",
			Name:      "call_duration_seconds",
			Help:      "Duration of external mapping service calls in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// AssignmentsTotal tracks template assignments by template and category
	AssignmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "formroute",
			Subsystem: "rules",
			Name:      "assignments_total",
			Help:      "Total number of template assignments by template and category",
		},
		[]string{"template", "category"},
	)

	// RecordsProcessedTotal tracks processed records by outcome
	RecordsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "formroute",
			Subsystem: "processor",
			Name:      "records_total",
			Help:      "Total number of records processed by status",
		},
		[]string{"status"},
	)
)

// RecordResolution records a completed field resolution.
func RecordResolution(key, source string) {
	ResolutionsTotal.WithLabelValues(key, source).Inc()
}

// RecordCacheHit records a resolver cache hit.
func RecordCacheHit(cache string) {
	CacheHitsTotal.WithLabelValues(cache).Inc()
}

// RecordMapperCall records an external mapping service call.
func RecordMapperCall(status string, durationSeconds float64) {
	MapperCallsTotal.WithLabelValues(status).Inc()
	MapperCallDuration.Observe(durationSeconds)
}

// RecordAssignment records a template assignment.
func RecordAssignment(template, category string) {
	AssignmentsTotal.WithLabelValues(template, category).Inc()
}

// RecordProcessed records a processed record outcome.
func RecordProcessed(status string) {
	RecordsProcessedTotal.WithLabelValues(status).Inc()
}

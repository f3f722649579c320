// Package metrics provides Prometheus metrics for the recommendation service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recommendation kinds and outcomes used as label values.
const (
	KindEvents    = "events"
	KindLocations = "locations"

	OutcomeMatch     = "match"
	OutcomeNoMatch   = "no_match"
	OutcomeExact     = "exact"
	OutcomeNearby    = "nearby"
	OutcomeSubstring = "substring"
	OutcomeError     = "error"
)

// Manager owns a private registry and every metric the service exports.
// All methods are safe to call on a nil Manager.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry
	runtime   bool

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	recommendations     *prometheus.CounterVec
	cacheLookups        *prometheus.CounterVec
	datasetRecords      prometheus.Gauge
	vocabularySize      prometheus.Gauge
	modelBuildDuration  prometheus.Histogram
}

// NewManager creates a manager and registers its metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "tabiji",
		buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	if m.runtime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests by route, method and status code",
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   m.buckets,
	}, []string{"route", "method"})

	m.recommendations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "recommendations_total",
		Help:      "Recommendation calls by kind and outcome (for locations, the tier that answered)",
	}, []string{"kind", "outcome"})

	m.cacheLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "query_cache_lookups_total",
		Help:      "Event query cache lookups by result",
	}, []string{"result"})

	m.datasetRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "dataset_records",
		Help:      "Number of records in the loaded dataset",
	})

	m.vocabularySize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "vocabulary_size",
		Help:      "Number of terms in the fitted event vectorizer",
	})

	m.modelBuildDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "model_build_duration_seconds",
		Help:      "Time spent fitting the model bundle",
		Buckets:   m.buckets,
	})
}

// Registry returns the registry metrics are registered on.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one served request.
func (m *Manager) RecordHTTPRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// RecordRecommendation counts one recommender call.
func (m *Manager) RecordRecommendation(kind, outcome string) {
	if m == nil {
		return
	}
	m.recommendations.WithLabelValues(kind, outcome).Inc()
}

// RecordCacheLookup counts one event query cache lookup.
func (m *Manager) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// SetModelInfo publishes the size of the loaded dataset and vocabulary.
func (m *Manager) SetModelInfo(records, vocabulary int) {
	if m == nil {
		return
	}
	m.datasetRecords.Set(float64(records))
	m.vocabularySize.Set(float64(vocabulary))
}

// ObserveModelBuild records how long a bundle build took.
func (m *Manager) ObserveModelBuild(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.modelBuildDuration.Observe(elapsed.Seconds())
}

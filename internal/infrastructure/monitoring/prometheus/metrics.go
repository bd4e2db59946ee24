// Package prometheus exposes pipeline and transport metrics.
package prometheus

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/careloop/appealgen/internal/application/appeal"
	"github.com/careloop/appealgen/internal/intelligence/lettergen"
)

const namespace = "appealgen"

// Histogram buckets tuned per concern.
var (
	pipelineDurationBuckets = []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
	llmDurationBuckets      = []float64{.5, 1, 2, 5, 10, 30, 60, 120}
	httpDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	confidenceBuckets       = []float64{.1, .2, .3, .4, .5, .6, .7, .8, .9, 1}
)

// Metrics holds every collector the service registers.  It satisfies the
// orchestrator's Metrics contract and is shared with the HTTP layer.
type Metrics struct {
	registry *prometheus.Registry

	pipelineRuns         *prometheus.CounterVec
	pipelineDuration     prometheus.Histogram
	extractionConfidence prometheus.Histogram
	letterSource         *prometheus.CounterVec

	llmRequests *prometheus.CounterVec
	llmDuration prometheus.Histogram

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

var _ appeal.Metrics = (*Metrics)(nil)

var _ lettergen.Observer = (*Metrics)(nil)

// NewMetrics registers all collectors on a fresh registry, alongside the
// standard process and Go runtime collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return newMetricsOn(registry)
}

func newMetricsOn(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		pipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Appeal pipeline runs by outcome.",
		}, []string{"outcome"}),
		pipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "End to end appeal pipeline duration.",
			Buckets:   pipelineDurationBuckets,
		}),
		extractionConfidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_confidence",
			Help:      "Confidence score distribution of extractions.",
			Buckets:   confidenceBuckets,
		}),
		letterSource: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "letter_source_total",
			Help:      "Composed letters by source.",
		}, []string{"source"}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Letter generation model calls by status.",
		}, []string{"status"}),
		llmDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Letter generation model call duration.",
			Buckets:   llmDurationBuckets,
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by method and route.",
			Buckets:   httpDurationBuckets,
		}, []string{"method", "path"}),
	}

	registry.MustRegister(
		m.pipelineRuns,
		m.pipelineDuration,
		m.extractionConfidence,
		m.letterSource,
		m.llmRequests,
		m.llmDuration,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// ObservePipelineRun records one pipeline run and its duration.
func (m *Metrics) ObservePipelineRun(outcome string, seconds float64) {
	m.pipelineRuns.WithLabelValues(outcome).Inc()
	m.pipelineDuration.Observe(seconds)
}

// ObserveConfidence records the confidence score of a completed extraction.
func (m *Metrics) ObserveConfidence(score float64) {
	m.extractionConfidence.Observe(score)
}

// IncLetterSource counts a composed letter by its source.
func (m *Metrics) IncLetterSource(source string) {
	m.letterSource.WithLabelValues(source).Inc()
}

// ObserveLLMRequest records one model call.
func (m *Metrics) ObserveLLMRequest(status string, seconds float64) {
	m.llmRequests.WithLabelValues(status).Inc()
	m.llmDuration.Observe(seconds)
}

// ObserveHTTPRequest records one served HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, seconds float64) {
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(seconds)
}

// Handler serves the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

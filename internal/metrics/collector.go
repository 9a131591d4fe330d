// Package metrics provides internal Prometheus metrics collection.
// This package is internal and should not be imported by external
// projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Collector aggregates TokenScope instrumentation.
type Collector struct {
	tokenizeTotal    *prometheus.CounterVec
	tokenizeDuration *prometheus.HistogramVec
	tokensEmitted    *prometheus.CounterVec

	reviewTotal    *prometheus.CounterVec
	reviewRetries  prometheus.Counter
	reviewDuration prometheus.Histogram

	exportTotal *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector creates a collector and registers its metrics on the
// given registerer. Pass prometheus.DefaultRegisterer outside tests.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.tokenizeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokenize_total",
			Help:      "Total tokenizer invocations",
		},
		[]string{"adapter", "status"},
	)

	c.tokenizeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tokenize_duration_seconds",
			Help:      "Tokenizer invocation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"adapter"},
	)

	c.tokensEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_emitted_total",
			Help:      "Total tokens emitted per adapter",
		},
		[]string{"adapter"},
	)

	c.reviewTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_total",
			Help:      "Total LLM review outcomes",
		},
		[]string{"provider", "status"},
	)

	c.reviewRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_retries_total",
			Help:      "Total LLM review retry attempts",
		},
	)

	c.reviewDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "review_duration_seconds",
			Help:      "LLM review duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	c.exportTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_total",
			Help:      "Total report exports",
		},
		[]string{"format", "status"},
	)

	reg.MustRegister(
		c.tokenizeTotal, c.tokenizeDuration, c.tokensEmitted,
		c.reviewTotal, c.reviewRetries, c.reviewDuration,
		c.exportTotal,
	)

	return c
}

// ObserveTokenize records one tokenizer invocation.
func (c *Collector) ObserveTokenize(adapter, status string, tokens int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.tokenizeTotal.WithLabelValues(adapter, status).Inc()
	c.tokenizeDuration.WithLabelValues(adapter).Observe(elapsed.Seconds())
	if tokens > 0 {
		c.tokensEmitted.WithLabelValues(adapter).Add(float64(tokens))
	}
}

// ObserveReview records one review outcome.
func (c *Collector) ObserveReview(provider, status string, retries int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.reviewTotal.WithLabelValues(provider, status).Inc()
	if retries > 0 {
		c.reviewRetries.Add(float64(retries))
	}
	c.reviewDuration.Observe(elapsed.Seconds())
}

// ObserveExport records one export outcome.
func (c *Collector) ObserveExport(format, status string) {
	if c == nil {
		return
	}
	c.exportTotal.WithLabelValues(format, status).Inc()
}

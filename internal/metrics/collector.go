// Package metrics exposes sync outcomes as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "commit_health"

// Sync results used as the "result" label
const (
	ResultSuccess = "success"
	ResultPartial = "partial"
	ResultFailed  = "failed"
)

// Collector owns a private registry and the sync metrics registered on it
type Collector struct {
	registry *prometheus.Registry

	syncTotal       *prometheus.CounterVec
	syncDuration    prometheus.Histogram
	commitsFetched  prometheus.Counter
	commitsInserted prometheus.Counter
	score           *prometheus.GaugeVec
}

// NewCollector creates a collector. If registry is nil a new one is created.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	c := &Collector{
		registry: registry,
		syncTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_total",
			Help:      "Number of sync invocations by result.",
		}, []string{"result"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Wall time of a sync invocation.",
			// fetches are paced at 100ms per page, so most syncs take seconds
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		commitsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commits_fetched_total",
			Help:      "Commits returned by the remote source.",
		}),
		commitsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commits_inserted_total",
			Help:      "Commits newly persisted after deduplication.",
		}),
		score: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "score",
			Help:      "Latest health score per repository.",
		}, []string{"repository"}),
	}

	registry.MustRegister(c.syncTotal, c.syncDuration, c.commitsFetched, c.commitsInserted, c.score)
	return c
}

// RecordSync records the outcome of one sync. The score gauge is only
// updated when a score was produced.
func (c *Collector) RecordSync(repository, result string, duration time.Duration, fetched, inserted int, score *int) {
	c.syncTotal.WithLabelValues(result).Inc()
	c.syncDuration.Observe(duration.Seconds())
	c.commitsFetched.Add(float64(fetched))
	c.commitsInserted.Add(float64(inserted))
	if score != nil {
		c.score.WithLabelValues(repository).Set(float64(*score))
	}
}

// Registry returns the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler serving the registry in exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// Package metrics exposes ensemble session activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tansive/conductor/internal/catalog"
	"github.com/tansive/conductor/internal/ensemble"
)

// Collector holds the session metrics. It implements ensemble.Recorder.
type Collector struct {
	EditsStaged     *prometheus.CounterVec
	ActionsExecuted *prometheus.CounterVec
	CommitFailures  prometheus.Counter
	Commits         prometheus.Counter
	LastCommit      prometheus.Gauge

	registry *prometheus.Registry
}

var _ ensemble.Recorder = (*Collector)(nil)

// New creates a collector on its own registry.
func New() *Collector {
	return NewWithRegistry(prometheus.NewRegistry())
}

func NewWithRegistry(reg *prometheus.Registry) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		EditsStaged: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "conductor",
				Name:      "edits_staged_total",
				Help:      "Total number of catalog edits staged",
			},
			[]string{"kind"},
		),
		ActionsExecuted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "conductor",
				Name:      "actions_executed_total",
				Help:      "Total number of physical table actions executed",
			},
			[]string{"kind"},
		),
		CommitFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "conductor",
				Name:      "commit_failures_total",
				Help:      "Total number of failed commits",
			},
		),
		Commits: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "conductor",
				Name:      "commits_total",
				Help:      "Total number of successful commits",
			},
		),
		LastCommit: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "conductor",
				Name:      "last_commit_timestamp_seconds",
				Help:      "Unix time of the last successful commit",
			},
		),
		registry: reg,
	}
}

func (c *Collector) EditStaged(kind catalog.EditKind) {
	c.EditsStaged.WithLabelValues(string(kind)).Inc()
}

func (c *Collector) ActionExecuted(kind ensemble.ActionKind) {
	c.ActionsExecuted.WithLabelValues(string(kind)).Inc()
}

func (c *Collector) CommitFailed() {
	c.CommitFailures.Inc()
}

func (c *Collector) Committed() {
	c.Commits.Inc()
	c.LastCommit.SetToCurrentTime()
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes the current values in the node exporter textfile
// format. The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

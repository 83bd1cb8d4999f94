// Package observability bridges worker lifecycle hooks to Prometheus
// metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/koineramitranjan/threads/pkg/domain"
)

// Collector aggregates worker lifecycle events into Prometheus metrics.
type Collector struct {
	spawned  *prometheus.CounterVec
	messages prometheus.Counter
	errors   prometheus.Counter
	live     prometheus.Gauge
}

// NewCollector creates a collector and registers its metrics. Pass
// prometheus.DefaultRegisterer to use the default registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		spawned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "threads_workers_spawned_total",
				Help: "Workers spawned, by transport.",
			},
			[]string{"transport"},
		),
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "threads_messages_total",
			Help: "Terminal message events delivered to handles.",
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "threads_task_errors_total",
			Help: "Error events delivered to handles.",
		}),
		live: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "threads_workers_live",
			Help: "Workers whose transport has started but not yet exited.",
		}),
	}
	reg.MustRegister(c.spawned, c.messages, c.errors, c.live)
	return c
}

// Hooks returns lifecycle hooks feeding this collector. Attach them to a
// worker at spawn time.
func (c *Collector) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSpawn: func(workerID, transport string) {
			c.spawned.WithLabelValues(transport).Inc()
			c.live.Inc()
		},
		OnMessage: func(workerID string) {
			c.messages.Inc()
		},
		OnError: func(workerID string, err error) {
			c.errors.Inc()
		},
		OnExit: func(workerID string) {
			c.live.Dec()
		},
	}
}

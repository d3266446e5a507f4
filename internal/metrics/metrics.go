package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DefaultRegistry is the process-wide Prometheus registry
	DefaultRegistry = prometheus.NewRegistry()

	metricsOnce sync.Once
	metrics     *Metrics
)

// Metrics holds the download scheduler's Prometheus collectors
type Metrics struct {
	// TasksTotal counts finished transfer tasks by terminal outcome
	TasksTotal *prometheus.CounterVec

	// ActiveTasks tracks the number of transfers currently executing
	ActiveTasks prometheus.Gauge

	// BytesTransferred counts payload bytes written to disk
	BytesTransferred prometheus.Counter

	// QueuedEntries tracks the backlog depth at the queue manager
	QueuedEntries prometheus.Gauge
}

// Get returns the global metrics instance
func Get() *Metrics {
	metricsOnce.Do(func() {
		metrics = New(DefaultRegistry)
	})
	return metrics
}

// New creates a metrics collection registered on the given registerer
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = DefaultRegistry
	}
	return &Metrics{
		TasksTotal: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dlq_tasks_total",
				Help: "Total number of finished transfer tasks by outcome",
			},
			[]string{"outcome"}, // completed, failed, cancelled
		),
		ActiveTasks: promauto.With(registerer).NewGauge(
			prometheus.GaugeOpts{
				Name: "dlq_active_tasks",
				Help: "Number of transfers currently executing",
			},
		),
		BytesTransferred: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "dlq_bytes_transferred_total",
				Help: "Total payload bytes written to disk",
			},
		),
		QueuedEntries: promauto.With(registerer).NewGauge(
			prometheus.GaugeOpts{
				Name: "dlq_queued_entries",
				Help: "Backlog entries waiting at the queue manager",
			},
		),
	}
}

package scheduler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instrumentation the Scheduler reports.
// A nil *Metrics is valid everywhere below — a caller who does not wire
// metrics gets identical scheduling behavior, just no observability.
type Metrics struct {
	itemsInFlight  prometheus.Gauge
	itemsProcessed *prometheus.CounterVec
	retries        prometheus.Counter
	suspensions    prometheus.Counter
	flushDuration  prometheus.Histogram
}

// NewMetrics registers the Scheduler's gauges/counters under namespace via
// promauto, the same auto-registration style the teacher uses throughout
// internal/metrics.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		itemsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "items_inflight",
			Help:      "Number of item invocations currently in flight.",
		}),
		itemsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_processed_total",
			Help:      "Total items that have reached a terminal-for-this-run outcome, by outcome.",
		}, []string{"outcome"}),
		retries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_retries_total",
			Help:      "Total number of failed attempts that left the item under its retry budget.",
		}),
		suspensions: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_suspensions_total",
			Help:      "Total number of items that transitioned to awaiting_agent.",
		}),
		flushDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkpoint_flush_duration_seconds",
			Help:      "Latency of a single checkpoint Save call.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) dispatched() {
	if m == nil {
		return
	}
	m.itemsInFlight.Inc()
}

func (m *Metrics) completed() {
	if m == nil {
		return
	}
	m.itemsInFlight.Dec()
}

func (m *Metrics) observeOutcome(outcome string) {
	if m == nil {
		return
	}
	m.itemsProcessed.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeRetry() {
	if m == nil {
		return
	}
	m.retries.Inc()
}

func (m *Metrics) observeSuspension() {
	if m == nil {
		return
	}
	m.suspensions.Inc()
}

func (m *Metrics) observeFlush(d time.Duration) {
	if m == nil {
		return
	}
	m.flushDuration.Observe(d.Seconds())
}

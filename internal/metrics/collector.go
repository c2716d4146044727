// Package metrics exports queue statistics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/stormdrain/internal/bus"
)

// Source exposes the counters a Collector scrapes. Both *bus.Bus and
// *pipeline.Pipeline satisfy it.
type Source interface {
	Stats() bus.Stats
	Len() int
	Cap() int
}

// Collector reads a Source on every scrape; nothing is cached between
// scrapes.
type Collector struct {
	source Source

	pushed       *prometheus.Desc
	popped       *prometheus.Desc
	expansions   *prometheus.Desc
	pushFailures *prometheus.Desc
	capacity     *prometheus.Desc
	depth        *prometheus.Desc
}

// NewCollector builds a Collector over source.
func NewCollector(source Source) *Collector {
	return &Collector{
		source: source,
		pushed: prometheus.NewDesc(
			"stormdrain_events_pushed_total",
			"Events accepted by the queue.",
			nil, nil),
		popped: prometheus.NewDesc(
			"stormdrain_events_popped_total",
			"Events claimed from the queue.",
			nil, nil),
		expansions: prometheus.NewDesc(
			"stormdrain_buffer_expansions_total",
			"Ring buffer growth events.",
			nil, nil),
		pushFailures: prometheus.NewDesc(
			"stormdrain_push_failures_total",
			"Pushes rejected at absolute capacity.",
			nil, nil),
		capacity: prometheus.NewDesc(
			"stormdrain_buffer_capacity",
			"Current ring buffer capacity.",
			nil, nil),
		depth: prometheus.NewDesc(
			"stormdrain_queue_depth",
			"Envelopes currently queued.",
			nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.pushed
	ch <- c.popped
	ch <- c.expansions
	ch <- c.pushFailures
	ch <- c.capacity
	ch <- c.depth
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.source.Stats()
	ch <- prometheus.MustNewConstMetric(c.pushed, prometheus.CounterValue, float64(st.Pushed))
	ch <- prometheus.MustNewConstMetric(c.popped, prometheus.CounterValue, float64(st.Popped))
	ch <- prometheus.MustNewConstMetric(c.expansions, prometheus.CounterValue, float64(st.Expansions))
	ch <- prometheus.MustNewConstMetric(c.pushFailures, prometheus.CounterValue, float64(st.PushFailures))
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(c.source.Cap()))
	ch <- prometheus.MustNewConstMetric(c.depth, prometheus.GaugeValue, float64(c.source.Len()))
}

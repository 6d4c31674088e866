package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "udpchat"

// Collector 将 Reporter 快照导出为 Prometheus 指标
type Collector struct {
	reporter Reporter

	datagrams *prometheus.Desc
	bytes     *prometheus.Desc
	rate      *prometheus.Desc
	dropped   *prometheus.Desc
	events    *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector 创建 Collector
func NewCollector(r Reporter) *Collector {
	return &Collector{
		reporter: r,
		datagrams: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "datagrams_total"),
			"UDP datagrams by direction.",
			[]string{"direction"}, nil,
		),
		bytes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "bytes_total"),
			"UDP payload bytes by direction.",
			[]string{"direction"}, nil,
		),
		rate: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "bytes_per_second"),
			"Average byte rate over the last 60 seconds.",
			[]string{"direction"}, nil,
		),
		dropped: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "datagrams_dropped_total"),
			"Datagrams dropped by reason.",
			[]string{"reason"}, nil,
		),
		events: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "events_total"),
			"Chat events by kind.",
			[]string{"event"}, nil,
		),
	}
}

// Describe 实现 prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.datagrams
	ch <- c.bytes
	ch <- c.rate
	ch <- c.dropped
	ch <- c.events
}

// Collect 实现 prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.reporter.Snapshot()

	ch <- prometheus.MustNewConstMetric(c.datagrams, prometheus.CounterValue, float64(s.DatagramsIn), "in")
	ch <- prometheus.MustNewConstMetric(c.datagrams, prometheus.CounterValue, float64(s.DatagramsOut), "out")
	ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.CounterValue, float64(s.BytesIn), "in")
	ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.CounterValue, float64(s.BytesOut), "out")
	ch <- prometheus.MustNewConstMetric(c.rate, prometheus.GaugeValue, s.RateIn, "in")
	ch <- prometheus.MustNewConstMetric(c.rate, prometheus.GaugeValue, s.RateOut, "out")

	for reason, n := range s.Dropped {
		ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(n), string(reason))
	}
	for event, n := range s.Events {
		ch <- prometheus.MustNewConstMetric(c.events, prometheus.CounterValue, float64(n), string(event))
	}
}

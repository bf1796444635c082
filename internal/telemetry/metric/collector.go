package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/bucketmap/pkg/cmap"
)

// StatsSource is anything that can report table occupancy.
type StatsSource interface {
	Stats() cmap.Stats
}

// TableCollector exports the occupancy of one table on every scrape.
//
// Stats takes each bucket's read lock in turn, so a scrape costs one pass
// over the bucket array.
type TableCollector struct {
	src StatsSource

	buckets  *prometheus.Desc
	entries  *prometheus.Desc
	nonEmpty *prometheus.Desc
	maxChain *prometheus.Desc
	load     *prometheus.Desc
}

// NewTableCollector creates a collector for src labelled with table=name.
func NewTableCollector(name string, src StatsSource) *TableCollector {
	labels := prometheus.Labels{"table": name}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "table", metric), help, nil, labels)
	}

	return &TableCollector{
		src:      src,
		buckets:  desc("buckets", "Fixed number of buckets."),
		entries:  desc("entries", "Entries stored across all buckets."),
		nonEmpty: desc("non_empty_buckets", "Buckets holding at least one entry."),
		maxChain: desc("max_chain_length", "Longest bucket chain."),
		load:     desc("load_factor", "Entries per bucket."),
	}
}

// Describe implements prometheus.Collector.
func (c *TableCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.buckets
	ch <- c.entries
	ch <- c.nonEmpty
	ch <- c.maxChain
	ch <- c.load
}

// Collect implements prometheus.Collector.
func (c *TableCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()
	ch <- prometheus.MustNewConstMetric(c.buckets, prometheus.GaugeValue, float64(s.Buckets))
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.Entries))
	ch <- prometheus.MustNewConstMetric(c.nonEmpty, prometheus.GaugeValue, float64(s.NonEmptyBuckets))
	ch <- prometheus.MustNewConstMetric(c.maxChain, prometheus.GaugeValue, float64(s.MaxChainLength))
	ch <- prometheus.MustNewConstMetric(c.load, prometheus.GaugeValue, s.LoadFactor)
}

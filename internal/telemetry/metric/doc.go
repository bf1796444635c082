// Package metric provides Prometheus metrics for bucketmap.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Prometheus registry, benchmark metrics and HTTP handler
//   - collector.go: TableCollector exporting bucket occupancy of a table
//
// Metrics include:
//
//   - Operation counters and sampled latency histograms per implementation
//   - Active benchmark workers
//   - Bucket count, entries, non-empty buckets, max chain length, load factor
//
// Metrics are exposed at /metrics in Prometheus format when the benchmark
// is started with a metrics address.
package metric

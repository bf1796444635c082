// Package config defines the benchmark configuration structure.
package config

import "time"

// Config is the root configuration for bucketmap-bench.
type Config struct {
	Bench   BenchSection   `koanf:"bench" json:"bench" yaml:"bench"`
	Metrics MetricsSection `koanf:"metrics" json:"metrics" yaml:"metrics"`
	Log     LogSection     `koanf:"log" json:"log" yaml:"log"`
}

// BenchSection configures a benchmark run.
type BenchSection struct {
	// Impl selects the store under test: sharded, locked or both.
	Impl string `koanf:"impl" json:"impl" yaml:"impl"`

	// Buckets is the fixed bucket count of the sharded table.
	Buckets int `koanf:"buckets" json:"buckets" yaml:"buckets"`

	// Hasher names the key hash function: maphash, murmur3, xxhash or identity.
	Hasher string `koanf:"hasher" json:"hasher" yaml:"hasher"`

	Workers      int           `koanf:"workers" json:"workers" yaml:"workers"`
	OpsPerWorker int           `koanf:"ops_per_worker" json:"ops_per_worker" yaml:"ops_per_worker"`
	Duration     time.Duration `koanf:"duration" json:"duration" yaml:"duration"`

	// KeySpace is doubling (worker i owns a range twice the size of
	// worker i-1) or uniform (equal ranges of KeyRange keys).
	KeySpace string `koanf:"key_space" json:"key_space" yaml:"key_space"`
	KeyRange int    `koanf:"key_range" json:"key_range" yaml:"key_range"`

	// Operation mix. Whatever is left after the three ratios is inserts.
	ReadRatio       float64 `koanf:"read_ratio" json:"read_ratio" yaml:"read_ratio"`
	EraseRatio      float64 `koanf:"erase_ratio" json:"erase_ratio" yaml:"erase_ratio"`
	AccumulateRatio float64 `koanf:"accumulate_ratio" json:"accumulate_ratio" yaml:"accumulate_ratio"`

	// RateLimit caps operations per second per worker; 0 means unlimited.
	RateLimit float64 `koanf:"rate_limit" json:"rate_limit" yaml:"rate_limit"`

	// SampleEvery records the latency of one in every SampleEvery operations.
	SampleEvery int `koanf:"sample_every" json:"sample_every" yaml:"sample_every"`

	// Seed fixes the per-worker random streams; 0 picks a random seed.
	Seed uint64 `koanf:"seed" json:"seed" yaml:"seed"`

	// Verify checks that every insert is immediately visible to a find.
	Verify   bool `koanf:"verify" json:"verify" yaml:"verify"`
	Progress bool `koanf:"progress" json:"progress" yaml:"progress"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled" json:"enabled" yaml:"enabled"`
	Addr    string `koanf:"addr" json:"addr" yaml:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" json:"level" yaml:"level"`
	Format string `koanf:"format" json:"format" yaml:"format"`
}

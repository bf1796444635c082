package config

import "github.com/yndnr/bucketmap/pkg/cmap"

// Default configuration values.
const (
	ImplSharded = "sharded"
	ImplLocked  = "locked"
	ImplBoth    = "both"

	KeySpaceDoubling = "doubling"
	KeySpaceUniform  = "uniform"

	DefaultImpl         = ImplSharded
	DefaultBuckets      = cmap.DefaultBucketCount
	DefaultHasher       = cmap.HasherMaphash
	DefaultWorkers      = 10
	DefaultOpsPerWorker = 100000
	DefaultKeySpace     = KeySpaceDoubling
	DefaultKeyRange     = 1000
	DefaultReadRatio    = 0.5
	DefaultEraseRatio   = 0.1
	DefaultSampleEvery  = 64

	DefaultMetricsAddr = "127.0.0.1:9102"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Bench: BenchSection{
			Impl:         DefaultImpl,
			Buckets:      DefaultBuckets,
			Hasher:       DefaultHasher,
			Workers:      DefaultWorkers,
			OpsPerWorker: DefaultOpsPerWorker,
			KeySpace:     DefaultKeySpace,
			KeyRange:     DefaultKeyRange,
			ReadRatio:    DefaultReadRatio,
			EraseRatio:   DefaultEraseRatio,
			SampleEvery:  DefaultSampleEvery,
			Verify:       true,
			Progress:     true,
		},
		Metrics: MetricsSection{
			Enabled: false,
			Addr:    DefaultMetricsAddr,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

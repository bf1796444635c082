package config

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"net"

	"github.com/yndnr/bucketmap/internal/telemetry/logger"
	"github.com/yndnr/bucketmap/pkg/cmap"
)

// Verify validates the configuration.
func Verify(cfg *Config) error {
	if err := verifyBench(&cfg.Bench); err != nil {
		return err
	}
	if err := verifyMetrics(&cfg.Metrics); err != nil {
		return err
	}
	if err := verifyLog(&cfg.Log); err != nil {
		return err
	}
	return nil
}

func verifyBench(cfg *BenchSection) error {
	switch cfg.Impl {
	case ImplSharded, ImplLocked, ImplBoth:
	default:
		return fmt.Errorf("bench.impl must be one of %s, %s, %s; got %q",
			ImplSharded, ImplLocked, ImplBoth, cfg.Impl)
	}

	if cfg.Buckets < 1 {
		return errors.New("bench.buckets must be at least 1")
	}
	if _, err := cmap.HasherByName[int](cfg.Hasher); err != nil {
		return fmt.Errorf("bench.hasher: %w", err)
	}

	if cfg.Workers < 1 {
		return errors.New("bench.workers must be at least 1")
	}
	if cfg.Duration < 0 {
		return errors.New("bench.duration must not be negative")
	}
	if cfg.Duration == 0 && cfg.OpsPerWorker < 1 {
		return errors.New("bench.ops_per_worker must be at least 1 when bench.duration is 0")
	}

	if cfg.KeyRange < 1 {
		return errors.New("bench.key_range must be at least 1")
	}
	switch cfg.KeySpace {
	case KeySpaceUniform:
		if uint64(cfg.Workers) > math.MaxInt64/uint64(cfg.KeyRange) {
			return errors.New("bench.key_range * bench.workers overflows int64")
		}
	case KeySpaceDoubling:
		// The last worker's upper bound is key_range << (workers-1).
		if bits.Len64(uint64(cfg.KeyRange))+cfg.Workers-1 > 63 {
			return fmt.Errorf("bench.key_space doubling: %d workers over key_range %d overflows int64",
				cfg.Workers, cfg.KeyRange)
		}
	default:
		return fmt.Errorf("bench.key_space must be %s or %s; got %q",
			KeySpaceDoubling, KeySpaceUniform, cfg.KeySpace)
	}

	for name, r := range map[string]float64{
		"bench.read_ratio":       cfg.ReadRatio,
		"bench.erase_ratio":      cfg.EraseRatio,
		"bench.accumulate_ratio": cfg.AccumulateRatio,
	} {
		if r < 0 || r > 1 || math.IsNaN(r) {
			return fmt.Errorf("%s must be within [0, 1]; got %v", name, r)
		}
	}
	if sum := cfg.ReadRatio + cfg.EraseRatio + cfg.AccumulateRatio; sum > 1 {
		return fmt.Errorf("bench ratios must sum to at most 1; got %v", sum)
	}

	if cfg.RateLimit < 0 {
		return errors.New("bench.rate_limit must not be negative")
	}
	if cfg.SampleEvery < 1 {
		return errors.New("bench.sample_every must be at least 1")
	}
	return nil
}

func verifyMetrics(cfg *MetricsSection) error {
	if !cfg.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("metrics.addr: %w", err)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := logger.ParseFormat(cfg.Format); err != nil {
		return fmt.Errorf("log.format: %w", err)
	}
	return nil
}
